package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
)

// listParam splits a comma-separated query parameter
func listParam(c *gin.Context, name string) []string {
	return config.SplitList(c.Query(name))
}

// yearsParam parses a comma-separated list of integer years
func yearsParam(c *gin.Context, name string) ([]int, error) {
	var years []int
	for _, raw := range listParam(c, name) {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.ValidationErrorf("invalid %s value %q", name, raw)
		}
		years = append(years, y)
	}
	return years, nil
}

// intParam parses an optional integer parameter; absent yields 0
func intParam(c *gin.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.ValidationErrorf("invalid %s value %q", name, raw)
	}
	return n, nil
}
