package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/errors"
	"github.com/sirupsen/logrus"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusFor(t errors.ErrorType) (int, string) {
	switch t {
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest, "validation"
	case errors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case errors.ErrorTypeConfig:
		return http.StatusInternalServerError, "configuration"
	case errors.ErrorTypeDatabase:
		return http.StatusInternalServerError, "database"
	case errors.ErrorTypeExternal:
		return http.StatusInternalServerError, "external"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) fail(c *gin.Context, op string, err error) {
	if c.Request.Context().Err() == context.DeadlineExceeded && errors.Classify(err) != errors.ErrorTypeTimeout {
		err = errors.TimeoutError(err, "request deadline exceeded")
	}
	status, kind := statusFor(errors.Classify(err))
	s.logger.WithFields(logrus.Fields{
		"operation":  op,
		"kind":       kind,
		"request_id": c.GetString("request_id"),
	}).WithError(err).Error("operation failed")

	c.AbortWithStatusJSON(status, ErrorResponse{Error: kind, Message: err.Error()})
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: "validation", Message: message})
}
