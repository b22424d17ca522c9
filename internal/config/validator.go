package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rohankatakam/chaindash/internal/errors"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	if len(vr.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}
	return sb.String()
}

// Validate checks the settings the server cannot run without
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateNeo4j(result)
	c.validateDashboard(result)
	c.validateServer(result)

	return result
}

// ValidateNeo4j returns a ConfigError naming every missing graph credential, or nil
func (c *Neo4jConfig) ValidateNeo4j() error {
	var missing []string
	if c.URI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if c.Username == "" {
		missing = append(missing, "NEO4J_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return errors.ConfigErrorf("missing graph database credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) validateNeo4j(result *ValidationResult) {
	if err := c.Neo4j.ValidateNeo4j(); err != nil {
		result.AddError("%s", err.Error())
		return
	}
	if u, err := url.Parse(c.Neo4j.URI); err != nil || u.Scheme == "" {
		result.AddError("NEO4J_URI is not a valid URI: %q", c.Neo4j.URI)
	}
	if c.Neo4j.Database == "" {
		result.AddWarning("neo4j.database is empty, the server default database will be used")
	}
}

func (c *Config) validateDashboard(result *ValidationResult) {
	switch c.Dashboard.Source {
	case SourceGraph, SourceCounts:
	case SourceBackend:
		if c.Backend.BaseURL == "" {
			result.AddError("dashboard.source=backend requires BACKEND_BASE_URL")
		}
	default:
		result.AddError("dashboard.source must be one of %s, %s, %s (got %q)",
			SourceGraph, SourceCounts, SourceBackend, c.Dashboard.Source)
	}
}

func (c *Config) validateServer(result *ValidationResult) {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		result.AddError("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.RequestTimeout <= 0 {
		result.AddWarning("server.request_timeout is not positive, requests will have no deadline")
	}
}
