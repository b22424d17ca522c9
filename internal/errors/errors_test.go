package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"config", ConfigError("NEO4J_URI is not set"), ErrorTypeConfig},
		{"validation", ValidationErrorf("invalid year %q", "x"), ErrorTypeValidation},
		{"database", DatabaseError(stderrors.New("connection reset"), "query failed"), ErrorTypeDatabase},
		{"database deadline", DatabaseError(context.DeadlineExceeded, "query failed"), ErrorTypeTimeout},
		{"external deadline", ExternalError(fmt.Errorf("get: %w", context.DeadlineExceeded), "backend"), ErrorTypeTimeout},
		{"external", ExternalErrorf(stderrors.New("502"), "backend %s", "dimensions"), ErrorTypeExternal},
		{"plain deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"plain", stderrors.New("boom"), ErrorTypeInternal},
		{"wrapped typed", fmt.Errorf("outer: %w", ConfigError("missing")), ErrorTypeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKindAndFatal(t *testing.T) {
	assert.Equal(t, "config", Kind(ConfigError("x")))
	assert.Equal(t, "timeout", TimeoutError(nil, "deadline").Kind())
	assert.True(t, IsFatal(ConfigError("x")))
	assert.False(t, IsFatal(ValidationError("x")))
	assert.False(t, IsFatal(stderrors.New("x")))
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("socket closed")
	err := DatabaseError(cause, "query failed").WithContext("query", "schema_labels")

	assert.Equal(t, "query failed: socket closed", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.DetailedString(), "schema_labels")
	assert.Nil(t, Wrap(nil, ErrorTypeDatabase, SeverityHigh, "unused"))

	e, ok := AsError(fmt.Errorf("outer: %w", err))
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeDatabase, e.Type)
}
