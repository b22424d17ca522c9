package graph

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"
)

// TimeoutMonitor logs query durations and warns when a query gets close to its deadline
type TimeoutMonitor struct {
	logger       *slog.Logger
	warningRatio float64 // Warn when execution reaches this share of the timeout
}

// NewTimeoutMonitor creates a monitor with default settings
func NewTimeoutMonitor() *TimeoutMonitor {
	return &TimeoutMonitor{
		logger:       slog.Default().With("component", "timeout_monitor"),
		warningRatio: 0.8,
	}
}

// MonitorQueryExecution runs fn and logs the outcome relative to timeout.
// A zero timeout disables the approaching-deadline warning.
// Returns the duration the query took.
func (tm *TimeoutMonitor) MonitorQueryExecution(
	ctx context.Context,
	operation string,
	timeout time.Duration,
	fn func() error,
) time.Duration {
	start := time.Now()
	err := fn()
	duration := time.Since(start)

	switch {
	case err != nil && (stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded):
		tm.logger.Error("query timed out",
			"operation", operation,
			"duration_seconds", duration.Seconds(),
			"timeout_seconds", timeout.Seconds(),
			"error", err)
	case err != nil && ctx.Err() == context.Canceled:
		tm.logger.Info("query cancelled",
			"operation", operation,
			"duration_seconds", duration.Seconds())
	case err != nil:
		tm.logger.Warn("query failed",
			"operation", operation,
			"duration_seconds", duration.Seconds(),
			"error", err)
	case timeout > 0 && duration >= time.Duration(float64(timeout)*tm.warningRatio):
		tm.logger.Warn("query approaching timeout",
			"operation", operation,
			"duration_seconds", duration.Seconds(),
			"timeout_seconds", timeout.Seconds(),
			"percent_used", duration.Seconds()/timeout.Seconds()*100)
	default:
		tm.logger.Debug("query completed",
			"operation", operation,
			"duration_seconds", duration.Seconds())
	}

	return duration
}
