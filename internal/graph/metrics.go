package graph

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rohankatakam/chaindash/internal/errors"
)

var (
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chaindash",
		Subsystem: "graph",
		Name:      "query_duration_seconds",
		Help:      "Duration of graph read queries by operation.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"operation"})

	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chaindash",
		Subsystem: "graph",
		Name:      "query_errors_total",
		Help:      "Failed graph read queries by operation and error kind.",
	}, []string{"operation", "kind"})

	connected = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "chaindash",
		Subsystem: "graph",
		Name:      "connected",
		Help:      "1 when the last health check reached the graph database.",
	})
)

func observeQuery(q Query, duration time.Duration, err error) {
	op := q.Operation
	if op == "" {
		op = "unknown"
	}
	queryDuration.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		queryErrors.WithLabelValues(op, errors.Kind(errors.DatabaseError(err, q.Name))).Inc()
	}
}

func setConnectedGauge(status Status) {
	if status == StatusConnected {
		connected.Set(1)
		return
	}
	connected.Set(0)
}
