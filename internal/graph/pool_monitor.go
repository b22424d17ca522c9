package graph

import (
	"context"
	"time"
)

// PoolStats describes the configured pool. The Go driver does not expose
// live pool occupancy; use the Neo4j metrics endpoint for that.
type PoolStats struct {
	MaxPoolSize int    `json:"maxPoolSize"`
	Database    string `json:"database"`
	Connected   bool   `json:"connected"`
}

// Stats returns static pool information and whether a driver exists yet
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		MaxPoolSize: p.cfg.MaxPoolSize,
		Database:    p.cfg.Database,
		Connected:   p.driver != nil,
	}
}

// WatchHealth runs periodic health checks and logs status transitions
// until ctx is cancelled.
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	go pool.WatchHealth(ctx, 30*time.Second)
func (p *Pool) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info("starting pool health monitor", "interval", interval)

	last := Status("")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pool health monitor stopped")
			return
		case <-ticker.C:
			status := p.HealthCheck(ctx)
			setConnectedGauge(status)
			if status != last {
				p.logger.Info("pool health changed", "from", string(last), "to", string(status))
				last = status
			}
		}
	}
}

// RecommendedPoolSize returns a pool size for the expected request concurrency.
// Each dashboard request fans out to roughly a dozen concurrent queries.
func RecommendedPoolSize(expectedConcurrentRequests int) int {
	recommended := expectedConcurrentRequests * 12

	if recommended < 10 {
		return 10
	}
	if recommended > 100 {
		return 100
	}
	return recommended
}
