package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
)

// Record is one converted result row, keyed by the RETURN aliases
type Record map[string]any

// Query is a named, parameterized read query.
// Operation selects the timeout and metadata from DefaultTransactionConfigs.
type Query struct {
	Name      string
	Operation string
	Cypher    string
	Params    map[string]any
}

// Runner executes read queries. Pool is the production implementation;
// tests substitute an in-memory fake.
type Runner interface {
	Run(ctx context.Context, q Query) ([]Record, error)
}

// Status is the connectivity state reported by the health endpoint
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// Pool owns the single driver (and its connection pool) for the process.
// It is constructed once at startup and passed to every component.
// The driver itself is created on first use.
type Pool struct {
	cfg     config.Neo4jConfig
	logger  *slog.Logger
	monitor *TimeoutMonitor

	mu     sync.Mutex
	driver neo4j.DriverWithContext
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// NewPool validates credentials and returns a pool without connecting.
// Missing credentials produce a fatal ConfigError.
func NewPool(cfg config.Neo4jConfig) (*Pool, error) {
	if err := cfg.ValidateNeo4j(); err != nil {
		return nil, err
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 50
	}
	return &Pool{
		cfg:     cfg,
		logger:  slog.Default().With("component", "neo4j"),
		monitor: NewTimeoutMonitor(),
	}, nil
}

// Driver returns the memoized driver, creating and verifying it on first call.
// A failed creation is not memoized, so the next request tries again.
func (p *Pool) Driver(ctx context.Context) (neo4j.DriverWithContext, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.InternalError("graph pool is closed")
	}
	if p.driver != nil {
		return p.driver, nil
	}

	maxPool := p.cfg.MaxPoolSize
	driver, err := neo4j.NewDriverWithContext(p.cfg.URI,
		neo4j.BasicAuth(p.cfg.Username, p.cfg.Password, ""),
		func(c *neo4j.Config) {
			c.MaxConnectionPoolSize = maxPool
			c.ConnectionAcquisitionTimeout = 30 * time.Second
			c.MaxConnectionLifetime = time.Hour
			c.ConnectionLivenessCheckTimeout = 5 * time.Second
			c.SocketConnectTimeout = 5 * time.Second
			c.SocketKeepalive = true
		})
	if err != nil {
		return nil, errors.ConfigErrorf("invalid graph database uri %q: %v", p.cfg.URI, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(context.WithoutCancel(ctx))
		return nil, errors.DatabaseErrorf(err, "failed to connect to neo4j at %s", p.cfg.URI)
	}

	p.logger.Info("neo4j driver connected",
		"uri", p.cfg.URI,
		"user", p.cfg.Username,
		"database", p.cfg.Database,
		"max_pool_size", maxPool)

	p.driver = driver
	return driver, nil
}

// Session opens a read session on the configured database.
// The caller must Close it on every path, normally with defer.
func (p *Pool) Session(ctx context.Context) (neo4j.SessionWithContext, error) {
	driver, err := p.Driver(ctx)
	if err != nil {
		return nil, err
	}
	return driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: p.cfg.Database,
		AccessMode:   neo4j.AccessModeRead,
	}), nil
}

// Run executes q in its own auto-commit session and returns converted records.
// The session is closed on success, query error and cancellation alike.
func (p *Pool) Run(ctx context.Context, q Query) ([]Record, error) {
	txConfig := GetConfigForOperation(q.Operation).WithCustomMetadata("query", q.Name)

	queryCtx := ctx
	if txConfig.Timeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, txConfig.Timeout)
		defer cancel()
	}

	var records []Record
	var runErr error
	duration := p.monitor.MonitorQueryExecution(queryCtx, q.Name, txConfig.Timeout, func() error {
		records, runErr = p.run(queryCtx, q, txConfig)
		return runErr
	})
	observeQuery(q, duration, runErr)

	if runErr != nil {
		// Config and closed-pool errors keep their type
		if _, ok := errors.AsError(runErr); ok {
			return nil, runErr
		}
		return nil, errors.DatabaseErrorf(runErr, "query %s failed", q.Name)
	}
	return records, nil
}

func (p *Pool) run(ctx context.Context, q Query, txConfig TransactionConfig) ([]Record, error) {
	session, err := p.Session(ctx)
	if err != nil {
		return nil, err
	}
	// Closing must not be skipped because the request context was cancelled
	defer session.Close(context.WithoutCancel(ctx))

	result, err := session.Run(ctx, q.Cypher, q.Params, txConfig.AsNeo4jConfig()...)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0)
	for result.Next(ctx) {
		records = append(records, ConvertRecord(result.Record()))
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	p.logger.Debug("query executed", "query", q.Name, "record_count", len(records))
	return records, nil
}

// HealthCheck reports connectivity without returning an error:
// bad configuration is "error", an unreachable server is "disconnected".
func (p *Pool) HealthCheck(ctx context.Context) Status {
	txConfig := GetConfigForOperation("health_check")
	ctx, cancel := context.WithTimeout(ctx, txConfig.Timeout)
	defer cancel()

	driver, err := p.Driver(ctx)
	if err != nil {
		if errors.Classify(err) == errors.ErrorTypeConfig {
			return StatusError
		}
		p.logger.Warn("neo4j health check failed", "error", err)
		return StatusDisconnected
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		p.logger.Warn("neo4j health check failed", "error", err)
		return StatusDisconnected
	}
	return StatusConnected
}

// Close tears the driver down exactly once; later calls return the first result
func (p *Pool) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		p.closed = true
		if p.driver == nil {
			return
		}
		if err := p.driver.Close(ctx); err != nil {
			p.closeErr = fmt.Errorf("failed to close neo4j driver: %w", err)
			return
		}
		p.driver = nil
		p.logger.Info("neo4j driver closed")
	})
	return p.closeErr
}

// Database returns the configured database name
func (p *Pool) Database() string {
	return p.cfg.Database
}
