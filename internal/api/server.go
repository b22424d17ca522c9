// Package api exposes the schema, graph, dashboard and business-chain
// operations over HTTP, plus the summary stream.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/broadcast"
	"github.com/rohankatakam/chaindash/internal/chain"
	"github.com/rohankatakam/chaindash/internal/dashboard"
	"github.com/rohankatakam/chaindash/internal/explorer"
	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/rohankatakam/chaindash/internal/schema"
	"github.com/sirupsen/logrus"
)

// SchemaReader is the part of schema.Introspector the routes need
type SchemaReader interface {
	Schema(ctx context.Context) (*schema.Schema, error)
	Properties(ctx context.Context) ([]string, error)
	Years(ctx context.Context) ([]int, error)
}

// GraphFetcher returns filtered subgraphs
type GraphFetcher interface {
	Fetch(ctx context.Context, req explorer.Request) (*explorer.GraphData, error)
}

// ChainReporter is the part of chain.Counter the routes need
type ChainReporter interface {
	Counts(ctx context.Context, filter graph.Filter) (*chain.Counts, error)
	Diagnostics(ctx context.Context) (*chain.Diagnostics, error)
	Integrity(ctx context.Context, filter graph.Filter) (*chain.Integrity, error)
}

// HealthChecker reports graph connectivity
type HealthChecker interface {
	HealthCheck(ctx context.Context) graph.Status
}

// Deps wires the server. Hub and Publisher may be nil: a fresh hub is
// created and used as its own publisher.
type Deps struct {
	Schema    SchemaReader
	Graph     GraphFetcher
	Chain     ChainReporter
	Dashboard dashboard.Source
	Health    HealthChecker
	Hub       *broadcast.Hub
	Publisher broadcast.Publisher
	Logger    *logrus.Logger

	RequestTimeout time.Duration
	CORSOrigins    []string
}

// DefaultHeartbeat is the idle interval between stream keep-alive comments
const DefaultHeartbeat = 15 * time.Second

// Server holds the route dependencies
type Server struct {
	deps      Deps
	logger    *logrus.Logger
	hub       *broadcast.Hub
	publisher broadcast.Publisher
	heartbeat time.Duration
}

// NewServer creates a server from deps
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Hub == nil {
		deps.Hub = broadcast.NewHub()
	}
	if deps.Publisher == nil {
		deps.Publisher = deps.Hub
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 30 * time.Second
	}
	return &Server{
		deps:      deps,
		logger:    deps.Logger,
		hub:       deps.Hub,
		publisher: deps.Publisher,
		heartbeat: DefaultHeartbeat,
	}
}

// Router builds the gin engine with middleware and all routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger), Metrics(), CORS(s.deps.CORSOrigins))
	SetupRoutes(router, s)
	return router
}
