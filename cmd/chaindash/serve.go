package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rohankatakam/chaindash/internal/api"
	"github.com/rohankatakam/chaindash/internal/backend"
	"github.com/rohankatakam/chaindash/internal/broadcast"
	"github.com/rohankatakam/chaindash/internal/chain"
	"github.com/rohankatakam/chaindash/internal/dashboard"
	apperrors "github.com/rohankatakam/chaindash/internal/errors"
	"github.com/rohankatakam/chaindash/internal/explorer"
	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/rohankatakam/chaindash/internal/schema"
	"github.com/spf13/cobra"
)

var (
	port                int
	healthInterval      time.Duration
	expectedConcurrency int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Start the HTTP API on server.port (SERVER_PORT). The dashboard source
is chosen by dashboard.source (DASHBOARD_SOURCE): graph, counts or backend.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().DurationVar(&healthInterval, "health-interval", 30*time.Second, "graph health check interval")
	serveCmd.Flags().IntVar(&expectedConcurrency, "expected-concurrency", 4, "concurrent dashboard requests to size the pool for")
}

func runServe(cmd *cobra.Command, args []string) error {
	res := cfg.Validate()
	if res.HasErrors() {
		return apperrors.ConfigError(strings.TrimSpace(res.Error()))
	}
	for _, w := range res.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := graph.NewPool(cfg.Neo4j)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := pool.Close(closeCtx); err != nil {
			logger.WithError(err).Warn("Failed to close graph pool")
		}
	}()

	if rec := graph.RecommendedPoolSize(expectedConcurrency); cfg.Neo4j.MaxPoolSize < rec {
		logger.WithField("max_pool_size", cfg.Neo4j.MaxPoolSize).
			WithField("recommended", rec).
			Warn("Neo4j pool may be too small for the expected concurrency")
	}
	go pool.WatchHealth(ctx, healthInterval)

	introspector := schema.NewIntrospector(pool)
	counter := chain.NewCounter(pool)

	deps := dashboard.Deps{Runner: pool, Counter: counter, Years: introspector}
	if cfg.Backend.BaseURL != "" {
		client, err := backend.NewClient(cfg.Backend)
		if err != nil {
			return err
		}
		deps.Backend = client
	}
	source, err := dashboard.NewSource(cfg.Dashboard.Source, deps)
	if err != nil {
		return err
	}

	hub := broadcast.NewHub()
	var publisher broadcast.Publisher = hub
	if cfg.Broadcast.RedisAddr != "" {
		relay, err := broadcast.NewRedisRelay(ctx, cfg.Broadcast.RedisAddr, cfg.Broadcast.Channel, hub)
		if err != nil {
			return err
		}
		defer relay.Close()
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.WithError(err).Error("Summary relay stopped, summaries reach this replica only")
			}
		}()
		publisher = relay
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(api.Deps{
		Schema:         introspector,
		Graph:          explorer.NewFetcher(pool, introspector),
		Chain:          counter,
		Dashboard:      source,
		Health:         pool,
		Hub:            hub,
		Publisher:      publisher,
		Logger:         logger,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSOrigins:    cfg.Server.CORSOrigins,
	})

	if port == 0 {
		port = cfg.Server.Port
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).
			WithField("source", source.Name()).
			WithField("database", pool.Database()).
			Info("Chaindash API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	// Open summary streams end when their subscription closes
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
