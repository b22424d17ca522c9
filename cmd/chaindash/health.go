package main

import (
	"fmt"

	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check connectivity to Neo4j",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		pool, err := graph.NewPool(cfg.Neo4j)
		if err != nil {
			return err
		}
		defer pool.Close(ctx)

		status := pool.HealthCheck(ctx)
		stats := pool.Stats()
		fmt.Printf("Neo4j: %s (database %s, max pool size %d)\n", status, stats.Database, stats.MaxPoolSize)
		if status != graph.StatusConnected {
			return fmt.Errorf("neo4j is %s", status)
		}
		return nil
	},
}
