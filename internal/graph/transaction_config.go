package graph

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// TransactionConfig defines timeout and metadata for a class of queries.
// Metadata shows up in Neo4j's query.log, which makes slow dashboard
// queries easy to attribute.
type TransactionConfig struct {
	Timeout  time.Duration
	Metadata map[string]any
}

// DefaultTransactionConfigs returns the per-operation settings
func DefaultTransactionConfigs() map[string]TransactionConfig {
	return map[string]TransactionConfig{
		// Label / relationship type / property / year introspection
		"schema_query": {
			Timeout: 10 * time.Second,
			Metadata: map[string]any{
				"operation": "schema_query",
				"type":      "read",
			},
		},

		// Filtered subgraph for the visual explorer
		"graph_fetch": {
			Timeout: 30 * time.Second,
			Metadata: map[string]any{
				"operation": "graph_fetch",
				"type":      "read",
			},
		},

		// Multi-hop dimension, insight and outcome traversals
		"dashboard_query": {
			Timeout: 20 * time.Second,
			Metadata: map[string]any{
				"operation": "dashboard_query",
				"type":      "read",
			},
		},

		// Business chain counts, diagnostics and integrity
		"chain_count": {
			Timeout: 20 * time.Second,
			Metadata: map[string]any{
				"operation": "chain_count",
				"type":      "read",
			},
		},

		"health_check": {
			Timeout: 5 * time.Second,
			Metadata: map[string]any{
				"operation": "health_check",
				"type":      "read",
			},
		},
	}
}

// AsNeo4jConfig converts to Neo4j transaction config functions
func (tc TransactionConfig) AsNeo4jConfig() []func(*neo4j.TransactionConfig) {
	configs := []func(*neo4j.TransactionConfig){}

	if tc.Timeout > 0 {
		configs = append(configs, neo4j.WithTxTimeout(tc.Timeout))
	}
	if len(tc.Metadata) > 0 {
		configs = append(configs, neo4j.WithTxMetadata(tc.Metadata))
	}

	return configs
}

// GetConfigForOperation retrieves the transaction config for operation,
// falling back to a 30s read config for unknown names
func GetConfigForOperation(operation string) TransactionConfig {
	if config, ok := DefaultTransactionConfigs()[operation]; ok {
		return config
	}

	return TransactionConfig{
		Timeout: 30 * time.Second,
		Metadata: map[string]any{
			"operation": operation,
			"type":      "read",
		},
	}
}

// WithCustomMetadata returns a copy of the config with one more metadata entry
func (tc TransactionConfig) WithCustomMetadata(key string, value any) TransactionConfig {
	newConfig := TransactionConfig{
		Timeout:  tc.Timeout,
		Metadata: make(map[string]any, len(tc.Metadata)+1),
	}
	for k, v := range tc.Metadata {
		newConfig.Metadata[k] = v
	}
	newConfig.Metadata[key] = value
	return newConfig
}

// WithTimeout returns a copy of the config with a different timeout
func (tc TransactionConfig) WithTimeout(timeout time.Duration) TransactionConfig {
	return TransactionConfig{
		Timeout:  timeout,
		Metadata: tc.Metadata,
	}
}
