package graph

import (
	"context"
	"testing"
	"time"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_MissingCredentials(t *testing.T) {
	_, err := NewPool(config.Neo4jConfig{URI: "bolt://localhost:7687"})
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.Classify(err))
	assert.True(t, errors.IsFatal(err))
}

func TestNewPool_DefaultsPoolSize(t *testing.T) {
	p, err := NewPool(config.Neo4jConfig{URI: "bolt://localhost:7687", Username: "neo4j", Password: "pw", Database: "neo4j"})
	require.NoError(t, err)
	assert.Equal(t, 50, p.Stats().MaxPoolSize)
	assert.False(t, p.Stats().Connected)
	assert.Equal(t, "neo4j", p.Database())
}

func TestPool_HealthCheckUnreachable(t *testing.T) {
	p, err := NewPool(config.Neo4jConfig{URI: "bolt://127.0.0.1:1", Username: "neo4j", Password: "pw", Database: "neo4j"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.Equal(t, StatusDisconnected, p.HealthCheck(ctx))
}

func TestPool_InvalidURIIsConfigError(t *testing.T) {
	p, err := NewPool(config.Neo4jConfig{URI: "ftp://nowhere", Username: "neo4j", Password: "pw"})
	require.NoError(t, err)

	_, err = p.Driver(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeConfig, errors.Classify(err))
	assert.Equal(t, StatusError, p.HealthCheck(context.Background()))
}

func TestPool_CloseIsIdempotent(t *testing.T) {
	p, err := NewPool(config.Neo4jConfig{URI: "bolt://127.0.0.1:1", Username: "neo4j", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))

	_, err = p.Run(context.Background(), Query{Name: "after_close", Operation: "health_check", Cypher: "RETURN 1"})
	assert.Error(t, err)
}

func TestGetConfigForOperation(t *testing.T) {
	cfg := GetConfigForOperation("graph_fetch").WithCustomMetadata("query", "graph_source_nodes")
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "graph_source_nodes", cfg.Metadata["query"])
	assert.Len(t, cfg.AsNeo4jConfig(), 2)

	unknown := GetConfigForOperation("nope")
	assert.Equal(t, 30*time.Second, unknown.Timeout)
	assert.Equal(t, "nope", unknown.Metadata["operation"])

	assert.Equal(t, 10, RecommendedPoolSize(0))
	assert.Equal(t, 100, RecommendedPoolSize(50))
}
