package main

import (
	"bytes"
	"testing"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteConfig_MasksPassword(t *testing.T) {
	c := config.Default()
	c.Neo4j.URI = "neo4j://localhost:7687"
	c.Neo4j.Password = "s3cret"

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, c))

	assert.NotContains(t, buf.String(), "s3cret")

	var decoded config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "********", decoded.Neo4j.Password)
	assert.Equal(t, "neo4j://localhost:7687", decoded.Neo4j.URI)
	assert.Equal(t, config.SourceGraph, decoded.Dashboard.Source)
	assert.Equal(t, "s3cret", c.Neo4j.Password)
}
