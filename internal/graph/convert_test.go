package graph

import (
	"math"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertRecordStripsEmbeddings(t *testing.T) {
	rec := &neo4j.Record{
		Keys: []string{"n", "r", "total"},
		Values: []any{
			dbtype.Node{
				ElementId: "4:abc:1",
				Labels:    []string{"EntityProject"},
				Props: map[string]any{
					"name":            "Portal",
					"budget":          int64(1200),
					"embedding":       []any{0.1, 0.2},
					"title_embedding": []any{0.3},
				},
			},
			dbtype.Relationship{
				ElementId:      "5:abc:9",
				StartElementId: "4:abc:1",
				EndElementId:   "4:abc:2",
				Type:           "CLOSE_GAPS",
				Props:          map[string]any{"Embedding": []any{1.0}, "weight": 2.5},
			},
			int64(7),
		},
	}

	out := ConvertRecord(rec)

	node, ok := out["n"].(Node)
	require.True(t, ok)
	assert.Equal(t, "4:abc:1", node.ID)
	assert.Equal(t, map[string]any{"name": "Portal", "budget": int64(1200)}, node.Properties)

	rel, ok := out["r"].(Relationship)
	require.True(t, ok)
	assert.Equal(t, "CLOSE_GAPS", rel.Type)
	assert.Equal(t, "4:abc:2", rel.EndID)
	assert.NotContains(t, rel.Properties, "Embedding")

	assert.Equal(t, int64(7), out["total"])
}

func TestToPlain(t *testing.T) {
	assert.Nil(t, ToPlain(math.NaN()))
	assert.Equal(t, []any{int64(1), "x"}, ToPlain([]any{int64(1), "x"}))
	assert.Equal(t, map[string]any{"a": 1.5}, ToPlain(map[string]any{"a": 1.5, "vector_embedding": []any{}}))
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{int64(42), 42},
		{3.5, 3.5},
		{"87.5%", 87.5},
		{" 1,200 ", 1200},
		{"n/a", 0},
		{nil, 0},
		{math.Inf(1), 0},
		{true, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AsFloat(tt.in), "%v", tt.in)
	}
}

func TestAsIntAndString(t *testing.T) {
	assert.Equal(t, int64(12), AsInt(12.9))
	assert.Equal(t, int64(2025), AsInt("2025"))
	assert.Equal(t, "3", AsString(int64(3)))
	assert.Equal(t, "", AsString(nil))
}

func TestColorFor(t *testing.T) {
	assert.Equal(t, "#3B82F6", ColorFor(LabelEntityProject))
	assert.Equal(t, FallbackColor, ColorFor("Unknown"))
	assert.Equal(t, "EntityRisk", PrimaryLabel([]string{"Archived", "EntityRisk"}))
}
