package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/rohankatakam/chaindash/internal/graph/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake() *graphtest.Runner {
	return graphtest.NewRunner().
		On("schema_labels",
			graph.Record{"label": "SectorObjective"},
			graph.Record{"label": "Document"},
			graph.Record{"label": "EntityRisk"},
		).
		On("schema_relationship_types",
			graph.Record{"relationshipType": "REALIZED_VIA"},
			graph.Record{"relationshipType": "CASCADES_TO"},
		).
		On("schema_properties",
			graph.Record{"key": "name"},
			graph.Record{"key": "embedding"},
			graph.Record{"key": "Year"},
			graph.Record{"key": "name"},
		).
		On("schema_years",
			graph.Record{"year": int64(2026)},
			graph.Record{"year": nil},
			graph.Record{"year": int64(2024)},
			graph.Record{"year": int64(2026)},
		)
}

func TestIntrospector_Labels(t *testing.T) {
	labels, err := NewIntrospector(newFake()).Labels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"EntityRisk", "SectorObjective"}, labels)
}

func TestIntrospector_Properties(t *testing.T) {
	fake := newFake()
	keys, err := NewIntrospector(fake).WithSampleSize(50).Properties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Year", "name"}, keys)
	assert.Equal(t, 50, fake.MustParam("schema_properties", "sample"))
}

func TestIntrospector_Years(t *testing.T) {
	years, err := NewIntrospector(newFake()).Years(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2024, 2026}, years)
}

func TestIntrospector_SchemaIsIdempotent(t *testing.T) {
	in := NewIntrospector(newFake())

	first, err := in.Schema(context.Background())
	require.NoError(t, err)
	second, err := in.Schema(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"CASCADES_TO", "REALIZED_VIA"}, first.RelationshipTypes)
}

func TestIntrospector_SchemaPropagatesErrors(t *testing.T) {
	fake := newFake().Fail("schema_relationship_types", errors.New("connection reset"))
	_, err := NewIntrospector(fake).Schema(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}
