package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/rohankatakam/chaindash/internal/graph/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainFake() *graphtest.Runner {
	return graphtest.NewRunner().
		On("chain_node_counts",
			graph.Record{"label": "EntityCapability", "count": int64(12)},
			graph.Record{"label": "EntityRisk", "count": int64(4)},
			graph.Record{"label": "EntityProject", "count": int64(0)},
		).
		On("chain_rel_counts",
			graph.Record{"type": "MONITORED_BY", "count": int64(5)},
			graph.Record{"type": "CLOSE_GAPS", "count": int64(2)},
		).
		On("chain_pair_counts",
			graph.Record{"source": "EntityCapability", "type": "MONITORED_BY", "target": "EntityRisk", "count": int64(3)},
			graph.Record{"source": "EntityRisk", "type": "MONITORED_BY", "target": "EntityCapability", "count": int64(2)},
			graph.Record{"source": "EntityProject", "type": "CLOSE_GAPS", "target": "EntityCapability", "count": int64(2)},
			graph.Record{"source": "EntityCapability", "type": "PARENT_OF", "target": "EntityCapability", "count": int64(6)},
		).
		On("chain_level_breakdown",
			graph.Record{"label": "EntityCapability", "level": "L1", "count": int64(3)},
			graph.Record{"label": "EntityCapability", "level": "L2", "count": int64(9)},
		)
}

func TestCounts(t *testing.T) {
	counts, err := NewCounter(chainFake()).Counts(context.Background(), graph.Filter{})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"EntityCapability": 12, "EntityRisk": 4}, counts.NodeCounts)
	assert.NotContains(t, counts.NodeCounts, "EntityProject", "zero counts are omitted")
	assert.Equal(t, int64(5), counts.RelCounts["MONITORED_BY"])

	assert.Equal(t, int64(3), counts.SpecificRelCounts["EntityCapability-[MONITORED_BY]->EntityRisk"])
	assert.Equal(t, int64(2), counts.SpecificRelCounts["EntityRisk-[MONITORED_BY]->EntityCapability"])
	assert.Equal(t, map[string]map[string]int64{"EntityCapability": {"L1": 3, "L2": 9}}, counts.LevelBreakdown)
}

func TestCounts_PairCountsAreSymmetric(t *testing.T) {
	counts, err := NewCounter(chainFake()).Counts(context.Background(), graph.Filter{})
	require.NoError(t, err)

	// 3 edges one way and 2 the other
	assert.Equal(t, int64(5), counts.PairCounts["EntityCapability-EntityRisk"])
	assert.Equal(t, int64(5), counts.PairCounts["EntityRisk-EntityCapability"])
	assert.Equal(t, int64(2), counts.PairCounts["EntityCapability-EntityProject"])
	assert.Equal(t, int64(6), counts.PairCounts["EntityCapability-EntityCapability"])
	assert.NotContains(t, counts.PairCounts, "EntityRisk-EntityProject")

	for key, n := range counts.PairCounts {
		assert.Positive(t, n, key)
	}
}

func TestCounts_AppliesTemporalFilter(t *testing.T) {
	fake := graphtest.NewRunner()
	_, err := NewCounter(fake).Counts(context.Background(), graph.Filter{Years: []int{2025}, Quarter: "2"})
	require.NoError(t, err)

	require.Len(t, fake.Calls(), 4)
	for _, q := range fake.Calls() {
		assert.Equal(t, "chain_count", q.Operation)
		assert.Equal(t, []int{2025}, q.Params["p0"], q.Name)
		assert.Equal(t, []string{"Q2", "2", "2.0"}, q.Params["p1"], q.Name)
	}
	assert.Contains(t, fake.Called("chain_pair_counts")[0].Cypher, "coalesce(a.year, a.Year)")
}

func TestCounts_PropagatesErrors(t *testing.T) {
	fake := chainFake().Fail("chain_level_breakdown", errors.New("timeout"))
	_, err := NewCounter(fake).Counts(context.Background(), graph.Filter{})
	assert.Error(t, err)
}

func TestLinkStatus(t *testing.T) {
	pairs := map[string]int64{"A-B": 1, "B-A": 1}
	assert.Equal(t, StatusActive, LinkStatus(pairs, "A", "B"))
	assert.Equal(t, StatusActive, LinkStatus(pairs, "B", "A"))
	assert.Equal(t, StatusBroken, LinkStatus(pairs, "A", "C"))
}

func TestIntegrity(t *testing.T) {
	in, err := NewCounter(chainFake()).Integrity(context.Background(), graph.Filter{})
	require.NoError(t, err)

	assert.Equal(t, len(Steps), in.TotalSteps)
	assert.Equal(t, 2, in.ActiveSteps)
	assert.Equal(t, 28.6, in.Score)
	assert.Equal(t, int64(16), in.TotalNodes)
	assert.Equal(t, int64(7), in.TotalRelationships)

	for _, s := range in.Steps {
		if s.Relationship == "CLOSE_GAPS" {
			assert.Equal(t, StatusActive, s.Status)
			assert.Equal(t, int64(2), s.Count)
		}
		if s.Relationship == "EXECUTES" {
			assert.Equal(t, StatusBroken, s.Status)
		}
	}
}

func TestDiagnostics(t *testing.T) {
	fake := chainFake().
		On("chain_orphans", graph.Record{"label": "EntityVendor", "count": int64(3)}).
		On("chain_year_coverage",
			graph.Record{"label": "EntityRisk", "year": int64(2025), "count": int64(3)},
			graph.Record{"label": "EntityRisk", "year": nil, "count": int64(1)},
		)

	d, err := NewCounter(fake).Diagnostics(context.Background())
	require.NoError(t, err)

	assert.Len(t, d.Relationships, len(Steps))
	for _, rc := range d.Relationships {
		switch rc.Type {
		case "MONITORED_BY":
			assert.True(t, rc.Present)
			assert.Equal(t, int64(5), rc.Count)
		case "AUTOMATION":
			assert.False(t, rc.Present)
		}
	}
	assert.Equal(t, map[string]int64{"EntityVendor": 3}, d.OrphanCounts)
	assert.Equal(t, map[string]map[string]int64{"EntityRisk": {"2025": 3}}, d.YearCoverage)
	assert.Equal(t, map[string]int64{"EntityRisk": 1}, d.MissingYear)
}
