package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLabelFilter(t *testing.T) {
	known := []string{"EntityProject", "EntityRisk", "SectorObjective", "Document"}

	t.Run("all known labels use the pattern", func(t *testing.T) {
		f := NewLabelFilter([]string{"SectorObjective", "EntityRisk", "EntityProject"}, known)
		assert.True(t, f.Pattern())
		assert.False(t, f.Empty())
	})

	t.Run("subset uses the explicit list", func(t *testing.T) {
		f := NewLabelFilter([]string{"EntityProject"}, known)
		assert.False(t, f.Pattern())
		assert.Equal(t, []string{"EntityProject"}, f.Labels())
	})

	t.Run("non-domain labels are dropped", func(t *testing.T) {
		f := NewLabelFilter([]string{"Document", "Person"}, known)
		assert.True(t, f.Empty())
	})

	t.Run("unknown store never uses the pattern", func(t *testing.T) {
		f := NewLabelFilter([]string{"EntityProject"}, nil)
		assert.False(t, f.Pattern())
	})
}

func TestLabelFilterPathsAgree(t *testing.T) {
	known := []string{"EntityProject", "EntityRisk", "SectorObjective"}
	pattern := NewLabelFilter(known, known)
	explicit := NewLabelFilter(known, append(known, "EntityVendor"))
	assert.True(t, pattern.Pattern())
	assert.False(t, explicit.Pattern())

	cases := [][]string{
		{"EntityProject"},
		{"SectorObjective", "Extra"},
		{"Document"},
		{},
	}
	for _, labels := range cases {
		// Labels that exist in the store are judged identically by both paths
		assert.Equal(t, explicit.Allows(labels), pattern.Allows(labels), labels)
	}
}

func TestLabelFilterPredicate(t *testing.T) {
	b := NewCypherBuilder()
	f := NewLabelFilter([]string{"EntityRisk"}, []string{"EntityRisk", "EntityProject"})
	assert.Equal(t, "any(l IN labels(n) WHERE l IN $p0)", f.Predicate("n", b))
	assert.Equal(t, []string{"EntityRisk"}, b.Params()["p0"])

	all := NewLabelFilter([]string{"EntityRisk"}, []string{"EntityRisk"})
	assert.Equal(t, DomainPredicate("m"), all.Predicate("m", b))
}

func TestFilterPredicates(t *testing.T) {
	b := NewCypherBuilder()
	clauses := Filter{Years: []int{2025}, Quarter: "Q3"}.Predicates("n", b)
	assert.Equal(t, []string{
		"toInteger(coalesce(n.year, n.Year)) IN $p0",
		"toUpper(toString(coalesce(n.quarter, n.Quarter))) IN $p1",
	}, clauses)

	b = NewCypherBuilder()
	clauses = Filter{Quarter: "Q9"}.Predicates("n", b)
	assert.Empty(t, clauses, "malformed quarter falls back to no filter")
}

func TestWhere(t *testing.T) {
	assert.Equal(t, "", Where("", " "))
	assert.Equal(t, "WHERE a AND b", Where("a", "", "b"))
}

func TestValidIdentifiers(t *testing.T) {
	assert.Equal(t, []string{"REALIZED_VIA", "EntityRisk"},
		ValidIdentifiers([]string{"REALIZED_VIA", "bad-type", "EntityRisk", "x) DETACH DELETE n //"}))
}
