package backend

import (
	"testing"

	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows() []Row {
	// Deliberately unordered
	return []Row{
		{"title": "Risk Mitigation", "quarter": "Q1 2026", "kpi_actual": 70.0},
		{"title": "Operational Efficiency", "quarter": "Q3 2025", "kpi_actual": 75.0},
		{"title": "Risk Mitigation", "quarter": "Q2 2026", "kpi_actual": 72.0},
		{"title": "Operational Efficiency", "quarter": "Q1 2026", "kpi_actual": 79.0},
		{"title": "Operational Efficiency", "quarter": "Q4 2025", "kpi_actual": 77.0},
		{"title": "Investment", "year": 2026.0, "quarter": "Q3", "kpi_actual": 10.0},
		{"title": "", "quarter": "Q1 2026"},
		{"title": "Broken", "quarter": "soon"},
	}
}

func actuals(rs []Row) map[string]float64 {
	out := map[string]float64{}
	for _, r := range rs {
		out[Title(r)] = graph.AsFloat(r["kpi_actual"])
	}
	return out
}

func TestSelectRows_ExactQuarter(t *testing.T) {
	got := actuals(SelectRows(rows(), Selection{Year: 2026, Quarter: 2}))
	assert.Equal(t, 72.0, got["Risk Mitigation"])
	// No Q2 2026 row: falls back to the latest earlier quarter for this title only
	assert.Equal(t, 79.0, got["Operational Efficiency"])
	assert.NotContains(t, got, "Investment")
}

func TestSelectRows_YearOnly(t *testing.T) {
	got := actuals(SelectRows(rows(), Selection{Year: 2025}))
	assert.Equal(t, map[string]float64{"Operational Efficiency": 77}, got)

	// A title whose latest row predates the year is not reported for it
	mixed := []Row{
		{"title": "Risk Mitigation", "quarter": "Q4 2024", "kpi_actual": 60.0},
		{"title": "Operational Efficiency", "quarter": "Q2 2025", "kpi_actual": 81.0},
	}
	got = actuals(SelectRows(mixed, Selection{Year: 2025}))
	assert.Equal(t, map[string]float64{"Operational Efficiency": 81}, got)
}

func TestSelectRows_QuarterOnly(t *testing.T) {
	tests := []struct {
		name    string
		quarter int
		want    map[string]float64
	}{
		{"Q1 picks the latest Q1 per title", 1, map[string]float64{"Risk Mitigation": 70, "Operational Efficiency": 79}},
		{"Q3 across years", 3, map[string]float64{"Operational Efficiency": 75, "Investment": 10}},
		{"Q4", 4, map[string]float64{"Operational Efficiency": 77}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, actuals(SelectRows(rows(), Selection{Quarter: tt.quarter})))
		})
	}

	mixed := []Row{
		{"title": "Risk Mitigation", "quarter": "Q4 2024", "kpi_actual": 60.0},
		{"title": "Operational Efficiency", "quarter": "Q2 2025", "kpi_actual": 81.0},
	}
	assert.Equal(t, map[string]float64{"Operational Efficiency": 81},
		actuals(SelectRows(mixed, Selection{Quarter: 2})))
}

func TestSelection_Admits(t *testing.T) {
	q3 := graph.Period{Year: 2025, Quarter: 3}
	assert.True(t, Selection{}.Admits(q3))
	assert.True(t, Selection{Year: 2025, Quarter: 4}.Admits(q3))
	assert.True(t, Selection{Year: 2026, Quarter: 1}.Admits(q3))
	assert.False(t, Selection{Year: 2025, Quarter: 2}.Admits(q3))
	assert.False(t, Selection{Year: 2026}.Admits(q3))
	assert.True(t, Selection{Quarter: 3}.Admits(q3))
	assert.False(t, Selection{Quarter: 1}.Admits(q3))
}

func TestSelectRows_NoSelection(t *testing.T) {
	got := actuals(SelectRows(rows(), Selection{}))
	assert.Equal(t, 10.0, got["Investment"])
	assert.Equal(t, 72.0, got["Risk Mitigation"])
	assert.Equal(t, 79.0, got["Operational Efficiency"])
	assert.Len(t, got, 3)
}

func TestLatestAndParsePeriod(t *testing.T) {
	p, ok := Latest(rows())
	require.True(t, ok)
	assert.Equal(t, graph.Period{Year: 2026, Quarter: 3}, p)

	p, err := ParsePeriod("Q2 2026")
	require.NoError(t, err)
	assert.Equal(t, "Q2 2026", p.String())

	_, ok = Latest(nil)
	assert.False(t, ok)
}
