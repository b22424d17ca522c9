package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/rohankatakam/chaindash/internal/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	dims, outcomes, initiatives []backend.Row
	err                         error
}

func (f fakeFetcher) Dimensions(context.Context) ([]backend.Row, error)  { return f.dims, f.err }
func (f fakeFetcher) Outcomes(context.Context) ([]backend.Row, error)    { return f.outcomes, nil }
func (f fakeFetcher) Initiatives(context.Context) ([]backend.Row, error) { return f.initiatives, nil }

func backendRows() fakeFetcher {
	return fakeFetcher{
		dims: []backend.Row{
			{"title": "Operational Efficiency", "quarter": "Q1 2026", "kpi_actual": 79.0, "kpi_planned": 82.0, "kpi_final_target": 90.0},
			{"title": "Operational Efficiency", "quarter": "Q4 2025", "kpi_actual": 77.0},
			{"title": "Risk Mitigation", "quarter": "Q2 2026", "kpi_actual": 72.0, "baseline": 70.0},
			{"title": "Risk Mitigation", "quarter": "Q1 2026", "kpi_actual": 68.0},
			{"title": "Investment", "quarter": "Q2 2026", "kpi_actual": "310", "unit": "M", "kpi_final_target": 500.0},
			{"title": "Project Delivery", "quarter": "Q2 2026", "kpi_actual": 66.0},
			{"title": "Weather", "quarter": "Q2 2026", "kpi_actual": 1.0},
		},
		outcomes: []backend.Row{
			{"title": "Sector Performance", "quarter": "Q2 2026", "actual": 61.0, "target": 70.0},
			{"title": "Sector Performance", "quarter": "Q4 2025", "actual": 55.0},
			{"title": "Partnership Engagement", "quarter": "Q1 2026", "actual": 48.0, "target": 60.0},
			{"title": "Community Engagement", "quarter": "Q3 2026", "actual": 99.0},
		},
		initiatives: []backend.Row{
			{"name": "Portal", "quarter": "Q2 2026", "budget": 2.0, "risk": 30.0, "alignment": 90.0},
			{"name": "ERP", "quarter": "Q1 2026", "budget": 5.0, "risk": 60.0, "alignment": 40.0},
			{"name": "Future", "quarter": "Q4 2026", "budget": 50.0},
		},
	}
}

func TestBackendSource_QuarterFallbackPerTitle(t *testing.T) {
	m, err := NewBackendSource(backendRows()).Metrics(context.Background(), Request{Year: 2026, Quarter: "Q2"})
	require.NoError(t, err)
	assert.Equal(t, "backend", m.Source)

	byID := map[string]Dimension{}
	for _, d := range m.Dimensions {
		byID[d.ID] = d
	}
	require.Len(t, m.Dimensions, len(Catalogue))

	// No Q2 row: latest earlier quarter for this title only
	assert.Equal(t, 79.0, byID["operational_efficiency"].KPIActual)
	assert.Equal(t, 82.0, byID["operational_efficiency"].KPIPlanned)
	assert.Equal(t, 72.0, byID["risk_mitigation"].KPIActual)
	assert.Equal(t, 70.0, byID["risk_mitigation"].Baseline)
	assert.Equal(t, TrendUp, byID["risk_mitigation"].TrendDirection)

	inv := byID["investment"]
	assert.Equal(t, "M", inv.Unit)
	assert.Equal(t, 62.0, inv.Actual)

	assert.Equal(t, 0.0, byID["adoption"].KPIActual, "missing dimension reports zero")

	assert.Equal(t, []string{"Q4 2025", "Q1 2026", "Q2 2026"}, m.Insight2.Labels)
	assert.Equal(t, []float64{77, 79, 0}, m.Insight2.OperationalEfficiency)
	assert.Equal(t, []float64{0, 0, 66}, m.Insight2.ProjectVelocity)

	perf := m.Outcomes.SectorPerformance
	assert.Equal(t, []float64{55, 0, 61}, perf.Actual)
	assert.Equal(t, []float64{80, 80, 70}, perf.Target)

	assert.Equal(t, 48.0, m.Outcomes.PartnershipEngagement.Value)
	assert.Equal(t, 60.0, m.Outcomes.PartnershipEngagement.TargetValue)
	assert.Equal(t, 0.0, m.Outcomes.CommunityEngagement.Value, "Q3 row is after the request")

	require.Len(t, m.Insight1.Initiatives, 2)
	assert.Equal(t, "ERP", m.Insight1.Initiatives[0].Name)
	assert.Equal(t, "Portal", m.Insight1.Initiatives[1].Name)
}

func TestBackendSource_NoSelectionUsesLatest(t *testing.T) {
	m, err := NewBackendSource(backendRows()).Metrics(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1 2026", "Q2 2026", "Q3 2026"}, m.Insight3.Labels)
	assert.Equal(t, []float64{0, 0, 99}, m.Insight3.CitizenImpact)
	assert.Equal(t, 99.0, m.Outcomes.CommunityEngagement.Value)
}

func TestBackendSource_QuarterOnly(t *testing.T) {
	m, err := NewBackendSource(backendRows()).Metrics(context.Background(), Request{Quarter: "Q1"})
	require.NoError(t, err)

	byID := map[string]Dimension{}
	for _, d := range m.Dimensions {
		byID[d.ID] = d
	}
	assert.Equal(t, 79.0, byID["operational_efficiency"].KPIActual)
	assert.Equal(t, 68.0, byID["risk_mitigation"].KPIActual)
	assert.Equal(t, 0.0, byID["investment"].KPIActual, "no Q1 row for this title")
	assert.Equal(t, []string{"Q3 2025", "Q4 2025", "Q1 2026"}, m.Insight2.Labels)
	assert.Equal(t, 48.0, m.Outcomes.PartnershipEngagement.Value)
}

func TestBackendSource_PropagatesErrors(t *testing.T) {
	f := backendRows()
	f.err = errors.New("backend down")
	_, err := NewBackendSource(f).Metrics(context.Background(), Request{})
	assert.ErrorContains(t, err, "backend down")
}

func TestNewSource(t *testing.T) {
	src, err := NewSource("counts", Deps{Counter: &fakeCounter{}})
	require.NoError(t, err)
	assert.Equal(t, "counts", src.Name())

	src, err = NewSource("BACKEND", Deps{Backend: backendRows()})
	require.NoError(t, err)
	assert.Equal(t, "backend", src.Name())

	_, err = NewSource("graph", Deps{})
	assert.Error(t, err)
	_, err = NewSource("backend", Deps{})
	assert.Error(t, err)
	_, err = NewSource("psychic", Deps{})
	assert.Error(t, err)
}
