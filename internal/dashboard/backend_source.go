package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/rohankatakam/chaindash/internal/backend"
	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// BackendSource reshapes rows from the external backend into metrics
type BackendSource struct {
	fetcher RowFetcher
	logger  *slog.Logger
	now     func() time.Time
}

// NewBackendSource creates the backend-row source
func NewBackendSource(fetcher RowFetcher) *BackendSource {
	return &BackendSource{
		fetcher: fetcher,
		logger:  slog.Default().With("component", "dashboard", "source", config.SourceBackend),
		now:     time.Now,
	}
}

// Name implements Source
func (s *BackendSource) Name() string { return config.SourceBackend }

func rowObservation(r backend.Row) Observation {
	return Observation{
		Actual:      graph.AsFloat(graph.FirstOf(r, "kpi_actual", "kpiActual", "actual", "value")),
		Planned:     graph.AsFloat(graph.FirstOf(r, "kpi_planned", "kpiPlanned", "planned")),
		FinalTarget: graph.AsFloat(graph.FirstOf(r, "kpi_final_target", "kpiFinalTarget", "final_target", "target")),
		Baseline:    graph.AsFloat(graph.FirstOf(r, "baseline", "Baseline")),
		LastQuarter: graph.AsFloat(graph.FirstOf(r, "last_quarter", "lastQuarter")),
		NextQuarter: graph.AsFloat(graph.FirstOf(r, "next_quarter", "nextQuarter")),
		Unit:        graph.AsString(graph.FirstOf(r, "unit", "Unit")),
	}
}

// rowIndex maps id -> period -> row; the first row for a slot wins
type rowIndex map[string]map[graph.Period]backend.Row

func indexRows(rows []backend.Row, id func(string) string) rowIndex {
	idx := rowIndex{}
	for _, r := range rows {
		key := id(backend.Title(r))
		p, ok := backend.PeriodOf(r)
		if key == "" || !ok {
			continue
		}
		if idx[key] == nil {
			idx[key] = map[graph.Period]backend.Row{}
		}
		if _, seen := idx[key][p]; !seen {
			idx[key][p] = r
		}
	}
	return idx
}

func (idx rowIndex) series(id string, periods []graph.Period, field func(backend.Row) float64) []float64 {
	out := make([]float64, len(periods))
	for i, p := range periods {
		if r, ok := idx[id][p]; ok {
			out[i] = round1(field(r))
		}
	}
	return out
}

func dimensionID(title string) string {
	if spec, ok := Lookup(title); ok {
		return spec.ID
	}
	return ""
}

func actualOf(r backend.Row) float64 { return rowObservation(r).Actual }

func targetOf(r backend.Row) float64 {
	return graph.AsFloat(graph.FirstOf(r, "target", "Target", "kpi_final_target"))
}

// Metrics implements Source. Rows are selected per title: the requested
// quarter when present, otherwise the latest earlier one.
func (s *BackendSource) Metrics(ctx context.Context, req Request) (*Metrics, error) {
	var dimRows, outcomeRows, initiativeRows []backend.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dimRows, err = s.fetcher.Dimensions(gctx)
		return err
	})
	g.Go(func() (err error) {
		outcomeRows, err = s.fetcher.Outcomes(gctx)
		return err
	})
	g.Go(func() (err error) {
		initiativeRows, err = s.fetcher.Initiatives(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sel := backend.Selection{Year: req.Year, Quarter: req.QuarterNumber()}

	obs := map[string]Observation{}
	for _, r := range backend.SelectRows(dimRows, sel) {
		spec, ok := Lookup(backend.Title(r))
		if !ok {
			s.logger.Debug("skipping unknown dimension row", "title", backend.Title(r))
			continue
		}
		if _, seen := obs[spec.ID]; !seen {
			obs[spec.ID] = rowObservation(r)
		}
	}

	anchor, ok := sel.Bound()
	if !ok {
		anchor, ok = backend.Latest(append(backend.SelectRows(dimRows, sel), backend.SelectRows(outcomeRows, sel)...))
	}
	if !ok {
		anchor = currentPeriod(s.now())
	}
	periods := window(anchor, WindowSize)
	labels := periodLabels(periods)

	dims := indexRows(dimRows, dimensionID)
	outcomes := indexRows(outcomeRows, outcomeID)
	efficiency := dims.series("operational_efficiency", periods, actualOf)

	points := map[string]backend.Row{}
	for _, r := range backend.SelectRows(outcomeRows, sel) {
		if id := outcomeID(backend.Title(r)); id != "" {
			if _, seen := points[id]; !seen {
				points[id] = r
			}
		}
	}
	point := func(id string) Outcome {
		r, ok := points[id]
		if !ok {
			return pointOutcome(id, 0, 0)
		}
		return pointOutcome(id, actualOf(r), targetOf(r))
	}

	initiatives := make([]Initiative, 0)
	for _, r := range backend.SelectRows(initiativeRows, sel) {
		initiatives = append(initiatives, Initiative{
			Name:      backend.Title(r),
			Budget:    graph.AsFloat(graph.FirstOf(r, "budget", "Budget")),
			Risk:      round1(Clamp(graph.AsFloat(graph.FirstOf(r, "risk", "risk_score", "riskScore")))),
			Alignment: round1(Clamp(graph.AsFloat(graph.FirstOf(r, "alignment", "alignment_score", "alignmentScore")))),
		})
	}

	return &Metrics{
		Dimensions: BuildDimensions(obs),
		Insight1:   Insight1{Title: Insight1Title, Initiatives: topInitiatives(initiatives, TopInitiatives)},
		Insight2: Insight2{
			Title:                 Insight2Title,
			Labels:                labels,
			ProjectVelocity:       dims.series("delivery", periods, actualOf),
			OperationalEfficiency: efficiency,
		},
		Insight3: Insight3{
			Title:                 Insight3Title,
			Labels:                labels,
			OperationalEfficiency: efficiency,
			CitizenImpact:         outcomes.series(OutcomeCommunityEngagement, periods, actualOf),
		},
		Outcomes: Outcomes{
			SectorPerformance: seriesOutcome(OutcomeSectorPerformance, periods,
				outcomes.series(OutcomeSectorPerformance, periods, actualOf),
				outcomes.series(OutcomeSectorPerformance, periods, targetOf)),
			ServiceDelivery: seriesOutcome(OutcomeServiceDelivery, periods,
				outcomes.series(OutcomeServiceDelivery, periods, actualOf),
				outcomes.series(OutcomeServiceDelivery, periods, targetOf)),
			PartnershipEngagement: point(OutcomePartnershipEngagement),
			CommunityEngagement:   point(OutcomeCommunityEngagement),
		},
		Source: s.Name(),
	}, nil
}
