package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// GraphSource computes metrics from enriched multi-hop traversals
type GraphSource struct {
	runner graph.Runner
	logger *slog.Logger
	now    func() time.Time
}

// NewGraphSource creates the traversal-based source
func NewGraphSource(runner graph.Runner) *GraphSource {
	return &GraphSource{
		runner: runner,
		logger: slog.Default().With("component", "dashboard", "source", config.SourceGraph),
		now:    time.Now,
	}
}

// Name implements Source
func (s *GraphSource) Name() string { return config.SourceGraph }

// Metrics runs every dimension, insight and outcome query concurrently.
// Each query runs in its own session; the first failure cancels the rest.
func (s *GraphSource) Metrics(ctx context.Context, req Request) (*Metrics, error) {
	filter := req.Filter()
	g, gctx := errgroup.WithContext(ctx)

	dimRecords := make([][]graph.Record, len(Catalogue))
	for i, spec := range Catalogue {
		q := pointQuery("dashboard_dim_"+spec.ID, dimensionTraversals[spec.ID], filter)
		g.Go(func() (err error) {
			dimRecords[i], err = s.runner.Run(gctx, q)
			return err
		})
	}

	seriesTraversals := []traversal{velocityTraversal, efficiencyTraversal, citizenTraversal, performanceTraversal, serviceTraversal}
	seriesRecords := make([][]graph.Record, len(seriesTraversals))
	for i, t := range seriesTraversals {
		q := seriesQuery(t)
		g.Go(func() (err error) {
			seriesRecords[i], err = s.runner.Run(gctx, q)
			return err
		})
	}

	var partnership, community, initiatives []graph.Record
	g.Go(func() (err error) {
		partnership, err = s.runner.Run(gctx, pointQuery("dashboard_point_partnership", partnershipTraversal, filter))
		return err
	})
	g.Go(func() (err error) {
		community, err = s.runner.Run(gctx, pointQuery("dashboard_point_community", communityTraversal, filter))
		return err
	})
	g.Go(func() (err error) {
		initiatives, err = s.runner.Run(gctx, initiativeQuery(filter))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	obs := make(map[string]Observation, len(Catalogue))
	for i, spec := range Catalogue {
		obs[spec.ID] = pointObservation(dimRecords[i])
	}

	velocity := parseSeries(seriesRecords[0])
	efficiency := parseSeries(seriesRecords[1])
	citizen := parseSeries(seriesRecords[2])
	performance := parseSeries(seriesRecords[3])
	service := parseSeries(seriesRecords[4])

	anchor, ok := req.Period()
	if !ok {
		anchor, ok = latestPeriod(velocity, efficiency, citizen, performance, service)
	}
	if !ok {
		anchor = currentPeriod(s.now())
	}
	periods := window(anchor, WindowSize)
	labels := periodLabels(periods)

	velocityValues, _ := seriesValues(velocity, periods)
	efficiencyValues, _ := seriesValues(efficiency, periods)
	citizenValues, _ := seriesValues(citizen, periods)
	perfActual, perfTarget := seriesValues(performance, periods)
	serviceActual, serviceTarget := seriesValues(service, periods)

	partnershipObs := pointObservation(partnership)
	communityObs := pointObservation(community)

	m := &Metrics{
		Dimensions: BuildDimensions(obs),
		Insight1:   Insight1{Title: Insight1Title, Initiatives: parseInitiatives(initiatives)},
		Insight2: Insight2{
			Title:                 Insight2Title,
			Labels:                labels,
			ProjectVelocity:       velocityValues,
			OperationalEfficiency: efficiencyValues,
		},
		Insight3: Insight3{
			Title:                 Insight3Title,
			Labels:                labels,
			OperationalEfficiency: efficiencyValues,
			CitizenImpact:         citizenValues,
		},
		Outcomes: Outcomes{
			SectorPerformance:     seriesOutcome(OutcomeSectorPerformance, periods, perfActual, perfTarget),
			ServiceDelivery:       seriesOutcome(OutcomeServiceDelivery, periods, serviceActual, serviceTarget),
			PartnershipEngagement: pointOutcome(OutcomePartnershipEngagement, partnershipObs.Actual, partnershipObs.FinalTarget),
			CommunityEngagement:   pointOutcome(OutcomeCommunityEngagement, communityObs.Actual, communityObs.FinalTarget),
		},
		Source: s.Name(),
	}

	s.logger.Debug("dashboard metrics computed", "year", req.Year, "quarter", req.Quarter, "anchor", anchor.String())
	return m, nil
}

// parseInitiatives reads initiative rows. A missing risk score is derived
// from the number of linked risks; a missing alignment score from whether
// the project reaches an objective.
func parseInitiatives(records []graph.Record) []Initiative {
	out := make([]Initiative, 0, len(records))
	for _, r := range records {
		risk := Clamp(float64(graph.AsInt(r["risks"])) * 25)
		if r["risk"] != nil {
			risk = Clamp(graph.AsFloat(r["risk"]))
		}
		alignment := 0.0
		if aligned, _ := r["aligned"].(bool); aligned {
			alignment = 100
		}
		if r["alignment"] != nil {
			alignment = Clamp(graph.AsFloat(r["alignment"]))
		}
		out = append(out, Initiative{
			Name:      graph.AsString(r["name"]),
			Budget:    graph.AsFloat(r["budget"]),
			Risk:      round1(risk),
			Alignment: round1(alignment),
		})
	}
	return topInitiatives(out, TopInitiatives)
}
