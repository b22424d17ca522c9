package dashboard

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/rohankatakam/chaindash/internal/chain"
	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// Count rules for insights and outcomes
var (
	velocityRule    = CountRule{Key: "EntityProject-[CLOSE_GAPS]->EntityCapability", Specific: true, Denominator: graph.LabelEntityProject}
	efficiencyRule  = CountRule{Key: "EntityProcess-[AUTOMATION]->EntityITSystem", Specific: true, Denominator: graph.LabelEntityProcess}
	citizenRule     = CountRule{Key: "SectorCitizen-SectorPolicyTool", Denominator: graph.LabelSectorCitizen}
	performanceRule = CountRule{Key: "SectorPerformance-[CASCADES_TO]->SectorObjective", Specific: true, Denominator: graph.LabelSectorPerformance}
	serviceRule     = CountRule{Key: "SectorDataTransaction-SectorGovEntity", Denominator: graph.LabelSectorDataTransaction}
	partnershipRule = CountRule{Key: "SectorBusiness-SectorObjective", Denominator: graph.LabelSectorBusiness}
	communityRule   = CountRule{Key: "SectorCitizen-SectorGovEntity", Denominator: graph.LabelSectorCitizen}
	projectRiskRule = CountRule{Key: "EntityProject-EntityRisk", Denominator: graph.LabelEntityProject}
	alignmentRule   = CountRule{Key: "EntityProject-SectorObjective", Denominator: graph.LabelEntityProject}
)

// CountSource derives every metric from business-chain counts. It needs no
// enriched properties, only labels and relationships. Its series windows
// are whole years.
type CountSource struct {
	counter ChainCounter
	years   YearLister
	logger  *slog.Logger
	now     func() time.Time
}

// NewCountSource creates the count-based source. years may be nil.
func NewCountSource(counter ChainCounter, years YearLister) *CountSource {
	return &CountSource{
		counter: counter,
		years:   years,
		logger:  slog.Default().With("component", "dashboard", "source", config.SourceCounts),
		now:     time.Now,
	}
}

// Name implements Source
func (s *CountSource) Name() string { return config.SourceCounts }

// Apply evaluates rule against counts as a percentage
func (r CountRule) Apply(counts *chain.Counts) float64 {
	if counts == nil {
		return 0
	}
	var n int64
	if r.Specific {
		n = counts.SpecificRelCounts[r.Key]
	} else {
		n = counts.PairCounts[r.Key]
	}
	return round1(Ratio(float64(n), float64(counts.NodeCounts[r.Denominator])))
}

// Metrics implements Source
func (s *CountSource) Metrics(ctx context.Context, req Request) (*Metrics, error) {
	anchor := req.Year
	if anchor <= 0 {
		anchor = s.latestYear(ctx)
	}
	years := []int{anchor - 2, anchor - 1, anchor}

	var current *chain.Counts
	perYear := make([]*chain.Counts, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		current, err = s.counter.Counts(gctx, req.Filter())
		return err
	})
	for i, y := range years {
		g.Go(func() (err error) {
			perYear[i], err = s.counter.Counts(gctx, graph.Filter{Years: []int{y}})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	obs := make(map[string]Observation, len(Catalogue))
	for _, spec := range Catalogue {
		obs[spec.ID] = Observation{Actual: spec.Count.Apply(current)}
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}
	series := func(rule CountRule) []float64 {
		out := make([]float64, len(perYear))
		for i, c := range perYear {
			out[i] = rule.Apply(c)
		}
		return out
	}
	efficiency := series(efficiencyRule)

	yearSeries := func(id string, rule CountRule) Outcome {
		actual := series(rule)
		o := seriesOutcome(id, nil, actual, make([]float64, len(actual)))
		o.Labels = labels
		return o
	}

	return &Metrics{
		Dimensions: BuildDimensions(obs),
		Insight1:   Insight1{Title: Insight1Title, Initiatives: countInitiatives(current)},
		Insight2: Insight2{
			Title:                 Insight2Title,
			Labels:                labels,
			ProjectVelocity:       series(velocityRule),
			OperationalEfficiency: efficiency,
		},
		Insight3: Insight3{
			Title:                 Insight3Title,
			Labels:                labels,
			OperationalEfficiency: efficiency,
			CitizenImpact:         series(citizenRule),
		},
		Outcomes: Outcomes{
			SectorPerformance:     yearSeries(OutcomeSectorPerformance, performanceRule),
			ServiceDelivery:       yearSeries(OutcomeServiceDelivery, serviceRule),
			PartnershipEngagement: pointOutcome(OutcomePartnershipEngagement, partnershipRule.Apply(current), 0),
			CommunityEngagement:   pointOutcome(OutcomeCommunityEngagement, communityRule.Apply(current), 0),
		},
		Source: s.Name(),
	}, nil
}

// countInitiatives groups projects by level. Budget is the project count of
// the level; risk and alignment are the share of all projects linked to a
// risk or an objective, since counts carry no per-project detail.
func countInitiatives(counts *chain.Counts) []Initiative {
	out := []Initiative{}
	if counts == nil || counts.NodeCounts[graph.LabelEntityProject] <= 0 {
		return out
	}
	risk := projectRiskRule.Apply(counts)
	alignment := alignmentRule.Apply(counts)

	levels := counts.LevelBreakdown[graph.LabelEntityProject]
	if len(levels) == 0 {
		levels = map[string]int64{"": counts.NodeCounts[graph.LabelEntityProject]}
	}
	for level, n := range levels {
		name := "All projects"
		if level != "" {
			name = "Projects " + level
		}
		out = append(out, Initiative{Name: name, Budget: float64(n), Risk: risk, Alignment: alignment})
	}
	return topInitiatives(out, TopInitiatives)
}

// latestYear returns the newest year in the graph, or the current year
// when the graph has none or cannot be asked
func (s *CountSource) latestYear(ctx context.Context) int {
	if s.years != nil {
		years, err := s.years.Years(ctx)
		if err != nil {
			s.logger.Warn("year lookup failed, using current year", "error", err)
		} else if len(years) > 0 {
			return years[len(years)-1]
		}
	}
	return s.now().Year()
}
