// Package dashboard computes the dashboard's dimensions, insights and
// outcomes. Three sources produce the same Metrics shape: enriched graph
// traversals, plain chain counts, or rows from the external backend.
package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rohankatakam/chaindash/internal/backend"
	"github.com/rohankatakam/chaindash/internal/chain"
	"github.com/rohankatakam/chaindash/internal/config"
	"github.com/rohankatakam/chaindash/internal/errors"
	"github.com/rohankatakam/chaindash/internal/graph"
)

// Request selects the period to aggregate. Zero Year means all years.
type Request struct {
	Year    int
	Quarter string
}

// Filter converts the request to the graph temporal filter
func (r Request) Filter() graph.Filter {
	f := graph.Filter{Quarter: r.Quarter}
	if r.Year > 0 {
		f.Years = []int{r.Year}
	}
	return f
}

// QuarterNumber returns the requested quarter (1..4) or 0
func (r Request) QuarterNumber() int {
	q, err := graph.ParseQuarter(r.Quarter)
	if err != nil || q.Kind != graph.QuarterNumeric {
		return 0
	}
	return q.Number
}

// Period returns the requested period; a year without a quarter means Q4
func (r Request) Period() (graph.Period, bool) {
	return backend.Selection{Year: r.Year, Quarter: r.QuarterNumber()}.Bound()
}

// Source produces dashboard metrics for a request
type Source interface {
	Name() string
	Metrics(ctx context.Context, req Request) (*Metrics, error)
}

// ChainCounter is the part of chain.Counter the count source needs
type ChainCounter interface {
	Counts(ctx context.Context, filter graph.Filter) (*chain.Counts, error)
}

// YearLister reports the years present in the graph
type YearLister interface {
	Years(ctx context.Context) ([]int, error)
}

// RowFetcher is the part of backend.Client the backend source needs
type RowFetcher interface {
	Dimensions(ctx context.Context) ([]backend.Row, error)
	Outcomes(ctx context.Context) ([]backend.Row, error)
	Initiatives(ctx context.Context) ([]backend.Row, error)
}

// Deps are the collaborators a source may need
type Deps struct {
	Runner  graph.Runner
	Counter ChainCounter
	Years   YearLister
	Backend RowFetcher
}

// NewSource returns the source named by dashboard.source
func NewSource(name string, deps Deps) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", config.SourceGraph:
		if deps.Runner == nil {
			return nil, errors.ConfigError("graph dashboard source requires a graph connection")
		}
		return NewGraphSource(deps.Runner), nil
	case config.SourceCounts:
		if deps.Counter == nil {
			return nil, errors.ConfigError("counts dashboard source requires a chain counter")
		}
		return NewCountSource(deps.Counter, deps.Years), nil
	case config.SourceBackend:
		if deps.Backend == nil {
			return nil, errors.ConfigError("backend dashboard source requires BACKEND_BASE_URL")
		}
		return NewBackendSource(deps.Backend), nil
	default:
		return nil, errors.ConfigErrorf("unknown dashboard source %q", name)
	}
}

// window returns n consecutive periods ending at end, oldest first
func window(end graph.Period, n int) []graph.Period {
	out := make([]graph.Period, n)
	p := end
	for i := n - 1; i >= 0; i-- {
		out[i] = p
		p = p.Prev()
	}
	return out
}

func periodLabels(periods []graph.Period) []string {
	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.String()
	}
	return out
}

func currentPeriod(now time.Time) graph.Period {
	return graph.Period{Year: now.Year(), Quarter: (int(now.Month())-1)/3 + 1}
}

// topInitiatives sorts by budget, highest first, and keeps the top n
func topInitiatives(in []Initiative, n int) []Initiative {
	sort.SliceStable(in, func(i, j int) bool {
		if in[i].Budget != in[j].Budget {
			return in[i].Budget > in[j].Budget
		}
		return in[i].Name < in[j].Name
	})
	if len(in) > n {
		in = in[:n]
	}
	return in
}

var defaultOutcomeTargets = map[string]float64{
	OutcomeSectorPerformance:     80,
	OutcomeServiceDelivery:       85,
	OutcomePartnershipEngagement: 75,
	OutcomeCommunityEngagement:   70,
}

func seriesOutcome(id string, periods []graph.Period, actual, target []float64) Outcome {
	for i := range target {
		if target[i] == 0 {
			target[i] = defaultOutcomeTargets[id]
		}
	}
	o := Outcome{
		ID:     id,
		Title:  OutcomeTitle(id),
		Kind:   KindSeries,
		Labels: periodLabels(periods),
		Actual: actual,
		Target: target,
	}
	if len(actual) > 0 {
		o.Value = actual[len(actual)-1]
		o.TargetValue = target[len(target)-1]
	}
	return o
}

func pointOutcome(id string, value, target float64) Outcome {
	if target == 0 {
		target = defaultOutcomeTargets[id]
	}
	return Outcome{
		ID:          id,
		Title:       OutcomeTitle(id),
		Kind:        KindPoint,
		Value:       round1(Clamp(value)),
		TargetValue: round1(target),
	}
}
