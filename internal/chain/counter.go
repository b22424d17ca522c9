// Package chain counts the business chain: how many domain nodes exist per
// label, how they are linked, and whether the expected objective to delivery
// path is intact.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// Link statuses derived from pair counts
const (
	StatusActive = "active"
	StatusBroken = "broken"
)

// Counts is the business-chain count report. Zero counts are never stored:
// a label or pair with no matches is absent.
type Counts struct {
	NodeCounts        map[string]int64            `json:"nodeCounts"`
	RelCounts         map[string]int64            `json:"relCounts"`
	PairCounts        map[string]int64            `json:"pairCounts"`
	SpecificRelCounts map[string]int64            `json:"specificRelCounts"`
	LevelBreakdown    map[string]map[string]int64 `json:"levelBreakdown"`
}

// PairKey is the pair-count key for labels a and b
func PairKey(a, b string) string { return a + "-" + b }

// SpecificKey is the specific-relationship key for a -[rel]-> b
func SpecificKey(a, rel, b string) string { return fmt.Sprintf("%s-[%s]->%s", a, rel, b) }

// LinkStatus reports whether any relationship joins labels a and b
func LinkStatus(pairCounts map[string]int64, a, b string) string {
	if pairCounts[PairKey(a, b)] > 0 {
		return StatusActive
	}
	return StatusBroken
}

// Counter runs the counting queries
type Counter struct {
	runner graph.Runner
	logger *slog.Logger
}

// NewCounter creates a counter
func NewCounter(runner graph.Runner) *Counter {
	return &Counter{
		runner: runner,
		logger: slog.Default().With("component", "chain"),
	}
}

// domainLabel unwinds the domain labels of v into alias
func domainLabel(v, alias string) string {
	return fmt.Sprintf("UNWIND [l IN labels(%s) WHERE l STARTS WITH '%s' OR l STARTS WITH '%s'] AS %s",
		v, graph.PrefixEntity, graph.PrefixSector, alias)
}

// Counts computes all five maps under filter. Temporal filters apply to
// counted nodes and to the source endpoint of counted relationships.
func (c *Counter) Counts(ctx context.Context, filter graph.Filter) (*Counts, error) {
	counts := &Counts{
		NodeCounts:        map[string]int64{},
		RelCounts:         map[string]int64{},
		PairCounts:        map[string]int64{},
		SpecificRelCounts: map[string]int64{},
		LevelBreakdown:    map[string]map[string]int64{},
	}

	var nodeRecs, relRecs, pairRecs, levelRecs []graph.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		nodeRecs, err = c.runner.Run(gctx, nodeCountQuery(filter))
		return err
	})
	g.Go(func() (err error) {
		relRecs, err = c.runner.Run(gctx, relCountQuery(filter))
		return err
	})
	g.Go(func() (err error) {
		pairRecs, err = c.runner.Run(gctx, pairCountQuery(filter))
		return err
	})
	g.Go(func() (err error) {
		levelRecs, err = c.runner.Run(gctx, levelQuery(filter))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range nodeRecs {
		addCount(counts.NodeCounts, graph.AsString(r["label"]), graph.AsInt(r["count"]))
	}
	for _, r := range relRecs {
		addCount(counts.RelCounts, graph.AsString(r["type"]), graph.AsInt(r["count"]))
	}
	for _, r := range pairRecs {
		a, rel, b := graph.AsString(r["source"]), graph.AsString(r["type"]), graph.AsString(r["target"])
		n := graph.AsInt(r["count"])
		if a == "" || b == "" || n <= 0 {
			continue
		}
		// Undirected: an A->B edge counts towards both orderings
		addCount(counts.PairCounts, PairKey(a, b), n)
		if a != b {
			addCount(counts.PairCounts, PairKey(b, a), n)
		}
		addCount(counts.SpecificRelCounts, SpecificKey(a, rel, b), n)
	}
	for _, r := range levelRecs {
		label, level := graph.AsString(r["label"]), graph.AsString(r["level"])
		n := graph.AsInt(r["count"])
		if label == "" || level == "" || n <= 0 {
			continue
		}
		if counts.LevelBreakdown[label] == nil {
			counts.LevelBreakdown[label] = map[string]int64{}
		}
		counts.LevelBreakdown[label][level] += n
	}

	c.logger.Debug("business chain counted",
		"labels", len(counts.NodeCounts),
		"relationship_types", len(counts.RelCounts),
		"pairs", len(counts.PairCounts))
	return counts, nil
}

func addCount(m map[string]int64, key string, n int64) {
	if key == "" || n <= 0 {
		return
	}
	m[key] += n
}

func nodeCountQuery(filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	where := graph.Where(append([]string{graph.DomainPredicate("n")}, filter.Predicates("n", b)...)...)
	cypher := strings.Join([]string{
		"MATCH (n) " + where,
		domainLabel("n", "label"),
		"RETURN label, count(*) AS count",
	}, "\n")
	return b.Query("chain_node_counts", "chain_count", cypher)
}

func relCountQuery(filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	where := graph.Where(append([]string{graph.DomainPredicate("a"), graph.DomainPredicate("b")}, filter.Predicates("a", b)...)...)
	cypher := "MATCH (a)-[r]->(b) " + where + "\nRETURN type(r) AS type, count(r) AS count"
	return b.Query("chain_rel_counts", "chain_count", cypher)
}

func pairCountQuery(filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	where := graph.Where(append([]string{graph.DomainPredicate("a"), graph.DomainPredicate("b")}, filter.Predicates("a", b)...)...)
	cypher := strings.Join([]string{
		"MATCH (a)-[r]->(b) " + where,
		domainLabel("a", "source"),
		domainLabel("b", "target"),
		"RETURN source, type(r) AS type, target, count(r) AS count",
	}, "\n")
	return b.Query("chain_pair_counts", "chain_count", cypher)
}

func levelQuery(filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	clauses := append([]string{graph.DomainPredicate("n"), "coalesce(n.level, n.Level) IS NOT NULL"}, filter.Predicates("n", b)...)
	cypher := strings.Join([]string{
		"MATCH (n) " + graph.Where(clauses...),
		domainLabel("n", "label"),
		"RETURN label, toString(coalesce(n.level, n.Level)) AS level, count(*) AS count",
	}, "\n")
	return b.Query("chain_level_breakdown", "chain_count", cypher)
}
