package chain

import (
	"context"
	"math"
	"strconv"

	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// Step is one expected hop of the business chain
type Step struct {
	From         string `json:"from"`
	Relationship string `json:"relationship"`
	To           string `json:"to"`
}

// Steps is the business chain, from performance and objectives through
// policy and capability down to processes, systems, risks and projects.
var Steps = []Step{
	{graph.LabelSectorPerformance, "CASCADES_TO", graph.LabelSectorObjective},
	{graph.LabelSectorObjective, "REALIZED_VIA", graph.LabelSectorPolicyTool},
	{graph.LabelSectorPolicyTool, "SETS_PRIORITIES", graph.LabelEntityCapability},
	{graph.LabelEntityCapability, "EXECUTES", graph.LabelEntityProcess},
	{graph.LabelEntityProcess, "AUTOMATION", graph.LabelEntityITSystem},
	{graph.LabelEntityCapability, "MONITORED_BY", graph.LabelEntityRisk},
	{graph.LabelEntityProject, "CLOSE_GAPS", graph.LabelEntityCapability},
}

// RelationshipCheck reports whether an expected relationship type exists
type RelationshipCheck struct {
	Type    string `json:"type"`
	Present bool   `json:"present"`
	Count   int64  `json:"count"`
}

// Diagnostics is the data-quality report
type Diagnostics struct {
	Relationships []RelationshipCheck         `json:"relationships"`
	OrphanCounts  map[string]int64            `json:"orphanCounts"`
	YearCoverage  map[string]map[string]int64 `json:"yearCoverage"`
	MissingYear   map[string]int64            `json:"missingYear"`
}

// Diagnostics checks the expected relationship types, orphan nodes and year
// coverage across the whole store
func (c *Counter) Diagnostics(ctx context.Context) (*Diagnostics, error) {
	d := &Diagnostics{
		OrphanCounts: map[string]int64{},
		YearCoverage: map[string]map[string]int64{},
		MissingYear:  map[string]int64{},
	}

	var relRecs, orphanRecs, yearRecs []graph.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		relRecs, err = c.runner.Run(gctx, relCountQuery(graph.Filter{}))
		return err
	})
	g.Go(func() (err error) {
		orphanRecs, err = c.runner.Run(gctx, graph.Query{
			Name:      "chain_orphans",
			Operation: "chain_count",
			Cypher: "MATCH (n) WHERE " + graph.DomainPredicate("n") + " AND NOT (n)--()\n" +
				domainLabel("n", "label") + "\nRETURN label, count(*) AS count",
		})
		return err
	})
	g.Go(func() (err error) {
		yearRecs, err = c.runner.Run(gctx, graph.Query{
			Name:      "chain_year_coverage",
			Operation: "chain_count",
			Cypher: "MATCH (n) WHERE " + graph.DomainPredicate("n") + "\n" +
				domainLabel("n", "label") + "\nRETURN label, " + graph.YearExpr("n") + " AS year, count(*) AS count",
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	relCounts := map[string]int64{}
	for _, r := range relRecs {
		addCount(relCounts, graph.AsString(r["type"]), graph.AsInt(r["count"]))
	}
	seen := map[string]bool{}
	for _, s := range Steps {
		if seen[s.Relationship] {
			continue
		}
		seen[s.Relationship] = true
		n := relCounts[s.Relationship]
		d.Relationships = append(d.Relationships, RelationshipCheck{Type: s.Relationship, Present: n > 0, Count: n})
	}

	for _, r := range orphanRecs {
		addCount(d.OrphanCounts, graph.AsString(r["label"]), graph.AsInt(r["count"]))
	}

	for _, r := range yearRecs {
		label := graph.AsString(r["label"])
		n := graph.AsInt(r["count"])
		if label == "" || n <= 0 {
			continue
		}
		if r["year"] == nil {
			d.MissingYear[label] += n
			continue
		}
		if d.YearCoverage[label] == nil {
			d.YearCoverage[label] = map[string]int64{}
		}
		d.YearCoverage[label][strconv.FormatInt(graph.AsInt(r["year"]), 10)] += n
	}

	return d, nil
}

// StepStatus is the count and link status of one chain step
type StepStatus struct {
	Step
	Count  int64  `json:"count"`
	Status string `json:"status"`
}

// Integrity summarizes how much of the business chain is connected
type Integrity struct {
	Steps              []StepStatus `json:"steps"`
	ActiveSteps        int          `json:"activeSteps"`
	TotalSteps         int          `json:"totalSteps"`
	Score              float64      `json:"score"`
	TotalNodes         int64        `json:"totalNodes"`
	TotalRelationships int64        `json:"totalRelationships"`
}

// Integrity evaluates every chain step under filter
func (c *Counter) Integrity(ctx context.Context, filter graph.Filter) (*Integrity, error) {
	counts, err := c.Counts(ctx, filter)
	if err != nil {
		return nil, err
	}
	return EvaluateIntegrity(counts), nil
}

// EvaluateIntegrity scores counts against the chain steps
func EvaluateIntegrity(counts *Counts) *Integrity {
	in := &Integrity{TotalSteps: len(Steps)}
	for _, s := range Steps {
		n := counts.SpecificRelCounts[SpecificKey(s.From, s.Relationship, s.To)]
		status := StatusBroken
		if n > 0 {
			status = StatusActive
			in.ActiveSteps++
		}
		in.Steps = append(in.Steps, StepStatus{Step: s, Count: n, Status: status})
	}
	for _, n := range counts.NodeCounts {
		in.TotalNodes += n
	}
	for _, n := range counts.RelCounts {
		in.TotalRelationships += n
	}
	if in.TotalSteps > 0 {
		in.Score = math.Round(float64(in.ActiveSteps)/float64(in.TotalSteps)*1000) / 10
	}
	return in
}
