// Package schema lists what the transformation graph contains: domain labels,
// relationship types, property keys and the years present in the data.
// Every call is a read; repeated calls against an unchanged store agree.
package schema

import (
	"context"
	"log/slog"
	"sort"

	"github.com/rohankatakam/chaindash/internal/graph"
	"golang.org/x/sync/errgroup"
)

// DefaultSampleSize bounds the nodes scanned for property keys
const DefaultSampleSize = 1000

// Schema is the label and relationship-type overview
type Schema struct {
	Labels            []string `json:"labels"`
	RelationshipTypes []string `json:"relationshipTypes"`
}

// Introspector answers schema questions through a graph.Runner
type Introspector struct {
	runner     graph.Runner
	logger     *slog.Logger
	sampleSize int
}

// NewIntrospector creates an introspector with the default sample size
func NewIntrospector(runner graph.Runner) *Introspector {
	return &Introspector{
		runner:     runner,
		logger:     slog.Default().With("component", "schema"),
		sampleSize: DefaultSampleSize,
	}
}

// WithSampleSize overrides the property sample size
func (i *Introspector) WithSampleSize(n int) *Introspector {
	if n > 0 {
		i.sampleSize = n
	}
	return i
}

// Labels returns all Entity/Sector labels in the store, sorted
func (i *Introspector) Labels(ctx context.Context) ([]string, error) {
	records, err := i.runner.Run(ctx, graph.Query{
		Name:      "schema_labels",
		Operation: "schema_query",
		Cypher:    "CALL db.labels() YIELD label RETURN label",
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(records))
	for _, r := range records {
		if l := graph.AsString(r["label"]); graph.IsDomainLabel(l) {
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

// RelationshipTypes returns every relationship type in the store, sorted
func (i *Introspector) RelationshipTypes(ctx context.Context) ([]string, error) {
	records, err := i.runner.Run(ctx, graph.Query{
		Name:      "schema_relationship_types",
		Operation: "schema_query",
		Cypher:    "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType",
	})
	if err != nil {
		return nil, err
	}

	types := make([]string, 0, len(records))
	for _, r := range records {
		if t := graph.AsString(r["relationshipType"]); t != "" {
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types, nil
}

// Properties returns the property keys seen on a sample of domain nodes,
// without embedding keys, sorted
func (i *Introspector) Properties(ctx context.Context) ([]string, error) {
	records, err := i.runner.Run(ctx, graph.Query{
		Name:      "schema_properties",
		Operation: "schema_query",
		Cypher: `MATCH (n) WHERE ` + graph.DomainPredicate("n") + `
WITH n LIMIT $sample
UNWIND keys(n) AS key
RETURN DISTINCT key`,
		Params: map[string]any{"sample": i.sampleSize},
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(records))
	keys := make([]string, 0, len(records))
	for _, r := range records {
		k := graph.AsString(r["key"])
		if k == "" || graph.IsEmbeddingKey(k) || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Years returns the distinct numeric years present under either casing, ascending
func (i *Introspector) Years(ctx context.Context) ([]int, error) {
	records, err := i.runner.Run(ctx, graph.Query{
		Name:      "schema_years",
		Operation: "schema_query",
		Cypher: `MATCH (n) WHERE ` + graph.DomainPredicate("n") + `
WITH ` + graph.YearExpr("n") + ` AS year
WHERE year IS NOT NULL
RETURN DISTINCT year`,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(records))
	years := make([]int, 0, len(records))
	for _, r := range records {
		v, ok := r["year"]
		if !ok || v == nil {
			continue
		}
		y := int(graph.AsInt(v))
		if y <= 0 || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// Schema returns labels and relationship types, fetched concurrently
func (i *Introspector) Schema(ctx context.Context) (*Schema, error) {
	var s Schema
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		labels, err := i.Labels(gctx)
		s.Labels = labels
		return err
	})
	g.Go(func() error {
		types, err := i.RelationshipTypes(gctx)
		s.RelationshipTypes = types
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	i.logger.Debug("schema loaded", "labels", len(s.Labels), "relationship_types", len(s.RelationshipTypes))
	return &s, nil
}
