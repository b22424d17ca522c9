// Package explorer returns filtered subgraphs for the visual graph explorer.
//
// The row limit binds to source nodes before their outgoing relationships
// are expanded, so a small limit never turns into a full relationship scan.
package explorer

import (
	"context"
	"log/slog"

	"github.com/rohankatakam/chaindash/internal/graph"
)

const (
	DefaultLimit = 200
	MaxLimit     = 5000
)

// Request selects the subgraph to fetch. Labels is required: an empty set
// yields an empty graph rather than everything.
type Request struct {
	Labels        []string
	Relationships []string
	Years         []int
	Quarter       string
	Limit         int
}

// GraphNode is a node ready for rendering
type GraphNode struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Labels     []string       `json:"labels"`
	Group      string         `json:"group"`
	Color      string         `json:"color"`
	Val        float64        `json:"val"`
	Properties map[string]any `json:"properties"`
}

// GraphLink is a relationship ready for rendering
type GraphLink struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
}

// GraphData is the fetch result
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// LabelLister reports the domain labels the store knows about
type LabelLister interface {
	Labels(ctx context.Context) ([]string, error)
}

// Fetcher runs filtered fetches
type Fetcher struct {
	runner graph.Runner
	labels LabelLister
	logger *slog.Logger
}

// NewFetcher creates a fetcher. labels decides whether a request covers the
// whole catalogue; it is normally a schema.Introspector.
func NewFetcher(runner graph.Runner, labels LabelLister) *Fetcher {
	return &Fetcher{
		runner: runner,
		labels: labels,
		logger: slog.Default().With("component", "explorer"),
	}
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Fetch returns the deduplicated nodes and links matching req
func (f *Fetcher) Fetch(ctx context.Context, req Request) (*GraphData, error) {
	data := &GraphData{Nodes: []GraphNode{}, Links: []GraphLink{}}

	if graph.NewLabelFilter(req.Labels, nil).Empty() {
		return data, nil
	}

	var known []string
	if f.labels != nil {
		var err error
		known, err = f.labels.Labels(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			// Without the catalogue the explicit label list still gives the same result
			f.logger.Warn("label catalogue unavailable, using explicit label filter", "error", err)
			known = nil
		}
	}
	labels := graph.NewLabelFilter(req.Labels, known)
	temporal := graph.Filter{Years: req.Years, Quarter: req.Quarter}
	limit := normalizeLimit(req.Limit)

	sources, err := f.sourceNodes(ctx, labels, temporal, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(sources))
	ids := make([]string, 0, len(sources))
	for _, n := range sources {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		ids = append(ids, n.ID)
		data.Nodes = append(data.Nodes, annotate(n))
	}
	if len(ids) == 0 {
		return data, nil
	}

	relTypes := graph.ValidIdentifiers(req.Relationships)
	if len(req.Relationships) > 0 && len(relTypes) == 0 {
		f.logger.Warn("no valid relationship types requested, skipping expansion", "requested", req.Relationships)
		return data, nil
	}

	records, err := f.expand(ctx, ids, relTypes, labels)
	if err != nil {
		return nil, err
	}

	linkSeen := make(map[string]bool, len(records))
	for _, r := range records {
		rel, ok := r["r"].(graph.Relationship)
		if !ok {
			continue
		}
		target, ok := r["m"].(graph.Node)
		if !ok || !graph.HasDomainLabel(target.Labels) || !labels.Allows(target.Labels) {
			continue
		}
		if !seen[target.ID] {
			seen[target.ID] = true
			data.Nodes = append(data.Nodes, annotate(target))
		}
		if linkSeen[rel.ID] {
			continue
		}
		linkSeen[rel.ID] = true
		data.Links = append(data.Links, GraphLink{
			ID:     rel.ID,
			Source: rel.StartID,
			Target: rel.EndID,
			Type:   rel.Type,
			Value:  linkValue(rel.Properties),
		})
	}

	f.logger.Debug("graph fetched",
		"source_nodes", len(ids),
		"nodes", len(data.Nodes),
		"links", len(data.Links),
		"pattern", labels.Pattern())
	return data, nil
}

func (f *Fetcher) sourceNodes(ctx context.Context, labels graph.LabelFilter, temporal graph.Filter, limit int) ([]graph.Node, error) {
	b := graph.NewCypherBuilder()
	clauses := append([]string{labels.Predicate("n", b)}, temporal.Predicates("n", b)...)
	cypher := "MATCH (n) " + graph.Where(clauses...) + " RETURN n LIMIT " + b.Set("limit", limit)

	records, err := f.runner.Run(ctx, b.Query("graph_source_nodes", "graph_fetch", cypher))
	if err != nil {
		return nil, err
	}

	nodes := make([]graph.Node, 0, len(records))
	for _, r := range records {
		if n, ok := r["n"].(graph.Node); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes, nil
}

func (f *Fetcher) expand(ctx context.Context, ids, relTypes []string, labels graph.LabelFilter) ([]graph.Record, error) {
	b := graph.NewCypherBuilder()
	clauses := []string{"elementId(n) IN " + b.Set("ids", ids)}
	if len(relTypes) > 0 {
		clauses = append(clauses, "type(r) IN "+b.Set("types", relTypes))
	}
	clauses = append(clauses, labels.Predicate("m", b))
	cypher := "MATCH (n)-[r]->(m) " + graph.Where(clauses...) + " RETURN r, m"

	return f.runner.Run(ctx, b.Query("graph_expand", "graph_fetch", cypher))
}

func annotate(n graph.Node) GraphNode {
	primary := graph.PrimaryLabel(n.Labels)
	display := graph.AsString(graph.FirstOf(n.Properties, "name", "Name", "title", "Title"))
	if display == "" {
		display = n.ID
	}
	val := graph.AsFloat(graph.FirstOf(n.Properties, "size", "val", "weight"))
	if val <= 0 {
		val = 1
	}
	return GraphNode{
		ID:         n.ID,
		Label:      display,
		Labels:     n.Labels,
		Group:      primary,
		Color:      graph.ColorFor(primary),
		Val:        val,
		Properties: n.Properties,
	}
}

func linkValue(props map[string]any) float64 {
	v := graph.AsFloat(graph.FirstOf(props, "weight", "value", "Weight", "Value"))
	if v == 0 {
		return 1
	}
	return v
}
