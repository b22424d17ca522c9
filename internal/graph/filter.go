package graph

import (
	"log/slog"
	"sort"
)

// LabelFilter restricts results to a set of requested domain labels.
// When the request covers every label the store knows, the cheaper prefix
// test is used instead of the explicit list; both select the same nodes.
type LabelFilter struct {
	labels  []string
	set     map[string]bool
	pattern bool
}

// NewLabelFilter reduces requested to valid domain labels and decides
// between the prefix pattern and the explicit list using known.
func NewLabelFilter(requested, known []string) LabelFilter {
	set := make(map[string]bool, len(requested))
	for _, l := range requested {
		if IsDomainLabel(l) && isValidIdentifier(l) {
			set[l] = true
		}
	}
	labels := make([]string, 0, len(set))
	for l := range set {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	pattern := len(labels) > 0
	knownDomain := 0
	for _, l := range known {
		if !IsDomainLabel(l) {
			continue
		}
		knownDomain++
		if !set[l] {
			pattern = false
		}
	}
	if knownDomain == 0 {
		pattern = false
	}

	return LabelFilter{labels: labels, set: set, pattern: pattern}
}

// Labels returns the effective labels, sorted
func (f LabelFilter) Labels() []string { return f.labels }

// Empty reports whether no domain label was requested
func (f LabelFilter) Empty() bool { return len(f.labels) == 0 }

// Pattern reports whether the prefix fast path is in use
func (f LabelFilter) Pattern() bool { return f.pattern }

// Predicate renders the label test for variable v
func (f LabelFilter) Predicate(v string, b *CypherBuilder) string {
	if f.pattern {
		return DomainPredicate(v)
	}
	return "any(l IN labels(" + v + ") WHERE l IN " + b.AddParam(f.labels) + ")"
}

// Allows applies the same test in Go to a converted node's labels
func (f LabelFilter) Allows(labels []string) bool {
	if f.pattern {
		return HasDomainLabel(labels)
	}
	for _, l := range labels {
		if f.set[l] {
			return true
		}
	}
	return false
}

// Filter is the temporal filter shared by the fetch and counting queries
type Filter struct {
	Years   []int
	Quarter string
}

// Predicates renders the year and quarter tests for variable v.
// A malformed quarter is logged and ignored.
func (f Filter) Predicates(v string, b *CypherBuilder) []string {
	var clauses []string
	if len(f.Years) > 0 {
		clauses = append(clauses, YearExpr(v)+" IN "+b.AddParam(f.Years))
	}

	q, err := ParseQuarter(f.Quarter)
	if err != nil {
		slog.Default().Warn("ignoring quarter filter", "quarter", f.Quarter, "error", err)
	}
	if p := q.Predicate(v, b); p != "" {
		clauses = append(clauses, p)
	}
	return clauses
}
