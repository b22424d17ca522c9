package graph

import (
	"fmt"
	"regexp"
	"strings"
)

// CypherBuilder collects parameters for a read query.
// Every value reaches the database as a parameter; only validated
// identifiers are ever interpolated into query text.
type CypherBuilder struct {
	params  map[string]any
	counter int
}

// NewCypherBuilder creates a query builder
func NewCypherBuilder() *CypherBuilder {
	return &CypherBuilder{
		params:  make(map[string]any),
		counter: 0,
	}
}

// AddParam adds a parameter and returns its placeholder
func (b *CypherBuilder) AddParam(value any) string {
	paramName := fmt.Sprintf("p%d", b.counter)
	b.counter++
	b.params[paramName] = value
	return "$" + paramName
}

// Set adds a named parameter and returns its placeholder
func (b *CypherBuilder) Set(name string, value any) string {
	b.params[name] = value
	return "$" + name
}

// Params returns all parameters for the query
func (b *CypherBuilder) Params() map[string]any {
	return b.params
}

// Where joins non-empty clauses with AND into a WHERE clause, or "" when none
func Where(clauses ...string) string {
	kept := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if strings.TrimSpace(c) != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(kept, " AND ")
}

// Query assembles a named query from cypher and the collected parameters
func (b *CypherBuilder) Query(name, operation, cypher string) Query {
	return Query{Name: name, Operation: operation, Cypher: cypher, Params: b.params}
}

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier checks that a label, type or key is safe to interpolate
func isValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ValidIdentifiers returns the subset of ids safe to interpolate
func ValidIdentifiers(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isValidIdentifier(id) {
			out = append(out, id)
		}
	}
	return out
}
