package graph

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Year and quarter live under either casing. These expressions are the only
// place that knows about it; every filter and projection goes through them.

// YearExpr is the normalized integer year of variable v
func YearExpr(v string) string {
	return fmt.Sprintf("toInteger(coalesce(%s.year, %s.Year))", v, v)
}

// QuarterExpr is the raw quarter value of variable v ("Q3" or 3)
func QuarterExpr(v string) string {
	return fmt.Sprintf("coalesce(%s.quarter, %s.Quarter)", v, v)
}

// YearOf returns the year stored on props under either casing, 0 if absent
func YearOf(props map[string]any) int {
	return int(AsInt(FirstOf(props, "year", "Year")))
}

// QuarterOf returns the quarter number (1..4) stored on props, 0 if absent or unparseable
func QuarterOf(props map[string]any) int {
	q, err := ParseQuarter(AsString(FirstOf(props, "quarter", "Quarter")))
	if err != nil || q.Kind != QuarterNumeric {
		return 0
	}
	return q.Number
}

// QuarterKind classifies a quarter filter token
type QuarterKind int

const (
	// QuarterNone applies no quarter filter
	QuarterNone QuarterKind = iota
	// QuarterNumeric matches quarter n stored as "Qn" or n
	QuarterNumeric
	// QuarterLiteral matches the token exactly
	QuarterLiteral
)

// QuarterFilter is a parsed quarter token
type QuarterFilter struct {
	Kind    QuarterKind
	Number  int
	Literal string
}

var quarterPrefix = regexp.MustCompile(`^[Qq]`)

// ParseQuarter parses a quarter token.
//
//	""/"all"        -> no filter
//	"Q3", "q3", "3" -> numeric quarter 3
//	"Q9", "Qx", "7" -> error (callers fall back to no filter)
//	"H1"            -> literal match on "H1"
func ParseQuarter(token string) (QuarterFilter, error) {
	t := strings.TrimSpace(token)
	if t == "" || strings.EqualFold(t, "all") {
		return QuarterFilter{Kind: QuarterNone}, nil
	}

	digits := t
	prefixed := quarterPrefix.MatchString(t)
	if prefixed {
		digits = t[1:]
	}
	if n, err := strconv.Atoi(digits); err == nil {
		if n < 1 || n > 4 {
			return QuarterFilter{Kind: QuarterNone}, fmt.Errorf("quarter %q out of range", token)
		}
		return QuarterFilter{Kind: QuarterNumeric, Number: n}, nil
	}
	if prefixed {
		return QuarterFilter{Kind: QuarterNone}, fmt.Errorf("malformed quarter %q", token)
	}
	return QuarterFilter{Kind: QuarterLiteral, Literal: t}, nil
}

// Tokens lists the stored representations a numeric quarter may take
func (q QuarterFilter) Tokens() []string {
	n := strconv.Itoa(q.Number)
	return []string{"Q" + n, n, n + ".0"}
}

// Predicate renders the quarter test for variable v, or "" for no filter
func (q QuarterFilter) Predicate(v string, b *CypherBuilder) string {
	switch q.Kind {
	case QuarterNumeric:
		return fmt.Sprintf("toUpper(toString(%s)) IN %s", QuarterExpr(v), b.AddParam(q.Tokens()))
	case QuarterLiteral:
		return fmt.Sprintf("toString(%s) = %s", QuarterExpr(v), b.AddParam(q.Literal))
	default:
		return ""
	}
}

// Period is a calendar quarter
type Period struct {
	Year    int
	Quarter int
}

var periodPattern = regexp.MustCompile(`^[Qq]([1-4])[\s\-/]*(\d{4})$|^(\d{4})[\s\-/]*[Qq]([1-4])$`)

// ParsePeriod parses "Q3 2025" (also "2025 Q3", "Q3-2025")
func ParsePeriod(s string) (Period, error) {
	m := periodPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Period{}, fmt.Errorf("malformed period %q", s)
	}
	if m[1] != "" {
		q, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		return Period{Year: y, Quarter: q}, nil
	}
	y, _ := strconv.Atoi(m[3])
	q, _ := strconv.Atoi(m[4])
	return Period{Year: y, Quarter: q}, nil
}

// String formats the period as "Q3 2025"
func (p Period) String() string {
	return fmt.Sprintf("Q%d %d", p.Quarter, p.Year)
}

// Index orders periods chronologically
func (p Period) Index() int {
	return p.Year*4 + p.Quarter - 1
}

// Compare returns -1, 0 or 1
func (p Period) Compare(o Period) int {
	switch a, b := p.Index(), o.Index(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Prev returns the preceding quarter
func (p Period) Prev() Period {
	if p.Quarter <= 1 {
		return Period{Year: p.Year - 1, Quarter: 4}
	}
	return Period{Year: p.Year, Quarter: p.Quarter - 1}
}

// Next returns the following quarter
func (p Period) Next() Period {
	if p.Quarter >= 4 {
		return Period{Year: p.Year + 1, Quarter: 1}
	}
	return Period{Year: p.Year, Quarter: p.Quarter + 1}
}
