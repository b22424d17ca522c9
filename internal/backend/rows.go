package backend

import (
	"sort"
	"strings"

	"github.com/rohankatakam/chaindash/internal/graph"
)

// ParsePeriod parses a "Qn YYYY" quarter string
func ParsePeriod(s string) (graph.Period, error) {
	return graph.ParsePeriod(s)
}

// Selection narrows rows to a period. Zero fields are unset.
//
//	year + quarter  exact quarter, else the latest earlier one
//	year only       the latest quarter within that year
//	quarter only    that quarter of the latest year that has it
type Selection struct {
	Year    int
	Quarter int
}

// Bound returns the latest period the selection admits; ok is false when
// the selection is open-ended
func (s Selection) Bound() (p graph.Period, ok bool) {
	switch {
	case s.Year > 0 && s.Quarter >= 1 && s.Quarter <= 4:
		return graph.Period{Year: s.Year, Quarter: s.Quarter}, true
	case s.Year > 0:
		return graph.Period{Year: s.Year, Quarter: 4}, true
	default:
		return graph.Period{}, false
	}
}

func (s Selection) hasQuarter() bool {
	return s.Quarter >= 1 && s.Quarter <= 4
}

// Admits reports whether a row of period p may be selected
func (s Selection) Admits(p graph.Period) bool {
	switch {
	case s.Year > 0 && s.hasQuarter():
		return p.Compare(graph.Period{Year: s.Year, Quarter: s.Quarter}) <= 0
	case s.Year > 0:
		return p.Year == s.Year
	case s.hasQuarter():
		return p.Quarter == s.Quarter
	default:
		return true
	}
}

// Title returns the row's dimension, outcome or initiative title
func Title(r Row) string {
	return strings.TrimSpace(graph.AsString(graph.FirstOf(r, "title", "Title", "dimension", "outcome", "name", "Name")))
}

// PeriodOf returns the row's period from a "Qn YYYY" field or from
// separate year and quarter fields
func PeriodOf(r Row) (graph.Period, bool) {
	if s := graph.AsString(graph.FirstOf(r, "quarter", "Quarter", "period", "Period")); s != "" {
		if p, err := graph.ParsePeriod(s); err == nil {
			return p, true
		}
	}
	y := graph.YearOf(r)
	q := graph.QuarterOf(r)
	if y > 0 && q > 0 {
		return graph.Period{Year: y, Quarter: q}, true
	}
	return graph.Period{}, false
}

// SelectRows keeps, for each title, the row of the latest period the
// selection admits. Titles with no admitted row are left out. Input order
// does not matter; output is sorted by title.
func SelectRows(rows []Row, sel Selection) []Row {
	type pick struct {
		row    Row
		period graph.Period
	}
	best := map[string]pick{}
	for _, r := range rows {
		title := Title(r)
		p, ok := PeriodOf(r)
		if title == "" || !ok {
			continue
		}
		if !sel.Admits(p) {
			continue
		}
		if cur, seen := best[title]; !seen || p.Compare(cur.period) > 0 {
			best[title] = pick{row: r, period: p}
		}
	}

	titles := make([]string, 0, len(best))
	for t := range best {
		titles = append(titles, t)
	}
	sort.Strings(titles)

	out := make([]Row, 0, len(titles))
	for _, t := range titles {
		out = append(out, best[t].row)
	}
	return out
}

// Latest returns the latest period across rows, if any
func Latest(rows []Row) (graph.Period, bool) {
	var latest graph.Period
	found := false
	for _, r := range rows {
		p, ok := PeriodOf(r)
		if ok && (!found || p.Compare(latest) > 0) {
			latest, found = p, true
		}
	}
	return latest, found
}
