package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuarter(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    QuarterFilter
		wantErr bool
	}{
		{"empty", "", QuarterFilter{Kind: QuarterNone}, false},
		{"all", "ALL", QuarterFilter{Kind: QuarterNone}, false},
		{"prefixed", "Q3", QuarterFilter{Kind: QuarterNumeric, Number: 3}, false},
		{"lowercase prefix", "q1", QuarterFilter{Kind: QuarterNumeric, Number: 1}, false},
		{"bare integer", "4", QuarterFilter{Kind: QuarterNumeric, Number: 4}, false},
		{"out of range", "Q7", QuarterFilter{Kind: QuarterNone}, true},
		{"bare out of range", "0", QuarterFilter{Kind: QuarterNone}, true},
		{"garbage after Q", "Qx", QuarterFilter{Kind: QuarterNone}, true},
		{"literal", "H1", QuarterFilter{Kind: QuarterLiteral, Literal: "H1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseQuarter(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuarterPredicate(t *testing.T) {
	b := NewCypherBuilder()
	q, err := ParseQuarter("Q3")
	require.NoError(t, err)

	clause := q.Predicate("n", b)
	assert.Equal(t, "toUpper(toString(coalesce(n.quarter, n.Quarter))) IN $p0", clause)
	assert.Equal(t, []string{"Q3", "3", "3.0"}, b.Params()["p0"])

	none, _ := ParseQuarter("all")
	assert.Empty(t, none.Predicate("n", b))
}

func TestYearAndQuarterOf(t *testing.T) {
	assert.Equal(t, 2025, YearOf(map[string]any{"year": int64(2025)}))
	assert.Equal(t, 2024, YearOf(map[string]any{"Year": "2024"}))
	assert.Equal(t, 0, YearOf(map[string]any{}))

	assert.Equal(t, 3, QuarterOf(map[string]any{"quarter": "Q3"}))
	assert.Equal(t, 2, QuarterOf(map[string]any{"Quarter": int64(2)}))
	assert.Equal(t, 0, QuarterOf(map[string]any{"quarter": "H1"}))
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want Period
	}{
		{"Q2 2026", Period{Year: 2026, Quarter: 2}},
		{"2025 Q4", Period{Year: 2025, Quarter: 4}},
		{"q1-2024", Period{Year: 2024, Quarter: 1}},
	}
	for _, tt := range tests {
		got, err := ParsePeriod(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParsePeriod("2025")
	assert.Error(t, err)
	_, err = ParsePeriod("Q5 2025")
	assert.Error(t, err)
}

func TestPeriodOrdering(t *testing.T) {
	q4 := Period{Year: 2025, Quarter: 4}
	q1 := Period{Year: 2026, Quarter: 1}

	assert.Equal(t, -1, q4.Compare(q1))
	assert.Equal(t, 1, q1.Compare(q4))
	assert.Equal(t, 0, q1.Compare(q4.Next()))
	assert.Equal(t, q4, q1.Prev())
	assert.Equal(t, "Q1 2026", q1.String())
}
