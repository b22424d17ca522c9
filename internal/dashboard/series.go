package dashboard

import (
	"github.com/rohankatakam/chaindash/internal/graph"
)

// seriesPoint accumulates one period of a series query. Rows storing the
// quarter as "Q3" and as 3 land in the same point.
type seriesPoint struct {
	total, linked           float64
	valueSum, valueWeight   float64
	targetSum, targetWeight float64
}

func (p *seriesPoint) value() float64 {
	if p == nil {
		return 0
	}
	if p.valueWeight > 0 {
		return Clamp(p.valueSum / p.valueWeight)
	}
	return Ratio(p.linked, p.total)
}

func (p *seriesPoint) target() float64 {
	if p == nil || p.targetWeight == 0 {
		return 0
	}
	return p.targetSum / p.targetWeight
}

// recordPeriod reads year and quarter columns. A missing quarter means
// the record covers the whole year and is counted in Q4.
func recordPeriod(r graph.Record) (graph.Period, bool) {
	year := int(graph.AsInt(r["year"]))
	if year <= 0 {
		return graph.Period{}, false
	}
	if r["quarter"] == nil {
		return graph.Period{Year: year, Quarter: 4}, true
	}
	q, err := graph.ParseQuarter(graph.AsString(r["quarter"]))
	if err != nil || q.Kind != graph.QuarterNumeric {
		return graph.Period{}, false
	}
	return graph.Period{Year: year, Quarter: q.Number}, true
}

func parseSeries(records []graph.Record) map[graph.Period]*seriesPoint {
	out := make(map[graph.Period]*seriesPoint, len(records))
	for _, r := range records {
		period, ok := recordPeriod(r)
		if !ok {
			continue
		}
		p := out[period]
		if p == nil {
			p = &seriesPoint{}
			out[period] = p
		}
		total := graph.AsFloat(r["total"])
		p.total += total
		p.linked += graph.AsFloat(r["linked"])
		weight := total
		if weight <= 0 {
			weight = 1
		}
		if r["value"] != nil {
			p.valueSum += graph.AsFloat(r["value"]) * weight
			p.valueWeight += weight
		}
		if r["target"] != nil {
			p.targetSum += graph.AsFloat(r["target"]) * weight
			p.targetWeight += weight
		}
	}
	return out
}

func latestPeriod(series ...map[graph.Period]*seriesPoint) (graph.Period, bool) {
	var latest graph.Period
	found := false
	for _, s := range series {
		for p := range s {
			if !found || p.Compare(latest) > 0 {
				latest, found = p, true
			}
		}
	}
	return latest, found
}

func seriesValues(s map[graph.Period]*seriesPoint, periods []graph.Period) (values, targets []float64) {
	values = make([]float64, len(periods))
	targets = make([]float64, len(periods))
	for i, p := range periods {
		values[i] = round1(s[p].value())
		targets[i] = round1(s[p].target())
	}
	return values, targets
}

// pointObservation turns a pointQuery record into an observation. Without
// an enriched value the linked ratio is used.
func pointObservation(records []graph.Record) Observation {
	if len(records) == 0 {
		return Observation{}
	}
	r := records[0]
	actual := Ratio(graph.AsFloat(r["linked"]), graph.AsFloat(r["total"]))
	if r["value"] != nil {
		actual = graph.AsFloat(r["value"])
	}
	return Observation{
		Actual:      actual,
		FinalTarget: graph.AsFloat(r["target"]),
		Baseline:    graph.AsFloat(r["baseline"]),
	}
}
