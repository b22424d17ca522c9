package dashboard

import (
	"fmt"
	"math"
)

// steadyBand is the |delta| below which a trend counts as steady
const steadyBand = 0.5

// Observation is the raw input for one dimension. Zero Planned or
// FinalTarget fall back to the catalogue; a zero Baseline, LastQuarter or
// NextQuarter is replaced by the catalogue projection.
type Observation struct {
	Actual      float64
	Planned     float64
	FinalTarget float64
	Baseline    float64
	LastQuarter float64
	NextQuarter float64
	Unit        string
}

// Clamp limits v to [0, 100]; NaN becomes 0
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// Normalize scales v into [0, 100]. Percentage-native values are clamped;
// other values are divided by ceiling. A zero, negative or NaN ceiling
// yields 0.
func Normalize(v float64, percent bool, ceiling float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if percent {
		return Clamp(v)
	}
	if math.IsNaN(ceiling) || math.IsInf(ceiling, 0) || ceiling <= 0 {
		return 0
	}
	return Clamp(v / ceiling * 100)
}

// Ratio returns part/whole as a percentage in [0, 100], 0 when whole is not positive
func Ratio(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return Clamp(part / whole * 100)
}

// Trend classifies a delta
func Trend(delta float64) string {
	switch {
	case delta >= steadyBand:
		return TrendUp
	case delta <= -steadyBand:
		return TrendDown
	default:
		return TrendSteady
	}
}

func project(spec DimensionSpec, actual float64) (last, next float64) {
	if spec.Projection == ProjectRelative {
		return actual * (1 - spec.Offset/100), actual * (1 + spec.Offset/100)
	}
	return actual - spec.Offset, actual + spec.Offset
}

func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}

func formatKPI(v float64, unit string) string {
	if unit == "%" {
		return fmt.Sprintf("%.1f%%", v)
	}
	if unit == "" {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

// BuildDimension is the single constructor of Dimension records
func BuildDimension(spec DimensionSpec, obs Observation) Dimension {
	unit := spec.Unit
	percent := spec.Percent
	if obs.Unit != "" && obs.Unit != unit {
		unit = obs.Unit
		percent = unit == "%"
	}

	actual := obs.Actual
	if math.IsNaN(actual) || math.IsInf(actual, 0) {
		actual = 0
	}
	planned := obs.Planned
	if planned == 0 {
		planned = spec.Planned
	}
	target := obs.FinalTarget
	if target == 0 {
		target = spec.FinalTarget
	}

	last, next := project(spec, actual)
	if obs.LastQuarter != 0 {
		last = obs.LastQuarter
	}
	if obs.NextQuarter != 0 {
		next = obs.NextQuarter
	}
	baseline := last
	if obs.Baseline != 0 {
		baseline = obs.Baseline
	}
	if percent {
		last, next, baseline = Clamp(last), Clamp(next), Clamp(baseline)
	}
	delta := actual - baseline

	return Dimension{
		ID:             spec.ID,
		Title:          spec.Title,
		KPI:            formatKPI(actual, unit),
		Unit:           unit,
		KPIActual:      round1(actual),
		KPIPlanned:     round1(planned),
		KPIFinalTarget: round1(target),
		Baseline:       round1(baseline),
		LastQuarter:    round1(last),
		NextQuarter:    round1(next),
		Delta:          round1(delta),
		TrendDirection: Trend(delta),
		Actual:         round1(Normalize(actual, percent, target)),
		Planned:        round1(Normalize(planned, percent, target)),
	}
}

// BuildDimensions builds every catalogue dimension, using a zero
// observation for ids missing from obs
func BuildDimensions(obs map[string]Observation) []Dimension {
	out := make([]Dimension, 0, len(Catalogue))
	for _, spec := range Catalogue {
		out = append(out, BuildDimension(spec, obs[spec.ID]))
	}
	return out
}
