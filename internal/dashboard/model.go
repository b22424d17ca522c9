package dashboard

// Trend directions
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendSteady = "steady"
)

// Dimension is one normalized KPI. Actual and Planned are on a 0 to 100 scale;
// the kpi* fields carry the raw values.
type Dimension struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	KPI            string  `json:"kpi"`
	Unit           string  `json:"unit"`
	KPIActual      float64 `json:"kpiActual"`
	KPIPlanned     float64 `json:"kpiPlanned"`
	KPIFinalTarget float64 `json:"kpiFinalTarget"`
	Baseline       float64 `json:"baseline"`
	LastQuarter    float64 `json:"lastQuarter"`
	NextQuarter    float64 `json:"nextQuarter"`
	Delta          float64 `json:"delta"`
	TrendDirection string  `json:"trendDirection"`
	Actual         float64 `json:"actual"`
	Planned        float64 `json:"planned"`
}

// Initiative is one row of the initiative comparison
type Initiative struct {
	Name      string  `json:"name"`
	Budget    float64 `json:"budget"`
	Risk      float64 `json:"risk"`
	Alignment float64 `json:"alignment"`
}

// Insight1 compares top initiatives by budget, risk and alignment
type Insight1 struct {
	Title       string       `json:"title"`
	Initiatives []Initiative `json:"initiatives"`
}

// Insight2 tracks project velocity against operational efficiency
type Insight2 struct {
	Title                 string    `json:"title"`
	Labels                []string  `json:"labels"`
	ProjectVelocity       []float64 `json:"projectVelocity"`
	OperationalEfficiency []float64 `json:"operationalEfficiency"`
}

// Insight3 correlates operational efficiency with citizen impact
type Insight3 struct {
	Title                 string    `json:"title"`
	Labels                []string  `json:"labels"`
	OperationalEfficiency []float64 `json:"operationalEfficiency"`
	CitizenImpact         []float64 `json:"citizenImpact"`
}

// Outcome kinds
const (
	KindSeries = "series"
	KindPoint  = "point"
)

// Outcome is a sector-facing summary, either a short time series or a
// point-in-time value against a target
type Outcome struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Kind        string    `json:"kind"`
	Labels      []string  `json:"labels,omitempty"`
	Actual      []float64 `json:"actual,omitempty"`
	Target      []float64 `json:"target,omitempty"`
	Value       float64   `json:"value"`
	TargetValue float64   `json:"targetValue"`
}

// Outcomes groups the four strategic outcomes
type Outcomes struct {
	SectorPerformance     Outcome `json:"sectorPerformance"`
	ServiceDelivery       Outcome `json:"serviceDelivery"`
	PartnershipEngagement Outcome `json:"partnershipEngagement"`
	CommunityEngagement   Outcome `json:"communityEngagement"`
}

// Metrics is the full dashboard payload
type Metrics struct {
	Dimensions []Dimension `json:"dimensions"`
	Insight1   Insight1    `json:"insight1"`
	Insight2   Insight2    `json:"insight2"`
	Insight3   Insight3    `json:"insight3"`
	Outcomes   Outcomes    `json:"outcomes"`
	Source     string      `json:"source"`
}
