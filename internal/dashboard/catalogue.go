package dashboard

import (
	"strings"

	"github.com/rohankatakam/chaindash/internal/graph"
)

// Projection modes for the synthetic last/next quarter values
const (
	ProjectAbsolute = "absolute" // ± Offset points
	ProjectRelative = "relative" // ± Offset percent of the actual value
)

// CountRule derives a dimension from chain counts: relationships matching
// Key per node of Denominator, as a percentage
type CountRule struct {
	Key         string
	Specific    bool
	Denominator string
}

// DimensionSpec describes one dimension. Every source builds its
// dimensions from these entries, so all of them produce the same records.
type DimensionSpec struct {
	ID          string
	Title       string
	Unit        string
	Percent     bool
	Planned     float64
	FinalTarget float64
	Offset      float64
	Projection  string
	Count       CountRule
}

// Catalogue lists the eight dimensions in display order
var Catalogue = []DimensionSpec{
	{
		ID: "strategic_alignment", Title: "Strategic Alignment", Unit: "%", Percent: true,
		Planned: 85, FinalTarget: 95, Offset: 3, Projection: ProjectAbsolute,
		Count: CountRule{Key: "SectorObjective-[REALIZED_VIA]->SectorPolicyTool", Specific: true, Denominator: graph.LabelSectorObjective},
	},
	{
		ID: "operational_efficiency", Title: "Operational Efficiency", Unit: "%", Percent: true,
		Planned: 80, FinalTarget: 90, Offset: 2, Projection: ProjectAbsolute,
		Count: CountRule{Key: "EntityProcess-[AUTOMATION]->EntityITSystem", Specific: true, Denominator: graph.LabelEntityProcess},
	},
	{
		ID: "risk_mitigation", Title: "Risk Mitigation", Unit: "%", Percent: true,
		Planned: 75, FinalTarget: 90, Offset: 4, Projection: ProjectAbsolute,
		Count: CountRule{Key: "EntityCapability-[MONITORED_BY]->EntityRisk", Specific: true, Denominator: graph.LabelEntityRisk},
	},
	{
		ID: "investment", Title: "Investment Utilization", Unit: "%", Percent: true,
		Planned: 70, FinalTarget: 85, Offset: 5, Projection: ProjectRelative,
		Count: CountRule{Key: "EntityProject-[CLOSE_GAPS]->EntityCapability", Specific: true, Denominator: graph.LabelEntityProject},
	},
	{
		ID: "adoption", Title: "Change Adoption", Unit: "%", Percent: true,
		Planned: 65, FinalTarget: 80, Offset: 5, Projection: ProjectRelative,
		Count: CountRule{Key: "EntityChangeAdoption-EntityCapability", Denominator: graph.LabelEntityChangeAdoption},
	},
	{
		ID: "engagement", Title: "Employee Engagement", Unit: "%", Percent: true,
		Planned: 70, FinalTarget: 85, Offset: 2, Projection: ProjectAbsolute,
		Count: CountRule{Key: "EntityCultureHealth-EntityOrgUnit", Denominator: graph.LabelEntityCultureHealth},
	},
	{
		ID: "delivery", Title: "Project Delivery", Unit: "%", Percent: true,
		Planned: 75, FinalTarget: 90, Offset: 3, Projection: ProjectAbsolute,
		Count: CountRule{Key: "EntityProject-EntityOrgUnit", Denominator: graph.LabelEntityProject},
	},
	{
		ID: "technology_compliance", Title: "Technology Compliance", Unit: "%", Percent: true,
		Planned: 85, FinalTarget: 95, Offset: 2, Projection: ProjectAbsolute,
		Count: CountRule{Key: "EntityProcess-[AUTOMATION]->EntityITSystem", Specific: true, Denominator: graph.LabelEntityITSystem},
	},
}

// Lookup finds a catalogue entry by id or title, ignoring case and separators
func Lookup(key string) (DimensionSpec, bool) {
	k := canonical(key)
	for _, d := range Catalogue {
		if canonical(d.ID) == k || canonical(d.Title) == k {
			return d, true
		}
	}
	// Backend titles are sometimes shortened to their leading words
	// ("Investment", "Technology"); partial words never match
	kw := words(key)
	for _, d := range Catalogue {
		if leadingWords(kw, words(d.Title)) || leadingWords(kw, words(d.ID)) {
			return d, true
		}
	}
	return DimensionSpec{}, false
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}

func leadingWords(key, title []string) bool {
	if len(key) == 0 || len(key) > len(title) {
		return false
	}
	for i := range key {
		if key[i] != title[i] {
			return false
		}
	}
	return true
}

func canonical(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Outcome and insight titles
const (
	Insight1Title = "Top Initiatives: Budget, Risk and Alignment"
	Insight2Title = "Project Velocity vs Operational Efficiency"
	Insight3Title = "Operational Efficiency vs Citizen Impact"

	OutcomeSectorPerformance     = "sector_performance"
	OutcomeServiceDelivery       = "service_delivery"
	OutcomePartnershipEngagement = "partnership_engagement"
	OutcomeCommunityEngagement   = "community_engagement"
)

var outcomeTitles = map[string]string{
	OutcomeSectorPerformance:     "Sector Performance",
	OutcomeServiceDelivery:       "Service Delivery",
	OutcomePartnershipEngagement: "Partnership Engagement",
	OutcomeCommunityEngagement:   "Community Engagement",
}

// OutcomeTitle returns the display title of an outcome id
func OutcomeTitle(id string) string { return outcomeTitles[id] }

// outcomeID maps a free-form outcome title to an outcome id
func outcomeID(title string) string {
	t := canonical(title)
	for id, name := range outcomeTitles {
		if canonical(name) == t || canonical(id) == t {
			return id
		}
	}
	switch {
	case strings.Contains(t, "partner"):
		return OutcomePartnershipEngagement
	case strings.Contains(t, "communit"), strings.Contains(t, "citizen"):
		return OutcomeCommunityEngagement
	case strings.Contains(t, "service"), strings.Contains(t, "delivery"):
		return OutcomeServiceDelivery
	case strings.Contains(t, "sector"), strings.Contains(t, "performance"):
		return OutcomeSectorPerformance
	}
	return ""
}

// WindowSize is the number of periods in insight and outcome series
const WindowSize = 3
