package graph

import "strings"

// Label families. A node takes part in any result only when one of its
// labels carries one of these prefixes.
const (
	PrefixEntity = "Entity"
	PrefixSector = "Sector"
)

// Domain labels of the transformation graph
const (
	LabelSectorObjective       = "SectorObjective"
	LabelSectorPolicyTool      = "SectorPolicyTool"
	LabelSectorAdminRecord     = "SectorAdminRecord"
	LabelSectorCitizen         = "SectorCitizen"
	LabelSectorBusiness        = "SectorBusiness"
	LabelSectorGovEntity       = "SectorGovEntity"
	LabelSectorDataTransaction = "SectorDataTransaction"
	LabelSectorPerformance     = "SectorPerformance"

	LabelEntityCapability     = "EntityCapability"
	LabelEntityRisk           = "EntityRisk"
	LabelEntityProject        = "EntityProject"
	LabelEntityProcess        = "EntityProcess"
	LabelEntityOrgUnit        = "EntityOrgUnit"
	LabelEntityITSystem       = "EntityITSystem"
	LabelEntityVendor         = "EntityVendor"
	LabelEntityCultureHealth  = "EntityCultureHealth"
	LabelEntityChangeAdoption = "EntityChangeAdoption"
)

// FallbackColor is used for labels outside the color table
const FallbackColor = "#9CA3AF"

var labelColors = map[string]string{
	LabelSectorObjective:       "#EF4444",
	LabelSectorPolicyTool:      "#F97316",
	LabelSectorAdminRecord:     "#F59E0B",
	LabelSectorCitizen:         "#EAB308",
	LabelSectorBusiness:        "#84CC16",
	LabelSectorGovEntity:       "#22C55E",
	LabelSectorDataTransaction: "#10B981",
	LabelSectorPerformance:     "#14B8A6",
	LabelEntityCapability:      "#06B6D4",
	LabelEntityRisk:            "#DC2626",
	LabelEntityProject:         "#3B82F6",
	LabelEntityProcess:         "#6366F1",
	LabelEntityOrgUnit:         "#8B5CF6",
	LabelEntityITSystem:        "#A855F7",
	LabelEntityVendor:          "#D946EF",
	LabelEntityCultureHealth:   "#EC4899",
	LabelEntityChangeAdoption:  "#F43F5E",
}

// IsDomainLabel reports whether label belongs to the Entity or Sector family
func IsDomainLabel(label string) bool {
	return strings.HasPrefix(label, PrefixEntity) || strings.HasPrefix(label, PrefixSector)
}

// HasDomainLabel reports whether any label belongs to a domain family
func HasDomainLabel(labels []string) bool {
	for _, l := range labels {
		if IsDomainLabel(l) {
			return true
		}
	}
	return false
}

// PrimaryLabel returns the first domain label, or the first label, or ""
func PrimaryLabel(labels []string) string {
	for _, l := range labels {
		if IsDomainLabel(l) {
			return l
		}
	}
	if len(labels) > 0 {
		return labels[0]
	}
	return ""
}

// ColorFor returns the display color of label
func ColorFor(label string) string {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return FallbackColor
}

// DomainPredicate is the Cypher label-prefix test for variable v
func DomainPredicate(v string) string {
	return "any(l IN labels(" + v + ") WHERE l STARTS WITH '" + PrefixEntity + "' OR l STARTS WITH '" + PrefixSector + "')"
}
