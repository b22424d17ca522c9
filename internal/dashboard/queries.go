package dashboard

import (
	"strings"

	"github.com/rohankatakam/chaindash/internal/graph"
)

// traversal describes one root-entity computation: how many roots exist,
// how many satisfy Linked, and an optional enriched Value aggregate.
type traversal struct {
	Name   string
	Root   string
	Where  string // extra predicate on x
	Linked string // boolean expression on x
	Value  string // aggregate over x; null when the data lacks the property
	Target string // aggregate over x
}

// prop coalesces property name variants of x into a float
func prop(names ...string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = "x." + n
	}
	return "toFloatOrNull(coalesce(" + strings.Join(parts, ", ") + "))"
}

func avgProp(names ...string) string { return "avg(" + prop(names...) + ")" }

func exists(pattern string) string { return "EXISTS { MATCH " + pattern + " }" }

var targetAvg = avgProp("target", "Target", "kpi_target")

// dimensionTraversals computes one dimension each
var dimensionTraversals = map[string]traversal{
	"strategic_alignment": {
		Root:   graph.LabelSectorObjective,
		Linked: exists("(x)-[:REALIZED_VIA]->(:SectorPolicyTool)-[:SETS_PRIORITIES]->(:EntityCapability)"),
		Value:  avgProp("alignment_score", "alignmentScore", "alignment"),
	},
	"operational_efficiency": {
		Root:   graph.LabelEntityProcess,
		Linked: exists("(x)-[:AUTOMATION]->(:EntityITSystem)"),
		Value:  avgProp("efficiency_score", "efficiencyScore", "efficiency"),
	},
	"risk_mitigation": {
		Root:   graph.LabelEntityRisk,
		Linked: exists("(x)-[*1..2]-(g) WHERE g:SectorPolicyTool OR g:EntityCapability"),
		Value:  avgProp("mitigation_rate", "mitigationRate", "mitigation"),
	},
	"investment": {
		Root:   graph.LabelEntityProject,
		Linked: exists("(x)-[:CLOSE_GAPS]->(:EntityCapability)"),
		Value: "CASE WHEN sum(" + prop("budget", "Budget") + ") > 0 AND count(" + prop("spent", "Spent", "actual_spend") + ") > 0" +
			" THEN 100.0 * sum(" + prop("spent", "Spent", "actual_spend") + ") / sum(" + prop("budget", "Budget") + ") END",
	},
	"adoption": {
		Root:   graph.LabelEntityChangeAdoption,
		Linked: exists("(x)-[*1..3]-(:EntityCapability)"),
		Value:  avgProp("adoption_rate", "adoptionRate", "adoption"),
	},
	"engagement": {
		Root:   graph.LabelEntityCultureHealth,
		Linked: exists("(x)-[*1..2]-(:EntityOrgUnit)"),
		Value:  avgProp("health_score", "healthScore", "engagement_score"),
	},
	"delivery": {
		Root:   graph.LabelEntityProject,
		Linked: exists("(x)-[*1..5]-(:SectorObjective)"),
		Value:  avgProp("progress", "Progress", "completion_rate", "completionRate"),
	},
	"technology_compliance": {
		Root:   graph.LabelEntityITSystem,
		Linked: exists("(x)<-[:AUTOMATION]-(:EntityProcess)"),
		Value:  avgProp("compliance_score", "complianceScore", "compliance"),
	},
}

var (
	velocityTraversal = traversal{
		Name: "project_velocity",
		Root: graph.LabelEntityProject,
		Linked: "(toLower(toString(coalesce(x.status, x.Status))) IN ['completed', 'complete', 'done', 'closed']" +
			" OR " + prop("progress", "Progress") + " >= 100)",
		Value: "null",
	}
	efficiencyTraversal = traversal{
		Name:   "operational_efficiency",
		Root:   graph.LabelEntityProcess,
		Linked: dimensionTraversals["operational_efficiency"].Linked,
		Value:  dimensionTraversals["operational_efficiency"].Value,
	}
	citizenTraversal = traversal{
		Name:   "citizen_impact",
		Root:   graph.LabelSectorCitizen,
		Linked: exists("(x)-[*1..2]-(g) WHERE g:SectorPolicyTool OR g:SectorGovEntity"),
		Value:  avgProp("impact_score", "impactScore", "satisfaction_score", "satisfactionScore"),
	}
	performanceTraversal = traversal{
		Name:   "sector_performance",
		Root:   graph.LabelSectorPerformance,
		Where:  exists("(x)-[:CASCADES_TO]->(:SectorObjective)"),
		Linked: prop("actual", "Actual", "value") + " >= " + prop("target", "Target"),
		Value:  avgProp("actual", "Actual", "value"),
		Target: targetAvg,
	}
	serviceTraversal = traversal{
		Name:   "service_delivery",
		Root:   graph.LabelSectorDataTransaction,
		Linked: "toLower(toString(coalesce(x.status, x.Status))) IN ['completed', 'complete', 'success', 'successful']",
		Value:  avgProp("success_rate", "successRate", "completion_rate"),
		Target: targetAvg,
	}
	partnershipTraversal = traversal{
		Name:   "partnership_engagement",
		Root:   graph.LabelSectorBusiness,
		Linked: exists("(x)-[*1..3]-(:SectorObjective)"),
		Value:  avgProp("engagement_score", "engagementScore", "satisfaction_score"),
		Target: targetAvg,
	}
	communityTraversal = traversal{
		Name:   "community_engagement",
		Root:   graph.LabelSectorCitizen,
		Linked: exists("(x)-[*1..2]-(g) WHERE g:SectorGovEntity OR g:SectorPolicyTool"),
		Value:  avgProp("engagement_score", "engagementScore", "participation_rate"),
		Target: targetAvg,
	}
)

// pointQuery aggregates t over the roots matching filter
func pointQuery(name string, t traversal, filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	clauses := append([]string{t.Where}, filter.Predicates("x", b)...)
	target := t.Target
	if target == "" {
		target = targetAvg
	}
	cypher := strings.Join([]string{
		"MATCH (x:" + t.Root + ") " + graph.Where(clauses...),
		"WITH x, " + t.Linked + " AS isLinked",
		"RETURN count(x) AS total,",
		"       sum(CASE WHEN isLinked THEN 1 ELSE 0 END) AS linked,",
		"       " + t.Value + " AS value,",
		"       " + target + " AS target,",
		"       " + avgProp("baseline", "Baseline") + " AS baseline",
	}, "\n")
	return b.Query(name, "dashboard_query", cypher)
}

// seriesQuery aggregates t per stored (year, quarter) across all periods
func seriesQuery(t traversal) graph.Query {
	b := graph.NewCypherBuilder()
	target := t.Target
	if target == "" {
		target = "null"
	}
	cypher := strings.Join([]string{
		"MATCH (x:" + t.Root + ") " + graph.Where(t.Where),
		"WITH x, " + graph.YearExpr("x") + " AS year, " + graph.QuarterExpr("x") + " AS quarter, " + t.Linked + " AS isLinked",
		"WHERE year IS NOT NULL",
		"RETURN year, quarter, count(x) AS total,",
		"       sum(CASE WHEN isLinked THEN 1 ELSE 0 END) AS linked,",
		"       " + t.Value + " AS value,",
		"       " + target + " AS target",
	}, "\n")
	return b.Query("dashboard_series_"+t.Name, "dashboard_query", cypher)
}

const initiativeCypher = `MATCH (x:EntityProject) %s
OPTIONAL MATCH (x)-[*1..2]-(k:EntityRisk)
WITH x, count(DISTINCT k) AS risks
WITH x, risks, EXISTS { MATCH (x)-[*1..5]-(:SectorObjective) } AS aligned
RETURN coalesce(x.name, x.Name, x.title, elementId(x)) AS name,
       toFloatOrNull(coalesce(x.budget, x.Budget)) AS budget,
       toFloatOrNull(coalesce(x.risk_score, x.riskScore, x.risk)) AS risk,
       risks,
       toFloatOrNull(coalesce(x.alignment_score, x.alignmentScore, x.alignment)) AS alignment,
       aligned
ORDER BY coalesce(budget, 0) DESC, name
LIMIT %s`

// TopInitiatives bounds insight 1
const TopInitiatives = 5

func initiativeQuery(filter graph.Filter) graph.Query {
	b := graph.NewCypherBuilder()
	where := graph.Where(filter.Predicates("x", b)...)
	cypher := strings.Replace(initiativeCypher, "%s", where, 1)
	cypher = strings.Replace(cypher, "%s", b.Set("limit", TopInitiatives), 1)
	return b.Query("dashboard_initiatives", "dashboard_query", cypher)
}
