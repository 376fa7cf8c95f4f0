package types

import "time"

// NavStrategy labels how a planning step closes (or routes around) a gap.
type NavStrategy string

const (
	// StrategyGapHopping is straightforward sequential closure in
	// dependency order.
	StrategyGapHopping NavStrategy = "GAP_HOPPING"
	// StrategyBoundarySkirting bypasses a blocking gap via an alternate
	// dependency path of equal or lower total criticality.
	StrategyBoundarySkirting NavStrategy = "BOUNDARY_SKIRTING"
	// StrategyVoidBridging takes the shortest path through the gap graph
	// directly toward a blocking gap.
	StrategyVoidBridging NavStrategy = "VOID_BRIDGING"
	// StrategyConstraintCircumvention works around an unfillable gap by
	// marking the dependent goal as redefined rather than attempting
	// closure.
	StrategyConstraintCircumvention NavStrategy = "CONSTRAINT_CIRCUMVENTION"
)

// PlanStep is one ordered step of a navigation plan.
type PlanStep struct {
	GapID       string      `json:"gap_id"`
	Strategy    NavStrategy `json:"strategy"`
	Description string      `json:"description"`
	// RedefinedGoal marks a circumvention step: the goal depending on the
	// gap is redefined instead of closed.
	RedefinedGoal bool `json:"redefined_goal,omitempty"`
}

// UnreachableGap names a gap that short-circuits planning: an unfillable
// blocking gap, or a gap that transitively depends on one.
type UnreachableGap struct {
	GapID  string   `json:"gap_id"`
	Reason string   `json:"reason"`
	Blocks []string `json:"blocks,omitempty"`
}

// NavigationPlan is the ordered closure sequence over the fillable and
// emergent portion of the gap set, plus the explicitly named unreachable
// remainder.
type NavigationPlan struct {
	Steps       []PlanStep       `json:"steps"`
	Unreachable []UnreachableGap `json:"unreachable,omitempty"`
}

// DensityEstimate carries the void density point estimate and, when the
// Monte Carlo fallback ran, its confidence interval and sampling metadata.
type DensityEstimate struct {
	Value float64 `json:"value"`
	// Low/High bound the 95% confidence interval when MonteCarlo is set.
	Low        float64 `json:"low,omitempty"`
	High       float64 `json:"high,omitempty"`
	MonteCarlo bool    `json:"monte_carlo,omitempty"`
	Samples    int     `json:"samples,omitempty"`
	// ReducedConfidence flags an estimate cut short by its deadline and
	// reported from the last completed partial average.
	ReducedConfidence bool `json:"reduced_confidence,omitempty"`
}

// ClusterCriterion identifies which independent clustering criterion
// produced a cluster.
type ClusterCriterion string

const (
	ClusterSemantic   ClusterCriterion = "semantic"
	ClusterStructural ClusterCriterion = "structural"
	ClusterStrategic  ClusterCriterion = "strategic"
)

// Cluster is a group of related gaps under one criterion. A gap appears in
// at most one cluster per criterion.
type Cluster struct {
	ID        string           `json:"id"`
	Criterion ClusterCriterion `json:"criterion"`
	// DominantType is the most common gap type in the cluster.
	DominantType GapType  `json:"dominant_type"`
	GapIDs       []string `json:"gap_ids"`
}

// Summary is the headline metric block of a report.
type Summary struct {
	TotalGaps     int     `json:"total_gaps"`
	VoidDensity   float64 `json:"void_density"`
	Navigability  float64 `json:"navigability"`
	Connectivity  float64 `json:"connectivity"`
	BlockingCount int     `json:"blocking_count"`
	FillableCount int     `json:"fillable_count"`
}

// Patterns aggregates distribution counts and the derived narrative
// observations over one gap set.
type Patterns struct {
	TypeCounts        map[GapType]int     `json:"type_counts"`
	CriticalityCounts map[Criticality]int `json:"criticality_counts"`
	FillabilityRate   float64             `json:"fillability_rate"`
	Insights          []string            `json:"insights,omitempty"`
	Recommendations   []string            `json:"recommendations,omitempty"`
}

// ReportInputs echoes the states a report was computed from, so a stored
// report stays interpretable without the original input files.
type ReportInputs struct {
	PointA  State `json:"point_a"`
	PointB  State `json:"point_b"`
	Context State `json:"context,omitempty"`
}

// VoidReport is the aggregate produced once per mapping run. It is
// immutable after construction and owned exclusively by the caller.
type VoidReport struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Inputs    ReportInputs `json:"inputs"`

	Gaps []Gap `json:"gaps"`

	Summary Summary         `json:"summary"`
	Density DensityEstimate `json:"density"`

	// CriticalFindings are the BLOCKING and HIGH gaps, ordered by
	// criticality then certainty descending.
	CriticalFindings []Gap `json:"critical_findings"`

	NavigationPlan NavigationPlan `json:"navigation_plan"`
	Clusters       []Cluster      `json:"clusters,omitempty"`
	Patterns       Patterns       `json:"patterns"`

	// Degradations records non-fatal failures that were folded into the
	// gap set (timed-out strategies, partial estimates).
	Degradations []string `json:"degradations,omitempty"`
}

// Gap returns the gap with the given id, or nil.
func (r *VoidReport) Gap(id string) *Gap {
	for i := range r.Gaps {
		if r.Gaps[i].ID == id {
			return &r.Gaps[i]
		}
	}
	return nil
}
