package types

import (
	"fmt"
	"sort"
	"strings"
)

// GapType categorizes what kind of thing is missing.
type GapType string

const (
	GapDependency  GapType = "DEPENDENCY"  // Missing parts or components
	GapInformation GapType = "INFORMATION" // Missing knowledge or data
	GapConstraint  GapType = "CONSTRAINT"  // Missing permissions or headroom
	GapCapability  GapType = "CAPABILITY"  // Missing skills or tooling
	GapConceptual  GapType = "CONCEPTUAL"  // Missing understanding or framing
	GapCausal      GapType = "CAUSAL"      // Missing causal relationships
	GapTemporal    GapType = "TEMPORAL"    // Missing temporal understanding
	GapEthical     GapType = "ETHICAL"     // Missing ethical consideration
)

// IsValid checks if the gap type value is valid.
func (t GapType) IsValid() bool {
	switch t {
	case GapDependency, GapInformation, GapConstraint, GapCapability,
		GapConceptual, GapCausal, GapTemporal, GapEthical:
		return true
	}
	return false
}

// Criticality is the ordinal impact level of a gap on reaching Point B.
type Criticality string

const (
	CriticalityBlocking Criticality = "BLOCKING"
	CriticalityHigh     Criticality = "HIGH"
	CriticalityMedium   Criticality = "MEDIUM"
	CriticalityLow      Criticality = "LOW"
	CriticalityUnknown  Criticality = "UNKNOWN"
)

// IsValid checks if the criticality value is valid.
func (c Criticality) IsValid() bool {
	switch c {
	case CriticalityBlocking, CriticalityHigh, CriticalityMedium,
		CriticalityLow, CriticalityUnknown:
		return true
	}
	return false
}

// PlanningRank orders criticalities for planning decisions. UNKNOWN is
// incomparable on the ordinal scale and ranks as HIGH (conservative).
func (c Criticality) PlanningRank() int {
	switch c {
	case CriticalityBlocking:
		return 4
	case CriticalityHigh, CriticalityUnknown:
		return 3
	case CriticalityMedium:
		return 2
	case CriticalityLow:
		return 1
	}
	return 0
}

// Weight is the density contribution multiplier for a gap of this
// criticality.
func (c Criticality) Weight() float64 {
	switch c {
	case CriticalityBlocking:
		return 1.0
	case CriticalityHigh:
		return 0.7
	case CriticalityMedium:
		return 0.4
	case CriticalityLow:
		return 0.2
	case CriticalityUnknown:
		return 0.5
	}
	return 0.5
}

// MaxCriticality returns the more severe of two criticalities
// (conservative-max arbitration: a blocking signal is never averaged down).
func MaxCriticality(a, b Criticality) Criticality {
	if a == CriticalityBlocking || b == CriticalityBlocking {
		return CriticalityBlocking
	}
	if a.PlanningRank() >= b.PlanningRank() {
		// Prefer a concrete level over UNKNOWN when ranks tie.
		if a == CriticalityUnknown && b != CriticalityUnknown {
			return b
		}
		return a
	}
	return b
}

// Fillability states whether a gap can be closed.
type Fillability string

const (
	Fillable   Fillability = "FILLABLE"
	Unfillable Fillability = "UNFILLABLE"
	// Emergent gaps arise from the interaction of other gaps rather than
	// a direct A/B difference.
	Emergent Fillability = "EMERGENT"
)

// IsValid checks if the fillability value is valid.
func (f Fillability) IsValid() bool {
	switch f {
	case Fillable, Unfillable, Emergent:
		return true
	}
	return false
}

// Gap is a characterized difference between current and target state that
// impedes reaching the target. IDs are stable within a run and immutable
// once assigned; after classification the only permitted mutation is
// ClusterID assignment.
type Gap struct {
	ID          string      `json:"id"`
	Type        GapType     `json:"type"`
	Criticality Criticality `json:"criticality"`
	// Certainty is the confidence that the gap genuinely exists, in [0,1].
	// It is not a classification confidence on the type.
	Certainty   float64     `json:"certainty"`
	Fillability Fillability `json:"fillability"`
	Description string      `json:"description"`
	// DiscoveredBy records every strategy that independently surfaced the
	// gap (provenance, kept through merging for dedup and audit).
	DiscoveredBy []string `json:"discovered_by"`
	// Keys are the state keys the gap touches, used for merge and
	// consensus overlap checks.
	Keys []string `json:"keys,omitempty"`
	// Dependencies are ids of gaps that must be addressed first.
	Dependencies []string `json:"dependencies,omitempty"`
	// ConstraintRef names the context constraint the gap references,
	// when any. Drives fillability classification.
	ConstraintRef string `json:"constraint_ref,omitempty"`
	// ClusterID is assigned by the clustering step; empty until it runs.
	ClusterID string `json:"cluster_id,omitempty"`
}

// Validate checks the gap's invariants.
func (g *Gap) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("gap id is required")
	}
	if !g.Type.IsValid() {
		return fmt.Errorf("invalid gap type: %s", g.Type)
	}
	if !g.Criticality.IsValid() {
		return fmt.Errorf("invalid criticality: %s", g.Criticality)
	}
	if !g.Fillability.IsValid() {
		return fmt.Errorf("invalid fillability: %s", g.Fillability)
	}
	if g.Certainty < 0.0 || g.Certainty > 1.0 {
		return fmt.Errorf("certainty must be between 0.0 and 1.0 (got %.2f)", g.Certainty)
	}
	for _, dep := range g.Dependencies {
		if dep == g.ID {
			return fmt.Errorf("gap %s depends on itself", g.ID)
		}
	}
	return nil
}

// DependsOn reports whether the gap lists id as a direct dependency.
func (g *Gap) DependsOn(id string) bool {
	for _, dep := range g.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// CandidateGap is a pre-classification discovery record. Exactly one
// strategy produces each candidate; the classifier merges equivalent
// candidates from different strategies into one Gap.
type CandidateGap struct {
	ID           string
	Type         GapType
	Certainty    float64
	Description  string
	Keys         []string
	Dependencies []string
	DiscoveredBy string
	// ConstraintRef names the context constraint that produced the
	// candidate, when any.
	ConstraintRef string
	// BlocksAll marks a candidate known to block every path to Point B
	// (classified BLOCKING by definition, independent of type).
	BlocksAll bool
}

// NormalizedDescription lowercases and tokenizes the description for
// merge comparison.
func (c *CandidateGap) NormalizedDescription() []string {
	fields := strings.Fields(strings.ToLower(c.Description))
	sort.Strings(fields)
	return fields
}
