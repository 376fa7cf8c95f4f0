package discovery

import (
	"strings"

	"github.com/WADELABS/negative-space/internal/types"
)

// Candidate id prefixes. Ids are deterministic functions of the state key
// or declaration that produced them, which keeps repeated runs identical.
const (
	idMissing  = "missing:"
	idValue    = "value:"
	idKind     = "kind:"
	idSurplus  = "surplus:"
	idDep      = "dep:"
	idConstr   = "constraint:"
	idCausal   = "causal:"
	idBoundary = "boundary:"
	idFailure  = "failure:"
)

var ethicalKeywords = []string{"security", "privacy", "ethic", "compliance", "consent", "audit"}
var temporalKeywords = []string{"deadline", "schedule", "timeline", "expiry", "time", "date"}
var capabilityKeywords = []string{"skill", "tool", "capability", "team", "expertise", "infra"}

func keyMatches(key string, keywords []string) bool {
	lower := strings.ToLower(key)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// constraintTouching returns the name of a declared constraint whose name,
// description, or required key references the state key, or "".
func constraintTouching(key string, cctx types.Context) string {
	lower := strings.ToLower(key)
	for _, name := range cctx.ConstraintNames() {
		c := cctx.Constraints[name]
		if c.Requires == key {
			return name
		}
		if strings.Contains(strings.ToLower(c.Name), lower) ||
			strings.Contains(strings.ToLower(c.Description), lower) {
			return name
		}
	}
	return ""
}

// inferMissingType decides the gap type for a key present in B but absent
// from A. A key a declared constraint touches is a CONSTRAINT gap; a
// security-flavored key with no declared constraint is an ETHICAL gap
// (the consideration itself is what's missing); otherwise the key's
// semantics pick TEMPORAL or CAPABILITY, falling back to DEPENDENCY.
func inferMissingType(key string, cctx types.Context) (types.GapType, string) {
	if name := constraintTouching(key, cctx); name != "" {
		return types.GapConstraint, name
	}
	if keyMatches(key, ethicalKeywords) {
		return types.GapEthical, ""
	}
	if keyMatches(key, temporalKeywords) {
		return types.GapTemporal, ""
	}
	if keyMatches(key, capabilityKeywords) {
		return types.GapCapability, ""
	}
	return types.GapDependency, ""
}

// inferChangeType decides the gap type for a key present in both states
// with different values: closing it is a capability change unless a
// declared constraint governs the key.
func inferChangeType(key string, cctx types.Context) (types.GapType, string) {
	if name := constraintTouching(key, cctx); name != "" {
		return types.GapConstraint, name
	}
	return types.GapCapability, ""
}

// failureCandidate records an evaluation failure as data: a low-certainty
// INFORMATION gap, never an error.
func failureCandidate(strategy, subject, reason string) types.CandidateGap {
	return types.CandidateGap{
		ID:           idFailure + strategy + ":" + subject,
		Type:         types.GapInformation,
		Certainty:    0.2,
		Description:  "evaluation failure in " + strategy + " for " + subject + ": " + reason,
		Keys:         []string{subject},
		DiscoveredBy: strategy,
	}
}
