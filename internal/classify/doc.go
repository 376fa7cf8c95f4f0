// Package classify turns raw discovery candidates into the final gap set.
//
// It owns all candidate mutation: deduplicating equivalent candidates
// surfaced by different strategies (merge keeps the higher certainty, the
// union of provenance, and the union of dependency edges), scoring
// criticality from downstream impact, and assigning fillability.
//
// # Criticality rule table
//
// Criticality combines the gap type with the fraction f of the remaining
// gap set that becomes unreachable if the gap stays unfilled:
//
//	blocks all paths to Point B  -> BLOCKING (by definition, any type)
//	f >= 0.9                     -> BLOCKING
//	f >= 0.6                     -> HIGH
//	f >= 0.3                     -> MEDIUM
//	otherwise                    -> LOW
//
// CONSTRAINT and DEPENDENCY gaps floor at MEDIUM. A gap with no edges in
// either direction and certainty below 0.5 has no assessable impact and
// is scored UNKNOWN.
//
// # Fillability
//
// UNFILLABLE when the gap references a context constraint declared
// immutable; EMERGENT when the gap exists through the interaction of
// other gaps (membership in a dependency cycle, or two or more
// dependencies without a direct A/B diff in its provenance); FILLABLE
// otherwise.
package classify
