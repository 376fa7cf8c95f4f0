// Package discovery implements the multi-strategy gap discovery engine.
//
// Five independent strategies examine the (Point A, Point B, Context)
// triple and emit candidate gaps:
//
//  1. contrastive_analysis   - structural diff of A vs B
//  2. dependency_walk        - transitive walk of declared dependencies
//  3. constraint_propagation - constraint satisfaction against both states
//  4. counterfactual_exploration - per-key removal probing for causal roots
//  5. boundary_probing       - values sitting on declared limits
//
// Strategies share no mutable state: each returns its own immutable
// candidate list and a dedicated merge step (package classify) owns all
// mutation. The orchestrator fans strategies out concurrently and joins
// before classification.
//
// # Failure policy
//
// A strategy that cannot evaluate a key skips it and records a
// low-certainty INFORMATION candidate noting the failure. A strategy that
// errors or times out contributes an empty candidate set plus one such
// candidate. Strategies never abort the run.
//
// # Determinism
//
// Given identical inputs, discovery is a pure function: candidates are
// emitted in (strategy registration order, emission order) and carry
// deterministic ids derived from the keys they touch.
package discovery
