// Package topology builds the void topology graph over a classified gap
// set and computes its aggregate metrics: density, navigability, and
// connectivity.
//
// The graph is a directed adjacency list keyed by gap id. Dependency edges
// come straight from the gaps; similarity edges are inferred between gaps
// of the same type that touch overlapping state keys. Density is estimated
// against the required surface of the target state, falling back to a
// deadline-cancellable Monte Carlo estimate when the declared dependency
// graph makes the surface open-ended.
package topology
