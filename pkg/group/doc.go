// Package group is the boundary to group-theoretic computation.
//
// Pólya enumeration needs two facts about the group generated by a graph's
// automorphism generators: its exact order and its conjugacy classes. Both
// come from an [Oracle]. Callers go through [Analyze], which short-circuits
// the trivial group and validates every answer, so an inconsistent engine can
// never feed a wrong class decomposition into an orbit count.
//
// # Oracles
//
//   - [Closure] enumerates the group in process. It is exact and needs no
//     external software, but its cost grows with the group order.
//   - [GAP] delegates to the GAP computer algebra system in a subprocess that
//     is killed when the caller's deadline passes.
//   - [Limit] wraps any oracle with a concurrency bound.
//
// # Invariants
//
// Every group returned by [Analyze] has order >= 1, non-empty classes whose
// representatives act on the same domain as the generators, and class sizes
// that sum to the order. Violations are CONSISTENCY_ERROR.
//
// All counts are math/big integers: the automorphism group of a network with a
// few hundred interchangeable leaves already has more than 10^300 elements.
package group
