// Package perm provides permutations in disjoint-cycle form.
//
// # Overview
//
// Automorphism search tools report a graph's symmetry group as a list of
// generators written in cycle notation, one per line:
//
//	(1,2)(3,4,5)
//	(6,7)
//
// This package parses that notation into [Permutation] values, 0-indexed
// internally, and provides the operations needed downstream: composition,
// inversion, powers, orders, and the cycle statistics used by Pólya
// enumeration.
//
// # Cycle statistics
//
// For a permutation p on a domain of n points, [Permutation.CycleCount]
// counts every cycle including fixed points:
//
//	CycleCount(n) = (n - Moved()) + NontrivialCycles()
//
// With an alphabet of k labels, p fixes exactly k^CycleCount(n) labelings.
//
// # Notations
//
// [GAP] is the 1-indexed, comma-separated notation of the generator artifacts
// and of GAP output. [Saucy] is the 0-indexed, space-separated notation
// printed directly by saucy. Both parse into the same canonical form, so
// formatting a parsed permutation gives back an equivalent string with each
// cycle rotated to start at its smallest point.
//
// # Symmetric Group
//
// [Factorial] gives the order of the full symmetric group on n points. Every
// automorphism group of an n-vertex graph is a subgroup of it, so its order
// divides n!. Tests that need every element of a small symmetric group use
// package permtest.
package perm
