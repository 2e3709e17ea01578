// Package polya counts orbits of a permutation group acting on node labelings.
//
// By Burnside's lemma, the number of labelings of n points with k labels that
// are distinct up to the group's action is the average number of labelings
// each element fixes. A labeling is fixed by a permutation exactly when it is
// constant along every cycle, so the permutation fixes k^c labelings where c
// is its cycle count including fixed points. Conjugate permutations share a
// cycle type, so one representative per conjugacy class is enough:
//
//	rho = (1/|G|) * sum |C| * k^c(rep(C))
//
// [Count] evaluates this sum exactly with math/big. Terms that would be
// astronomically large yield the [Inf] sentinel rather than an error, so a
// batch records the network and moves on. [BruteForce] enumerates the
// labelings directly and is used to validate [Count] on small networks.
package polya
