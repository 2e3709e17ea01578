package perm

import "math/big"

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
// This is the image array of the identity on n points.
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	if n <= 0 {
		return []int{}
	}
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}

// Factorial returns n! as an arbitrary-precision integer.
// For n <= 1, Factorial returns 1.
//
// n! is the order of the full symmetric group on n points, the largest
// automorphism group a graph on n vertices can have.
func Factorial(n int) *big.Int {
	if n <= 1 {
		return big.NewInt(1)
	}
	return new(big.Int).MulRange(1, int64(n))
}
