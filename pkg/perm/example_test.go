package perm_test

import (
	"fmt"

	"github.com/matzehuels/symlump/pkg/perm"
)

func ExampleParse() {
	p, err := perm.Parse("(4,5,3)(2,1)", 6)
	if err != nil {
		panic(err)
	}
	fmt.Println(p)
	fmt.Println("cycles:", p.Cycles())
	fmt.Println("cycle count on 6 points:", p.CycleCount(6))
	// Output:
	// (1,2)(3,4,5)
	// cycles: [[0 1] [2 3 4]]
	// cycle count on 6 points: 3
}

func ExampleFactorial() {
	fmt.Println("4! =", perm.Factorial(4))
	fmt.Println("25! =", perm.Factorial(25))
	// Output:
	// 4! = 24
	// 25! = 15511210043330985984000000
}

func ExampleGeneratorSet_Orbits() {
	g, _ := perm.NewGeneratorSet(6, perm.MustNew([]int{0, 1}), perm.MustNew([]int{3, 4, 5}))
	fmt.Println(g.Orbits())
	// Output:
	// [[0 1] [3 4 5]]
}
