package permtest_test

import (
	"fmt"

	"github.com/matzehuels/symlump/pkg/perm/permtest"
)

func ExampleGenerate() {
	// Generate all permutations of 3 elements
	perms := permtest.Generate(3, -1)
	fmt.Println("All permutations of [0,1,2]:")
	for _, p := range perms {
		fmt.Println(p)
	}
	// Output:
	// All permutations of [0,1,2]:
	// [0 1 2]
	// [1 0 2]
	// [2 0 1]
	// [0 2 1]
	// [1 2 0]
	// [2 1 0]
}

func ExampleGenerate_limited() {
	// Generate only the first 5 permutations of 10 elements
	perms := permtest.Generate(10, 5)
	fmt.Println("Count:", len(perms))
	// Output:
	// Count: 5
}
