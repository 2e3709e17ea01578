package perm_test

import (
	"testing"

	"github.com/matzehuels/symlump/pkg/perm"
	"github.com/matzehuels/symlump/pkg/perm/permtest"
)

// Every permutation of up to 6 points stays within its domain and returns to
// the identity after Order() compositions.
func TestPowerOrderIsIdentity(t *testing.T) {
	for n := 1; n <= 6; n++ {
		for _, p := range permtest.Symmetric(n) {
			seen := make(map[int]bool)
			for _, c := range p.Cycles() {
				for _, x := range c {
					if x < 0 || x >= n {
						t.Fatalf("%s has point %d outside [0,%d)", p, x, n)
					}
					if seen[x] {
						t.Fatalf("%s repeats point %d", p, x)
					}
					seen[x] = true
				}
			}
			order := int(p.Order().Int64())
			if !p.Power(order).IsIdentity() {
				t.Errorf("%s^%d is not identity", p, order)
			}
			acc := perm.Identity()
			for i := 0; i < order; i++ {
				acc = acc.Compose(p)
			}
			if !acc.IsIdentity() {
				t.Errorf("composing %s with itself %d times is not identity", p, order)
			}
		}
	}
}
