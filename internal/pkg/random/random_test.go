package random_test

import (
	"testing"

	"github.com/samirrijal/globetrotter/internal/pkg/random"
)

func TestNew_SameSeedSameSequence(t *testing.T) {
	a, b := random.New(7), random.New(7)
	for i := 0; i < 100; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %v vs %v", i, x, y)
		}
	}
}

func TestNew_UnitInterval(t *testing.T) {
	r := random.New(99)
	for i := 0; i < 10000; i++ {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("draw %v outside [0, 1)", v)
		}
	}
}
