// Package random provides the seedable draw source for mock runs.
package random

import (
	"math/rand/v2"
	"time"
)

// New returns a PCG-backed generator. A zero seed draws one from the clock, so
// only explicitly seeded sessions are reproducible.
func New(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
