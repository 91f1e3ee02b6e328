package force

import (
	"math/rand"

	"github.com/san-kum/forcesim/internal/geom"
)

const jiggleScale = 1e-6

// Jiggle returns a non-zero offset drawn uniformly from [-0.5e-6, 0.5e-6].
func Jiggle(rng *rand.Rand) float64 {
	for {
		if j := (rng.Float64() - 0.5) * jiggleScale; j != 0 {
			return j
		}
	}
}

// JiggleZeros replaces every exactly-zero coordinate of p with a jiggle.
func JiggleZeros[P geom.Point[P]](p P, rng *rand.Rand) P {
	return p.Map(func(_ int, x float64) float64 {
		if x == 0 {
			return Jiggle(rng)
		}
		return x
	})
}
