package force

import (
	"math"
	"math/rand"

	"github.com/san-kum/forcesim/internal/geom"
)

func buffers(pts ...geom.Vec2) *Buffers[geom.Vec2] {
	return &Buffers[geom.Vec2]{
		Positions:  pts,
		Velocities: make([]geom.Vec2, len(pts)),
	}
}

func randomBuffers(rng *rand.Rand, n int, span float64) *Buffers[geom.Vec2] {
	pts := make([]geom.Vec2, n)
	for i := range pts {
		pts[i] = geom.V2(rng.Float64()*span, rng.Float64()*span)
	}
	return buffers(pts...)
}

// integrate advances b one tick the way the simulation does.
func integrate(b *Buffers[geom.Vec2], decay float64) {
	for i := range b.Positions {
		b.Velocities[i] = b.Velocities[i].Scale(1 - decay)
		b.Positions[i] = b.Positions[i].Add(b.Velocities[i])
	}
}

// alphaSchedule returns the default 300-step cooling sequence.
func alphaSchedule() []float64 {
	decay := 1 - math.Pow(0.001, 1.0/300)
	out := make([]float64, 300)
	alpha := 1.0
	for i := range out {
		out[i] = alpha
		alpha += -alpha * decay
	}
	return out
}
