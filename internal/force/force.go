package force

import (
	"math/rand"

	"github.com/san-kum/forcesim/internal/geom"
)

// Buffers is the simulation state handed to a force for one Apply call.
// Forces must not retain it.
type Buffers[P geom.Point[P]] struct {
	Positions  []P
	Velocities []P

	// Fixed marks pinned nodes. A nil slice means no node is pinned.
	Fixed []bool

	// Workers bounds the goroutines a force may fan out to; <= 0 means
	// GOMAXPROCS.
	Workers int
}

func (b *Buffers[P]) Len() int { return len(b.Positions) }

func (b *Buffers[P]) IsFixed(i int) bool { return b.Fixed != nil && b.Fixed[i] }

// Force is one contribution to a tick.
type Force[P geom.Point[P]] interface {
	// Init binds the force to a node count and the simulation's random
	// source. It runs on registration and validates the force's parameters
	// against the node set.
	Init(nodes int, rng *rand.Rand) error

	// Apply updates b for the given alpha.
	Apply(b *Buffers[P], alpha float64)
}

// Restless is implemented by forces that still move nodes when alpha is
// zero. Pending reports whether another Apply would change anything.
type Restless[P geom.Point[P]] interface {
	Pending(b *Buffers[P]) bool
}

// NodeFunc computes a per-node parameter from the node index.
type NodeFunc func(i int) float64

// Constant returns a NodeFunc that ignores the index.
func Constant(v float64) NodeFunc { return func(int) float64 { return v } }

// evalNodes evaluates fn for every node, rejecting values check refuses.
func evalNodes(n int, fn NodeFunc, check func(i int, v float64) error) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v := fn(i)
		if err := check(i, v); err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func defaultRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return rand.New(rand.NewSource(1))
	}
	return rng
}
