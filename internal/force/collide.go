package force

import (
	"math"
	"math/rand"
	"sync"

	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/quadtree"
)

const (
	DefaultCollisionRadius   = 1.0
	DefaultCollisionStrength = 1.0

	// restTolerance is the largest correction a pass may make and still
	// count as at rest.
	restTolerance = 1e-6
)

// CollisionForce pushes apart nodes whose circles (spheres, hyperspheres)
// overlap. Nodes are tested at their predicted positions p+v and corrected by
// moving positions directly; of each overlapping pair the node with the
// smaller radius moves further. Pinned nodes do not move and leave the whole
// correction to the other node.
type CollisionForce[P geom.Point[P]] struct {
	mu sync.Mutex

	radiusFn   NodeFunc
	strength   float64
	iterations int

	rng   *rand.Rand
	radii []float64
	moved float64
}

func NewCollision[P geom.Point[P]]() *CollisionForce[P] {
	return &CollisionForce[P]{
		radiusFn:   Constant(DefaultCollisionRadius),
		strength:   DefaultCollisionStrength,
		iterations: 1,
		moved:      math.Inf(1),
	}
}

func (f *CollisionForce[P]) Init(nodes int, rng *rand.Rand) error {
	if f == nil {
		return ErrNilForce
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.eval(nodes, f.radiusFn)
	if err != nil {
		return err
	}
	f.radii, f.rng = r, defaultRand(rng)
	f.moved = math.Inf(1)
	return nil
}

func (f *CollisionForce[P]) eval(n int, fn NodeFunc) ([]float64, error) {
	return evalNodes(n, fn, func(i int, v float64) error {
		if err := checkFinite("radius", i, v); err != nil {
			return err
		}
		if v < 0 {
			return paramErr("radius", i, v, ErrNegativeRadius)
		}
		return nil
	})
}

func (f *CollisionForce[P]) SetRadius(r float64) error {
	if err := checkFinite("radius", -1, r); err != nil {
		return err
	}
	if r < 0 {
		return paramErr("radius", -1, r, ErrNegativeRadius)
	}
	return f.SetRadiusFunc(Constant(r))
}

func (f *CollisionForce[P]) SetRadiusFunc(fn NodeFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.radii != nil {
		r, err := f.eval(len(f.radii), fn)
		if err != nil {
			return err
		}
		f.radii = r
	}
	f.radiusFn = fn
	f.moved = math.Inf(1)
	return nil
}

// Radii returns the resolved radius of every node, or nil before Init.
func (f *CollisionForce[P]) Radii() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.radii...)
}

// SetStrength sets the fraction of each overlap resolved per pass, in [0, 1].
func (f *CollisionForce[P]) SetStrength(s float64) error {
	if math.IsNaN(s) || s < 0 || s > 1 {
		return paramErr("strength", -1, s, ErrParameterBounds)
	}
	f.mu.Lock()
	f.strength = s
	f.moved = math.Inf(1)
	f.mu.Unlock()
	return nil
}

func (f *CollisionForce[P]) SetIterations(n int) error {
	if err := checkIterations(n); err != nil {
		return err
	}
	f.mu.Lock()
	f.iterations = n
	f.moved = math.Inf(1)
	f.mu.Unlock()
	return nil
}

// Pending reports whether the last Apply corrected any overlap, or whether
// parameters changed since.
func (f *CollisionForce[P]) Pending(*Buffers[P]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strength > 0 && f.moved > restTolerance
}

func (f *CollisionForce[P]) Apply(b *Buffers[P], _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(b.Positions)
	f.moved = 0
	if n < 2 || len(f.radii) != n || f.strength == 0 {
		return
	}

	items := make([]quadtree.Item[P], n)
	for k := 0; k < f.iterations; k++ {
		for i := range items {
			items[i] = quadtree.Item[P]{
				Index:  i,
				Point:  b.Positions[i].Add(b.Velocities[i]),
				Radius: f.radii[i],
			}
		}
		tree := quadtree.Build(items, nil)
		for i := 0; i < n; i++ {
			f.resolve(b, tree, i)
		}
	}
}

// resolve separates node i from every overlapping node with a larger index.
func (f *CollisionForce[P]) resolve(b *Buffers[P], tree *quadtree.Tree[P], i int) {
	pos, vel := b.Positions, b.Velocities
	ri := f.radii[i]
	ri2 := ri * ri
	qi := pos[i].Add(vel[i])

	tree.Visit(func(nd *quadtree.Node[P]) bool {
		if !nd.MayContain(qi, ri+nd.MaxRadius) {
			return true
		}
		if !nd.IsLeaf() {
			return false
		}
		for _, it := range nd.Items {
			j := it.Index
			if j <= i {
				continue
			}
			rj := f.radii[j]
			r := ri + rj
			if r == 0 {
				continue
			}
			fixedI, fixedJ := b.IsFixed(i), b.IsFixed(j)
			if fixedI && fixedJ {
				continue
			}

			delta := qi.Sub(pos[j].Add(vel[j]))
			l := geom.Norm2(delta)
			if l >= r*r {
				continue
			}
			if l == 0 {
				delta = JiggleZeros(delta, f.rng)
				l = geom.Norm2(delta)
			}
			l = math.Sqrt(l)
			shift := delta.Scale((r - l) / l * f.strength)

			w := rj * rj / (ri2 + rj*rj)
			switch {
			case fixedI:
				w = 0
			case fixedJ:
				w = 1
			}
			if w > 0 {
				s := shift.Scale(w)
				pos[i] = pos[i].Add(s)
				qi = qi.Add(s)
			}
			if w < 1 {
				pos[j] = pos[j].Sub(shift.Scale(1 - w))
			}
			f.moved = math.Max(f.moved, (r-l)*f.strength)
		}
		return true
	})
}
