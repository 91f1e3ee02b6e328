package force

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/parallel"
	"github.com/san-kum/forcesim/internal/quadtree"
)

const (
	DefaultManyBodyStrength = -30.0
	DefaultTheta            = 0.9

	// minQueryChunk is the smallest node range worth its own goroutine.
	minQueryChunk = 64
)

// ManyBodyForce applies mutual attraction (positive strength) or repulsion
// (negative strength) between every pair of nodes, approximated with
// Barnes-Hut over a tree rebuilt each tick.
//
// A cell is treated as a single body at its centroid when its side w and
// squared distance l satisfy w² < θ²·l. θ = 0 gives the exact pairwise sum.
// Squared distances below distanceMin² are softened to sqrt(distanceMin²·l);
// bodies at or beyond distanceMax contribute nothing.
type ManyBodyForce[P geom.Point[P]] struct {
	mu sync.Mutex

	strengthFn NodeFunc
	constant   float64
	isConstant bool
	theta2     float64
	distMin2   float64
	distMax2   float64

	rng       *rand.Rand
	strengths []float64
}

func NewManyBody[P geom.Point[P]]() *ManyBodyForce[P] {
	return &ManyBodyForce[P]{
		strengthFn: Constant(DefaultManyBodyStrength),
		constant:   DefaultManyBodyStrength,
		isConstant: true,
		theta2:     DefaultTheta * DefaultTheta,
		distMin2:   1,
		distMax2:   math.Inf(1),
	}
}

func (f *ManyBodyForce[P]) Init(nodes int, rng *rand.Rand) error {
	if f == nil {
		return ErrNilForce
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := f.eval(nodes, f.strengthFn)
	if err != nil {
		return err
	}
	f.strengths, f.rng = s, defaultRand(rng)
	return nil
}

func (f *ManyBodyForce[P]) eval(n int, fn NodeFunc) ([]float64, error) {
	return evalNodes(n, fn, func(i int, v float64) error {
		return checkFinite("strength", i, v)
	})
}

func (f *ManyBodyForce[P]) SetStrength(v float64) error {
	if err := checkFinite("strength", -1, v); err != nil {
		return err
	}
	if err := f.SetStrengthFunc(Constant(v)); err != nil {
		return err
	}
	f.mu.Lock()
	f.constant, f.isConstant = v, true
	f.mu.Unlock()
	return nil
}

func (f *ManyBodyForce[P]) SetStrengthFunc(fn NodeFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.strengths != nil {
		s, err := f.eval(len(f.strengths), fn)
		if err != nil {
			return err
		}
		f.strengths = s
	}
	f.strengthFn, f.isConstant = fn, false
	return nil
}

// Strength returns the uniform strength, or false when a per-node function
// is in use.
func (f *ManyBodyForce[P]) Strength() (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.constant, f.isConstant
}

func (f *ManyBodyForce[P]) SetTheta(theta float64) error {
	if math.IsNaN(theta) || theta < 0 {
		return paramErr("theta", -1, theta, ErrParameterBounds)
	}
	f.mu.Lock()
	f.theta2 = theta * theta
	f.mu.Unlock()
	return nil
}

func (f *ManyBodyForce[P]) Theta() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return math.Sqrt(f.theta2)
}

func (f *ManyBodyForce[P]) SetDistanceMin(d float64) error {
	if err := checkFinite("distance_min", -1, d); err != nil {
		return err
	}
	if d < 0 {
		return paramErr("distance_min", -1, d, ErrNegativeDistance)
	}
	f.mu.Lock()
	f.distMin2 = d * d
	f.mu.Unlock()
	return nil
}

// SetDistanceMax bounds the interaction range. +Inf disables the bound.
func (f *ManyBodyForce[P]) SetDistanceMax(d float64) error {
	if math.IsNaN(d) {
		return paramErr("distance_max", -1, d, ErrNonFinite)
	}
	if d < 0 {
		return paramErr("distance_max", -1, d, ErrNegativeDistance)
	}
	f.mu.Lock()
	f.distMax2 = d * d
	f.mu.Unlock()
	return nil
}

func (f *ManyBodyForce[P]) Apply(b *Buffers[P], alpha float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(b.Positions)
	if n < 2 || len(f.strengths) != n {
		return
	}

	pts := append([]P(nil), b.Positions...)
	separate(pts, f.rng)

	items := make([]quadtree.Item[P], n)
	for i, p := range pts {
		items[i] = quadtree.Item[P]{Index: i, Point: p, Mass: f.strengths[i]}
	}
	tree := quadtree.Build(items, nil)

	deltas := make([]P, n)
	parallel.For(n, minQueryChunk, b.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			deltas[i] = f.query(tree, i, pts[i], alpha)
		}
	})

	for i, d := range deltas {
		b.Velocities[i] = b.Velocities[i].Add(d)
	}
}

// query sums the field acting on node i at p.
func (f *ManyBodyForce[P]) query(tree *quadtree.Tree[P], i int, p P, alpha float64) P {
	acc := geom.Zero(p)
	tree.Visit(func(n *quadtree.Node[P]) bool {
		if n.Weight == 0 {
			return true
		}
		if !n.IsLeaf() {
			d := n.Centroid.Sub(p)
			l := geom.Norm2(d)
			w := n.Side()
			if w*w >= f.theta2*l {
				return false
			}
			if l < f.distMax2 {
				acc = acc.Add(d.Scale(n.Mass * alpha / f.soften(l)))
			}
			return true
		}
		for _, it := range n.Items {
			if it.Index == i {
				continue
			}
			d := it.Point.Sub(p)
			l := geom.Norm2(d)
			if l == 0 || l >= f.distMax2 {
				continue
			}
			acc = acc.Add(d.Scale(it.Mass * alpha / f.soften(l)))
		}
		return true
	})
	return acc
}

func (f *ManyBodyForce[P]) soften(l float64) float64 {
	if l < f.distMin2 {
		return math.Sqrt(f.distMin2 * l)
	}
	return l
}

// separate jiggles exact duplicates in pts so no two nodes share a location.
// Duplicates are found by sorting, so the jiggles drawn depend only on the
// input and the random source.
func separate[P geom.Point[P]](pts []P, rng *rand.Rand) {
	order := make([]int, len(pts))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return geom.Less(pts[order[a]], pts[order[b]]) })

	var last P
	for k, idx := range order {
		p := pts[idx]
		if k > 0 && geom.Equal(p, last) {
			pts[idx] = p.Map(func(_ int, x float64) float64 { return x + Jiggle(rng) })
		}
		last = p
	}
}
