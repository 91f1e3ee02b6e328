package force

import (
	"math"
	"math/rand"
	"sync"

	"github.com/san-kum/forcesim/internal/geom"
)

const DefaultLinkDistance = 30.0

// EdgeFunc computes a per-edge parameter from the edge index, the edge and
// its endpoint indexes.
type EdgeFunc[E Edge] func(i int, e E, src, dst int) float64

// LinkForce pulls the endpoints of every edge toward a rest distance.
//
// Unless configured otherwise the strength of an edge is 1/min(deg(src),
// deg(dst)), so hubs are not pulled harder than leaves, and the correction
// is split between the endpoints in proportion to degree. A Link edge with
// non-zero Strength or Distance overrides the force-level value for that
// edge.
type LinkForce[P geom.Point[P], E Edge] struct {
	mu sync.Mutex

	edges      []E
	strengthFn EdgeFunc[E]
	distanceFn EdgeFunc[E]
	iterations int

	nodes     int
	rng       *rand.Rand
	ready     bool
	src, dst  []int
	degree    []int
	bias      []float64
	strengths []float64
	distances []float64
}

func NewLink[P geom.Point[P], E Edge](edges []E) *LinkForce[P, E] {
	return &LinkForce[P, E]{
		edges:      append([]E(nil), edges...),
		iterations: 1,
	}
}

func (f *LinkForce[P, E]) Init(nodes int, rng *rand.Rand) error {
	if f == nil {
		return ErrNilForce
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	src := make([]int, len(f.edges))
	dst := make([]int, len(f.edges))
	degree := make([]int, nodes)
	for i, e := range f.edges {
		s, d := e.Endpoints()
		if s < 0 || s >= nodes {
			return paramErr("edge.source", i, float64(s), ErrEdgeOutOfRange)
		}
		if d < 0 || d >= nodes {
			return paramErr("edge.target", i, float64(d), ErrEdgeOutOfRange)
		}
		src[i], dst[i] = s, d
		degree[s]++
		degree[d]++
	}

	bias := make([]float64, len(f.edges))
	for i := range bias {
		bias[i] = float64(degree[src[i]]) / float64(degree[src[i]]+degree[dst[i]])
	}

	f.nodes, f.rng = nodes, defaultRand(rng)
	f.src, f.dst, f.degree, f.bias = src, dst, degree, bias
	f.ready = true
	if err := f.evalStrengths(f.strengthFn); err != nil {
		f.ready = false
		return err
	}
	if err := f.evalDistances(f.distanceFn); err != nil {
		f.ready = false
		return err
	}
	return nil
}

func (f *LinkForce[P, E]) evalStrengths(fn EdgeFunc[E]) error {
	if !f.ready {
		return nil
	}
	out := make([]float64, len(f.edges))
	for i, e := range f.edges {
		v := f.edgeStrength(fn, i, e)
		if err := checkFinite("strength", i, v); err != nil {
			return err
		}
		out[i] = v
	}
	f.strengths = out
	return nil
}

func (f *LinkForce[P, E]) edgeStrength(fn EdgeFunc[E], i int, e E) float64 {
	if o, ok := any(e).(strengthOverride); ok {
		if v, set := o.EdgeStrength(); set {
			return v
		}
	}
	s, d := f.src[i], f.dst[i]
	if fn != nil {
		return fn(i, e, s, d)
	}
	return 1 / float64(min(f.degree[s], f.degree[d]))
}

func (f *LinkForce[P, E]) evalDistances(fn EdgeFunc[E]) error {
	if !f.ready {
		return nil
	}
	out := make([]float64, len(f.edges))
	for i, e := range f.edges {
		v := DefaultLinkDistance
		if fn != nil {
			v = fn(i, e, f.src[i], f.dst[i])
		}
		if o, ok := any(e).(distanceOverride); ok {
			if w, set := o.EdgeDistance(); set {
				v = w
			}
		}
		if err := checkFinite("distance", i, v); err != nil {
			return err
		}
		if v < 0 {
			return paramErr("distance", i, v, ErrNegativeDistance)
		}
		out[i] = v
	}
	f.distances = out
	return nil
}

// SetStrength sets one strength for every edge without an override.
func (f *LinkForce[P, E]) SetStrength(v float64) error {
	if err := checkFinite("strength", -1, v); err != nil {
		return err
	}
	return f.SetStrengthFunc(func(int, E, int, int) float64 { return v })
}

// SetStrengthFunc sets a per-edge strength. A nil fn restores the degree
// default.
func (f *LinkForce[P, E]) SetStrengthFunc(fn EdgeFunc[E]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.evalStrengths(fn); err != nil {
		return err
	}
	f.strengthFn = fn
	return nil
}

func (f *LinkForce[P, E]) SetDistance(v float64) error {
	if err := checkFinite("distance", -1, v); err != nil {
		return err
	}
	if v < 0 {
		return paramErr("distance", -1, v, ErrNegativeDistance)
	}
	return f.SetDistanceFunc(func(int, E, int, int) float64 { return v })
}

// SetDistanceFunc sets a per-edge rest distance. A nil fn restores
// DefaultLinkDistance.
func (f *LinkForce[P, E]) SetDistanceFunc(fn EdgeFunc[E]) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.evalDistances(fn); err != nil {
		return err
	}
	f.distanceFn = fn
	return nil
}

func (f *LinkForce[P, E]) SetIterations(n int) error {
	if err := checkIterations(n); err != nil {
		return err
	}
	f.mu.Lock()
	f.iterations = n
	f.mu.Unlock()
	return nil
}

func (f *LinkForce[P, E]) Iterations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.iterations
}

func (f *LinkForce[P, E]) Edges() []E {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]E(nil), f.edges...)
}

// Distances returns the resolved rest distance of every edge, or nil before
// Init.
func (f *LinkForce[P, E]) Distances() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.distances...)
}

func (f *LinkForce[P, E]) Strengths() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.strengths...)
}

func (f *LinkForce[P, E]) Apply(b *Buffers[P], alpha float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.ready {
		return
	}

	pos, vel := b.Positions, b.Velocities
	for k := 0; k < f.iterations; k++ {
		for i := range f.src {
			s, d := f.src[i], f.dst[i]
			x := pos[d].Add(vel[d]).Sub(pos[s].Add(vel[s]))
			x = JiggleZeros(x, f.rng)
			l := math.Sqrt(geom.Norm2(x))
			l = (l - f.distances[i]) / l * alpha * f.strengths[i]
			x = x.Scale(l)
			vel[d] = vel[d].Sub(x.Scale(f.bias[i]))
			vel[s] = vel[s].Add(x.Scale(1 - f.bias[i]))
		}
	}
}
