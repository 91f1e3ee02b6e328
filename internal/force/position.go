package force

import (
	"math/rand"
	"sync"

	"github.com/san-kum/forcesim/internal/geom"
)

const DefaultPositionStrength = 0.1

// PositionForce accelerates every node toward a target point along selected
// axes, like d3's forceX and forceY generalized to any dimension.
type PositionForce[P geom.Point[P]] struct {
	mu         sync.Mutex
	target     P
	hasTarget  bool
	axes       []int
	strengthFn NodeFunc
	strengths  []float64
}

// NewPosition returns a force pulling toward the origin on every axis.
func NewPosition[P geom.Point[P]]() *PositionForce[P] {
	return &PositionForce[P]{strengthFn: Constant(DefaultPositionStrength)}
}

func (f *PositionForce[P]) Init(nodes int, _ *rand.Rand) error {
	if f == nil {
		return ErrNilForce
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, err := evalNodes(nodes, f.strengthFn, func(i int, v float64) error {
		return checkFinite("strength", i, v)
	})
	if err != nil {
		return err
	}
	f.strengths = s
	return nil
}

func (f *PositionForce[P]) SetTarget(t P) error {
	if !geom.IsFinite(t) {
		return paramErr("target", -1, geom.Norm(t), ErrNonFinite)
	}
	f.mu.Lock()
	f.target, f.hasTarget = t, true
	f.mu.Unlock()
	return nil
}

// SetAxes restricts the pull to the given axes. No axes means every axis.
func (f *PositionForce[P]) SetAxes(axes ...int) error {
	for _, a := range axes {
		if a < 0 || a >= geom.MaxDim {
			return paramErr("axis", -1, float64(a), ErrParameterBounds)
		}
	}
	f.mu.Lock()
	f.axes = append([]int(nil), axes...)
	f.mu.Unlock()
	return nil
}

func (f *PositionForce[P]) SetStrength(v float64) error {
	if err := checkFinite("strength", -1, v); err != nil {
		return err
	}
	return f.SetStrengthFunc(Constant(v))
}

func (f *PositionForce[P]) SetStrengthFunc(fn NodeFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.strengths != nil {
		s, err := evalNodes(len(f.strengths), fn, func(i int, v float64) error {
			return checkFinite("strength", i, v)
		})
		if err != nil {
			return err
		}
		f.strengths = s
	}
	f.strengthFn = fn
	return nil
}

func (f *PositionForce[P]) Apply(b *Buffers[P], alpha float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.strengths) != len(b.Positions) {
		return
	}

	var mask [geom.MaxDim]bool
	for _, a := range f.axes {
		mask[a] = true
	}
	all := len(f.axes) == 0

	for i, p := range b.Positions {
		target := geom.Zero(p)
		if f.hasTarget {
			target = f.target
		}
		k := f.strengths[i] * alpha
		pull := target.Sub(p).Map(func(axis int, x float64) float64 {
			if !all && (axis >= geom.MaxDim || !mask[axis]) {
				return 0
			}
			return x * k
		})
		b.Velocities[i] = b.Velocities[i].Add(pull)
	}
}
