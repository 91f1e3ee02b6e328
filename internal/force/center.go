package force

import (
	"math/rand"
	"sync"

	"github.com/san-kum/forcesim/internal/geom"
)

// centeredTolerance is the squared centroid offset below which the layout
// counts as centered.
const centeredTolerance = 1e-18

// CenterForce translates the free nodes so their centroid moves toward a
// point. It writes positions directly, ignores alpha and never changes the
// relative layout. Pinned nodes neither move nor count toward the centroid.
type CenterForce[P geom.Point[P]] struct {
	mu        sync.Mutex
	center    P
	hasCenter bool
	strength  float64
}

// NewCenter returns a force centering on the origin with strength 1.
func NewCenter[P geom.Point[P]]() *CenterForce[P] {
	return &CenterForce[P]{strength: 1}
}

func (f *CenterForce[P]) Init(int, *rand.Rand) error {
	if f == nil {
		return ErrNilForce
	}
	return nil
}

func (f *CenterForce[P]) SetCenter(c P) error {
	if !geom.IsFinite(c) {
		return paramErr("center", -1, geom.Norm(c), ErrNonFinite)
	}
	f.mu.Lock()
	f.center, f.hasCenter = c, true
	f.mu.Unlock()
	return nil
}

// SetStrength sets the fraction of the offset removed per tick.
func (f *CenterForce[P]) SetStrength(s float64) error {
	if err := checkFinite("strength", -1, s); err != nil {
		return err
	}
	f.mu.Lock()
	f.strength = s
	f.mu.Unlock()
	return nil
}

func (f *CenterForce[P]) Strength() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strength
}

func (f *CenterForce[P]) Apply(b *Buffers[P], _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shift, ok := f.shift(b)
	if !ok {
		return
	}
	for i := range b.Positions {
		if !b.IsFixed(i) {
			b.Positions[i] = b.Positions[i].Add(shift)
		}
	}
}

func (f *CenterForce[P]) Pending(b *Buffers[P]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	shift, ok := f.shift(b)
	return ok && geom.Norm2(shift) > centeredTolerance
}

func (f *CenterForce[P]) shift(b *Buffers[P]) (P, bool) {
	var zero P
	if f.strength == 0 {
		return zero, false
	}
	free := make([]P, 0, len(b.Positions))
	for i, p := range b.Positions {
		if !b.IsFixed(i) {
			free = append(free, p)
		}
	}
	c, ok := geom.Centroid(free)
	if !ok {
		return zero, false
	}
	target := geom.Zero(c)
	if f.hasCenter {
		target = f.center
	}
	return target.Sub(c).Scale(f.strength), true
}
