package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
)

type Simulation[P geom.Point[P]] struct {
	mu sync.RWMutex

	dim      int
	pos      []P
	vel      []P
	fixed    []bool
	pins     []P
	numFixed int

	forces    registry[P]
	cooling   *CoolingStepper
	decay     float64
	rng       *rand.Rand
	workers   int
	log       *log.Logger
	observers []Observer[P]

	ticks int
	dirty bool
}

// New builds a simulation over the given initial positions, which are
// copied. Zero nodes is valid.
func New[P geom.Point[P]](positions []P, opts ...Option) (*Simulation[P], error) {
	dim := 0
	if len(positions) > 0 {
		dim = positions[0].Dim()
	}
	return build(positions, dim, opts)
}

// FromNodes builds a simulation with one node per element of nodes, placed
// on a phyllotaxis spiral in the space of template. Only len(nodes) is used.
func FromNodes[N any, P geom.Point[P]](nodes []N, template P, opts ...Option) (*Simulation[P], error) {
	if template.Dim() > geom.MaxDim {
		return nil, fmt.Errorf("%w: dimension %d exceeds %d", ErrDimensionMismatch, template.Dim(), geom.MaxDim)
	}
	pts := geom.Phyllotaxis(len(nodes), template, geom.DefaultPlacementRadius)
	return build(pts, template.Dim(), opts)
}

func build[P geom.Point[P]](positions []P, dim int, opts []Option) (*Simulation[P], error) {
	cfg := settings{velocityDecay: DefaultVelocityDecay, seed: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.velocityDecay < 0 || cfg.velocityDecay > 1 || math.IsNaN(cfg.velocityDecay) {
		return nil, fmt.Errorf("%w: velocity decay = %v", ErrParameterBounds, cfg.velocityDecay)
	}
	if dim > geom.MaxDim {
		return nil, fmt.Errorf("%w: dimension %d exceeds %d", ErrDimensionMismatch, dim, geom.MaxDim)
	}
	for i, p := range positions {
		if p.Dim() != dim {
			return nil, fmt.Errorf("%w: node %d has dimension %d, want %d", ErrDimensionMismatch, i, p.Dim(), dim)
		}
		if !geom.IsFinite(p) {
			return nil, fmt.Errorf("%w: node %d", ErrNonFinitePosition, i)
		}
	}

	s := &Simulation[P]{
		dim:     dim,
		pos:     append([]P(nil), positions...),
		vel:     make([]P, len(positions)),
		fixed:   make([]bool, len(positions)),
		pins:    make([]P, len(positions)),
		cooling: cfg.cooling,
		decay:   cfg.velocityDecay,
		rng:     cfg.rng,
		workers: cfg.workers,
		log:     cfg.logger,
		dirty:   true,
	}
	for i, p := range s.pos {
		s.vel[i] = geom.Zero(p)
	}
	if s.cooling == nil {
		s.cooling = NewCooling()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(cfg.seed))
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}

	for _, pf := range cfg.forces {
		if pf.force == nil {
			return nil, &ForceError{Name: pf.name, Wrapped: ErrNilForce}
		}
		f, ok := pf.force.(force.Force[P])
		if !ok {
			return nil, &ForceError{Name: pf.name, Wrapped: ErrPointType}
		}
		if err := s.register(pf.name, f); err != nil {
			return nil, err
		}
	}
	for _, o := range cfg.observers {
		obs, ok := o.(Observer[P])
		if !ok {
			return nil, fmt.Errorf("%w: observer %T", ErrPointType, o)
		}
		s.observers = append(s.observers, obs)
	}

	s.log.Debug("simulation created", "nodes", len(s.pos), "dim", dim, "forces", len(cfg.forces))
	return s, nil
}

// register initializes f and appends it. The caller holds the write lock.
func (s *Simulation[P]) register(name string, f force.Force[P]) error {
	if f == nil {
		return &ForceError{Name: name, Wrapped: ErrNilForce}
	}
	if s.forces.find(name) >= 0 {
		return &ForceError{Name: name, Wrapped: ErrDuplicateForce}
	}
	if err := initForce(f, len(s.pos), s.rng); err != nil {
		return &ForceError{Name: name, Wrapped: err}
	}
	if err := s.forces.add(name, f); err != nil {
		return &ForceError{Name: name, Wrapped: err}
	}
	s.dirty = true
	s.log.Debug("force registered", "name", name, "type", fmt.Sprintf("%T", f))
	return nil
}

// initForce maps a typed nil pointer to ErrNilForce.
func initForce[P geom.Point[P]](f force.Force[P], nodes int, rng *rand.Rand) error {
	err := f.Init(nodes, rng)
	if errors.Is(err, force.ErrNilForce) {
		return ErrNilForce
	}
	return err
}

func (s *Simulation[P]) buffers() *force.Buffers[P] {
	b := &force.Buffers[P]{Positions: s.pos, Velocities: s.vel, Workers: s.workers}
	if s.numFixed > 0 {
		b.Fixed = s.fixed
	}
	return b
}

func (s *Simulation[P]) pending(b *force.Buffers[P]) bool {
	for _, e := range s.forces.entries {
		if r, ok := e.force.(force.Restless[P]); ok && r.Pending(b) {
			return true
		}
	}
	return false
}

func (s *Simulation[P]) idle() bool {
	return s.cooling.Settled() && !s.dirty && !s.pending(s.buffers())
}

// Tick advances the layout by one step. It reports false, and changes
// nothing, when the layout has converged.
func (s *Simulation[P]) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pos) == 0 || s.idle() {
		return false
	}

	alpha := s.cooling.Alpha()
	b := s.buffers()
	for _, e := range s.forces.entries {
		e.force.Apply(b, alpha)
	}
	s.integrate()
	s.ticks++
	s.dirty = false

	frame := Frame[P]{Tick: s.ticks, Alpha: alpha, Positions: s.pos, Velocities: s.vel}
	for _, o := range s.observers {
		o.OnTick(frame)
	}

	wasSettled := s.cooling.Settled()
	s.cooling.Step()
	if !wasSettled && s.cooling.Settled() {
		s.log.Debug("cooling settled", "ticks", s.ticks)
	}
	return true
}

func (s *Simulation[P]) integrate() {
	keep := 1 - s.decay
	for i := range s.pos {
		if s.fixed[i] {
			s.pos[i] = s.pins[i]
			s.vel[i] = geom.Zero(s.vel[i])
			continue
		}
		s.vel[i] = s.vel[i].Scale(keep)
		s.pos[i] = s.pos[i].Add(s.vel[i])
	}
}

// Run ticks until the layout converges, maxTicks ticks have run, or ctx is
// done. maxTicks <= 0 means no limit. It returns the number of ticks that
// did work.
func (s *Simulation[P]) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}
		if !s.Tick() {
			break
		}
		n++
	}
	return n, nil
}

func (s *Simulation[P]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pos)
}

func (s *Simulation[P]) Dim() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

// Positions returns a copy of the current positions.
func (s *Simulation[P]) Positions() []P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]P(nil), s.pos...)
}

func (s *Simulation[P]) Velocities() []P {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]P(nil), s.vel...)
}

func (s *Simulation[P]) Position(i int) (P, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkNode(i); err != nil {
		var zero P
		return zero, err
	}
	return s.pos[i], nil
}

func (s *Simulation[P]) Ticks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}

func (s *Simulation[P]) Alpha() float64 { return s.cooling.Alpha() }

// Settled reports whether the next Tick would be a no-op.
func (s *Simulation[P]) Settled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pos) == 0 || s.idle()
}

func (s *Simulation[P]) Cooling() *CoolingStepper { return s.cooling }

func (s *Simulation[P]) checkNode(i int) error {
	if i < 0 || i >= len(s.pos) {
		return fmt.Errorf("%w: %d of %d", ErrNodeOutOfRange, i, len(s.pos))
	}
	return nil
}

// SetPosition moves node i. A pinned node stays pinned at the new position.
func (s *Simulation[P]) SetPosition(i int, p P) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNode(i); err != nil {
		return err
	}
	if p.Dim() != s.dim {
		return fmt.Errorf("%w: dimension %d, want %d", ErrDimensionMismatch, p.Dim(), s.dim)
	}
	if !geom.IsFinite(p) {
		return fmt.Errorf("%w: node %d", ErrNonFinitePosition, i)
	}
	s.pos[i] = p
	if s.fixed[i] {
		s.pins[i] = p
	}
	s.dirty = true
	return nil
}

// Fix pins node i at its current position.
func (s *Simulation[P]) Fix(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNode(i); err != nil {
		return err
	}
	if !s.fixed[i] {
		s.fixed[i] = true
		s.numFixed++
	}
	s.pins[i] = s.pos[i]
	s.vel[i] = geom.Zero(s.vel[i])
	s.dirty = true
	return nil
}

func (s *Simulation[P]) Release(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNode(i); err != nil {
		return err
	}
	if s.fixed[i] {
		s.fixed[i] = false
		s.numFixed--
	}
	s.dirty = true
	return nil
}

func (s *Simulation[P]) IsFixed(i int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return i >= 0 && i < len(s.fixed) && s.fixed[i]
}

// Reheat sets alpha and wakes a settled layout.
func (s *Simulation[P]) Reheat(alpha float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cooling.SetAlpha(alpha); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

// AddForce appends a force after every registered force.
func (s *Simulation[P]) AddForce(name string, f force.Force[P]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(name, f)
}

// ReplaceForce swaps the force registered under name, keeping its place in
// the application order.
func (s *Simulation[P]) ReplaceForce(name string, f force.Force[P]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f == nil {
		return &ForceError{Name: name, Wrapped: ErrNilForce}
	}
	if _, ok := s.forces.get(name); !ok {
		return &ForceError{Name: name, Wrapped: ErrUnknownForce}
	}
	if err := initForce(f, len(s.pos), s.rng); err != nil {
		return &ForceError{Name: name, Wrapped: err}
	}
	if err := s.forces.replace(name, f); err != nil {
		return err
	}
	s.dirty = true
	return nil
}

func (s *Simulation[P]) RemoveForce(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.forces.remove(name); err != nil {
		return &ForceError{Name: name, Wrapped: ErrUnknownForce}
	}
	s.dirty = true
	return nil
}

func (s *Simulation[P]) Force(name string) (force.Force[P], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forces.get(name)
}

// ForceNames lists registered forces in application order.
func (s *Simulation[P]) ForceNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forces.names()
}
