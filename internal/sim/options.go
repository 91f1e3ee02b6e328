package sim

import (
	"math/rand"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
)

const DefaultVelocityDecay = 0.4

type settings struct {
	cooling       *CoolingStepper
	velocityDecay float64
	seed          int64
	rng           *rand.Rand
	workers       int
	logger        *log.Logger
	forces        []pendingForce
	observers     []any
}

type pendingForce struct {
	name  string
	force any
}

// Option configures a Simulation at construction.
type Option func(*settings)

// WithForce registers a force. Forces apply in the order they are given.
func WithForce[P geom.Point[P]](name string, f force.Force[P]) Option {
	return func(s *settings) { s.forces = append(s.forces, pendingForce{name: name, force: f}) }
}

func WithObserver[P geom.Point[P]](o Observer[P]) Option {
	return func(s *settings) { s.observers = append(s.observers, o) }
}

func WithCooling(c *CoolingStepper) Option {
	return func(s *settings) { s.cooling = c }
}

// WithVelocityDecay sets the fraction of velocity lost per tick, in [0, 1].
// Zero keeps velocities fully between ticks.
func WithVelocityDecay(d float64) Option {
	return func(s *settings) { s.velocityDecay = d }
}

// WithSeed seeds the random source used for jiggling.
func WithSeed(seed int64) Option {
	return func(s *settings) { s.seed = seed }
}

// WithRand supplies the random source directly; it takes precedence over
// WithSeed.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

// WithWorkers bounds the goroutines forces may use; <= 0 means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *settings) { s.workers = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}
