// Package experiment turns a layout configuration and a graph into a running
// simulation, and collects what the run produced.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/graph"
	"github.com/san-kum/forcesim/internal/metrics"
	"github.com/san-kum/forcesim/internal/sim"
)

// DisplacementThreshold is the per-tick movement below which a tick counts
// as calm.
const DisplacementThreshold = 0.01

var ErrDimension = errors.New("experiment: point dimension does not match config")

type Result struct {
	Name      string
	Ticks     int
	Settled   bool
	Alpha     float64
	Elapsed   time.Duration
	Metrics   map[string]float64
	Trace     *Trace
	Positions [][]float64
}

type Experiment[P geom.Point[P]] struct {
	mu sync.Mutex

	cfg      *config.Config
	graph    *graph.Graph
	links    []force.Link
	registry *Registry[P]
	env      Env[P]
	gains    map[string]float64

	sim     *sim.Simulation[P]
	metrics []metrics.Metric[P]
	trace   *Trace
	log     *log.Logger
}

// LoadGraph reads the configured graph file or runs its generator with the
// config seed.
func LoadGraph(cfg *config.Config) (*graph.Graph, error) {
	if cfg.Graph.File != "" {
		return graph.Load(cfg.Graph.File)
	}
	return graph.Generate(cfg.Graph.Generator, graph.Params{
		Nodes:     cfg.Graph.Nodes,
		Branching: cfg.Graph.Branching,
		Clusters:  cfg.Graph.Clusters,
		Edges:     cfg.Graph.Edges,
		Radius:    cfg.Graph.Radius,
	}, cfg.Seed)
}

func cooling(a config.AlphaConfig) (*sim.CoolingStepper, error) {
	decay := a.Decay
	if decay == 0 {
		var err error
		if decay, err = sim.DecayForIterations(a.Min, a.Iterations); err != nil {
			return nil, err
		}
	}
	return sim.NewCoolingWith(a.Initial, a.Min, decay, a.Target)
}

// New builds the simulation for cfg over g in the space of like. The logger
// is taken from ctx.
func New[P geom.Point[P]](ctx context.Context, cfg *config.Config, g *graph.Graph, like P) (*Experiment[P], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if like.Dim() != cfg.Dimensions {
		return nil, fmt.Errorf("%w: %d vs %d", ErrDimension, like.Dim(), cfg.Dimensions)
	}
	links, err := g.Links()
	if err != nil {
		return nil, err
	}
	start, err := graph.Positions(g, like)
	if err != nil {
		return nil, err
	}
	cool, err := cooling(cfg.Alpha)
	if err != nil {
		return nil, fmt.Errorf("alpha: %w", err)
	}

	logger := log.FromContext(ctx)
	e := &Experiment[P]{
		cfg:      cfg,
		graph:    g,
		links:    links,
		registry: NewRegistry[P](),
		gains:    make(map[string]float64),
		log:      logger,
	}
	e.env = Env[P]{
		Like:   like,
		Links:  links,
		Degree: degrees(g.Len(), links),
		Radii:  g.Radii(force.DefaultCollisionRadius),
	}

	opts := []sim.Option{
		sim.WithCooling(cool),
		sim.WithSeed(cfg.Seed),
		sim.WithWorkers(cfg.Workers),
		sim.WithVelocityDecay(cfg.VelocityDecay),
		sim.WithLogger(logger.WithPrefix("sim")),
	}
	for _, fc := range cfg.Forces {
		f, err := e.registry.Build(fc, e.env)
		if err != nil {
			return nil, fmt.Errorf("force %s: %w", fc.Key(), err)
		}
		opts = append(opts, sim.WithForce(fc.Key(), f))
		e.gains[fc.Key()] = 1
	}

	e.metrics = e.defaultMetrics()
	opts = append(opts, metrics.Observers(e.metrics...)...)
	e.trace = newTrace(e.metrics)
	opts = append(opts, sim.WithObserver[P](recorder[P]{trace: e.trace, metrics: e.metrics}))

	s, err := sim.New(start, opts...)
	if err != nil {
		return nil, err
	}
	for _, i := range g.Pinned() {
		if err := s.Fix(i); err != nil {
			return nil, err
		}
	}
	e.sim = s
	logger.Debug("experiment ready", "name", cfg.Name, "nodes", g.Len(), "edges", len(links), "forces", s.ForceNames())
	return e, nil
}

func degrees(n int, links []force.Link) []int {
	deg := make([]int, n)
	for _, l := range links {
		deg[l.Source]++
		deg[l.Target]++
	}
	return deg
}

func (e *Experiment[P]) defaultMetrics() []metrics.Metric[P] {
	rest := force.DefaultLinkDistance
	radii := e.env.Radii
	for _, fc := range e.cfg.Forces {
		if fc.Kind == config.KindLink && fc.Distance != nil {
			rest = *fc.Distance
		}
		if fc.Kind == config.KindCollide && fc.Radius != nil {
			radii = make([]float64, e.graph.Len())
			for i := range radii {
				radii[i] = *fc.Radius
			}
		}
	}
	return []metrics.Metric[P]{
		metrics.NewKineticEnergy[P](),
		metrics.NewDisplacement[P](DisplacementThreshold),
		metrics.NewMaxOverlap[P](radii),
		metrics.NewLinkStress[P](e.links, rest),
	}
}

func (e *Experiment[P]) Simulation() *sim.Simulation[P] { return e.sim }

func (e *Experiment[P]) Graph() *graph.Graph { return e.graph }

func (e *Experiment[P]) Name() string { return e.cfg.Name }

// Run ticks until the layout settles, MaxTicks is reached, or ctx is done.
// A cancelled run still returns the partial result alongside ctx's error.
func (e *Experiment[P]) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	n, err := e.sim.Run(ctx, e.cfg.MaxTicks)
	res := e.result(time.Since(start))

	logger := log.FromContext(ctx)
	if err != nil {
		logger.Warn("run interrupted", "name", e.cfg.Name, "ticks", n, "err", err)
		return res, err
	}
	logger.Info("run complete", "name", e.cfg.Name, "ticks", n, "settled", res.Settled,
		"elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (e *Experiment[P]) result(elapsed time.Duration) *Result {
	pts := e.sim.Positions()
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = geom.Coords(p)
	}
	return &Result{
		Name:      e.cfg.Name,
		Ticks:     e.sim.Ticks(),
		Settled:   e.sim.Settled(),
		Alpha:     e.sim.Alpha(),
		Elapsed:   elapsed,
		Metrics:   metrics.Values(e.metrics...),
		Trace:     e.trace,
		Positions: coords,
	}
}

// Step runs up to n ticks and returns how many did work.
func (e *Experiment[P]) Step(n int) int {
	done := 0
	for done < n && e.sim.Tick() {
		done++
	}
	return done
}

// Reheat restarts cooling from the configured initial alpha.
func (e *Experiment[P]) Reheat() error {
	a := e.cfg.Alpha.Initial
	if a == 0 {
		a = sim.DefaultAlpha
	}
	return e.sim.Reheat(a)
}

// ScaleStrength multiplies the strength of the named force by factor and
// swaps in the rebuilt force.
func (e *Experiment[P]) ScaleStrength(name string, factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("strength factor %v must be positive", factor)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	gain, ok := e.gains[name]
	if !ok {
		return fmt.Errorf("force %s: %w", name, sim.ErrUnknownForce)
	}
	var fc config.ForceConfig
	for _, c := range e.cfg.Forces {
		if c.Key() == name {
			fc = c
		}
	}
	env := e.env
	env.Gain = gain * factor
	f, err := e.registry.Build(fc, env)
	if err != nil {
		return err
	}
	if err := e.sim.ReplaceForce(name, f); err != nil {
		return err
	}
	e.gains[name] = env.Gain
	e.log.Debug("strength scaled", "force", name, "gain", env.Gain)
	return nil
}

// Gain is the multiplier applied to the named force's strength.
func (e *Experiment[P]) Gain(name string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gains[name]
}

func (e *Experiment[P]) Forces() []string { return e.sim.ForceNames() }

// Snapshot copies the current layout for display.
func (e *Experiment[P]) Snapshot() Snapshot {
	pts := e.sim.Positions()
	coords := make([][]float64, len(pts))
	for i, p := range pts {
		coords[i] = geom.Coords(p)
	}
	return Snapshot{
		Tick:      e.sim.Ticks(),
		Alpha:     e.sim.Alpha(),
		Settled:   e.sim.Settled(),
		Positions: coords,
		Links:     e.links,
		Radii:     e.env.Radii,
		Metrics:   metrics.Values(e.metrics...),
	}
}
