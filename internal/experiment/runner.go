package experiment

import (
	"context"
	"sync"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/graph"
)

// Snapshot is a dimension-agnostic copy of the layout for front ends.
type Snapshot struct {
	Tick      int
	Alpha     float64
	Settled   bool
	Positions [][]float64
	Links     []force.Link
	Radii     []float64
	Metrics   map[string]float64
}

// Runner is an Experiment with its point type erased.
type Runner interface {
	Name() string
	Run(ctx context.Context) (*Result, error)
	Step(n int) int
	Snapshot() Snapshot
	Reheat() error
	ScaleStrength(name string, factor float64) error
	Gain(name string) float64
	Forces() []string
}

// Open picks the point type from cfg.Dimensions: Vec2 and Vec3 for two and
// three dimensions, VecN otherwise.
func Open(ctx context.Context, cfg *config.Config, g *graph.Graph) (Runner, error) {
	switch cfg.Dimensions {
	case 2:
		return open(ctx, cfg, g, geom.Vec2{})
	case 3:
		return open(ctx, cfg, g, geom.Vec3{})
	default:
		return open(ctx, cfg, g, make(geom.VecN, cfg.Dimensions))
	}
}

func open[P geom.Point[P]](ctx context.Context, cfg *config.Config, g *graph.Graph, like P) (Runner, error) {
	e, err := New(ctx, cfg, g, like)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Ensemble runs one layout per seed concurrently, each over its own graph
// generated (or loaded) for that seed.
type Ensemble struct {
	cfg       *config.Config
	numRuns   int
	seedStart int64
}

func NewEnsemble(cfg *config.Config, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.cfg.Clone()
			cfg.Seed = e.seedStart + int64(idx)

			g, err := LoadGraph(cfg)
			if err != nil {
				errs[idx] = err
				return
			}
			r, err := Open(ctx, cfg, g)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = r.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
