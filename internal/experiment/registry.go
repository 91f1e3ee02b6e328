package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/forcesim/internal/config"
	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
)

// Env is what a builder may read about the layout it builds for.
type Env[P geom.Point[P]] struct {
	Like   P
	Links  []force.Link
	Degree []int
	Radii  []float64
	// Gain multiplies the configured (or default) strength.
	Gain float64
}

type Builder[P geom.Point[P]] func(fc config.ForceConfig, env Env[P]) (force.Force[P], error)

type Registry[P geom.Point[P]] struct {
	builders map[string]Builder[P]
}

func NewRegistry[P geom.Point[P]]() *Registry[P] {
	r := &Registry[P]{builders: make(map[string]Builder[P])}

	r.builders[config.KindCenter] = buildCenter[P]
	r.builders[config.KindPosition] = buildPosition[P]
	r.builders[config.KindLink] = buildLink[P]
	r.builders[config.KindManyBody] = buildManyBody[P]
	r.builders[config.KindCollide] = buildCollide[P]

	return r
}

// Register adds or overrides the builder for kind.
func (r *Registry[P]) Register(kind string, b Builder[P]) {
	r.builders[kind] = b
}

func (r *Registry[P]) Build(fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	b, ok := r.builders[fc.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown force kind: %s", fc.Kind)
	}
	if env.Gain == 0 {
		env.Gain = 1
	}
	return b(fc, env)
}

func (r *Registry[P]) Kinds() []string {
	kinds := make([]string, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func point[P geom.Point[P]](like P, coords []float64) P {
	return like.Map(func(k int, _ float64) float64 { return coords[k] })
}

func strength(fc config.ForceConfig, def float64) float64 {
	if fc.Strength != nil {
		return *fc.Strength
	}
	return def
}

func buildCenter[P geom.Point[P]](fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	f := force.NewCenter[P]()
	if fc.Center != nil {
		if err := f.SetCenter(point(env.Like, fc.Center)); err != nil {
			return nil, err
		}
	}
	if err := f.SetStrength(env.Gain * strength(fc, 1)); err != nil {
		return nil, err
	}
	return f, nil
}

func buildPosition[P geom.Point[P]](fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	f := force.NewPosition[P]()
	if fc.Target != nil {
		if err := f.SetTarget(point(env.Like, fc.Target)); err != nil {
			return nil, err
		}
	}
	if err := f.SetAxes(fc.Axes...); err != nil {
		return nil, err
	}
	if err := f.SetStrength(env.Gain * strength(fc, force.DefaultPositionStrength)); err != nil {
		return nil, err
	}
	return f, nil
}

func buildLink[P geom.Point[P]](fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	f := force.NewLink[P](scaleLinks(env.Links, env.Gain))
	switch {
	case fc.Strength != nil:
		if err := f.SetStrength(env.Gain * *fc.Strength); err != nil {
			return nil, err
		}
	case env.Gain != 1:
		gain, deg := env.Gain, env.Degree
		err := f.SetStrengthFunc(func(_ int, _ force.Link, src, dst int) float64 {
			return gain / float64(min(deg[src], deg[dst]))
		})
		if err != nil {
			return nil, err
		}
	}
	if fc.Distance != nil {
		if err := f.SetDistance(*fc.Distance); err != nil {
			return nil, err
		}
	}
	if fc.Iterations > 0 {
		if err := f.SetIterations(fc.Iterations); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// scaleLinks applies gain to edges that carry their own strength.
func scaleLinks(links []force.Link, gain float64) []force.Link {
	if gain == 1 {
		return links
	}
	out := make([]force.Link, len(links))
	for i, l := range links {
		l.Strength *= gain
		out[i] = l
	}
	return out
}

func buildManyBody[P geom.Point[P]](fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	f := force.NewManyBody[P]()
	if err := f.SetStrength(env.Gain * strength(fc, force.DefaultManyBodyStrength)); err != nil {
		return nil, err
	}
	if fc.Theta != nil {
		if err := f.SetTheta(*fc.Theta); err != nil {
			return nil, err
		}
	}
	if fc.DistanceMin != nil {
		if err := f.SetDistanceMin(*fc.DistanceMin); err != nil {
			return nil, err
		}
	}
	if fc.DistanceMax != nil {
		if err := f.SetDistanceMax(*fc.DistanceMax); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func buildCollide[P geom.Point[P]](fc config.ForceConfig, env Env[P]) (force.Force[P], error) {
	f := force.NewCollision[P]()
	if fc.Radius != nil {
		if err := f.SetRadius(*fc.Radius); err != nil {
			return nil, err
		}
	} else if env.Radii != nil {
		radii := env.Radii
		if err := f.SetRadiusFunc(func(i int) float64 { return radii[i] }); err != nil {
			return nil, err
		}
	}
	s := math.Min(1, env.Gain*strength(fc, force.DefaultCollisionStrength))
	if err := f.SetStrength(s); err != nil {
		return nil, err
	}
	if fc.Iterations > 0 {
		if err := f.SetIterations(fc.Iterations); err != nil {
			return nil, err
		}
	}
	return f, nil
}
