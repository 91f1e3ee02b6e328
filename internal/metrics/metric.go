// Package metrics provides tick observers that summarise how a layout is
// converging. Each metric is a sim.Observer and can be attached with
// sim.WithObserver or driven by hand from recorded frames.
package metrics

import (
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/sim"
)

type Metric[P geom.Point[P]] interface {
	sim.Observer[P]
	Name() string
	Value() float64
	Reset()
}

// Observers adapts a list of metrics for sim.WithObserver.
func Observers[P geom.Point[P]](ms ...Metric[P]) []sim.Option {
	opts := make([]sim.Option, len(ms))
	for i, m := range ms {
		opts[i] = sim.WithObserver[P](m)
	}
	return opts
}

// Values snapshots every metric by name.
func Values[P geom.Point[P]](ms ...Metric[P]) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
