package metrics

import (
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/sim"
)

// Displacement records the largest distance any node moved in the latest
// tick. Stable reports the fraction of observed ticks in which that
// distance stayed below the threshold.
type Displacement[P geom.Point[P]] struct {
	name      string
	threshold float64
	prev      []P
	current   float64
	calm      int
	samples   int
}

func NewDisplacement[P geom.Point[P]](threshold float64) *Displacement[P] {
	return &Displacement[P]{
		name:      "displacement",
		threshold: threshold,
	}
}

func (d *Displacement[P]) Name() string { return d.name }

func (d *Displacement[P]) OnTick(f sim.Frame[P]) {
	if len(d.prev) != len(f.Positions) {
		d.prev = make([]P, len(f.Positions))
		copy(d.prev, f.Positions)
		d.current = 0
		return
	}
	d.current = 0
	for i, p := range f.Positions {
		if m := geom.Dist(p, d.prev[i]); m > d.current {
			d.current = m
		}
	}
	copy(d.prev, f.Positions)
	d.samples++
	if d.current < d.threshold {
		d.calm++
	}
}

func (d *Displacement[P]) Value() float64 { return d.current }

func (d *Displacement[P]) Stable() float64 {
	if d.samples == 0 {
		return 1.0
	}
	return float64(d.calm) / float64(d.samples)
}

func (d *Displacement[P]) Reset() {
	d.prev = nil
	d.current = 0
	d.calm = 0
	d.samples = 0
}
