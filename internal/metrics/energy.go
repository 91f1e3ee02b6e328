package metrics

import (
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/sim"
)

// KineticEnergy tracks sum(|v|^2)/2 over all nodes, treating every node as
// unit mass. Value is the energy of the latest frame.
type KineticEnergy[P geom.Point[P]] struct {
	name    string
	current float64
	peak    float64
	samples int
}

func NewKineticEnergy[P geom.Point[P]]() *KineticEnergy[P] {
	return &KineticEnergy[P]{name: "kinetic_energy"}
}

func (e *KineticEnergy[P]) Name() string { return e.name }

func (e *KineticEnergy[P]) OnTick(f sim.Frame[P]) {
	e.current = Kinetic(f.Velocities)
	if e.current > e.peak {
		e.peak = e.current
	}
	e.samples++
}

func (e *KineticEnergy[P]) Value() float64 { return e.current }

// Peak is the largest energy seen since the last reset.
func (e *KineticEnergy[P]) Peak() float64 { return e.peak }

func (e *KineticEnergy[P]) Samples() int { return e.samples }

func (e *KineticEnergy[P]) Reset() {
	e.current = 0
	e.peak = 0
	e.samples = 0
}

func Kinetic[P geom.Point[P]](vel []P) float64 {
	sum := 0.0
	for _, v := range vel {
		sum += geom.Norm2(v)
	}
	return sum / 2
}
