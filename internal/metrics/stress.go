package metrics

import (
	"math"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/sim"
)

// LinkStress is the root-mean-square relative error between each link's
// length and its rest distance.
type LinkStress[P geom.Point[P]] struct {
	name      string
	links     []force.Link
	distances []float64
	current   float64
	sum       float64
	samples   int
}

// NewLinkStress resolves rest distances up front: a link's own Distance when
// set, fallback otherwise.
func NewLinkStress[P geom.Point[P]](links []force.Link, fallback float64) *LinkStress[P] {
	ds := make([]float64, len(links))
	for i, l := range links {
		ds[i] = fallback
		if d, ok := l.EdgeDistance(); ok {
			ds[i] = d
		}
	}
	return &LinkStress[P]{
		name:      "link_stress",
		links:     append([]force.Link(nil), links...),
		distances: ds,
	}
}

func (s *LinkStress[P]) Name() string { return s.name }

func (s *LinkStress[P]) OnTick(f sim.Frame[P]) {
	s.current = Stress(f.Positions, s.links, s.distances)
	s.sum += s.current
	s.samples++
}

func (s *LinkStress[P]) Value() float64 { return s.current }

// Mean is the average stress across observed ticks.
func (s *LinkStress[P]) Mean() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *LinkStress[P]) Reset() {
	s.current = 0
	s.sum = 0
	s.samples = 0
}

// Stress computes sqrt(mean(((|pi-pj|-d)/d)^2)) over links. Links with a
// zero rest distance contribute their absolute length instead. Links whose
// endpoints fall outside pos are skipped.
func Stress[P geom.Point[P]](pos []P, links []force.Link, distances []float64) float64 {
	sum, k := 0.0, 0
	for i, l := range links {
		if l.Source < 0 || l.Source >= len(pos) || l.Target < 0 || l.Target >= len(pos) {
			continue
		}
		d := distances[i]
		e := geom.Dist(pos[l.Source], pos[l.Target]) - d
		if d > 0 {
			e /= d
		}
		sum += e * e
		k++
	}
	if k == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(k))
}
