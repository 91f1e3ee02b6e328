package metrics

import (
	"math"

	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/quadtree"
	"github.com/san-kum/forcesim/internal/sim"
)

// MaxOverlap reports the deepest pairwise penetration ri+rj-|pi-pj| in the
// latest frame, or zero when no discs overlap.
type MaxOverlap[P geom.Point[P]] struct {
	name    string
	radii   []float64
	current float64
}

// NewMaxOverlap copies radii; frames with a different node count are
// ignored.
func NewMaxOverlap[P geom.Point[P]](radii []float64) *MaxOverlap[P] {
	return &MaxOverlap[P]{
		name:  "max_overlap",
		radii: append([]float64(nil), radii...),
	}
}

func (m *MaxOverlap[P]) Name() string { return m.name }

func (m *MaxOverlap[P]) OnTick(f sim.Frame[P]) {
	if len(f.Positions) != len(m.radii) {
		return
	}
	m.current = Overlap(f.Positions, m.radii)
}

func (m *MaxOverlap[P]) Value() float64 { return m.current }

func (m *MaxOverlap[P]) Reset() { m.current = 0 }

// Overlap returns the deepest penetration among discs centred on pos.
func Overlap[P geom.Point[P]](pos []P, radii []float64) float64 {
	if len(pos) < 2 {
		return 0
	}
	items := make([]quadtree.Item[P], len(pos))
	for i, p := range pos {
		items[i] = quadtree.Item[P]{Index: i, Point: p, Radius: radii[i]}
	}
	tree := quadtree.Build(items, nil)

	worst := 0.0
	for i, p := range pos {
		ri := radii[i]
		tree.Visit(func(nd *quadtree.Node[P]) bool {
			if !nd.MayContain(p, ri+nd.MaxRadius) {
				return true
			}
			if !nd.IsLeaf() {
				return false
			}
			for _, it := range nd.Items {
				if it.Index <= i {
					continue
				}
				d := ri + it.Radius - geom.Dist(p, it.Point)
				worst = math.Max(worst, d)
			}
			return true
		})
	}
	return worst
}
