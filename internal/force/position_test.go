package force

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/forcesim/internal/geom"
)

func TestPosition(t *testing.T) {
	tests := []struct {
		name string
		axes []int
		want geom.Vec2
	}{
		{"all axes", nil, geom.V2(1, -2)},
		{"x only", []int{0}, geom.V2(1, 0)},
		{"y only", []int{1}, geom.V2(0, -2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			f := NewPosition[geom.Vec2]()
			g.Expect(f.SetTarget(geom.V2(10, -20))).To(Succeed())
			g.Expect(f.SetAxes(tt.axes...)).To(Succeed())
			g.Expect(f.Init(1, nil)).To(Succeed())

			b := buffers(geom.V2(0, 0))
			f.Apply(b, 1)
			g.Expect(b.Velocities[0].X()).To(BeNumerically("~", tt.want.X(), 1e-12))
			g.Expect(b.Velocities[0].Y()).To(BeNumerically("~", tt.want.Y(), 1e-12))
		})
	}
}

func TestPosition_ScalesWithAlpha(t *testing.T) {
	g := NewWithT(t)
	f := NewPosition[geom.Vec2]()
	g.Expect(f.SetStrengthFunc(func(i int) float64 { return float64(i+1) * 0.1 })).To(Succeed())
	g.Expect(f.Init(2, nil)).To(Succeed())

	b := buffers(geom.V2(10, 0), geom.V2(10, 0))
	f.Apply(b, 0.5)
	g.Expect(b.Velocities[0].X()).To(BeNumerically("~", -0.5, 1e-12))
	g.Expect(b.Velocities[1].X()).To(BeNumerically("~", -1, 1e-12))

	g.Expect(f.SetAxes(geom.MaxDim)).To(MatchError(ErrParameterBounds))
}
