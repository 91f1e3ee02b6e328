package force

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/san-kum/forcesim/internal/geom"
)

func bruteForce(pos []geom.Vec2, strengths []float64, alpha, min2, max2 float64) []geom.Vec2 {
	out := make([]geom.Vec2, len(pos))
	for i := range pos {
		for j := range pos {
			if i == j {
				continue
			}
			d := pos[j].Sub(pos[i])
			l := geom.Norm2(d)
			if l >= max2 {
				continue
			}
			if l < min2 {
				l = math.Sqrt(min2 * l)
			}
			out[i] = out[i].Add(d.Scale(strengths[j] * alpha / l))
		}
	}
	return out
}

func TestManyBody_ExactMatchesBruteForce(t *testing.T) {
	tests := []struct {
		name   string
		n      int
		maxD   float64
		minD   float64
		signed bool
	}{
		{"repulsion", 40, math.Inf(1), 1, false},
		{"bounded range", 50, 60, 1, false},
		{"soft core", 30, math.Inf(1), 25, false},
		{"mixed signs", 45, math.Inf(1), 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			rng := rand.New(rand.NewSource(42))
			b := randomBuffers(rng, tt.n, 200)

			strength := func(i int) float64 {
				s := -30 - float64(i%5)
				if tt.signed && i%2 == 0 {
					s = -s
				}
				return s
			}

			f := NewManyBody[geom.Vec2]()
			g.Expect(f.SetStrengthFunc(strength)).To(Succeed())
			g.Expect(f.SetTheta(0)).To(Succeed())
			g.Expect(f.SetDistanceMin(tt.minD)).To(Succeed())
			g.Expect(f.SetDistanceMax(tt.maxD)).To(Succeed())
			g.Expect(f.Init(tt.n, rng)).To(Succeed())

			strengths := make([]float64, tt.n)
			for i := range strengths {
				strengths[i] = strength(i)
			}
			want := bruteForce(b.Positions, strengths, 0.7, tt.minD*tt.minD, tt.maxD*tt.maxD)

			f.Apply(b, 0.7)
			for i := range want {
				g.Expect(b.Velocities[i].X()).To(BeNumerically("~", want[i].X(), 1e-9), "node %d", i)
				g.Expect(b.Velocities[i].Y()).To(BeNumerically("~", want[i].Y(), 1e-9), "node %d", i)
			}
		})
	}
}

func TestManyBody_ApproximationIsClose(t *testing.T) {
	g := NewWithT(t)
	rng := rand.New(rand.NewSource(8))

	// a probe at the origin and a tight cluster far away: the cluster is
	// summarized by a few cells whose centroids sit close to the exact bodies
	pts := []geom.Vec2{geom.V2(0, 0)}
	for i := 0; i < 40; i++ {
		pts = append(pts, geom.V2(1000+rng.Float64()*10, rng.Float64()*10))
	}

	exact := NewManyBody[geom.Vec2]()
	g.Expect(exact.SetTheta(0)).To(Succeed())
	g.Expect(exact.Init(len(pts), rng)).To(Succeed())
	approx := NewManyBody[geom.Vec2]()
	g.Expect(approx.Init(len(pts), rng)).To(Succeed())

	be := buffers(append([]geom.Vec2(nil), pts...)...)
	ba := buffers(append([]geom.Vec2(nil), pts...)...)
	exact.Apply(be, 1)
	approx.Apply(ba, 1)

	want := be.Velocities[0]
	got := ba.Velocities[0]
	g.Expect(want.X()).To(BeNumerically("<", 0))
	g.Expect(got.X()).To(BeNumerically("~", want.X(), math.Abs(want.X())*0.01))
	g.Expect(got.Y()).To(BeNumerically("~", want.Y(), math.Abs(want.X())*0.01))
}

func TestManyBody_DeterministicAcrossWorkers(t *testing.T) {
	g := NewWithT(t)
	base := randomBuffers(rand.New(rand.NewSource(3)), 600, 500)
	// exact duplicates exercise the jiggle path
	base.Positions[10] = base.Positions[20]
	base.Positions[30] = base.Positions[20]

	run := func(workers int) []geom.Vec2 {
		f := NewManyBody[geom.Vec2]()
		g.Expect(f.Init(600, rand.New(rand.NewSource(9)))).To(Succeed())
		b := buffers(append([]geom.Vec2(nil), base.Positions...)...)
		b.Workers = workers
		f.Apply(b, 1)
		return b.Velocities
	}

	want := run(1)
	for _, w := range []int{2, 4, 16} {
		g.Expect(run(w)).To(Equal(want), "workers=%d", w)
	}
}

func TestManyBody_Coincident(t *testing.T) {
	g := NewWithT(t)
	f := NewManyBody[geom.Vec2]()
	g.Expect(f.Init(2, rand.New(rand.NewSource(1)))).To(Succeed())

	b := buffers(geom.V2(3, 3), geom.V2(3, 3))
	f.Apply(b, 1)

	for _, v := range b.Velocities {
		g.Expect(geom.IsFinite(v)).To(BeTrue())
	}
	g.Expect(geom.Norm(b.Velocities[0])).To(BeNumerically(">", 0))
	// positions are left alone; only the working copy is jiggled
	g.Expect(b.Positions[0]).To(Equal(geom.V2(3, 3)))
	g.Expect(b.Positions[1]).To(Equal(geom.V2(3, 3)))
}

func TestManyBody_AttractionSign(t *testing.T) {
	g := NewWithT(t)
	f := NewManyBody[geom.Vec2]()
	g.Expect(f.SetStrength(10)).To(Succeed())
	g.Expect(f.Init(2, nil)).To(Succeed())

	b := buffers(geom.V2(0, 0), geom.V2(10, 0))
	f.Apply(b, 1)
	g.Expect(b.Velocities[0].X()).To(BeNumerically(">", 0))
	g.Expect(b.Velocities[1].X()).To(BeNumerically("<", 0))

	s, ok := f.Strength()
	g.Expect(ok).To(BeTrue())
	g.Expect(s).To(Equal(10.0))
}

func TestManyBody_Validation(t *testing.T) {
	g := NewWithT(t)
	f := NewManyBody[geom.Vec2]()

	g.Expect(f.SetTheta(-1)).To(MatchError(ErrParameterBounds))
	g.Expect(f.SetDistanceMin(-2)).To(MatchError(ErrNegativeDistance))
	g.Expect(f.SetDistanceMax(math.NaN())).To(MatchError(ErrNonFinite))
	g.Expect(f.SetStrength(math.Inf(1))).To(MatchError(ErrNonFinite))

	g.Expect(f.Init(3, nil)).To(Succeed())
	err := f.SetStrengthFunc(func(i int) float64 {
		if i == 2 {
			return math.NaN()
		}
		return -30
	})
	var pe *ParamError
	g.Expect(err).To(BeAssignableToTypeOf(pe))
	g.Expect(err).To(MatchError(ErrNonFinite))
	g.Expect(err.(*ParamError).Index).To(Equal(2))

	// the rejected function leaves the previous strength in place
	s, ok := f.Strength()
	g.Expect(ok).To(BeTrue())
	g.Expect(s).To(Equal(DefaultManyBodyStrength))
	g.Expect(f.Theta()).To(BeNumerically("~", DefaultTheta, 1e-12))
}

func BenchmarkManyBody(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	buf := randomBuffers(rng, 5000, 1000)
	f := NewManyBody[geom.Vec2]()
	if err := f.Init(5000, rng); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Apply(buf, 0.5)
	}
}
