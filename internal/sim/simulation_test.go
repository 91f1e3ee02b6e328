package sim_test

import (
	"context"
	"errors"
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcesim/internal/force"
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/sim"
)

func randomPoints(seed int64, n int, span float64) []geom.Vec2 {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]geom.Vec2, n)
	for i := range pts {
		pts[i] = geom.V2(rng.Float64()*span, rng.Float64()*span)
	}
	return pts
}

func ringEdges(n int) []force.Pair {
	edges := make([]force.Pair, n)
	for i := range edges {
		edges[i] = force.Pair{i, (i + 1) % n}
	}
	return edges
}

// layout builds the usual stack: repulsion, springs, centering, collision.
func layout(n int, workers int) *sim.Simulation[geom.Vec2] {
	collide := force.NewCollision[geom.Vec2]()
	Expect(collide.SetRadius(4)).To(Succeed())
	s, err := sim.New(randomPoints(5, n, 300),
		sim.WithSeed(99),
		sim.WithWorkers(workers),
		sim.WithForce[geom.Vec2]("charge", force.NewManyBody[geom.Vec2]()),
		sim.WithForce[geom.Vec2]("link", force.NewLink[geom.Vec2](ringEdges(n))),
		sim.WithForce[geom.Vec2]("center", force.NewCenter[geom.Vec2]()),
		sim.WithForce[geom.Vec2]("collide", collide),
	)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Simulation", func() {
	ctx := context.Background()

	Context("construction", func() {
		It("accepts zero nodes as a no-op simulation", func() {
			s, err := sim.New[geom.Vec2](nil,
				sim.WithForce[geom.Vec2]("link", force.NewLink[geom.Vec2]([]force.Pair{})),
				sim.WithForce[geom.Vec2]("charge", force.NewManyBody[geom.Vec2]()),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(0))
			Expect(s.Tick()).To(BeFalse())
			Expect(s.Settled()).To(BeTrue())
			Expect(s.Positions()).To(BeEmpty())
		})

		It("rejects edges referencing missing nodes before the first tick", func() {
			_, err := sim.New(randomPoints(1, 3, 10),
				sim.WithForce[geom.Vec2]("link", force.NewLink[geom.Vec2]([]force.Pair{{0, 1}, {2, 3}})),
			)
			Expect(err).To(MatchError(force.ErrEdgeOutOfRange))

			var fe *sim.ForceError
			Expect(errors.As(err, &fe)).To(BeTrue())
			Expect(fe.Name).To(Equal("link"))

			var pe *force.ParamError
			Expect(errors.As(err, &pe)).To(BeTrue())
			Expect(pe.Index).To(Equal(1))
		})

		It("rejects non-finite positions", func() {
			_, err := sim.New([]geom.Vec2{geom.V2(0, 0), geom.V2(math.NaN(), 1)})
			Expect(err).To(MatchError(sim.ErrNonFinitePosition))
		})

		It("rejects mixed dimensions", func() {
			_, err := sim.New([]geom.VecN{{0, 0}, {1, 2, 3}})
			Expect(err).To(MatchError(sim.ErrDimensionMismatch))

			_, err = sim.New([]geom.VecN{make(geom.VecN, geom.MaxDim+1)})
			Expect(err).To(MatchError(sim.ErrDimensionMismatch))
		})

		It("rejects forces for another point type", func() {
			_, err := sim.New(randomPoints(1, 3, 10),
				sim.WithForce[geom.Vec3]("charge", force.NewManyBody[geom.Vec3]()),
			)
			Expect(err).To(MatchError(sim.ErrPointType))
		})

		It("rejects nil forces", func() {
			_, err := sim.New(randomPoints(1, 3, 10), sim.WithForce[geom.Vec2]("charge", nil))
			Expect(err).To(MatchError(sim.ErrNilForce))

			_, err = sim.New(randomPoints(1, 3, 10),
				sim.WithForce[geom.Vec2]("charge", (*force.ManyBodyForce[geom.Vec2])(nil)),
			)
			Expect(err).To(MatchError(sim.ErrNilForce))

			s, err := sim.New(randomPoints(1, 3, 10),
				sim.WithForce[geom.Vec2]("center", force.NewCenter[geom.Vec2]()),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.AddForce("collide", (*force.CollisionForce[geom.Vec2])(nil))).To(MatchError(sim.ErrNilForce))
			Expect(s.ReplaceForce("center", (*force.CenterForce[geom.Vec2])(nil))).To(MatchError(sim.ErrNilForce))
			Expect(s.ForceNames()).To(Equal([]string{"center"}))
		})

		It("rejects duplicate force names", func() {
			_, err := sim.New(randomPoints(1, 3, 10),
				sim.WithForce[geom.Vec2]("f", force.NewCenter[geom.Vec2]()),
				sim.WithForce[geom.Vec2]("f", force.NewCenter[geom.Vec2]()),
			)
			Expect(err).To(MatchError(sim.ErrDuplicateForce))
		})

		It("rejects an out-of-range velocity decay", func() {
			_, err := sim.New(randomPoints(1, 3, 10), sim.WithVelocityDecay(1.2))
			Expect(err).To(MatchError(sim.ErrParameterBounds))
		})

		It("places nodes on a spiral from opaque identifiers", func() {
			ids := []string{"a", "b", "c", "d", "e"}
			s, err := sim.FromNodes(ids, make(geom.VecN, 3))
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Len()).To(Equal(5))
			Expect(s.Dim()).To(Equal(3))

			pts := s.Positions()
			for i := range pts {
				for j := i + 1; j < len(pts); j++ {
					Expect(geom.Dist(pts[i], pts[j])).To(BeNumerically(">", 0))
				}
			}
		})
	})

	Context("cooling", func() {
		It("settles after the default schedule and then stays put", func() {
			s, err := sim.New(randomPoints(2, 20, 100),
				sim.WithForce[geom.Vec2]("charge", force.NewManyBody[geom.Vec2]()),
			)
			Expect(err).NotTo(HaveOccurred())

			n, err := s.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically("~", sim.DefaultIterations, 1))
			Expect(s.Settled()).To(BeTrue())
			Expect(s.Alpha()).To(Equal(0.0))

			before := s.Positions()
			ticks := s.Ticks()
			for i := 0; i < 5; i++ {
				Expect(s.Tick()).To(BeFalse())
			}
			Expect(s.Positions()).To(Equal(before))
			Expect(s.Ticks()).To(Equal(ticks))
		})

		It("wakes on reheat", func() {
			s, err := sim.New(randomPoints(2, 5, 100))
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Tick()).To(BeFalse())

			Expect(s.Reheat(0.5)).To(Succeed())
			Expect(s.Tick()).To(BeTrue())
			Expect(s.Alpha()).To(BeNumerically("<", 0.5))
		})

		It("keeps ticking while a restless force has work at zero alpha", func() {
			cooling, err := sim.NewCoolingWith(0.0005, sim.DefaultAlphaMin, sim.DefaultAlphaDecay, 0)
			Expect(err).NotTo(HaveOccurred())
			collide := force.NewCollision[geom.Vec2]()
			Expect(collide.SetRadius(5)).To(Succeed())
			Expect(collide.SetStrength(0.5)).To(Succeed())

			pts := []geom.Vec2{geom.V2(0, 0), geom.V2(2, 0), geom.V2(4, 0), geom.V2(6, 1), geom.V2(8, 0)}
			s, err := sim.New(pts, sim.WithCooling(cooling), sim.WithForce[geom.Vec2]("collide", collide))
			Expect(err).NotTo(HaveOccurred())

			n, err := s.Run(ctx, 5000)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeNumerically(">", 2))
			Expect(n).To(BeNumerically("<", 5000))

			final := s.Positions()
			for i := range final {
				for j := i + 1; j < len(final); j++ {
					Expect(geom.Dist(final[i], final[j])).To(BeNumerically(">", 10-1e-3))
				}
			}
		})

		It("resumes after settling when alpha min drops below the target", func() {
			s, err := sim.New(randomPoints(2, 5, 100),
				sim.WithForce[geom.Vec2]("charge", force.NewManyBody[geom.Vec2]()),
			)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Cooling().SetTarget(0.0005)).To(Succeed())
			Expect(s.Tick()).To(BeFalse())
			Expect(s.Cooling().SetMin(0.0001)).To(Succeed())
			Expect(s.Settled()).To(BeFalse())
			Expect(s.Tick()).To(BeTrue())
		})

		It("stops when the context is canceled", func() {
			s, err := sim.New(randomPoints(2, 5, 100))
			Expect(err).NotTo(HaveOccurred())
			canceled, cancel := context.WithCancel(ctx)
			cancel()
			n, err := s.Run(canceled, 0)
			Expect(err).To(MatchError(context.Canceled))
			Expect(n).To(Equal(0))
		})
	})

	Context("layout", func() {
		It("separates a coincident linked pair to the rest distance", func() {
			link := force.NewLink[geom.Vec2]([]force.Pair{{0, 1}})
			Expect(link.SetDistance(50)).To(Succeed())
			Expect(link.SetStrength(1)).To(Succeed())

			s, err := sim.New([]geom.Vec2{geom.V2(0, 0), geom.V2(0, 0)},
				sim.WithForce[geom.Vec2]("link", link),
			)
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Run(ctx, 0)
			Expect(err).NotTo(HaveOccurred())

			pts := s.Positions()
			Expect(geom.Dist(pts[0], pts[1])).To(BeNumerically("~", 50, 1))
		})

		It("is deterministic for a seed regardless of worker count", func() {
			a := layout(300, 1)
			b := layout(300, 8)
			_, err := a.Run(ctx, 60)
			Expect(err).NotTo(HaveOccurred())
			_, err = b.Run(ctx, 60)
			Expect(err).NotTo(HaveOccurred())
			Expect(b.Positions()).To(Equal(a.Positions()))
		})

		It("keeps pinned nodes in place", func() {
			s := layout(30, 0)
			p0, err := s.Position(0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Fix(0)).To(Succeed())
			Expect(s.IsFixed(0)).To(BeTrue())

			_, err = s.Run(ctx, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Position(0)).To(Equal(p0))

			Expect(s.SetPosition(0, geom.V2(500, 500))).To(Succeed())
			s.Tick()
			Expect(s.Position(0)).To(Equal(geom.V2(500, 500)))

			Expect(s.Release(0)).To(Succeed())
			s.Tick()
			Expect(s.Position(0)).NotTo(Equal(geom.V2(500, 500)))
		})

		It("notifies observers after each tick", func() {
			var frames []sim.Frame[geom.Vec2]
			obs := sim.ObserverFunc[geom.Vec2](func(f sim.Frame[geom.Vec2]) {
				frames = append(frames, sim.Frame[geom.Vec2]{Tick: f.Tick, Alpha: f.Alpha})
			})
			s, err := sim.New(randomPoints(3, 4, 10), sim.WithObserver[geom.Vec2](obs))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 3; i++ {
				s.Tick()
			}
			Expect(frames).To(HaveLen(3))
			Expect(frames[0].Tick).To(Equal(1))
			Expect(frames[0].Alpha).To(Equal(1.0))
			Expect(frames[2].Alpha).To(BeNumerically("<", frames[1].Alpha))
		})
	})

	Context("force registry", func() {
		It("keeps registration order across replace and remove", func() {
			s := layout(10, 0)
			Expect(s.ForceNames()).To(Equal([]string{"charge", "link", "center", "collide"}))

			Expect(s.ReplaceForce("link", force.NewLink[geom.Vec2](ringEdges(10)[:5]))).To(Succeed())
			Expect(s.ForceNames()).To(Equal([]string{"charge", "link", "center", "collide"}))

			Expect(s.RemoveForce("center")).To(Succeed())
			Expect(s.AddForce("x", force.NewPosition[geom.Vec2]())).To(Succeed())
			Expect(s.ForceNames()).To(Equal([]string{"charge", "link", "collide", "x"}))

			f, ok := s.Force("collide")
			Expect(ok).To(BeTrue())
			Expect(f).To(BeAssignableToTypeOf(&force.CollisionForce[geom.Vec2]{}))
		})

		It("reports unknown and duplicate names", func() {
			s := layout(10, 0)
			Expect(s.RemoveForce("nope")).To(MatchError(sim.ErrUnknownForce))
			Expect(s.ReplaceForce("nope", force.NewCenter[geom.Vec2]())).To(MatchError(sim.ErrUnknownForce))
			Expect(s.AddForce("charge", force.NewCenter[geom.Vec2]())).To(MatchError(sim.ErrDuplicateForce))
			Expect(s.AddForce("nil", nil)).To(MatchError(sim.ErrNilForce))
		})

		It("validates forces added later against the node set", func() {
			s := layout(10, 0)
			err := s.AddForce("bad", force.NewLink[geom.Vec2]([]force.Pair{{0, 10}}))
			Expect(err).To(MatchError(force.ErrEdgeOutOfRange))
			Expect(s.ForceNames()).NotTo(ContainElement("bad"))
		})

		It("reports node index errors", func() {
			s := layout(10, 0)
			_, err := s.Position(10)
			Expect(err).To(MatchError(sim.ErrNodeOutOfRange))
			Expect(s.Fix(-1)).To(MatchError(sim.ErrNodeOutOfRange))
			Expect(s.SetPosition(3, geom.V2(math.Inf(1), 0))).To(MatchError(sim.ErrNonFinitePosition))
		})
	})
})
