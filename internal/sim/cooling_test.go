package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcesim/internal/sim"
)

var _ = Describe("CoolingStepper", func() {
	var c *sim.CoolingStepper

	BeforeEach(func() {
		c = sim.NewCooling()
	})

	settle := func() int {
		steps := 0
		for !c.Settled() && steps < 10000 {
			c.Step()
			steps++
		}
		return steps
	}

	It("starts hot and returns the current alpha before decaying", func() {
		Expect(c.Step()).To(Equal(1.0))
		Expect(c.Alpha()).To(BeNumerically("~", 1-sim.DefaultAlphaDecay, 1e-15))
	})

	It("settles after the default number of iterations", func() {
		prev := 2.0
		steps := 0
		for !c.Settled() {
			a := c.Step()
			Expect(a).To(BeNumerically(">", 0))
			Expect(a).To(BeNumerically("<", prev))
			prev = a
			steps++
			Expect(steps).To(BeNumerically("<=", sim.DefaultIterations+1))
		}
		Expect(steps).To(BeNumerically(">=", sim.DefaultIterations-1))
		Expect(c.Alpha()).To(Equal(0.0))
	})

	It("stays at zero once settled", func() {
		settle()
		for i := 0; i < 10; i++ {
			Expect(c.Step()).To(Equal(0.0))
		}
		Expect(c.Settled()).To(BeTrue())
	})

	It("resumes when the target is raised", func() {
		settle()
		Expect(c.SetTarget(0.5)).To(Succeed())
		Expect(c.Settled()).To(BeFalse())

		Expect(c.Step()).To(Equal(0.0))
		Expect(c.Step()).To(BeNumerically(">", 0))
		for i := 0; i < 5000; i++ {
			c.Step()
		}
		Expect(c.Settled()).To(BeFalse())
		Expect(c.Alpha()).To(BeNumerically("~", 0.5, 1e-6))

		Expect(c.SetTarget(0)).To(Succeed())
		Expect(settle()).To(BeNumerically("<", 10000))
	})

	It("resumes when the minimum drops below the target", func() {
		settle()
		Expect(c.SetTarget(0.0005)).To(Succeed())
		Expect(c.Settled()).To(BeTrue())
		Expect(c.Step()).To(Equal(0.0))

		Expect(c.SetMin(0.0001)).To(Succeed())
		Expect(c.Settled()).To(BeFalse())
		c.Step()
		Expect(c.Step()).To(BeNumerically(">", 0))
	})

	It("stays settled when the minimum is raised", func() {
		settle()
		Expect(c.SetMin(0.01)).To(Succeed())
		Expect(c.Settled()).To(BeTrue())
		Expect(c.Step()).To(Equal(0.0))
	})

	It("wakes on reheat", func() {
		settle()
		Expect(c.SetAlpha(0.3)).To(Succeed())
		Expect(c.Settled()).To(BeFalse())
		Expect(c.Step()).To(Equal(0.3))
	})

	It("rejects invalid parameters", func() {
		Expect(c.SetDecay(1.5)).To(MatchError(sim.ErrInvalidCooling))
		Expect(c.SetMin(-0.1)).To(MatchError(sim.ErrInvalidCooling))
		Expect(c.SetAlpha(-1)).To(MatchError(sim.ErrInvalidCooling))
		Expect(c.SetTarget(2)).To(MatchError(sim.ErrInvalidCooling))

		_, err := sim.NewCoolingWith(1, 0.001, -0.2, 0)
		Expect(err).To(MatchError(sim.ErrInvalidCooling))
		Expect(c.Decay()).To(Equal(sim.DefaultAlphaDecay))
	})

	DescribeTable("DecayForIterations",
		func(min float64, n int, ok bool) {
			d, err := sim.DecayForIterations(min, n)
			if !ok {
				Expect(err).To(MatchError(sim.ErrInvalidCooling))
				return
			}
			Expect(err).NotTo(HaveOccurred())

			stepper, err := sim.NewCoolingWith(1, min, d, 0)
			Expect(err).NotTo(HaveOccurred())
			steps := 0
			for !stepper.Settled() && steps <= n+1 {
				stepper.Step()
				steps++
			}
			Expect(steps).To(BeNumerically("~", n, 1))
		},
		Entry("default", sim.DefaultAlphaMin, sim.DefaultIterations, true),
		Entry("short", 0.01, 50, true),
		Entry("zero iterations", 0.001, 0, false),
		Entry("zero minimum", 0.0, 10, false),
	)
})
