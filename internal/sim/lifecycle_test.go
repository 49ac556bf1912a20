package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/projmo/internal/analysis"
	"github.com/san-kum/projmo/internal/dynamo"
	"github.com/san-kum/projmo/internal/sim"
	"github.com/san-kum/projmo/internal/trajectory"
)

var _ = Describe("Simulation", func() {
	var s *sim.Simulation

	launch := trajectory.Launch{Speed: 20, Angle: 45, Height: 0}

	BeforeEach(func() {
		var err error
		s, err = sim.New(sim.Options{Launch: launch})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("a horizontal shot", func() {
		BeforeEach(func() {
			Expect(s.SetLaunch(trajectory.Launch{Speed: 15, Angle: 0, Height: 10})).To(Succeed())
			_, err := s.Fire()
			Expect(err).NotTo(HaveOccurred())
		})

		It("descends on every step until it lands", func() {
			prev := 10.0
			for s.ActiveCount() > 0 {
				Expect(s.Step(0.01)).To(Succeed())
				tr, err := s.Trajectory(1)
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.State.Position.Y).To(BeNumerically("<", prev))
				prev = tr.State.Position.Y
			}
			tr, _ := s.Trajectory(1)
			Expect(tr.Status).To(Equal(trajectory.Landed))
			Expect(tr.State.Position.Y).To(BeZero())
		})
	})

	Describe("a vacuum shot", func() {
		It("stays within g·t·dt of the closed form", func() {
			const dt = 0.01
			_, err := s.Fire()
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 200 && s.ActiveCount() > 0; i++ {
				Expect(s.Step(dt)).To(Succeed())
				tr, _ := s.Trajectory(1)
				if tr.Status != trajectory.Flying {
					break
				}
				want := analysis.ClosedForm(launch, dynamo.DefaultGravity, tr.State.Time)
				bound := dynamo.DefaultGravity*tr.State.Time*dt + 1e-9
				Expect(math.Abs(tr.State.Position.X - want.X)).To(BeNumerically("<=", 1e-9))
				Expect(math.Abs(tr.State.Position.Y - want.Y)).To(BeNumerically("<=", bound))
			}
		})
	})

	Describe("complementary angles", func() {
		rangeFor := func(angle float64) float64 {
			r, err := sim.New(sim.Options{Launch: trajectory.Launch{Speed: 20, Angle: angle, Height: 10}})
			Expect(err).NotTo(HaveOccurred())
			_, err = r.Fire()
			Expect(err).NotTo(HaveOccurred())
			res, err := r.Run(context.Background(), 0.001, 30)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summaries).To(HaveLen(1))
			return res.Summaries[0].Range
		}

		It("give different ranges from a raised launch", func() {
			Expect(rangeFor(30)).NotTo(BeNumerically("~", rangeFor(60), 0.5))
		})
	})

	Describe("Reset", func() {
		BeforeEach(func() {
			for i := 0; i < 3; i++ {
				_, err := s.Fire()
				Expect(err).NotTo(HaveOccurred())
				Expect(s.Step(0.1)).To(Succeed())
			}
		})

		It("leaves a single armed trajectory", func() {
			s.Reset()
			trs := s.Trajectories()
			Expect(trs).To(HaveLen(1))
			Expect(trs[0].ID).To(Equal(1))
			Expect(trs[0].Status).To(Equal(trajectory.Armed))
			Expect(trs[0].State.Time).To(BeZero())
			Expect(trs[0].History.Len()).To(BeZero())
		})

		It("is idempotent", func() {
			s.Reset()
			once := s.Trajectories()
			s.Reset()
			Expect(s.Trajectories()).To(Equal(once))
		})
	})

	Describe("history", func() {
		It("never shrinks until cleared", func() {
			_, err := s.Fire()
			Expect(err).NotTo(HaveOccurred())

			last := 0
			for i := 0; i < 25; i++ {
				Expect(s.Step(0.05)).To(Succeed())
				tr, _ := s.Trajectory(1)
				Expect(tr.History.Len()).To(Equal(last + 1))
				last = tr.History.Len()
			}
		})

		It("stops recording at the limit", func() {
			capped, err := sim.New(sim.Options{Launch: launch, HistoryLimit: 10})
			Expect(err).NotTo(HaveOccurred())
			_, err = capped.Fire()
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 20; i++ {
				Expect(capped.Step(0.01)).To(Succeed())
			}
			tr, _ := capped.Trajectory(1)
			Expect(tr.History.Len()).To(Equal(10))
			Expect(tr.History.Full()).To(BeTrue())
			Expect(tr.Steps).To(Equal(20))
		})
	})

	Describe("bounds", func() {
		It("stops a trajectory that leaves the tracked region", func() {
			b, err := sim.New(sim.Options{
				Launch: trajectory.Launch{Speed: 40, Angle: 10},
				Bounds: trajectory.Bounds{MaxX: 20},
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = b.Fire()
			Expect(err).NotTo(HaveOccurred())
			res, err := b.Run(context.Background(), 0.01, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Summaries[0].Status).To(Equal(trajectory.OutOfBounds.String()))
		})
	})
})
