package pulse_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/synapse/internal/geom"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/pulse"
	"github.com/san-kum/synapse/internal/rng"
)

var _ = Describe("Simulation", func() {
	var (
		tuning param.Tuning
		a, b   geom.Point
	)

	BeforeEach(func() {
		tuning = param.DefaultTuning()
		a = geom.Point{X: 0, Y: 0}
		b = geom.Point{X: 100, Y: 50}
	})

	Describe("Spawn", func() {
		It("fires when the draw is below the spawn probability", func() {
			sim := pulse.NewSimulation(tuning, rng.NewReplay(0, 0.5))
			Expect(sim.Spawn(a, b, param.Values{})).To(BeTrue())

			live := sim.Live()
			Expect(live).To(HaveLen(1))
			Expect(live[0].Origin).To(Equal(a))
			Expect(live[0].Dest).To(Equal(b))
			Expect(live[0].Progress).To(BeZero())
			Expect(live[0].Speed).To(BeNumerically("~", 0.015, 1e-12))
			Expect(live[0].Color).To(Equal(pulse.Primary))
		})

		It("does not fire when the draw misses", func() {
			sim := pulse.NewSimulation(tuning, rng.NewReplay(0.5))
			Expect(sim.Spawn(a, b, param.Values{Intensity: 1})).To(BeFalse())
			Expect(sim.Len()).To(BeZero())
		})

		It("picks the accent color above the threshold", func() {
			sim := pulse.NewSimulation(tuning, rng.NewReplay(0))
			sim.Spawn(a, b, param.Values{Intensity: 0.5})
			sim.Spawn(a, b, param.Values{Intensity: 0.6})
			Expect(sim.Live()[0].Color).To(Equal(pulse.Primary))
			Expect(sim.Live()[1].Color).To(Equal(pulse.Accent))
		})

		It("widens the speed range with intensity", func() {
			sim := pulse.NewSimulation(tuning, rng.NewReplay(0))
			sim.Spawn(a, b, param.Values{Intensity: 1})
			Expect(sim.Live()[0].Speed).To(BeNumerically("~", 0.02, 1e-12))
		})

		It("is suppressed entirely while frozen", func() {
			src := rng.NewReplay(0)
			sim := pulse.NewSimulation(tuning, src)
			for i := 0; i < 1000; i++ {
				Expect(sim.Spawn(a, b, param.Values{Intensity: 2, Frozen: true})).To(BeFalse())
			}
			Expect(sim.Len()).To(BeZero())
			Expect(src.Draws()).To(BeZero())
		})
	})

	Describe("Advance", func() {
		It("moves by speed times the multiplier", func() {
			sim := pulse.NewSimulation(tuning, nil)
			sim.Add(pulse.Pulse{Origin: a, Dest: b, Speed: 0.01})
			sim.Advance(param.Values{Intensity: 1})
			Expect(sim.Live()[0].Progress).To(BeNumerically("~", 0.06, 1e-12))
		})

		It("retires a pulse in a bounded number of steps", func() {
			sim := pulse.NewSimulation(tuning, nil)
			sim.Add(pulse.Pulse{Origin: a, Dest: b, Speed: 0.013})

			bound := int(math.Ceil(1 / 0.013))
			steps := 0
			for sim.Len() > 0 {
				steps++
				sim.Advance(param.Values{})
				Expect(steps).To(BeNumerically("<=", bound))
			}
			Expect(steps).To(Equal(bound))
			_, retired := sim.Totals()
			Expect(retired).To(Equal(uint64(1)))
		})

		It("retires exactly at progress 1", func() {
			sim := pulse.NewSimulation(tuning, nil)
			sim.Add(pulse.Pulse{Progress: 0.5, Speed: 0.5})
			Expect(sim.Advance(param.Values{})).To(Equal(1))
			Expect(sim.Len()).To(BeZero())
		})

		It("keeps unfinished pulses and drops finished ones", func() {
			sim := pulse.NewSimulation(tuning, nil)
			sim.Add(pulse.Pulse{Progress: 0.99, Speed: 0.02})
			sim.Add(pulse.Pulse{Progress: 0.1, Speed: 0.02})
			sim.Add(pulse.Pulse{Progress: 0.995, Speed: 0.01})
			sim.Add(pulse.Pulse{Progress: 0.2, Speed: 0.02})

			Expect(sim.Advance(param.Values{})).To(Equal(2))
			Expect(sim.Live()).To(HaveLen(2))
			for _, p := range sim.Live() {
				Expect(p.Progress).To(BeNumerically("<", 1))
			}
		})

		It("leaves progress untouched while frozen", func() {
			sim := pulse.NewSimulation(tuning, nil)
			sim.Add(pulse.Pulse{Progress: 0.3, Speed: 0.02})
			sim.Add(pulse.Pulse{Progress: 0.7, Speed: 0.5})
			for i := 0; i < 500; i++ {
				Expect(sim.Advance(param.Values{Intensity: 3, Frozen: true})).To(BeZero())
			}
			Expect(sim.Live()[0].Progress).To(Equal(0.3))
			Expect(sim.Live()[1].Progress).To(Equal(0.7))
		})
	})

	Describe("Pos", func() {
		It("interpolates linearly per axis", func() {
			p := pulse.Pulse{Origin: a, Dest: b, Progress: 0.4}
			Expect(p.Pos().X).To(BeNumerically("~", 40, 1e-12))
			Expect(p.Pos().Y).To(BeNumerically("~", 20, 1e-12))
		})
	})

	It("approximates the base spawn rate over many frames", func() {
		sim := pulse.NewSimulation(tuning, rng.New(20240611))
		frames := 10000
		for i := 0; i < frames; i++ {
			sim.Spawn(a, b, param.Values{})
		}
		spawned, _ := sim.Totals()
		// mean 3, sd ~1.73; the band is wide enough for any seed
		Expect(spawned).To(BeNumerically("<=", 15))
		Expect(float64(spawned) / float64(frames)).To(BeNumerically("~", 0.0003, 0.0012))
	})

	It("matches the spawn rate closely over a long run", func() {
		sim := pulse.NewSimulation(tuning, rng.New(99))
		frames := 2_000_000
		for i := 0; i < frames; i++ {
			sim.Spawn(a, b, param.Values{})
		}
		spawned, _ := sim.Totals()
		// expectation 600, sd ~24.5
		Expect(spawned).To(BeNumerically("~", 600, 150))
	})

	It("drops everything on Reset", func() {
		sim := pulse.NewSimulation(tuning, rng.NewReplay(0))
		sim.Spawn(a, b, param.Values{})
		sim.Spawn(a, b, param.Values{})
		sim.Reset()
		Expect(sim.Len()).To(BeZero())
	})
})
