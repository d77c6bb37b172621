package render_test

import (
	"bytes"
	"errors"
	"image/color"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/synapse/internal/geom"
	"github.com/san-kum/synapse/internal/graph"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/pulse"
	"github.com/san-kum/synapse/internal/render"
	"github.com/san-kum/synapse/internal/rng"
)

type frameCounter struct{ frames []render.FrameStats }

func (f *frameCounter) OnFrame(s render.FrameStats) { f.frames = append(f.frames, s) }

func nodeSet(nodes []graph.Node) map[geom.Point]bool {
	set := make(map[geom.Point]bool, len(nodes))
	for _, n := range nodes {
		set[n.Pos] = true
	}
	return set
}

var _ = Describe("Scene", func() {
	var (
		cfg    render.Config
		params *param.Controller
		surf   *render.Recorder
	)

	BeforeEach(func() {
		cfg = render.DefaultConfig()
		cfg.Seed = 11
		params = param.NewController(0, false)
		surf = &render.Recorder{}
	})

	Describe("NewScene", func() {
		It("rejects fewer than two layers", func() {
			cfg.Layers = []int{4}
			_, err := render.NewScene(cfg, params)
			Expect(errors.Is(err, graph.ErrConfiguration)).To(BeTrue())
		})

		It("rejects an edge probability outside [0, 1]", func() {
			cfg.EdgeProbability = 1.5
			_, err := render.NewScene(cfg, params)
			Expect(err).To(MatchError(graph.ErrConfiguration))
		})

		It("gives every instance its own identity", func() {
			a, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			b, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ID()).NotTo(Equal(b.ID()))
		})
	})

	Describe("Mount", func() {
		It("returns false and stays idle without a surface", func() {
			scene, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(scene.Mount(nil, 800, 600, 1)).To(BeFalse())
			Expect(scene.Frame()).To(Equal(render.FrameStats{}))
		})

		It("sizes the backing store with a pixel ratio of at least 2", func() {
			scene, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			Expect(scene.Mount(surf, 800, 600, 1)).To(BeTrue())
			Expect(surf.Width).To(Equal(800.0))
			Expect(surf.Height).To(Equal(600.0))
			Expect(surf.Scale).To(Equal(2.0))
			Expect(scene.Nodes()).To(HaveLen(54))
		})

		It("logs through the injected logger", func() {
			var buf bytes.Buffer
			scene, err := render.NewScene(cfg, params, render.WithLogger(log.New(&buf, "", 0)))
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 400, 300, 3)
			Expect(buf.String()).To(ContainSubstring("generation 1"))
			Expect(buf.String()).To(ContainSubstring(scene.ID().String()))
		})
	})

	Describe("Frame", func() {
		var scene *render.Scene

		BeforeEach(func() {
			var err error
			cfg.Layers = []int{2, 3, 2}
			cfg.EdgeProbability = 1
			scene, err = render.NewScene(cfg, params, render.WithRand(rng.NewReplay(0.9)))
			Expect(err).NotTo(HaveOccurred())
			Expect(scene.Mount(surf, 100, 100, 1)).To(BeTrue())
		})

		It("clears, then draws every edge and node", func() {
			stats := scene.Frame()
			Expect(surf.Clears).To(Equal(1))
			Expect(surf.Lines).To(HaveLen(12))
			Expect(surf.Circles).To(HaveLen(7))
			Expect(stats.Edges).To(Equal(12))
			Expect(stats.Nodes).To(Equal(7))
			Expect(stats.Spawned).To(BeZero())
		})

		It("strokes edges with the intensity-driven alpha", func() {
			scene.Frame()
			Expect(surf.Lines[0].Color.A).To(Equal(uint8(8))) // 0.03 * 255
			Expect(surf.Lines[0].Width).To(Equal(render.EdgeWidth))

			params.SetIntensity(1)
			scene.Frame()
			Expect(surf.Lines[0].Color.A).To(Equal(uint8(13))) // 0.05 * 255
		})

		It("draws nodes at their radius", func() {
			scene.Frame()
			Expect(surf.Circles[0].Radius).To(Equal(graph.BoundaryRadius))
			Expect(surf.Circles[2].Radius).To(Equal(graph.InteriorRadius))
			Expect(surf.Circles[0].Color.A).To(Equal(uint8(230)))
		})

		It("draws injected pulses at their interpolated position", func() {
			scene.Inject(pulse.Pulse{
				Origin: geom.Point{X: 0, Y: 0},
				Dest:   geom.Point{X: 10, Y: 20},
				Speed:  0.25,
				Color:  pulse.Accent,
			})
			scene.Frame()
			Expect(surf.Circles).To(HaveLen(8))
			last := surf.Circles[7]
			Expect(last.Center.X).To(BeNumerically("~", 2.5, 1e-12))
			Expect(last.Center.Y).To(BeNumerically("~", 5, 1e-12))
			Expect(last.Radius).To(Equal(pulse.Radius))
			Expect(last.Color).To(Equal(render.DefaultPalette().Accent))
		})

		It("retires a pulse and stops drawing it", func() {
			scene.Inject(pulse.Pulse{Speed: 0.5})
			Expect(scene.Frame().Live).To(Equal(1))
			stats := scene.Frame()
			Expect(stats.Retired).To(Equal(1))
			Expect(stats.Live).To(BeZero())
			Expect(surf.Circles).To(HaveLen(7))
		})

		It("does nothing after Close, however often it is closed", func() {
			scene.Close()
			scene.Close()
			Expect(scene.Closed()).To(BeTrue())
			Expect(scene.Frame()).To(Equal(render.FrameStats{}))
			Expect(surf.Clears).To(BeZero())
		})
	})

	Describe("spawning", func() {
		It("fires on every edge when every draw succeeds", func() {
			cfg.Layers = []int{2, 3, 2}
			cfg.EdgeProbability = 1
			scene, err := render.NewScene(cfg, params, render.WithRand(rng.NewReplay(0)))
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 100, 100, 1)

			stats := scene.Frame()
			Expect(stats.Spawned).To(Equal(12))
			Expect(stats.Live).To(Equal(12))
		})

		It("approximates the base rate on a single edge", func() {
			cfg.Layers = []int{1, 1}
			scene, err := render.NewScene(cfg, params, render.WithRand(rng.New(5)))
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 100, 100, 1)

			total := 0
			for i := 0; i < 10000; i++ {
				total += scene.Frame().Spawned
			}
			Expect(total).To(BeNumerically("<=", 15))
			spawned, _ := scene.Totals()
			Expect(spawned).To(Equal(uint64(total)))
		})
	})

	Describe("frozen", func() {
		It("neither spawns nor moves pulses, but still redraws", func() {
			cfg.Layers = []int{2, 3, 2}
			cfg.EdgeProbability = 1
			scene, err := render.NewScene(cfg, params, render.WithRand(rng.NewReplay(0)))
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 100, 100, 1)
			scene.Inject(pulse.Pulse{Progress: 0.4, Speed: 0.1})

			params.SetFrozen(true)
			params.SetIntensity(2)
			for i := 0; i < 100; i++ {
				stats := scene.Frame()
				Expect(stats.Spawned).To(BeZero())
				Expect(stats.Retired).To(BeZero())
			}
			Expect(scene.Pulses()).To(HaveLen(1))
			Expect(scene.Pulses()[0].Progress).To(Equal(0.4))
			Expect(surf.Clears).To(Equal(100))
		})
	})

	Describe("resize", func() {
		It("swaps in a new generation on the next frame and drops old pulses", func() {
			cfg.Layers = []int{3, 4, 3}
			scene, err := render.NewScene(cfg, params, render.WithRand(rng.NewReplay(0.9)))
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 200, 100, 1)
			scene.Frame()
			scene.Inject(pulse.Pulse{Speed: 0.001})
			old := nodeSet(scene.Nodes())

			scene.Resize(1000, 700, 3)
			Expect(scene.Generation()).To(Equal(1))

			stats := scene.Frame()
			Expect(stats.Generation).To(Equal(2))
			Expect(scene.Viewport().Width).To(Equal(1000.0))
			Expect(surf.Scale).To(Equal(3.0))
			Expect(stats.Live).To(BeZero())

			fresh := nodeSet(scene.Nodes())
			for _, c := range surf.Circles {
				Expect(fresh).To(HaveKey(c.Center))
				Expect(old).NotTo(HaveKey(c.Center))
			}
			for _, l := range surf.Lines {
				Expect(fresh).To(HaveKey(l.A))
				Expect(fresh).To(HaveKey(l.B))
			}
		})

		It("keeps only the last of several queued sizes", func() {
			scene, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 200, 100, 1)
			scene.Resize(300, 300, 1)
			scene.Resize(640, 480, 1)
			scene.Frame()
			Expect(scene.Generation()).To(Equal(2))
			Expect(scene.Viewport().Width).To(Equal(640.0))
		})

		It("ignores empty sizes", func() {
			scene, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 200, 100, 1)
			scene.Resize(0, 100, 1)
			scene.Resize(100, -1, 1)
			scene.Frame()
			Expect(scene.Generation()).To(Equal(1))
		})

		It("regenerates in place on request", func() {
			scene, err := render.NewScene(cfg, params)
			Expect(err).NotTo(HaveOccurred())
			scene.Mount(surf, 200, 100, 1)
			scene.Regenerate()
			scene.Frame()
			Expect(scene.Generation()).To(Equal(2))
			Expect(scene.Viewport().Width).To(Equal(200.0))
		})
	})

	It("notifies observers once per frame", func() {
		obs := &frameCounter{}
		scene, err := render.NewScene(cfg, params, render.WithObserver(obs))
		Expect(err).NotTo(HaveOccurred())
		scene.Mount(surf, 300, 200, 1)
		for i := 0; i < 5; i++ {
			scene.Frame()
		}
		Expect(obs.frames).To(HaveLen(5))
		Expect(obs.frames[4].Frame).To(Equal(uint64(5)))
	})

	It("dims nodes when shimmer is enabled", func() {
		cfg.Shimmer = 1
		scene, err := render.NewScene(cfg, params)
		Expect(err).NotTo(HaveOccurred())
		scene.Mount(surf, 300, 200, 1)
		scene.Frame()
		for _, c := range surf.Circles[:len(scene.Nodes())] {
			Expect(c.Color.A).To(BeNumerically("<=", 230))
		}
	})

	It("keeps two scenes independent", func() {
		sa, sb := &render.Recorder{}, &render.Recorder{}
		a, err := render.NewScene(cfg, param.NewController(0, false), render.WithRand(rng.NewReplay(0.9)))
		Expect(err).NotTo(HaveOccurred())
		b, err := render.NewScene(cfg, param.NewController(0, true), render.WithRand(rng.NewReplay(0.9)))
		Expect(err).NotTo(HaveOccurred())
		a.Mount(sa, 300, 200, 1)
		b.Mount(sb, 600, 400, 1)

		a.Inject(pulse.Pulse{Speed: 0.01})
		a.Frame()
		b.Frame()
		Expect(a.Pulses()).To(HaveLen(1))
		Expect(b.Pulses()).To(BeEmpty())
		Expect(sa.Width).To(Equal(300.0))
		Expect(sb.Width).To(Equal(600.0))
	})
})

var _ = Describe("PixelRatio", func() {
	DescribeTable("clamps to at least 2",
		func(device, want float64) {
			Expect(render.PixelRatio(device)).To(Equal(want))
		},
		Entry("unknown", 0.0, 2.0),
		Entry("negative", -3.0, 2.0),
		Entry("standard", 1.0, 2.0),
		Entry("retina", 2.0, 2.0),
		Entry("dense", 3.0, 3.0),
	)
})

var _ = Describe("Scene palette", func() {
	It("switches colors from the next frame", func() {
		cfg := render.DefaultConfig()
		cfg.Layers = []int{2, 2}
		cfg.EdgeProbability = 1
		scene, err := render.NewScene(cfg, nil, render.WithRand(rng.NewReplay(0.9)))
		Expect(err).NotTo(HaveOccurred())

		surf := &render.Recorder{}
		Expect(scene.Mount(surf, 100, 100, 1)).To(BeTrue())
		scene.Frame()
		Expect(surf.Lines[0].Color.R).To(Equal(uint8(120)))

		pal := render.DefaultPalette()
		pal.Edge = color.NRGBA{R: 1, G: 2, B: 3, A: 255}
		scene.SetPalette(pal)
		scene.Frame()
		Expect(surf.Lines[0].Color.R).To(Equal(uint8(1)))
		Expect(scene.Config().Palette).To(Equal(pal))
	})
})

type orderRecorder struct{ ops []byte }

func (o *orderRecorder) Resize(_, _, _ float64) {}
func (o *orderRecorder) Clear()                 { o.ops = o.ops[:0] }
func (o *orderRecorder) StrokeLine(_, _ geom.Point, _ float64, _ color.NRGBA) {
	o.ops = append(o.ops, 'L')
}
func (o *orderRecorder) FillCircle(_ geom.Point, _ float64, _ color.NRGBA) {
	o.ops = append(o.ops, 'C')
}

var _ = Describe("Scene draw order", func() {
	It("strokes each node's edges right before filling the node", func() {
		cfg := render.DefaultConfig()
		cfg.Layers = []int{2, 3, 2}
		cfg.EdgeProbability = 1
		scene, err := render.NewScene(cfg, nil, render.WithRand(rng.NewReplay(0.9)))
		Expect(err).NotTo(HaveOccurred())

		surf := &orderRecorder{}
		Expect(scene.Mount(surf, 300, 200, 1)).To(BeTrue())
		scene.Frame()
		Expect(string(surf.ops)).To(Equal("LLLC" + "LLLC" + "LLC" + "LLC" + "LLC" + "C" + "C"))
	})
})
