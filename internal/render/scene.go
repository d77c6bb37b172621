package render

import (
	"fmt"
	"io"
	"log"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/ojrac/opensimplex-go"
	"github.com/san-kum/synapse/internal/graph"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/pulse"
	"github.com/san-kum/synapse/internal/rng"
)

const (
	// EdgeWidth is the stroke width of connection lines in logical pixels.
	EdgeWidth = 0.5

	shimmerScale = 0.8
	shimmerRate  = 0.02
)

type Config struct {
	Layers          []int
	EdgeProbability float64
	Tuning          param.Tuning
	Palette         Palette
	// Shimmer in [0, 1] dims nodes by an opensimplex field keyed on each
	// node's phase. Zero draws nodes at constant palette opacity.
	Shimmer float64
	Seed    uint64
}

func DefaultConfig() Config {
	return Config{
		Layers:          append([]int(nil), graph.DefaultLayers...),
		EdgeProbability: graph.DefaultEdgeProbability,
		Tuning:          param.DefaultTuning(),
		Palette:         DefaultPalette(),
	}
}

// FrameStats summarizes one frame.
type FrameStats struct {
	Frame      uint64
	Generation int
	Nodes      int
	Edges      int
	Spawned    int
	Retired    int
	Live       int
	Values     param.Values
}

type Observer interface {
	OnFrame(stats FrameStats)
}

type Option func(*Scene)

func WithLogger(l *log.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRand overrides the random source used for graph generation and pulses.
func WithRand(src rng.Source) Option {
	return func(s *Scene) {
		if src != nil {
			s.rand = src
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Scene) { s.observers = append(s.observers, o) }
}

// Scene is one running visualization instance.
type Scene struct {
	id        uuid.UUID
	cfg       Config
	params    *param.Controller
	rand      rng.Source
	noise     opensimplex.Noise
	logger    *log.Logger
	observers []Observer

	surface    Surface
	viewport   Viewport
	pending    atomic.Pointer[Viewport]
	nodes      []graph.Node
	edges      int
	generation int
	sim        *pulse.Simulation

	frame  uint64
	clock  float64
	closed atomic.Bool
}

// NewScene validates cfg and prepares a scene driven by params. The scene
// draws nothing until it is mounted on a surface.
func NewScene(cfg Config, params *param.Controller, opts ...Option) (*Scene, error) {
	if err := graph.Validate(cfg.Layers); err != nil {
		return nil, err
	}
	if cfg.EdgeProbability < 0 || cfg.EdgeProbability > 1 {
		return nil, fmt.Errorf("%w: edge probability %v outside [0, 1]", graph.ErrConfiguration, cfg.EdgeProbability)
	}
	if params == nil {
		params = param.NewController(0, false)
	}
	s := &Scene{
		id:     uuid.New(),
		cfg:    cfg,
		params: params,
		logger: log.New(io.Discard, "", 0),
	}
	s.cfg.Layers = append([]int(nil), cfg.Layers...)
	s.cfg.Shimmer = math.Max(0, math.Min(1, cfg.Shimmer))
	for _, opt := range opts {
		opt(s)
	}
	if s.rand == nil {
		s.rand = rng.New(cfg.Seed)
	}
	s.noise = opensimplex.New(int64(cfg.Seed))
	s.sim = pulse.NewSimulation(cfg.Tuning, s.rand)
	return s, nil
}

func (s *Scene) ID() uuid.UUID { return s.id }

func (s *Scene) Params() *param.Controller { return s.params }

// Mount attaches surface and lays out the first generation at the given
// logical size. It returns false, and the scene stays idle, when surface is
// nil or the scene is closed.
func (s *Scene) Mount(surface Surface, width, height, deviceRatio float64) bool {
	if surface == nil || s.closed.Load() {
		s.logger.Printf("scene %s: no surface, not starting", s.id)
		return false
	}
	s.surface = surface
	vp := Viewport{Width: width, Height: height, DeviceRatio: deviceRatio}
	if !vp.Valid() {
		s.logger.Printf("scene %s: mounted with empty viewport %.0fx%.0f", s.id, width, height)
		return true
	}
	s.apply(vp)
	s.logger.Printf("scene %s: mounted", s.id)
	return true
}

// Resize queues a new logical size. It is safe from any goroutine; the next
// frame regenerates the graph before drawing. Empty sizes are ignored.
func (s *Scene) Resize(width, height, deviceRatio float64) {
	vp := Viewport{Width: width, Height: height, DeviceRatio: deviceRatio}
	if !vp.Valid() {
		return
	}
	s.pending.Store(&vp)
}

// Regenerate queues a fresh graph at the current viewport.
func (s *Scene) Regenerate() {
	if !s.viewport.Valid() {
		return
	}
	vp := s.viewport
	s.pending.CompareAndSwap(nil, &vp)
}

func (s *Scene) apply(vp Viewport) {
	scale := vp.Scale()
	nodes, err := graph.Generate(s.cfg.Layers, vp.Width, vp.Height, graph.Options{
		EdgeProbability: s.cfg.EdgeProbability,
		Rand:            s.rand,
	})
	if err != nil {
		s.logger.Printf("scene %s: regenerate: %v", s.id, err)
		return
	}
	s.surface.Resize(vp.Width, vp.Height, scale)
	s.viewport = vp
	s.nodes = nodes
	s.edges = graph.EdgeCount(nodes)
	s.sim.Reset()
	s.generation++
	s.logger.Printf("scene %s: generation %d, %d nodes, %d edges, %.0fx%.0f@%.1fx",
		s.id, s.generation, len(nodes), s.edges, vp.Width, vp.Height, scale)
}

// Frame draws one frame. It does nothing before Mount or after Close.
func (s *Scene) Frame() FrameStats {
	if s.closed.Load() || s.surface == nil {
		return FrameStats{}
	}
	if vp := s.pending.Swap(nil); vp != nil {
		s.apply(*vp)
	}

	v := s.params.Values()
	tu := s.cfg.Tuning
	pal := s.cfg.Palette
	surf := s.surface

	surf.Clear()

	stats := FrameStats{Generation: s.generation, Nodes: len(s.nodes), Edges: s.edges, Values: v}

	// each node's outgoing edges, then the node itself
	edge := WithAlpha(pal.Edge, tu.EdgeAlpha(v))
	base := float64(pal.Node.A) / 255
	for _, a := range s.nodes {
		for _, idx := range a.Targets {
			if idx < 0 || idx >= len(s.nodes) {
				continue
			}
			b := s.nodes[idx]
			surf.StrokeLine(a.Pos, b.Pos, EdgeWidth, edge)
			if s.sim.Spawn(a.Pos, b.Pos, v) {
				stats.Spawned++
			}
		}
		surf.FillCircle(a.Pos, a.Radius, WithAlpha(pal.Node, base*s.shimmer(a)))
	}

	stats.Retired = s.sim.Advance(v)
	for _, p := range s.sim.Live() {
		c := pal.Primary
		if p.Color == pulse.Accent {
			c = pal.Accent
		}
		surf.FillCircle(p.Pos(), pulse.Radius, c)
	}
	stats.Live = s.sim.Len()

	s.frame++
	if !v.Frozen {
		s.clock += shimmerRate * tu.SpeedMultiplier(v)
	}
	stats.Frame = s.frame

	for _, o := range s.observers {
		o.OnFrame(stats)
	}
	return stats
}

// shimmer returns the opacity factor for n at the current clock.
func (s *Scene) shimmer(n graph.Node) float64 {
	if s.cfg.Shimmer == 0 {
		return 1
	}
	x := math.Cos(n.Phase) * shimmerScale
	y := math.Sin(n.Phase)*shimmerScale + s.clock
	f := 0.5 * (1 + s.noise.Eval2(x, y))
	return 1 - s.cfg.Shimmer*f
}

// Close tears the scene down. It is idempotent; no frame draws afterwards.
func (s *Scene) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.logger.Printf("scene %s: closed after %d frames", s.id, s.frame)
	}
}

func (s *Scene) Closed() bool { return s.closed.Load() }

// Nodes returns the current generation. Callers must not modify it.
func (s *Scene) Nodes() []graph.Node { return s.nodes }

// Pulses returns a copy of the live pulses.
func (s *Scene) Pulses() []pulse.Pulse {
	return append([]pulse.Pulse(nil), s.sim.Live()...)
}

// Inject adds a pulse directly, bypassing the spawn check.
func (s *Scene) Inject(p pulse.Pulse) { s.sim.Add(p) }

func (s *Scene) Viewport() Viewport { return s.viewport }

func (s *Scene) Generation() int { return s.generation }

func (s *Scene) Config() Config { return s.cfg }

// SetPalette switches colors from the next frame on. Like Frame, it must be
// called from the frame goroutine.
func (s *Scene) SetPalette(p Palette) { s.cfg.Palette = p }

// Totals reports lifetime pulse counts.
func (s *Scene) Totals() (spawned, retired uint64) { return s.sim.Totals() }
