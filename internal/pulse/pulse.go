// Package pulse simulates the signal particles that travel along graph edges.
package pulse

import (
	"github.com/san-kum/synapse/internal/geom"
	"github.com/san-kum/synapse/internal/param"
	"github.com/san-kum/synapse/internal/rng"
)

// Radius is the drawn size of a pulse in logical pixels.
const Radius = 2.5

type Color int

const (
	Primary Color = iota
	Accent
)

func (c Color) String() string {
	if c == Accent {
		return "accent"
	}
	return "primary"
}

// Pulse travels from Origin to Dest. Endpoints are copies, not node references.
type Pulse struct {
	Origin   geom.Point
	Dest     geom.Point
	Progress float64
	Speed    float64
	Color    Color
}

// Pos is the interpolated draw position.
func (p Pulse) Pos() geom.Point {
	return geom.Lerp(p.Origin, p.Dest, p.Progress)
}

// Simulation owns the live pulse collection. It is not safe for concurrent
// use; the frame callback is its only writer.
type Simulation struct {
	tuning param.Tuning
	rand   rng.Source
	live   []Pulse

	spawned uint64
	retired uint64
}

func NewSimulation(tuning param.Tuning, src rng.Source) *Simulation {
	if src == nil {
		src = rng.New(0)
	}
	return &Simulation{
		tuning: tuning,
		rand:   src,
		live:   make([]Pulse, 0, 64),
	}
}

// Spawn runs the per-edge check for the edge a→b and reports whether a pulse
// was fired. Frozen scenes never spawn and consume no random draws.
func (s *Simulation) Spawn(a, b geom.Point, v param.Values) bool {
	if v.Frozen {
		return false
	}
	if s.rand.Float64() >= s.tuning.SpawnProbability(v) {
		return false
	}
	color := Primary
	if s.tuning.Accent(v) {
		color = Accent
	}
	s.live = append(s.live, Pulse{
		Origin: a,
		Dest:   b,
		Speed:  s.tuning.PulseSpeed(v, s.rand.Float64()),
		Color:  color,
	})
	s.spawned++
	return true
}

// Add inserts p as-is. Used for restoring or scripting pulses.
func (s *Simulation) Add(p Pulse) { s.live = append(s.live, p) }

// Advance moves every live pulse and retires the ones that reached their
// destination. It returns the number retired. Frozen leaves progress as is.
func (s *Simulation) Advance(v param.Values) int {
	mult := s.tuning.SpeedMultiplier(v)
	if mult == 0 {
		return 0
	}
	kept := s.live[:0]
	for _, p := range s.live {
		p.Progress += p.Speed * mult
		if p.Progress >= 1 {
			continue
		}
		kept = append(kept, p)
	}
	n := len(s.live) - len(kept)
	clear(s.live[len(kept):])
	s.live = kept
	s.retired += uint64(n)
	return n
}

// Live returns the current pulses. The slice is only valid until the next
// Spawn or Advance.
func (s *Simulation) Live() []Pulse { return s.live }

func (s *Simulation) Len() int { return len(s.live) }

// Reset drops every in-flight pulse.
func (s *Simulation) Reset() {
	clear(s.live)
	s.live = s.live[:0]
}

// Totals reports lifetime spawn and retirement counts.
func (s *Simulation) Totals() (spawned, retired uint64) {
	return s.spawned, s.retired
}
