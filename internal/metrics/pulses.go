package metrics

import "github.com/san-kum/synapse/internal/render"

const DefaultHistory = 600

// Pulses observes scene frames and keeps pulse activity counters plus a
// bounded history of the live pulse count.
type Pulses struct {
	capacity int

	frames     uint64
	edgeFrames uint64
	spawned    uint64
	retired    uint64
	peak       int
	history    []float64
}

func NewPulses(capacity int) *Pulses {
	if capacity <= 0 {
		capacity = DefaultHistory
	}
	return &Pulses{
		capacity: capacity,
		history:  make([]float64, 0, capacity),
	}
}

func (p *Pulses) OnFrame(s render.FrameStats) {
	p.frames++
	if !s.Values.Frozen {
		p.edgeFrames += uint64(s.Edges)
	}
	p.spawned += uint64(s.Spawned)
	p.retired += uint64(s.Retired)
	if s.Live > p.peak {
		p.peak = s.Live
	}
	p.history = append(p.history, float64(s.Live))
	if len(p.history) > p.capacity {
		p.history = p.history[1:]
	}
}

// Value is the observed spawn rate per edge per unfrozen frame.
func (p *Pulses) Value() float64 {
	if p.edgeFrames == 0 {
		return 0
	}
	return float64(p.spawned) / float64(p.edgeFrames)
}

func (p *Pulses) Frames() uint64  { return p.frames }
func (p *Pulses) Spawned() uint64 { return p.spawned }
func (p *Pulses) Retired() uint64 { return p.retired }
func (p *Pulses) Peak() int       { return p.peak }

// History returns the live-count history, oldest first. Callers must not
// modify it.
func (p *Pulses) History() []float64 { return p.history }

func (p *Pulses) Reset() {
	p.frames, p.edgeFrames, p.spawned, p.retired, p.peak = 0, 0, 0, 0, 0
	p.history = p.history[:0]
}
