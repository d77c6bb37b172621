// Package param maps the two external knobs, intensity and frozen, onto the
// per-frame quantities the renderer and pulse simulation consume.
package param

import (
	"math"
	"sync/atomic"
)

const (
	DefaultBasePulseRate        = 0.0003
	DefaultPulseRateFactor      = 0.001
	DefaultMinSpeed             = 0.01
	DefaultSpeedJitter          = 0.01
	DefaultSpeedIntensityFactor = 0.01
	DefaultBoostFactor          = 5.0
	DefaultBaseAlpha            = 0.03
	DefaultAlphaFactor          = 0.02
	DefaultAccentThreshold      = 0.5
)

// Tuning holds the initialization-time constants. It is not mutated while a
// scene runs.
type Tuning struct {
	BasePulseRate        float64 `yaml:"base_pulse_rate" json:"base_pulse_rate" env:"BASE_PULSE_RATE"`
	PulseRateFactor      float64 `yaml:"pulse_rate_factor" json:"pulse_rate_factor" env:"PULSE_RATE_FACTOR"`
	MinSpeed             float64 `yaml:"min_speed" json:"min_speed" env:"MIN_SPEED"`
	SpeedJitter          float64 `yaml:"speed_jitter" json:"speed_jitter" env:"SPEED_JITTER"`
	SpeedIntensityFactor float64 `yaml:"speed_intensity_factor" json:"speed_intensity_factor" env:"SPEED_INTENSITY_FACTOR"`
	BoostFactor          float64 `yaml:"boost_factor" json:"boost_factor" env:"BOOST_FACTOR"`
	BaseAlpha            float64 `yaml:"base_alpha" json:"base_alpha" env:"BASE_ALPHA"`
	AlphaFactor          float64 `yaml:"alpha_factor" json:"alpha_factor" env:"ALPHA_FACTOR"`
	AccentThreshold      float64 `yaml:"accent_threshold" json:"accent_threshold" env:"ACCENT_THRESHOLD"`
}

func DefaultTuning() Tuning {
	return Tuning{
		BasePulseRate:        DefaultBasePulseRate,
		PulseRateFactor:      DefaultPulseRateFactor,
		MinSpeed:             DefaultMinSpeed,
		SpeedJitter:          DefaultSpeedJitter,
		SpeedIntensityFactor: DefaultSpeedIntensityFactor,
		BoostFactor:          DefaultBoostFactor,
		BaseAlpha:            DefaultBaseAlpha,
		AlphaFactor:          DefaultAlphaFactor,
		AccentThreshold:      DefaultAccentThreshold,
	}
}

// Values is the snapshot of both knobs taken once per frame.
type Values struct {
	Intensity float64
	Frozen    bool
}

// EdgeAlpha is the stroke alpha for connection lines.
func (t Tuning) EdgeAlpha(v Values) float64 {
	return t.BaseAlpha + v.Intensity*t.AlphaFactor
}

// SpawnProbability is the per-edge, per-frame chance of firing a pulse.
// It is zero when frozen.
func (t Tuning) SpawnProbability(v Values) float64 {
	if v.Frozen {
		return 0
	}
	return t.BasePulseRate + v.Intensity*t.PulseRateFactor
}

// SpeedMultiplier scales pulse advancement. It is zero when frozen.
func (t Tuning) SpeedMultiplier(v Values) float64 {
	if v.Frozen {
		return 0
	}
	return 1 + v.Intensity*t.BoostFactor
}

// PulseSpeed returns a spawn speed for a jitter draw u in [0, 1).
func (t Tuning) PulseSpeed(v Values, u float64) float64 {
	return t.MinSpeed + u*t.SpeedJitter + v.Intensity*t.SpeedIntensityFactor
}

// Accent reports whether newly spawned pulses use the accent color.
func (t Tuning) Accent(v Values) bool {
	return v.Intensity > t.AccentThreshold
}

// Controller stores the knobs. Writes may come from any goroutine and become
// visible to the next frame; the last write wins.
type Controller struct {
	intensity atomic.Uint64
	frozen    atomic.Bool
}

func NewController(intensity float64, frozen bool) *Controller {
	c := &Controller{}
	c.SetIntensity(intensity)
	c.SetFrozen(frozen)
	return c
}

func (c *Controller) SetIntensity(v float64) { c.intensity.Store(math.Float64bits(v)) }

func (c *Controller) Intensity() float64 { return math.Float64frombits(c.intensity.Load()) }

// AddIntensity nudges intensity by delta, never below zero.
func (c *Controller) AddIntensity(delta float64) float64 {
	for {
		old := c.intensity.Load()
		next := math.Max(0, math.Float64frombits(old)+delta)
		if c.intensity.CompareAndSwap(old, math.Float64bits(next)) {
			return next
		}
	}
}

func (c *Controller) SetFrozen(v bool) { c.frozen.Store(v) }

func (c *Controller) Frozen() bool { return c.frozen.Load() }

// ToggleFrozen flips frozen and returns the new value.
func (c *Controller) ToggleFrozen() bool {
	for {
		old := c.frozen.Load()
		if c.frozen.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

func (c *Controller) Values() Values {
	return Values{Intensity: c.Intensity(), Frozen: c.Frozen()}
}
