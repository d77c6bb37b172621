// Package rng provides the random source used by graph generation and the
// pulse simulation.
//
// Production code uses a seeded PCG generator; tests can inject a [Replay]
// that returns a fixed sequence of draws.
package rng

import (
	"math/rand/v2"
	"time"
)

// Source is the minimal random capability the visualization consumes.
// *rand.Rand satisfies it.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

// New returns a deterministic source for seed. A zero seed picks one from the
// clock.
func New(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Replay returns the given Float64 values in order, cycling when exhausted.
// IntN maps the next value onto [0, n).
type Replay struct {
	values []float64
	pos    int
}

func NewReplay(values ...float64) *Replay {
	if len(values) == 0 {
		values = []float64{0}
	}
	return &Replay{values: values}
}

func (r *Replay) Float64() float64 {
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v
}

func (r *Replay) IntN(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to IntN")
	}
	i := int(r.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Draws reports how many values have been consumed.
func (r *Replay) Draws() int { return r.pos }
