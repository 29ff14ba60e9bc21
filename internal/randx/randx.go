// Package randx provides an injectable uniform random source so the
// forecasting engine and telemetry generator never reach for ambient
// global randomness. Concurrent requests share one locked source.
package randx

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields uniform draws from [min, max).
type Source interface {
	Uniform(min, max float64) float64
}

// Locked wraps a math/rand.Rand with a mutex so concurrent callers
// cannot corrupt each other's draws.
type Locked struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLocked returns a Locked source seeded with seed.
func NewLocked(seed int64) *Locked {
	return &Locked{rng: rand.New(rand.NewSource(seed))}
}

// New returns a Locked source seeded from the wall clock.
func New() *Locked {
	return NewLocked(time.Now().UnixNano())
}

func (l *Locked) Uniform(min, max float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return min + l.rng.Float64()*(max-min)
}

// Func adapts a plain function to a Source. Useful in tests for
// deterministic draws.
type Func func(min, max float64) float64

func (f Func) Uniform(min, max float64) float64 { return f(min, max) }

// Midpoint is a deterministic Source returning the center of every
// requested range, i.e. zero noise for symmetric ranges.
var Midpoint = Func(func(min, max float64) float64 { return (min + max) / 2 })
