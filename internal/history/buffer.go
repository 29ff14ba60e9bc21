// Package history keeps a bounded in-memory buffer of recently
// generated telemetry samples. Nothing is persisted; the buffer only
// backs the history push on stream connect and /telemetry/recent.
package history

import (
	"sync"

	"github.com/Salvero/ecopulse-dashboard/internal/data"
)

const defaultCapacity = 100

type Buffer struct {
	mu       sync.RWMutex
	samples  []data.TelemetrySample
	capacity int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Buffer{
		samples:  make([]data.TelemetrySample, 0, capacity),
		capacity: capacity,
	}
}

// Add appends a sample, evicting the oldest when full.
func (b *Buffer) Add(sample data.TelemetrySample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.samples) >= b.capacity {
		b.samples = b.samples[1:]
	}
	b.samples = append(b.samples, sample)
}

// Recent returns a copy of the newest count samples, oldest first.
// A non-positive or oversized count returns everything.
func (b *Buffer) Recent(count int) []data.TelemetrySample {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if count <= 0 || count > len(b.samples) {
		count = len(b.samples)
	}
	result := make([]data.TelemetrySample, count)
	copy(result, b.samples[len(b.samples)-count:])
	return result
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.samples)
}
