package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/data"
	"github.com/Salvero/ecopulse-dashboard/internal/history"
	"github.com/Salvero/ecopulse-dashboard/internal/randx"
	"github.com/Salvero/ecopulse-dashboard/internal/telemetry"
)

// fakeSubscriber captures pushed frames without a real connection.
type fakeSubscriber struct {
	mu       sync.Mutex
	frames   [][]byte
	rejects  bool
	failed   bool
	done     chan struct{}
	doneOnce sync.Once
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{done: make(chan struct{})}
}

func (f *fakeSubscriber) Enqueue(message []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejects {
		return false
	}
	f.frames = append(f.frames, message)
	return true
}

func (f *fakeSubscriber) Fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = true
}

func (f *fakeSubscriber) Done() <-chan struct{} { return f.done }

func (f *fakeSubscriber) close() { f.doneOnce.Do(func() { close(f.done) }) }

func (f *fakeSubscriber) frameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newTestScheduler(interval time.Duration) (*Scheduler, *history.Buffer) {
	buffer := history.NewBuffer(10)
	gen := telemetry.NewGenerator("FACILITY-001", randx.Midpoint)
	return NewScheduler(gen, buffer, interval, zap.NewNop()), buffer
}

func TestScheduler_PushesSamplesEachTick(t *testing.T) {
	scheduler, buffer := newTestScheduler(10 * time.Millisecond)
	sub := newFakeSubscriber()

	stopped := make(chan struct{})
	go func() {
		scheduler.Run(context.Background(), sub)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return sub.frameCount() >= 3 },
		time.Second, 5*time.Millisecond)
	sub.close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after disconnect")
	}

	var sample data.TelemetrySample
	require.NoError(t, json.Unmarshal(sub.frames[0], &sample))
	assert.Equal(t, "FACILITY-001", sample.SensorID)
	assert.GreaterOrEqual(t, sample.Metrics.GridDependency, 0.0)

	// Every pushed sample is also recorded for the history feed.
	assert.GreaterOrEqual(t, buffer.Len(), 3)
}

func TestScheduler_StopsWithinOneTickOfDisconnect(t *testing.T) {
	interval := 20 * time.Millisecond
	scheduler, _ := newTestScheduler(interval)
	sub := newFakeSubscriber()

	stopped := make(chan struct{})
	go func() {
		scheduler.Run(context.Background(), sub)
		close(stopped)
	}()

	time.Sleep(2 * interval)
	sub.close()

	select {
	case <-stopped:
	case <-time.After(interval + 100*time.Millisecond):
		t.Fatal("scheduler exceeded one tick of shutdown latency")
	}
}

func TestScheduler_FailedPushStopsLoopAndMarksSubscriber(t *testing.T) {
	scheduler, _ := newTestScheduler(5 * time.Millisecond)
	sub := newFakeSubscriber()
	sub.rejects = true

	stopped := make(chan struct{})
	go func() {
		scheduler.Run(context.Background(), sub)
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after push failure")
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	assert.True(t, sub.failed)
	assert.Empty(t, sub.frames)
}

func TestScheduler_ObservesContextCancel(t *testing.T) {
	scheduler, _ := newTestScheduler(10 * time.Millisecond)
	sub := newFakeSubscriber()

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		scheduler.Run(ctx, sub)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("scheduler ignored context cancellation")
	}
}

func TestScheduler_IndependentSubscribersUnaffectedByFailure(t *testing.T) {
	scheduler, _ := newTestScheduler(5 * time.Millisecond)
	healthy := newFakeSubscriber()
	broken := newFakeSubscriber()
	broken.rejects = true

	go scheduler.Run(context.Background(), broken)
	stopped := make(chan struct{})
	go func() {
		scheduler.Run(context.Background(), healthy)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return healthy.frameCount() >= 2 },
		time.Second, 5*time.Millisecond)
	healthy.close()
	<-stopped
}
