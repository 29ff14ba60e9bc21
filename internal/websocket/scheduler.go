package websocket

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Salvero/ecopulse-dashboard/internal/history"
	"github.com/Salvero/ecopulse-dashboard/internal/metrics"
	"github.com/Salvero/ecopulse-dashboard/internal/telemetry"
)

// Pusher is the subscriber surface the scheduler drives. *Client
// satisfies it; tests substitute a fake.
type Pusher interface {
	Enqueue(message []byte) bool
	Fail()
	Done() <-chan struct{}
}

// Scheduler runs one private generate-and-push loop per subscriber.
// Every live connection gets its own instance of the loop; cadence is
// independent of the hub-level broadcast primitive.
type Scheduler struct {
	generator *telemetry.Generator
	buffer    *history.Buffer
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewScheduler(generator *telemetry.Generator, buffer *history.Buffer, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		generator: generator,
		buffer:    buffer,
		interval:  interval,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run pushes one sample per tick until ctx is canceled, the
// subscriber disconnects, or a push fails. Cancellation and
// disconnect are both observed within one tick interval; a failed
// push marks the subscriber failed and stops the loop immediately.
func (s *Scheduler) Run(ctx context.Context, subscriber Pusher) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-subscriber.Done():
			return
		case <-ticker.C:
			sample := s.generator.Generate(s.now())
			s.buffer.Add(sample)

			message, err := json.Marshal(sample)
			if err != nil {
				s.logger.Error("failed to marshal telemetry sample", zap.Error(err))
				continue
			}
			if !subscriber.Enqueue(message) {
				s.logger.Warn("telemetry push failed, stopping stream")
				subscriber.Fail()
				return
			}
			metrics.SamplesStreamed.Inc()
		}
	}
}
