package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ReachPilot/internal/engine"
)

// Sweeper runs the engine on a fixed interval: one inbound pass, then
// one pending pass, never overlapping. Ticks that land while a sweep
// is still running are skipped, not queued.
type Sweeper struct {
	engine   *engine.Engine
	interval time.Duration
	log      *zap.Logger
}

func NewSweeper(eng *engine.Engine, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{engine: eng, interval: interval, log: log}
}

// Start launches the sweep loop. The first sweep runs immediately; the
// loop exits when ctx is cancelled and wg is released once the
// in-flight sweep has finished.
func (s *Sweeper) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)

	go func() {
		defer wg.Done()

		s.log.Info("sweeper started", zap.Duration("interval", s.interval))

		s.sweep(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.log.Info("sweeper shutting down")
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

func (s *Sweeper) sweep(ctx context.Context) {
	sweepID := uuid.NewString()
	start := time.Now()

	stats, err := s.engine.RunSweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, engine.ErrSweepInProgress) {
			return
		}
		s.log.Error("sweep failed",
			zap.String("sweep_id", sweepID),
			zap.Error(err),
		)
		return
	}

	s.log.Info("sweep complete",
		zap.String("sweep_id", sweepID),
		zap.Int("processed", stats.Inbox.Processed),
		zap.Int("unique_senders", stats.Inbox.UniqueSenders),
		zap.Int("responded", stats.Inbox.Responded),
		zap.Int("failed", stats.Inbox.Failed),
		zap.Int("pending_sent", stats.Pending.Sent),
		zap.Duration("took", time.Since(start)),
	)
}
