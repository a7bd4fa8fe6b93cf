package queue

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/replyrocket/composer/internal/core/ports"
)

// SweepTicker runs the dispatch sweep on a fixed interval inside the process,
// as an alternative to the external cron trigger. At most one sweep started by
// the ticker runs at a time; a tick that finds one still running is skipped.
type SweepTicker struct {
	interval time.Duration
	service  ports.DispatchService
	log      zerolog.Logger
	now      func() time.Time

	running atomic.Bool
	done    chan struct{}
}

// NewSweepTicker creates a SweepTicker. It does nothing when interval <= 0.
func NewSweepTicker(interval time.Duration, service ports.DispatchService, log zerolog.Logger) *SweepTicker {
	return &SweepTicker{
		interval: interval,
		service:  service,
		log:      log,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Enabled reports whether Start will launch a worker.
func (t *SweepTicker) Enabled() bool {
	return t.interval > 0
}

// Start launches the ticker goroutine. It stops when ctx is cancelled.
func (t *SweepTicker) Start(ctx context.Context) {
	if !t.Enabled() {
		close(t.done)
		return
	}
	go t.run(ctx)
}

// Done is closed once the ticker goroutine has returned.
func (t *SweepTicker) Done() <-chan struct{} {
	return t.done
}

func (t *SweepTicker) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.log.Info().Dur("interval", t.interval).Msg("sweep ticker started")
	for {
		select {
		case <-ctx.Done():
			t.log.Info().Msg("sweep ticker stopped")
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick runs one sweep unless the previous one is still in flight.
func (t *SweepTicker) tick(ctx context.Context) bool {
	if !t.running.CompareAndSwap(false, true) {
		t.log.Warn().Msg("previous sweep still running, tick skipped")
		return false
	}
	defer t.running.Store(false)

	result, err := t.service.RunSweep(ctx, t.now())
	if err != nil {
		t.log.Error().Err(err).Msg("scheduled sweep failed")
		return true
	}
	t.log.Info().
		Str("sweep_id", result.SweepID).
		Int("attempted", result.Attempted).
		Int("posted", result.Posted).
		Msg("scheduled sweep finished")
	return true
}
