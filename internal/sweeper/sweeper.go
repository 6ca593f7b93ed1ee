// Package sweeper runs the periodic expired-hold sweep.  The sweep is
// a latency optimization only: every engine entry point reconciles
// expired holds before acting, so correctness never depends on this
// loop running, or running on time.  What the sweep buys is prompt
// promotion — a queued user gets the payment window within one tick of
// the holder lapsing instead of waiting for the next request to touch
// the slot.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/booking"
	"github.com/iliyamo/court-slot-reservation/internal/clock"
)

// Sweeper periodically cancels lapsed holds and promotes queues.
type Sweeper struct {
	engine   *booking.Engine
	store    booking.Store
	clock    clock.Clock
	interval time.Duration
}

// New constructs a sweeper.  Interval must be positive; callers that
// want the sweep disabled simply do not start it.
func New(engine *booking.Engine, store booking.Store, clk clock.Clock, interval time.Duration) *Sweeper {
	if engine == nil || store == nil || clk == nil || interval <= 0 {
		panic("invalid sweeper configuration")
	}
	return &Sweeper{engine: engine, store: store, clock: clk, interval: interval}
}

// Run blocks, sweeping on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce finds every slot key with a lapsed hold and reconciles it.
// Failures are logged and skipped; the next tick, or the next request
// touching the slot, retries implicitly.
func (s *Sweeper) sweepOnce(ctx context.Context) {
	keys, err := s.store.ListExpiredHoldKeys(ctx, s.clock.Now())
	if err != nil {
		log.Printf("sweeper: list expired hold keys failed: %v", err)
		return
	}
	for _, key := range keys {
		n, err := s.engine.CancelExpiredHolds(ctx, key)
		if err != nil {
			log.Printf("sweeper: sweep %s failed: %v", key, err)
			continue
		}
		if n > 0 {
			log.Printf("sweeper: cancelled %d expired hold(s) for %s", n, key)
		}
	}
}
