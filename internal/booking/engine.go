package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/clock"
	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// Default hold windows.  The payment hold bounds how long the active
// holder may take to pay; the queue hold bounds how long a queued
// request keeps waiting for promotion.  Both are wall-clock deadlines
// reconciled lazily on every entry point, not precise timers.
const (
	DefaultPaymentHold = 10 * time.Minute
	DefaultQueueHold   = 30 * time.Minute
)

// Engine is the admission controller and settlement handler for court
// slots.  All mutations for one slot key funnel through a per-key
// critical section, which is what upholds the "at most one confirmed"
// and "at most one active holder" invariants under concurrent callers.
type Engine struct {
	store       Store
	clock       clock.Clock
	events      EventPublisher // nil disables publishing
	locks       *slotLocks
	paymentHold time.Duration
	queueHold   time.Duration
}

// Option customises an Engine at construction time.
type Option func(*Engine)

// WithPaymentHold overrides the payment window granted to the active
// holder.  Non-positive values are ignored.
func WithPaymentHold(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.paymentHold = d
		}
	}
}

// WithQueueHold overrides how long a queued reservation waits before
// its queue hold lapses.  Non-positive values are ignored.
func WithQueueHold(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.queueHold = d
		}
	}
}

// WithPublisher attaches a broker publisher for confirmed/promoted
// events.  Without it the engine runs silently.
func WithPublisher(p EventPublisher) Option {
	return func(e *Engine) { e.events = p }
}

// NewEngine constructs the engine.  Store and clock must be non-nil.
func NewEngine(store Store, clk clock.Clock, opts ...Option) *Engine {
	if store == nil || clk == nil {
		panic("nil dependency passed to NewEngine")
	}
	e := &Engine{
		store:       store,
		clock:       clk,
		locks:       newSlotLocks(),
		paymentHold: DefaultPaymentHold,
		queueHold:   DefaultQueueHold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// armPaymentHold turns the reservation into the active holder with a
// fresh payment window starting at now.
func (e *Engine) armPaymentHold(r *model.Reservation, now time.Time) {
	deadline := now.Add(e.paymentHold)
	r.IsQueued = false
	r.QueueRank = nil
	r.QueueHoldDeadline = nil
	r.PaymentHoldStartedAt = &now
	r.PaymentHoldDeadline = &deadline
}

// cancel marks the reservation terminal with the given payment state
// and reason.  Hold fields are left in place for audit.
func cancel(r *model.Reservation, paymentStatus, reason string) {
	r.Status = model.StatusCancelled
	r.PaymentStatus = paymentStatus
	r.CancelReason = &reason
}

// publishPromoted emits a HolderPromoted event.  Best effort only.
func (e *Engine) publishPromoted(ctx context.Context, r *model.Reservation, now time.Time) {
	if e.events == nil {
		return
	}
	ev := promotedEvent(r, now)
	if err := e.events.HolderPromoted(ctx, ev); err != nil {
		log.Printf("booking: publish promoted event failed for reservation %d: %v", r.ID, err)
	}
}
