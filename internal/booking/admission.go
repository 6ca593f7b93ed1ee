package booking

import (
	"context"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// Cancellation reasons written by the engine.  The HTTP layer passes
// them through verbatim.
const (
	ReasonPaymentExpired   = "Payment expired"
	ReasonQueueHoldExpired = "Queue hold expired"
	ReasonSlotTaken        = "Slot booked by another user"
	ReasonUserCancelled    = "Cancelled by user"
)

// SubmitInput carries one inbound reservation request.
type SubmitInput struct {
	CourtID    uint64
	Date       string // YYYY-MM-DD
	StartTime  string // HH:MM
	EndTime    string // HH:MM
	UserID     uint64
	PriceCents uint32
}

// SubmitResult reports how the request was admitted.  When IsInQueue
// is false the caller owns the payment window until
// Reservation.PaymentHoldDeadline.
type SubmitResult struct {
	Reservation          *model.Reservation
	IsInQueue            bool
	QueuePosition        int // 0 for the active holder
	EstimatedWaitMinutes int
	ContenderCount       int // live reservations for the slot, this one included
}

func (in SubmitInput) key() model.SlotKey {
	return model.SlotKey{CourtID: in.CourtID, Date: in.Date, StartTime: in.StartTime, EndTime: in.EndTime}
}

// validate checks the shape of the requested interval.  Half-open
// semantics require start strictly before end.
func (in SubmitInput) validate() error {
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return ErrInvalidInterval
	}
	for _, v := range []string{in.StartTime, in.EndTime} {
		if _, err := time.Parse("15:04", v); err != nil {
			return ErrInvalidInterval
		}
	}
	if in.StartTime >= in.EndTime {
		return ErrInvalidInterval
	}
	return nil
}

// SubmitRequest admits a reservation request for a slot.  The request
// either becomes the active holder with a fresh payment hold, or joins
// the queue at the next rank with a queue hold.  Expired holds on the
// same slot are reconciled first, so a lapsed holder can never block a
// new request.
func (e *Engine) SubmitRequest(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	court, err := e.store.CourtByID(ctx, in.CourtID)
	if err != nil {
		return nil, err
	}
	if court == nil {
		return nil, ErrNotFound
	}
	if !court.IsActive {
		return nil, ErrSlotUnavailable
	}
	if in.StartTime < court.OpenTime || in.EndTime > court.CloseTime {
		return nil, ErrOutsideOperatingHours
	}

	key := in.key()
	now := e.clock.Now()
	startAt, err := key.StartAt()
	if err != nil {
		return nil, ErrInvalidInterval
	}
	if !startAt.After(now) {
		return nil, ErrSlotInPast
	}

	release := e.locks.acquire(key)
	defer release()

	conflict, err := e.HasConflict(ctx, key)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotUnavailable
	}

	state, err := e.reconcileLocked(ctx, key, now)
	if err != nil {
		return nil, err
	}

	res := &model.Reservation{
		CourtID:       in.CourtID,
		Date:          in.Date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		UserID:        in.UserID,
		PriceCents:    in.PriceCents,
		Status:        model.StatusPending,
		PaymentStatus: model.PaymentPending,
	}

	position := 0
	if activeHolder(state.live) == nil {
		// No surviving holder: the new request takes the payment window.
		e.armPaymentHold(res, now)
	} else {
		// Ranks grow monotonically per key: the max runs over every row
		// ever written for the slot, so a rank freed by a cancellation
		// is never handed out a second time.
		rank := maxQueueRank(state.rows) + 1
		deadline := now.Add(e.queueHold)
		res.IsQueued = true
		res.QueueRank = &rank
		res.QueueHoldDeadline = &deadline
		// Position is 1-based: queued behind n others means position n+1.
		position = countQueued(state.live) + 1
	}

	if err := e.store.Create(ctx, res); err != nil {
		return nil, err
	}

	return &SubmitResult{
		Reservation:          res,
		IsInQueue:            res.IsQueued,
		QueuePosition:        position,
		EstimatedWaitMinutes: position * int(e.paymentHold.Minutes()),
		ContenderCount:       len(state.live) + 1,
	}, nil
}

// CancelExpiredHolds sweeps every reservation for the slot whose
// payment or queue hold deadline has passed and is still pending, and
// promotes the queue once if the active holder was among them.  It is
// idempotent: a second sweep with no new activity is a no-op.  It
// returns the number of reservations cancelled.
func (e *Engine) CancelExpiredHolds(ctx context.Context, key model.SlotKey) (int, error) {
	release := e.locks.acquire(key)
	defer release()

	state, err := e.reconcileLocked(ctx, key, e.clock.Now())
	if err != nil {
		return 0, err
	}
	return state.cancelled, nil
}

// slotState is the outcome of one reconciliation pass: every row for
// the key, the surviving non-terminal rows, and how many rows the pass
// cancelled.
type slotState struct {
	rows      []*model.Reservation
	live      []*model.Reservation
	cancelled int
}

// reconcileLocked loads the slot's reservations, cancels every lapsed
// hold and promotes the next eligible queued reservation when the slot
// is left without an active holder.  Callers must hold the slot's
// critical section.
func (e *Engine) reconcileLocked(ctx context.Context, key model.SlotKey, now time.Time) (*slotState, error) {
	rows, err := e.store.FindBySlotKey(ctx, key)
	if err != nil {
		return nil, err
	}

	state := &slotState{rows: rows}
	for _, r := range rows {
		switch {
		case r.IsTerminal():
			// leave terminal rows untouched
		case r.PaymentHoldExpired(now):
			cancel(r, model.PaymentFailed, ReasonPaymentExpired)
			if err := e.store.Update(ctx, r); err != nil {
				return nil, err
			}
			state.cancelled++
		case r.QueueHoldExpired(now):
			cancel(r, model.PaymentCancelled, ReasonQueueHoldExpired)
			if err := e.store.Update(ctx, r); err != nil {
				return nil, err
			}
			state.cancelled++
		default:
			state.live = append(state.live, r)
		}
	}

	// Promote when no holder survived but queued rows did.  This also
	// repairs slots where an earlier promotion was missed, keeping the
	// engine self-healing without a background scheduler.
	if activeHolder(state.live) == nil {
		if _, err := e.promoteLocked(ctx, state.live, now); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// promoteLocked converts the lowest-ranked surviving queued
// reservation into the active holder with a fresh payment hold.
// Remaining queue ranks are deliberately not renumbered: rank records
// relative arrival order, and display positions are computed live.
// Returns nil when no queued reservation is eligible.  Callers must
// hold the slot's critical section.
func (e *Engine) promoteLocked(ctx context.Context, live []*model.Reservation, now time.Time) (*model.Reservation, error) {
	var next *model.Reservation
	for _, r := range live {
		if !r.IsQueued || r.Status != model.StatusPending {
			continue
		}
		if next == nil || rankOf(r) < rankOf(next) {
			next = r
		}
	}
	if next == nil {
		return nil, nil
	}
	e.armPaymentHold(next, now)
	if err := e.store.Update(ctx, next); err != nil {
		return nil, err
	}
	e.publishPromoted(ctx, next, now)
	return next, nil
}

func activeHolder(rows []*model.Reservation) *model.Reservation {
	for _, r := range rows {
		if r.IsActiveHolder() {
			return r
		}
	}
	return nil
}

func countQueued(rows []*model.Reservation) int {
	n := 0
	for _, r := range rows {
		if r.IsQueued && r.Status == model.StatusPending {
			n++
		}
	}
	return n
}

func maxQueueRank(rows []*model.Reservation) int {
	max := 0
	for _, r := range rows {
		if r.IsQueued && r.QueueRank != nil && *r.QueueRank > max {
			max = *r.QueueRank
		}
	}
	return max
}

func rankOf(r *model.Reservation) int {
	if r.QueueRank == nil {
		return 0
	}
	return *r.QueueRank
}
