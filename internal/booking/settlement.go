package booking

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
)

// CompletePayment finalises a reservation after the payment provider
// reports success.  The caller must own the reservation and its
// payment hold must still be open.  On success the reservation is
// confirmed and every other contender for the identical slot key is
// cancelled in one step; this is the single point that enforces the
// "at most one confirmed per slot" invariant under concurrent
// settlement races.  Of two simultaneous calls for the same slot, the
// first through the critical section wins and the loser observes its
// own row already cancelled.
func (e *Engine) CompletePayment(ctx context.Context, reservationID, callerID uint64) (*model.Reservation, error) {
	res, err := e.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	if res.UserID != callerID {
		return nil, ErrForbidden
	}

	key := res.SlotKey()
	release := e.locks.acquire(key)
	defer release()

	// Reconcile inside the critical section.  This resolves stale
	// holds before any transition and re-reads our own row, which a
	// concurrent settlement or sweep may have changed while we waited.
	// A queued caller whose holder just lapsed can even come out of
	// reconciliation promoted and pay straight away.
	now := e.clock.Now()
	state, err := e.reconcileLocked(ctx, key, now)
	if err != nil {
		return nil, err
	}
	res = rowByID(state.rows, reservationID)
	if res == nil {
		return nil, ErrNotFound
	}
	if res.IsTerminal() {
		if res.Status == model.StatusCancelled && res.CancelReason != nil && *res.CancelReason == ReasonPaymentExpired {
			// The caller was too slow; resubmitting is the remedy.
			return nil, ErrHoldExpired
		}
		return nil, ErrAlreadyTerminal
	}
	if res.IsQueued || res.PaymentHoldDeadline == nil {
		// Queued rows never own a payment window.
		return nil, ErrHoldExpired
	}
	if !now.Before(*res.PaymentHoldDeadline) {
		return nil, ErrHoldExpired
	}

	res.Status = model.StatusConfirmed
	res.PaymentStatus = model.PaymentPaid
	res.IsQueued = false
	res.QueueRank = nil
	res.QueueHoldDeadline = nil
	if err := e.store.Update(ctx, res); err != nil {
		return nil, err
	}

	// Void every other contender, the remaining queue and any stale
	// holder rows not yet swept alike.
	voided, err := e.store.CancelOthers(ctx, key, res.ID, ReasonSlotTaken)
	if err != nil {
		return nil, err
	}

	e.publishConfirmed(ctx, res, voided, now)
	return res, nil
}

// publishConfirmed emits a ReservationConfirmed event.  Best effort:
// broker trouble is logged, never surfaced to the paying caller.
func (e *Engine) publishConfirmed(ctx context.Context, r *model.Reservation, voided int, now time.Time) {
	if e.events == nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		CourtID:       r.CourtID,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		PriceCents:    r.PriceCents,
		ContendersCut: voided,
		ConfirmedAt:   now.Format(time.RFC3339),
	}
	if court, err := e.store.CourtByID(ctx, r.CourtID); err == nil && court != nil {
		ev.CourtName = court.Name
	}
	if err := e.events.ReservationConfirmed(ctx, ev); err != nil {
		log.Printf("booking: publish confirmed event failed for reservation %d: %v", r.ID, err)
	}
}

func rowByID(rows []*model.Reservation, id uint64) *model.Reservation {
	for _, r := range rows {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// promotedEvent builds the payload for a promotion notification.
func promotedEvent(r *model.Reservation, now time.Time) queue.HolderPromotedEvent {
	ev := queue.HolderPromotedEvent{
		ReservationID: r.ID,
		UserID:        r.UserID,
		CourtID:       r.CourtID,
		Date:          r.Date,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		PromotedAt:    now.Format(time.RFC3339),
	}
	if r.PaymentHoldDeadline != nil {
		ev.PaymentHoldDeadline = r.PaymentHoldDeadline.Format(time.RFC3339)
	}
	return ev
}
