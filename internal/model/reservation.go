package model

import (
	"fmt"
	"time"
)

// Reservation lifecycle states.  A reservation starts as PENDING and
// reaches exactly one terminal state.  Terminal rows are never mutated
// again except for informational fields such as the cancel reason.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Payment states tracked alongside the lifecycle state.  The payment
// provider itself is external; only the hold/expire/confirm contract is
// modelled here.
const (
	PaymentPending    = "PAYMENT_PENDING"
	PaymentProcessing = "PAYMENT_PROCESSING"
	PaymentPaid       = "PAID"
	PaymentFailed     = "PAYMENT_FAILED"
	PaymentCancelled  = "PAYMENT_CANCELLED"
)

// SlotKey identifies one bookable interval.  All four fields together
// define contention: reservations sharing the same SlotKey compete for
// the same physical court time.  Date uses YYYY-MM-DD and the times use
// zero-padded HH:MM so that lexicographic comparison matches temporal
// order.
type SlotKey struct {
	CourtID   uint64 // courts.id
	Date      string // YYYY-MM-DD
	StartTime string // HH:MM, inclusive
	EndTime   string // HH:MM, exclusive
}

// String renders the key for log lines and lock diagnostics.
func (k SlotKey) String() string {
	return fmt.Sprintf("court=%d %s %s-%s", k.CourtID, k.Date, k.StartTime, k.EndTime)
}

// StartAt combines Date and StartTime into a UTC instant.  It is used
// for "before the slot starts" checks such as cancellation deadlines.
func (k SlotKey) StartAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", k.Date+" "+k.StartTime)
}

// Reservation records one attempt to occupy a slot.  At most one
// non-terminal reservation per slot key is the active holder
// (IsQueued == false); every other live attempt waits in the queue in
// arrival order.
//
// Fields:
//  ID                   – primary key identifier.
//  CourtID/Date/
//  StartTime/EndTime    – the slot key (see SlotKey).
//  UserID               – requesting party.
//  PriceCents           – price quoted at submission time.
//  Status               – lifecycle state (PENDING, CONFIRMED, CANCELLED).
//  PaymentStatus        – payment state (see constants above).
//  IsQueued             – true while waiting behind the active holder.
//  QueueRank            – arrival-ordered rank, 1 = next to be promoted.
//                         Ranks are never renumbered after promotion;
//                         display positions are computed live.
//  QueueHoldDeadline    – when a queued reservation gives up waiting.
//  PaymentHoldStartedAt – when the payment window was armed.
//  PaymentHoldDeadline  – when the payment window lapses.  Only
//                         meaningful while this row is the active holder.
//  CancelReason         – informational, set on cancellation.
type Reservation struct {
	ID                   uint64     // reservations.id
	CourtID              uint64     // reservations.court_id
	Date                 string     // reservations.date (YYYY-MM-DD)
	StartTime            string     // reservations.start_time (HH:MM)
	EndTime              string     // reservations.end_time (HH:MM)
	UserID               uint64     // reservations.user_id
	PriceCents           uint32     // reservations.price_cents
	Status               string     // reservations.status
	PaymentStatus        string     // reservations.payment_status
	IsQueued             bool       // reservations.is_queued
	QueueRank            *int       // reservations.queue_rank (nullable)
	QueueHoldDeadline    *time.Time // reservations.queue_hold_deadline (nullable)
	PaymentHoldStartedAt *time.Time // reservations.payment_hold_started_at (nullable)
	PaymentHoldDeadline  *time.Time // reservations.payment_hold_deadline (nullable)
	CancelReason         *string    // reservations.cancel_reason (nullable)
	CreatedAt            time.Time  // reservations.created_at
	UpdatedAt            time.Time  // reservations.updated_at
}

// SlotKey returns the contention key of this reservation.
func (r *Reservation) SlotKey() SlotKey {
	return SlotKey{CourtID: r.CourtID, Date: r.Date, StartTime: r.StartTime, EndTime: r.EndTime}
}

// IsTerminal reports whether the reservation has reached a final state.
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusConfirmed || r.Status == StatusCancelled
}

// IsActiveHolder reports whether this row currently owns the payment
// window for its slot.
func (r *Reservation) IsActiveHolder() bool {
	return r.Status == StatusPending && !r.IsQueued
}

// PaymentHoldExpired reports whether the payment window has lapsed
// without a successful payment.  Such rows are stale and must be
// reconciled before any other transition on the slot key proceeds.
func (r *Reservation) PaymentHoldExpired(now time.Time) bool {
	if r.Status != StatusPending || r.IsQueued || r.PaymentHoldDeadline == nil {
		return false
	}
	if r.PaymentStatus != PaymentPending && r.PaymentStatus != PaymentProcessing {
		return false
	}
	return !now.Before(*r.PaymentHoldDeadline)
}

// QueueHoldExpired reports whether a queued reservation has waited past
// its queue hold deadline.
func (r *Reservation) QueueHoldExpired(now time.Time) bool {
	if r.Status != StatusPending || !r.IsQueued || r.QueueHoldDeadline == nil {
		return false
	}
	return !now.Before(*r.QueueHoldDeadline)
}
