// Package booking implements the time-slot admission and
// queue-promotion engine for court reservations.  For each slot key
// (court, date, start, end) it decides which competing request holds
// the payment window, keeps later arrivals in an arrival-ordered
// queue, and promotes the queue when a hold lapses, payment fails or
// the holder cancels.
package booking

import "errors"

// Sentinel errors returned to callers.  Every failure mode of the
// engine maps to exactly one of these so that the HTTP layer can
// translate them into stable responses with errors.Is.  None of them
// is retried automatically; a caller that loses its hold resubmits
// through SubmitRequest.
var (
	// ErrSlotUnavailable signals a conflict with a confirmed
	// reservation or a maintenance block.  Not retryable without
	// choosing another slot.
	ErrSlotUnavailable = errors.New("slot unavailable")

	// ErrHoldExpired signals that the payment window lapsed before the
	// caller paid.  Retryable by resubmitting.
	ErrHoldExpired = errors.New("payment hold expired")

	// ErrForbidden signals an ownership mismatch between the caller
	// and the reservation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound signals that the reservation or court does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyTerminal signals an operation on a reservation that is
	// already confirmed or cancelled.
	ErrAlreadyTerminal = errors.New("reservation already terminal")

	// ErrTooLateToCancel signals a cancellation attempted at or after
	// the slot's start time.
	ErrTooLateToCancel = errors.New("too late to cancel")

	// ErrInvalidInterval signals a malformed or inverted time range.
	ErrInvalidInterval = errors.New("invalid time interval")

	// ErrOutsideOperatingHours signals a request outside the court's
	// daily open/close window.
	ErrOutsideOperatingHours = errors.New("outside operating hours")

	// ErrSlotInPast signals a request for an interval that has already
	// started.
	ErrSlotInPast = errors.New("slot is in the past")
)
