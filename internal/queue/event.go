// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used on the broker.  Both queues are declared durable so
// messages survive broker restarts.
const (
	ReservationConfirmedQueue = "booking.confirmed"
	HolderPromotedQueue       = "booking.promoted"
)

// ReservationConfirmedEvent is published when payment settles and a
// reservation is confirmed.  It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	CourtID       uint64 `json:"court_id"`
	CourtName     string `json:"court_name,omitempty"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	PriceCents    uint32 `json:"price_cents"`
	ContendersCut int    `json:"contenders_cancelled"`
	ConfirmedAt   string `json:"confirmed_at"`
}

// HolderPromotedEvent is published when a queued reservation becomes
// the active holder after the previous holder expired, failed payment
// or cancelled.  Consumers typically notify the promoted user that
// their payment window has opened.
type HolderPromotedEvent struct {
	ReservationID       uint64 `json:"reservation_id"`
	UserID              uint64 `json:"user_id"`
	CourtID             uint64 `json:"court_id"`
	Date                string `json:"date"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	PaymentHoldDeadline string `json:"payment_hold_deadline"`
	PromotedAt          string `json:"promoted_at"`
}
