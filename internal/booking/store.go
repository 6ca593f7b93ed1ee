package booking

import (
	"context"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
)

// Store is the narrow persistence contract the engine consumes.  The
// engine serializes every read-then-write for one slot key through its
// own per-key critical section, so implementations only need plain
// row-level consistency, not their own slot-level coordination.
//
// Lookup methods return (nil, nil) when the row does not exist; the
// engine translates absence into ErrNotFound at its boundary.
type Store interface {
	// FindBySlotKey returns every reservation for the exact slot key,
	// terminal rows included, ordered by queue rank then creation.
	FindBySlotKey(ctx context.Context, key model.SlotKey) ([]*model.Reservation, error)

	// FindByID returns one reservation, or (nil, nil) when absent.
	FindByID(ctx context.Context, id uint64) (*model.Reservation, error)

	// Create persists a new reservation and populates its ID and
	// timestamps.
	Create(ctx context.Context, r *model.Reservation) error

	// Update persists every mutable field of an existing reservation.
	Update(ctx context.Context, r *model.Reservation) error

	// CancelOthers marks every non-confirmed reservation for the slot
	// key, excluding the given ID, as cancelled with the reason.  It
	// returns the number of rows cancelled.  Implementations must
	// apply this as a single statement so settlement voids the field
	// in one step.
	CancelOthers(ctx context.Context, key model.SlotKey, excludeID uint64, reason string) (int, error)

	// ListConfirmedForDay returns confirmed reservations for a court
	// and date, used by the conflict detector.
	ListConfirmedForDay(ctx context.Context, courtID uint64, date string) ([]*model.Reservation, error)

	// ListBlocksForDay returns maintenance blocks that apply to the
	// court on the date, both court-scoped and blocks scoped to the
	// court's owning venue.
	ListBlocksForDay(ctx context.Context, courtID uint64, date string) ([]*model.MaintenanceBlock, error)

	// CourtByID returns the court, or (nil, nil) when absent.
	CourtByID(ctx context.Context, id uint64) (*model.Court, error)

	// ListExpiredHoldKeys returns the distinct slot keys that have at
	// least one pending reservation whose payment or queue hold
	// deadline has passed.  The background sweeper feeds on this; the
	// engine itself never needs it for correctness.
	ListExpiredHoldKeys(ctx context.Context, now time.Time) ([]model.SlotKey, error)
}

// EventPublisher receives domain events after state transitions.
// Publishing is best effort: the engine logs failures and never fails
// the triggering call because of the broker.
type EventPublisher interface {
	ReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
	HolderPromoted(ctx context.Context, ev queue.HolderPromotedEvent) error
}
