package model

import "time"

// Court represents an individual bookable court within a venue.  The
// open/close times bound which intervals may be requested for the
// court on any date.  This struct corresponds to a row in the `courts`
// table.  Venues themselves are managed by external tooling; this
// service only needs the owning venue's ID to match venue-scoped
// maintenance blocks.
//
// Fields:
//  ID        – primary key identifier.
//  VenueID   – containing venue.
//  Name      – unique court name per venue.
//  OpenTime  – daily opening time (HH:MM).
//  CloseTime – daily closing time (HH:MM).
//  IsActive  – whether the court accepts new reservations.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Court struct {
	ID        uint64    // courts.id
	VenueID   uint64    // courts.venue_id
	Name      string    // courts.name
	OpenTime  string    // courts.open_time (HH:MM)
	CloseTime string    // courts.close_time (HH:MM)
	IsActive  bool      // courts.is_active
	CreatedAt time.Time // courts.created_at
	UpdatedAt time.Time // courts.updated_at
}
