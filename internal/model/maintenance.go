package model

// BlockScopeKind discriminates the two maintenance scopes.  The scope
// is an explicit tagged value: a block either targets one court or
// every court of a venue, never an untyped mix of optional IDs.
type BlockScopeKind string

const (
	ScopeCourt BlockScopeKind = "COURT"
	ScopeVenue BlockScopeKind = "VENUE"
)

// BlockScope is the tagged scope of a maintenance block.  Exactly one
// of CourtID/VenueID is meaningful, selected by Kind.  Use
// CourtScope/VenueScope to construct values.
type BlockScope struct {
	Kind    BlockScopeKind
	CourtID uint64 // valid when Kind == ScopeCourt
	VenueID uint64 // valid when Kind == ScopeVenue
}

// CourtScope returns a scope covering a single court.
func CourtScope(courtID uint64) BlockScope {
	return BlockScope{Kind: ScopeCourt, CourtID: courtID}
}

// VenueScope returns a scope covering every court of a venue.
func VenueScope(venueID uint64) BlockScope {
	return BlockScope{Kind: ScopeVenue, VenueID: venueID}
}

// Covers reports whether the scope applies to the given court.  The
// caller supplies the court's owning venue so that venue-wide blocks
// can be matched without a lookup here.
func (s BlockScope) Covers(courtID, venueID uint64) bool {
	switch s.Kind {
	case ScopeCourt:
		return s.CourtID == courtID
	case ScopeVenue:
		return s.VenueID == venueID
	}
	return false
}

// MaintenanceBlock is an externally managed exclusion that behaves
// like a permanently confirmed reservation for conflict purposes.  The
// engine only ever reads blocks; they are created and removed by venue
// management tooling outside this service.
//
// Fields:
//  ID        – primary key identifier.
//  Scope     – court- or venue-wide scope (see BlockScope).
//  Date      – date of the exclusion (YYYY-MM-DD).
//  StartTime – start of the excluded interval (HH:MM, inclusive).
//  EndTime   – end of the excluded interval (HH:MM, exclusive).
//  Reason    – optional human-readable explanation.
type MaintenanceBlock struct {
	ID        uint64     // maintenance_blocks.id
	Scope     BlockScope // maintenance_blocks.court_id / venue_id
	Date      string     // maintenance_blocks.date (YYYY-MM-DD)
	StartTime string     // maintenance_blocks.start_time (HH:MM)
	EndTime   string     // maintenance_blocks.end_time (HH:MM)
	Reason    *string    // maintenance_blocks.reason (nullable)
}
