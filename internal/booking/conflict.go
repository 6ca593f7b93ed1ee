package booking

import (
	"context"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// Overlaps reports whether two half-open intervals [s1,e1) and [s2,e2)
// intersect.  Times are zero-padded HH:MM strings, so lexicographic
// comparison matches temporal order.  Touching endpoints (one interval
// ending exactly when the other starts) do not conflict.
func Overlaps(s1, e1, s2, e2 string) bool {
	return s1 < e2 && s2 < e1
}

// HasConflict reports whether the candidate slot overlaps a confirmed
// reservation or a maintenance block for the same court and date.
// Pending holders and queued rows do not count: contention among live
// attempts is resolved by admission, not by the conflict check.  Pure
// read, no side effects.
func (e *Engine) HasConflict(ctx context.Context, key model.SlotKey) (bool, error) {
	confirmed, err := e.store.ListConfirmedForDay(ctx, key.CourtID, key.Date)
	if err != nil {
		return false, err
	}
	for _, r := range confirmed {
		if Overlaps(key.StartTime, key.EndTime, r.StartTime, r.EndTime) {
			return true, nil
		}
	}
	blocks, err := e.store.ListBlocksForDay(ctx, key.CourtID, key.Date)
	if err != nil {
		return false, err
	}
	for _, b := range blocks {
		if Overlaps(key.StartTime, key.EndTime, b.StartTime, b.EndTime) {
			return true, nil
		}
	}
	return false, nil
}
