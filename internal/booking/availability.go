package booking

import (
	"context"
	"fmt"
	"time"
)

// SlotAvailability describes one hourly interval of a court's day.
// Available means a new request for the interval would pass the
// conflict check; it says nothing about pending holders or queues.
type SlotAvailability struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// DayAvailability returns the hourly slot grid of a court for one
// date, marking each interval unavailable when it overlaps a confirmed
// reservation or a maintenance block.  Pure read; used by the public
// availability endpoint, which may be cached briefly.
func (e *Engine) DayAvailability(ctx context.Context, courtID uint64, date string) ([]SlotAvailability, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, ErrInvalidInterval
	}
	court, err := e.store.CourtByID(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if court == nil {
		return nil, ErrNotFound
	}

	confirmed, err := e.store.ListConfirmedForDay(ctx, courtID, date)
	if err != nil {
		return nil, err
	}
	blocks, err := e.store.ListBlocksForDay(ctx, courtID, date)
	if err != nil {
		return nil, err
	}

	open, err := time.Parse("15:04", court.OpenTime)
	if err != nil {
		return nil, ErrInvalidInterval
	}
	closeAt, err := time.Parse("15:04", court.CloseTime)
	if err != nil {
		return nil, ErrInvalidInterval
	}

	var out []SlotAvailability
	for t := open; t.Add(time.Hour).Before(closeAt) || t.Add(time.Hour).Equal(closeAt); t = t.Add(time.Hour) {
		start := fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
		endT := t.Add(time.Hour)
		end := fmt.Sprintf("%02d:%02d", endT.Hour(), endT.Minute())

		available := true
		for _, r := range confirmed {
			if Overlaps(start, end, r.StartTime, r.EndTime) {
				available = false
				break
			}
		}
		if available {
			for _, b := range blocks {
				if Overlaps(start, end, b.StartTime, b.EndTime) {
					available = false
					break
				}
			}
		}
		out = append(out, SlotAvailability{StartTime: start, EndTime: end, Available: available})
	}
	return out, nil
}
