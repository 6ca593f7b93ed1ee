package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

func TestDayAvailability(t *testing.T) {
	e, st, _, _ := newTestEngine(t)
	seedConfirmed(t, st, 50, "14:00", "15:00")
	st.blocks = []*model.MaintenanceBlock{
		{ID: 1, Scope: model.VenueScope(testVenueID), Date: testDate, StartTime: "10:00", EndTime: "11:30"},
	}

	slots, err := e.DayAvailability(context.Background(), testCourtID, testDate)
	if err != nil {
		t.Fatalf("day availability: %v", err)
	}
	// 08:00 to 22:00 yields fourteen hourly slots.
	if len(slots) != 14 {
		t.Fatalf("slot count = %d, want 14", len(slots))
	}

	byStart := make(map[string]SlotAvailability, len(slots))
	for _, s := range slots {
		byStart[s.StartTime] = s
	}
	wantUnavailable := map[string]bool{
		"10:00": true, // inside the block
		"11:00": true, // 11:00-12:00 still overlaps the block's tail
		"14:00": true, // confirmed reservation
	}
	for start, s := range byStart {
		if want := !wantUnavailable[start]; s.Available != want {
			t.Errorf("slot %s available = %v, want %v", start, s.Available, want)
		}
	}

	// Pending holders do not mark slots unavailable.
	if _, err := e.SubmitRequest(context.Background(), slotInput(61, "16:00", "17:00")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	slots, err = e.DayAvailability(context.Background(), testCourtID, testDate)
	if err != nil {
		t.Fatalf("day availability: %v", err)
	}
	for _, s := range slots {
		if s.StartTime == "16:00" && !s.Available {
			t.Error("slot with only a pending holder should stay available")
		}
	}
}

func TestDayAvailabilityErrors(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	if _, err := e.DayAvailability(context.Background(), 999, testDate); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown court err = %v, want ErrNotFound", err)
	}
	if _, err := e.DayAvailability(context.Background(), testCourtID, "10-06-2025"); !errors.Is(err, ErrInvalidInterval) {
		t.Errorf("malformed date err = %v, want ErrInvalidInterval", err)
	}
}
