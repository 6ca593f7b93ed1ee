package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
	"github.com/iliyamo/court-slot-reservation/internal/queue"
)

const (
	testCourtID uint64 = 1
	testVenueID uint64 = 7
	testDate           = "2025-06-10"
)

// fakeStore is an in-memory Store used by the engine tests.  It mirrors
// the MySQL store's observable behaviour: lookups return (nil, nil) for
// absent rows, FindBySlotKey orders holder rows before queued rows, and
// every method hands out copies so the engine must go through Update to
// persist a change.
type fakeStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Reservation
	courts map[uint64]*model.Court
	blocks []*model.MaintenanceBlock
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:   make(map[uint64]*model.Reservation),
		courts: make(map[uint64]*model.Court),
	}
}

func cloneReservation(r *model.Reservation) *model.Reservation {
	c := *r
	if r.QueueRank != nil {
		v := *r.QueueRank
		c.QueueRank = &v
	}
	if r.QueueHoldDeadline != nil {
		v := *r.QueueHoldDeadline
		c.QueueHoldDeadline = &v
	}
	if r.PaymentHoldStartedAt != nil {
		v := *r.PaymentHoldStartedAt
		c.PaymentHoldStartedAt = &v
	}
	if r.PaymentHoldDeadline != nil {
		v := *r.PaymentHoldDeadline
		c.PaymentHoldDeadline = &v
	}
	if r.CancelReason != nil {
		v := *r.CancelReason
		c.CancelReason = &v
	}
	return &c
}

func (s *fakeStore) FindBySlotKey(_ context.Context, key model.SlotKey) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reservation
	for _, r := range s.rows {
		if r.SlotKey() == key {
			out = append(out, cloneReservation(r))
		}
	}
	// Same ordering as the SQL store: rank NULL first, then rank, then id.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.QueueRank == nil) != (b.QueueRank == nil) {
			return a.QueueRank == nil
		}
		if a.QueueRank != nil && *a.QueueRank != *b.QueueRank {
			return *a.QueueRank < *b.QueueRank
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *fakeStore) FindByID(_ context.Context, id uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return cloneReservation(r), nil
}

func (s *fakeStore) Create(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	s.rows[r.ID] = cloneReservation(r)
	return nil
}

func (s *fakeStore) Update(_ context.Context, r *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[r.ID]; !ok {
		return fmt.Errorf("update: reservation %d not found", r.ID)
	}
	r.UpdatedAt = time.Now().UTC()
	s.rows[r.ID] = cloneReservation(r)
	return nil
}

func (s *fakeStore) CancelOthers(_ context.Context, key model.SlotKey, excludeID uint64, reason string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.SlotKey() != key || r.ID == excludeID {
			continue
		}
		if r.Status == model.StatusConfirmed || r.Status == model.StatusCancelled {
			continue
		}
		msg := reason
		r.Status = model.StatusCancelled
		r.PaymentStatus = model.PaymentCancelled
		r.CancelReason = &msg
		n++
	}
	return n, nil
}

func (s *fakeStore) ListConfirmedForDay(_ context.Context, courtID uint64, date string) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Reservation
	for _, r := range s.rows {
		if r.CourtID == courtID && r.Date == date && r.Status == model.StatusConfirmed {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (s *fakeStore) ListBlocksForDay(_ context.Context, courtID uint64, date string) ([]*model.MaintenanceBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var venueID uint64
	if c, ok := s.courts[courtID]; ok {
		venueID = c.VenueID
	}
	var out []*model.MaintenanceBlock
	for _, b := range s.blocks {
		if b.Date == date && b.Scope.Covers(courtID, venueID) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeStore) CourtByID(_ context.Context, id uint64) (*model.Court, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courts[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *fakeStore) ListExpiredHoldKeys(_ context.Context, now time.Time) ([]model.SlotKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[model.SlotKey]bool)
	var out []model.SlotKey
	for _, r := range s.rows {
		if !r.PaymentHoldExpired(now) && !r.QueueHoldExpired(now) {
			continue
		}
		k := r.SlotKey()
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

// mustRow reads a stored reservation directly, bypassing the engine.
func (s *fakeStore) mustRow(t *testing.T, id uint64) *model.Reservation {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok {
		t.Fatalf("reservation %d not in store", id)
	}
	return cloneReservation(r)
}

// testClock is a mutable Clock so tests can lapse holds without sleeping.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock { return &testClock{now: t.UTC()} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// capturePublisher records published events instead of talking to a broker.
type capturePublisher struct {
	mu        sync.Mutex
	confirmed []queue.ReservationConfirmedEvent
	promoted  []queue.HolderPromotedEvent
}

func (p *capturePublisher) ReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return nil
}

func (p *capturePublisher) HolderPromoted(_ context.Context, ev queue.HolderPromotedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.promoted = append(p.promoted, ev)
	return nil
}

func (p *capturePublisher) promotedIDs() []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]uint64, 0, len(p.promoted))
	for _, ev := range p.promoted {
		ids = append(ids, ev.ReservationID)
	}
	return ids
}

// newTestEngine wires an engine over the fake store with one active
// court and the clock fixed at 09:00 UTC on the test date.
func newTestEngine(t *testing.T) (*Engine, *fakeStore, *testClock, *capturePublisher) {
	t.Helper()
	st := newFakeStore()
	st.courts[testCourtID] = &model.Court{
		ID:        testCourtID,
		VenueID:   testVenueID,
		Name:      "Center Court",
		OpenTime:  "08:00",
		CloseTime: "22:00",
		IsActive:  true,
	}
	clk := newTestClock(time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC))
	pub := &capturePublisher{}
	return NewEngine(st, clk, WithPublisher(pub)), st, clk, pub
}

func slotInput(userID uint64, start, end string) SubmitInput {
	return SubmitInput{
		CourtID:    testCourtID,
		Date:       testDate,
		StartTime:  start,
		EndTime:    end,
		UserID:     userID,
		PriceCents: 2500,
	}
}

// mustSubmit submits for the default 14:00-15:00 slot.
func mustSubmit(t *testing.T, e *Engine, userID uint64) *SubmitResult {
	t.Helper()
	res, err := e.SubmitRequest(context.Background(), slotInput(userID, "14:00", "15:00"))
	if err != nil {
		t.Fatalf("submit for user %d: %v", userID, err)
	}
	return res
}

func seedConfirmed(t *testing.T, st *fakeStore, userID uint64, start, end string) *model.Reservation {
	t.Helper()
	r := &model.Reservation{
		CourtID:       testCourtID,
		Date:          testDate,
		StartTime:     start,
		EndTime:       end,
		UserID:        userID,
		Status:        model.StatusConfirmed,
		PaymentStatus: model.PaymentPaid,
	}
	if err := st.Create(context.Background(), r); err != nil {
		t.Fatalf("seed confirmed: %v", err)
	}
	return r
}

// assertSlotInvariants fails when any slot key holds more than one
// confirmed reservation or more than one active holder.
func assertSlotInvariants(t *testing.T, st *fakeStore) {
	t.Helper()
	st.mu.Lock()
	defer st.mu.Unlock()
	confirmed := make(map[model.SlotKey]int)
	holders := make(map[model.SlotKey]int)
	for _, r := range st.rows {
		k := r.SlotKey()
		if r.Status == model.StatusConfirmed {
			confirmed[k]++
		}
		if r.IsActiveHolder() {
			holders[k]++
		}
	}
	for k, n := range confirmed {
		if n > 1 {
			t.Errorf("slot %s has %d confirmed reservations", k, n)
		}
	}
	for k, n := range holders {
		if n > 1 {
			t.Errorf("slot %s has %d active holders", k, n)
		}
	}
}
