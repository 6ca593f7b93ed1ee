package booking

import (
	"sync"
	"testing"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

func TestSlotLocksSerializePerKey(t *testing.T) {
	l := newSlotLocks()
	key := model.SlotKey{CourtID: 1, Date: testDate, StartTime: "14:00", EndTime: "15:00"}

	const n = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.acquire(key)
			defer release()
			counter++ // data race here would trip the race detector
		}()
	}
	wg.Wait()

	if counter != n {
		t.Errorf("counter = %d, want %d", counter, n)
	}
	if len(l.locks) != 0 {
		t.Errorf("lock table holds %d entries after release, want 0", len(l.locks))
	}
}

func TestSlotLocksIndependentKeys(t *testing.T) {
	l := newSlotLocks()
	k1 := model.SlotKey{CourtID: 1, Date: testDate, StartTime: "14:00", EndTime: "15:00"}
	k2 := model.SlotKey{CourtID: 2, Date: testDate, StartTime: "14:00", EndTime: "15:00"}

	r1 := l.acquire(k1)
	// A different key must not block while k1 is held.
	done := make(chan struct{})
	go func() {
		r2 := l.acquire(k2)
		r2()
		close(done)
	}()
	<-done
	r1()

	if len(l.locks) != 0 {
		t.Errorf("lock table holds %d entries after release, want 0", len(l.locks))
	}
}
