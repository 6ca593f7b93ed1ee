package booking

import (
	"sync"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// slotLocks serializes engine operations per slot key.  Each key maps
// to one mutex; operations on different keys proceed in parallel.  An
// operation only ever holds a single key's mutex, so there is no lock
// ordering to get wrong and deadlock is structurally impossible.
//
// Entries are reference counted and removed once the last waiter
// releases, keeping the map bounded by the number of keys under
// contention rather than the number of keys ever seen.
type slotLocks struct {
	mu    sync.Mutex
	locks map[model.SlotKey]*slotLock
}

type slotLock struct {
	mu   sync.Mutex
	refs int
}

func newSlotLocks() *slotLocks {
	return &slotLocks{locks: make(map[model.SlotKey]*slotLock)}
}

// acquire blocks until the caller owns the critical section for key
// and returns the release function.  The release function must be
// called exactly once.
func (l *slotLocks) acquire(key model.SlotKey) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &slotLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
