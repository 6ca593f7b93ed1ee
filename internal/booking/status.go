package booking

import (
	"context"
	"time"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

// Contender describes one competing reservation for a slot, as shown
// to another contender checking their queue status.
type Contender struct {
	ReservationID uint64 `json:"reservation_id"`
	UserID        uint64 `json:"user_id"`
	IsHolder      bool   `json:"is_holder"`
	QueueRank     *int   `json:"queue_rank,omitempty"`
}

// QueueStatus is a point-in-time view of one reservation's standing in
// its slot's contention.  MyPosition is always computed live as the
// number of still-active queued reservations ahead of this one; stored
// ranks are arrival markers, not positions.
type QueueStatus struct {
	ReservationID       uint64      `json:"reservation_id"`
	Status              string      `json:"status"`
	IsHolder            bool        `json:"is_holder"`
	TotalInQueue        int         `json:"total_in_queue"`
	MyPosition          int         `json:"my_position"` // 0 for the active holder
	PaymentHoldDeadline *time.Time  `json:"payment_hold_deadline,omitempty"`
	QueueHoldDeadline   *time.Time  `json:"queue_hold_deadline,omitempty"`
	OtherContenders     []Contender `json:"other_contenders"`
}

// GetQueueStatus reports the live standing of a reservation among its
// slot's contenders.  The read excludes rows whose holds have lapsed
// but does not cancel them; reconciliation stays with the mutating
// entry points.
func (e *Engine) GetQueueStatus(ctx context.Context, reservationID uint64) (*QueueStatus, error) {
	res, err := e.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}

	key := res.SlotKey()
	release := e.locks.acquire(key)
	defer release()

	rows, err := e.store.FindBySlotKey(ctx, key)
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	st := &QueueStatus{
		ReservationID:       res.ID,
		Status:              res.Status,
		IsHolder:            res.IsActiveHolder() && !res.PaymentHoldExpired(now),
		PaymentHoldDeadline: res.PaymentHoldDeadline,
		QueueHoldDeadline:   res.QueueHoldDeadline,
		OtherContenders:     []Contender{},
	}

	for _, r := range rows {
		if r.IsTerminal() || r.PaymentHoldExpired(now) || r.QueueHoldExpired(now) {
			continue
		}
		if r.IsQueued {
			st.TotalInQueue++
			if res.IsQueued && res.Status == model.StatusPending && rankOf(r) < rankOf(res) {
				st.MyPosition++
			}
		}
		if r.ID != res.ID {
			st.OtherContenders = append(st.OtherContenders, Contender{
				ReservationID: r.ID,
				UserID:        r.UserID,
				IsHolder:      r.IsActiveHolder(),
				QueueRank:     r.QueueRank,
			})
		}
	}
	if res.IsQueued && res.Status == model.StatusPending && !res.QueueHoldExpired(now) {
		st.MyPosition++ // positions are 1-based for queued rows
	} else {
		st.MyPosition = 0
	}
	return st, nil
}

// CancelReservation cancels a pending reservation at its owner's
// request.  Cancellation is only permitted before the slot's start
// time.  Cancelling the active holder promotes the next eligible
// queued reservation.
func (e *Engine) CancelReservation(ctx context.Context, reservationID, callerID uint64, reason string) (*model.Reservation, error) {
	res, err := e.store.FindByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, ErrNotFound
	}
	if res.UserID != callerID {
		return nil, ErrForbidden
	}

	key := res.SlotKey()
	release := e.locks.acquire(key)
	defer release()

	now := e.clock.Now()
	state, err := e.reconcileLocked(ctx, key, now)
	if err != nil {
		return nil, err
	}
	res = rowByID(state.rows, reservationID)
	if res == nil {
		return nil, ErrNotFound
	}
	if res.IsTerminal() {
		return nil, ErrAlreadyTerminal
	}
	startAt, err := key.StartAt()
	if err != nil {
		return nil, ErrInvalidInterval
	}
	if !startAt.After(now) {
		return nil, ErrTooLateToCancel
	}

	wasHolder := res.IsActiveHolder()
	if reason == "" {
		reason = ReasonUserCancelled
	}
	cancel(res, model.PaymentCancelled, reason)
	if err := e.store.Update(ctx, res); err != nil {
		return nil, err
	}

	if wasHolder {
		remaining := make([]*model.Reservation, 0, len(state.live))
		for _, r := range state.live {
			if r.ID != res.ID {
				remaining = append(remaining, r)
			}
		}
		if _, err := e.promoteLocked(ctx, remaining, now); err != nil {
			return nil, err
		}
	}
	return res, nil
}
