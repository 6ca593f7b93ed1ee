package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/court-slot-reservation/internal/model"
)

func TestCompletePaymentConfirmsAndVoidsContenders(t *testing.T) {
	e, st, _, pub := newTestEngine(t)
	a := mustSubmit(t, e, 101)
	b := mustSubmit(t, e, 102)
	c := mustSubmit(t, e, 103)

	got, err := e.CompletePayment(context.Background(), a.Reservation.ID, 101)
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if got.Status != model.StatusConfirmed || got.PaymentStatus != model.PaymentPaid {
		t.Errorf("winner = %s/%s, want CONFIRMED/PAID", got.Status, got.PaymentStatus)
	}

	for _, id := range []uint64{b.Reservation.ID, c.Reservation.ID} {
		row := st.mustRow(t, id)
		if row.Status != model.StatusCancelled {
			t.Errorf("contender %d status = %s, want CANCELLED", id, row.Status)
		}
		if row.CancelReason == nil || *row.CancelReason != ReasonSlotTaken {
			t.Errorf("contender %d reason = %v, want %q", id, row.CancelReason, ReasonSlotTaken)
		}
	}

	if len(pub.confirmed) != 1 {
		t.Fatalf("confirmed events = %d, want 1", len(pub.confirmed))
	}
	if ev := pub.confirmed[0]; ev.ReservationID != a.Reservation.ID || ev.ContendersCut != 2 {
		t.Errorf("event = id %d cut %d, want id %d cut 2", ev.ReservationID, ev.ContendersCut, a.Reservation.ID)
	}

	// The settled slot is gone for everyone else.
	if _, err := e.SubmitRequest(context.Background(), slotInput(104, "14:00", "15:00")); !errors.Is(err, ErrSlotUnavailable) {
		t.Errorf("submit after settlement err = %v, want ErrSlotUnavailable", err)
	}
	assertSlotInvariants(t, st)
}

func TestCompletePaymentErrors(t *testing.T) {
	e, _, _, _ := newTestEngine(t)
	a := mustSubmit(t, e, 101)
	b := mustSubmit(t, e, 102)

	t.Run("unknown reservation", func(t *testing.T) {
		if _, err := e.CompletePayment(context.Background(), 999, 101); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
	t.Run("wrong caller", func(t *testing.T) {
		if _, err := e.CompletePayment(context.Background(), a.Reservation.ID, 555); !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
	t.Run("queued caller has no payment window", func(t *testing.T) {
		if _, err := e.CompletePayment(context.Background(), b.Reservation.ID, 102); !errors.Is(err, ErrHoldExpired) {
			t.Errorf("err = %v, want ErrHoldExpired", err)
		}
	})
	t.Run("second settlement of the same row", func(t *testing.T) {
		if _, err := e.CompletePayment(context.Background(), a.Reservation.ID, 101); err != nil {
			t.Fatalf("first settlement: %v", err)
		}
		if _, err := e.CompletePayment(context.Background(), a.Reservation.ID, 101); !errors.Is(err, ErrAlreadyTerminal) {
			t.Errorf("err = %v, want ErrAlreadyTerminal", err)
		}
	})
}

func TestCompletePaymentAfterHoldLapse(t *testing.T) {
	e, st, clk, _ := newTestEngine(t)
	a := mustSubmit(t, e, 101)

	clk.Advance(DefaultPaymentHold)
	if _, err := e.CompletePayment(context.Background(), a.Reservation.ID, 101); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("err = %v, want ErrHoldExpired", err)
	}

	// The call itself reconciled the stale hold.
	row := st.mustRow(t, a.Reservation.ID)
	if row.Status != model.StatusCancelled || row.PaymentStatus != model.PaymentFailed {
		t.Errorf("row = %s/%s, want CANCELLED/PAYMENT_FAILED", row.Status, row.PaymentStatus)
	}
	if row.CancelReason == nil || *row.CancelReason != ReasonPaymentExpired {
		t.Errorf("reason = %v, want %q", row.CancelReason, ReasonPaymentExpired)
	}
}

func TestCompletePaymentPromotedDuringCall(t *testing.T) {
	e, st, clk, pub := newTestEngine(t)
	a := mustSubmit(t, e, 101)
	b := mustSubmit(t, e, 102)

	// The holder lapses; the queued caller pays.  Reconciliation inside
	// the call promotes them first, so the payment lands.
	clk.Advance(DefaultPaymentHold)
	got, err := e.CompletePayment(context.Background(), b.Reservation.ID, 102)
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if got.Status != model.StatusConfirmed {
		t.Errorf("status = %s, want CONFIRMED", got.Status)
	}
	if row := st.mustRow(t, a.Reservation.ID); row.CancelReason == nil || *row.CancelReason != ReasonPaymentExpired {
		t.Errorf("lapsed holder reason = %v, want %q", row.CancelReason, ReasonPaymentExpired)
	}
	if ids := pub.promotedIDs(); len(ids) != 1 || ids[0] != b.Reservation.ID {
		t.Errorf("promoted events = %v, want [%d]", ids, b.Reservation.ID)
	}
	if len(pub.confirmed) != 1 {
		t.Errorf("confirmed events = %d, want 1", len(pub.confirmed))
	}
	assertSlotInvariants(t, st)
}

func TestConcurrentSettlementHasOneWinner(t *testing.T) {
	t.Run("lapsed holder races promoted contender", func(t *testing.T) {
		e, st, clk, _ := newTestEngine(t)
		a := mustSubmit(t, e, 101)
		b := mustSubmit(t, e, 102)
		clk.Advance(DefaultPaymentHold)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = e.CompletePayment(context.Background(), a.Reservation.ID, 101)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = e.CompletePayment(context.Background(), b.Reservation.ID, 102)
		}()
		wg.Wait()

		if !errors.Is(errs[0], ErrHoldExpired) {
			t.Errorf("lapsed holder err = %v, want ErrHoldExpired", errs[0])
		}
		if errs[1] != nil {
			t.Errorf("promoted contender err = %v, want success", errs[1])
		}
		if row := st.mustRow(t, b.Reservation.ID); row.Status != model.StatusConfirmed {
			t.Errorf("winner status = %s, want CONFIRMED", row.Status)
		}
		assertSlotInvariants(t, st)
	})

	t.Run("double settlement of one row", func(t *testing.T) {
		e, st, _, _ := newTestEngine(t)
		a := mustSubmit(t, e, 101)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		for i := 0; i < 2; i++ {
			go func(i int) {
				defer wg.Done()
				_, errs[i] = e.CompletePayment(context.Background(), a.Reservation.ID, 101)
			}(i)
		}
		wg.Wait()

		wins, terminal := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrAlreadyTerminal):
				terminal++
			default:
				t.Errorf("unexpected err: %v", err)
			}
		}
		if wins != 1 || terminal != 1 {
			t.Errorf("wins/terminal = %d/%d, want 1/1", wins, terminal)
		}
		assertSlotInvariants(t, st)
	})
}
