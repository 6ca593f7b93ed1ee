package handler

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // RFC3339 formatting of hold deadlines

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/court-slot-reservation/internal/model" // domain models rendered in responses
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT claims decode numbers as float64, so several shapes are accepted.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// reservationJSON renders a reservation for API responses.  Deadlines
// are formatted as RFC3339 in UTC; absent optional fields are omitted.
func reservationJSON(r *model.Reservation) echo.Map {
	out := echo.Map{
		"id":             r.ID,
		"court_id":       r.CourtID,
		"date":           r.Date,
		"start_time":     r.StartTime,
		"end_time":       r.EndTime,
		"user_id":        r.UserID,
		"price_cents":    r.PriceCents,
		"status":         r.Status,
		"payment_status": r.PaymentStatus,
		"is_queued":      r.IsQueued,
		"created_at":     r.CreatedAt.UTC().Format(time.RFC3339),
	}
	if r.QueueRank != nil {
		out["queue_rank"] = *r.QueueRank
	}
	if r.QueueHoldDeadline != nil {
		out["queue_hold_deadline"] = r.QueueHoldDeadline.UTC().Format(time.RFC3339)
	}
	if r.PaymentHoldDeadline != nil {
		out["payment_hold_deadline"] = r.PaymentHoldDeadline.UTC().Format(time.RFC3339)
	}
	if r.CancelReason != nil {
		out["cancel_reason"] = *r.CancelReason
	}
	return out
}
