package handler

import (
	"errors"   // errors.Is comparisons against the engine's sentinels
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/court-slot-reservation/internal/booking" // admission/settlement engine
)

// BookingHandler exposes the admission engine over HTTP.  All methods
// assume that JWT authentication has already been performed by
// middleware and may return 401 Unauthorized when the user ID cannot
// be extracted from the context.  The handler itself is thin: slot
// serialization, reconciliation and invariants all live in the engine.
type BookingHandler struct {
	Engine *booking.Engine
}

// NewBookingHandler constructs a BookingHandler.  The engine must be non-nil.
func NewBookingHandler(engine *booking.Engine) *BookingHandler {
	if engine == nil {
		panic("nil engine passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine}
}

// Submit handles POST /v1/courts/:id/reservations.  The request body
// carries the desired interval and price.  The response reports
// whether the caller holds the payment window or was queued, together
// with the live queue position and an estimated wait.
func (h *BookingHandler) Submit(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	courtID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courtID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	var body struct {
		Date       string `json:"date"`
		StartTime  string `json:"start_time"`
		EndTime    string `json:"end_time"`
		PriceCents uint32 `json:"price_cents"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	result, err := h.Engine.SubmitRequest(c.Request().Context(), booking.SubmitInput{
		CourtID:    courtID,
		Date:       body.Date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		UserID:     userID,
		PriceCents: body.PriceCents,
	})
	if err != nil {
		return engineError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"reservation":            reservationJSON(result.Reservation),
		"is_in_queue":            result.IsInQueue,
		"queue_position":         result.QueuePosition,
		"estimated_wait_minutes": result.EstimatedWaitMinutes,
		"contender_count":        result.ContenderCount,
	})
}

// Pay handles POST /v1/reservations/:id/payment.  It finalises the
// caller's reservation after the payment provider reported success,
// confirming the winner and voiding every other contender.
func (h *BookingHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	res, err := h.Engine.CompletePayment(c.Request().Context(), resID, userID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": reservationJSON(res)})
}

// QueueStatus handles GET /v1/reservations/:id/queue.  It returns the
// live standing of the reservation among its slot's contenders.
func (h *BookingHandler) QueueStatus(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	st, err := h.Engine.GetQueueStatus(c.Request().Context(), resID)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Cancel handles DELETE /v1/reservations/:id.  The optional JSON body
// may carry a reason.  Cancelling the active holder promotes the next
// queued reservation.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || resID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // body is optional

	res, err := h.Engine.CancelReservation(c.Request().Context(), resID, userID, body.Reason)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": reservationJSON(res)})
}

// engineError translates the engine's typed errors into HTTP
// responses.  Every sentinel maps to a stable status and message so
// client behaviour does not depend on error strings.
func engineError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot unavailable"})
	case errors.Is(err, booking.ErrHoldExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment hold expired"})
	case errors.Is(err, booking.ErrAlreadyTerminal):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already finalised"})
	case errors.Is(err, booking.ErrTooLateToCancel):
		return c.JSON(http.StatusConflict, echo.Map{"error": "too late to cancel"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, booking.ErrInvalidInterval),
		errors.Is(err, booking.ErrOutsideOperatingHours),
		errors.Is(err, booking.ErrSlotInPast):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
