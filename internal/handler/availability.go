package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/court-slot-reservation/internal/booking"
)

// Availability handles GET /v1/courts/:id/slots?date=YYYY-MM-DD.  It
// returns the hourly availability grid for one court and date so that
// guests can inspect a court before submitting a request.  The route
// is public and sits behind the response cache middleware; the grid
// only reflects confirmed reservations and maintenance blocks, never
// pending holds, so a short cache TTL is harmless.
func (h *BookingHandler) Availability(c echo.Context) error {
	courtID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || courtID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid court id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required"})
	}

	slots, err := h.Engine.DayAvailability(c.Request().Context(), courtID, date)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "court not found"})
		}
		if errors.Is(err, booking.ErrInvalidInterval) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load availability"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"court_id": courtID,
		"date":     date,
		"slots":    slots,
	})
}
