package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"ticket-resale/internal/status"

	"github.com/labstack/echo/v5"
)

// errorJSON maps service errors onto the HTTP taxonomy. Anything
// unrecognized is an internal error and logged; the merged
// not-found-or-unauthorized class keeps ticket ownership unguessable.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, status.ErrUserNotFound):
		return respond(c, http.StatusNotFound, "User not found")
	case errors.Is(err, status.ErrPhoneRegistered):
		return respond(c, http.StatusConflict, "Phone number already registered")
	case errors.Is(err, status.ErrEmailRegistered):
		return respond(c, http.StatusConflict, "Email already registered")
	case errors.Is(err, status.ErrChallengeInvalid):
		return respond(c, http.StatusBadRequest, "OTP expired or not found")
	case errors.Is(err, status.ErrChallengeMismatch):
		return respond(c, http.StatusUnauthorized, "Invalid OTP")
	case errors.Is(err, status.ErrTicketNotFound):
		return respond(c, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, status.ErrTicketNotFoundOrUnauthorized):
		return respond(c, http.StatusNotFound, "Ticket not found, already sold, or not authorized")
	case errors.Is(err, status.ErrTicketAlreadySold):
		return respond(c, http.StatusForbidden, "Ticket already sold")
	case errors.Is(err, status.ErrTicketSoldDelete):
		return respond(c, http.StatusBadRequest, "Cannot delete a sold ticket")
	case errors.Is(err, status.ErrInvalidPrice):
		return respond(c, http.StatusBadRequest, "Valid new price is required")
	case errors.Is(err, status.ErrSeatMismatch):
		return respond(c, http.StatusBadRequest, "Seat numbers must match the ticket count")
	case errors.Is(err, status.ErrIncompleteExtraction):
		return respond(c, http.StatusBadRequest, "Missing fields in extracted data")
	case errors.Is(err, status.ErrSignatureMismatch):
		return respond(c, http.StatusBadRequest, "Signature verification failed")
	case errors.Is(err, status.ErrGatewayUnavailable):
		return respond(c, http.StatusInternalServerError, "Payment gateway unavailable")
	default:
		slog.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
		return respond(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respond(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]string{"error": message})
}
