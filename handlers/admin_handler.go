package handlers

import (
	"log/slog"
	"net/http"

	"ticket-resale/models"
	"ticket-resale/security"
	"ticket-resale/services"
	"ticket-resale/store"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v5"
)

// AdminHandler exposes the moderation surface: full listing visibility
// and hard deletion.
type AdminHandler struct {
	tickets  *store.TicketStore
	intake   *services.IntakeService
	index    services.FilterIndex
	validate *validator.Validate
}

func NewAdminHandler(tickets *store.TicketStore, intake *services.IntakeService, index services.FilterIndex, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{tickets: tickets, intake: intake, index: index, validate: validate}
}

// ListTickets returns every ticket, sold and deleted included.
func (h *AdminHandler) ListTickets(c echo.Context) error {
	tickets, err := h.tickets.ListAll(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// CreateTicket posts a listing on behalf of the admin account.
func (h *AdminHandler) CreateTicket(c echo.Context) error {
	var req createTicketRequest
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}
	if err := h.validate.Struct(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Missing required fields")
	}

	draft := models.TicketDraft{
		EventName:     &req.EventName,
		Venue:         req.Venue,
		City:          req.City,
		ShowTime:      &req.ShowTime,
		OriginalPrice: req.OriginalPrice,
		SellingPrice:  req.SellingPrice,
		ContactInfo:   req.ContactInfo,
		TicketURL:     req.TicketURL,
		SeatNumbers:   req.SeatNumbers,
		Count:         req.Count,
	}

	id, err := h.intake.List(c.Request().Context(), draft, security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message":   "Ticket posted",
		"ticket_id": id,
	})
}

// DeleteTicket removes a ticket outright and prunes the filter index.
func (h *AdminHandler) DeleteTicket(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.PathParam("id")

	ticket, err := h.tickets.Get(ctx, id)
	if err != nil {
		return errorJSON(c, err)
	}
	if err := h.tickets.HardDelete(ctx, id); err != nil {
		return errorJSON(c, err)
	}
	if err := h.index.OnAvailabilityChanged(ctx, ticket.EventName, ticket.City); err != nil {
		slog.Error("filter prune after hard delete", "ticket", id, "error", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Ticket deleted"})
}
