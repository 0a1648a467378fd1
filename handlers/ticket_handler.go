package handlers

import (
	"net/http"
	"strconv"

	"ticket-resale/models"
	"ticket-resale/security"
	"ticket-resale/services"
	"ticket-resale/store"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v5"
	"github.com/shopspring/decimal"
)

type TicketHandler struct {
	listing  *services.ListingService
	intake   *services.IntakeService
	filters  *services.FilterService
	catalog  *store.CatalogStore
	validate *validator.Validate
}

func NewTicketHandler(listing *services.ListingService, intake *services.IntakeService, filters *services.FilterService, catalog *store.CatalogStore, validate *validator.Validate) *TicketHandler {
	return &TicketHandler{
		listing:  listing,
		intake:   intake,
		filters:  filters,
		catalog:  catalog,
		validate: validate,
	}
}

// Browse is the public listing: unsold, undeleted tickets with optional
// city/count/sort filters, contact and media redacted.
func (h *TicketHandler) Browse(c echo.Context) error {
	filter := models.ListFilter{
		City: c.QueryParam("city"),
		Sort: c.QueryParam("sort"),
	}

	if raw := c.QueryParam("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return respond(c, http.StatusBadRequest, "Invalid count")
		}
		filter.MinCount = count
	}

	tickets, err := h.listing.Browse(c.Request().Context(), filter)
	if err != nil {
		return errorJSON(c, err)
	}

	redacted := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		redacted[i] = t.Redacted()
	}
	return c.JSON(http.StatusOK, redacted)
}

// Detail returns a single redacted ticket for the checkout page.
func (h *TicketHandler) Detail(c echo.Context) error {
	ticket, err := h.listing.Get(c.Request().Context(), c.PathParam("id"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, ticket.Redacted())
}

type createTicketRequest struct {
	EventName     string          `json:"event_name" validate:"required"`
	Venue         string          `json:"venue" validate:"required"`
	City          string          `json:"city" validate:"required"`
	ShowTime      string          `json:"datetime" validate:"required"`
	OriginalPrice decimal.Decimal `json:"original_price" validate:"required"`
	SellingPrice  decimal.Decimal `json:"selling_price" validate:"required"`
	ContactInfo   string          `json:"contact_info" validate:"required"`
	TicketURL     string          `json:"ticket_url" validate:"required"`
	SeatNumbers   []string        `json:"seat_numbers" validate:"required"`
	Count         int             `json:"count" validate:"required"`
}

// Create posts a pre-extracted listing directly.
func (h *TicketHandler) Create(c echo.Context) error {
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

// Mine lists the seller's own tickets, soft-deleted excluded.
func (h *TicketHandler) Mine(c echo.Context) error {
	tickets, err := h.listing.Mine(c.Request().Context(), security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// Bought lists tickets the user purchased.
func (h *TicketHandler) Bought(c echo.Context) error {
	tickets, err := h.listing.Bought(c.Request().Context(), security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, tickets)
}

// UpdatePrice conditionally changes the asking price of an owned,
// unsold listing.
func (h *TicketHandler) UpdatePrice(c echo.Context) error {
	var req struct {
		NewPrice decimal.Decimal `json:"new_price"`
	}
	if err := c.Bind(&req); err != nil {
		return respond(c, http.StatusBadRequest, "Invalid request")
	}

	err := h.listing.UpdatePrice(c.Request().Context(), c.PathParam("id"), security.UserID(c), req.NewPrice)
	if err != nil {
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Ticket price updated successfully"})
}

// Delete soft-deletes an unsold listing.
func (h *TicketHandler) Delete(c echo.Context) error {
	err := h.listing.Delist(c.Request().Context(), c.PathParam("id"), security.UserID(c))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Ticket soft-deleted successfully"})
}

// Report flags a ticket. No auth, no dedup.
func (h *TicketHandler) Report(c echo.Context) error {
	if err := h.listing.Report(c.Request().Context(), c.PathParam("id")); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Ticket reported"})
}

// ActiveFilters returns the filter-suggestion snapshot.
func (h *TicketHandler) ActiveFilters(c echo.Context) error {
	movies, cities, err := h.filters.Snapshot(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string][]string{
		"movies": movies,
		"cities": cities,
	})
}

// CinemaData serves the static venue metadata passthrough.
func (h *TicketHandler) CinemaData(c echo.Context) error {
	cinemas, err := h.catalog.Cinemas(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, cinemas)
}
