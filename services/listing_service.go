package services

import (
	"context"
	"log/slog"

	"ticket-resale/models"
	"ticket-resale/store"

	"github.com/shopspring/decimal"
)

// ListingService covers the seller-facing lifecycle of an existing
// listing: browsing, repricing, delisting and reporting. Creation goes
// through the intake service.
type ListingService struct {
	tickets *store.TicketStore
	index   FilterIndex
}

func NewListingService(tickets *store.TicketStore, index FilterIndex) *ListingService {
	return &ListingService{tickets: tickets, index: index}
}

func (s *ListingService) Browse(ctx context.Context, filter models.ListFilter) ([]models.Ticket, error) {
	return s.tickets.ListAvailable(ctx, filter)
}

func (s *ListingService) Get(ctx context.Context, id string) (*models.Ticket, error) {
	return s.tickets.Get(ctx, id)
}

func (s *ListingService) Mine(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	return s.tickets.ListByOwner(ctx, ownerID)
}

func (s *ListingService) Bought(ctx context.Context, buyerID string) ([]models.Ticket, error) {
	return s.tickets.ListByBuyer(ctx, buyerID)
}

func (s *ListingService) UpdatePrice(ctx context.Context, id, requesterID string, price decimal.Decimal) error {
	return s.tickets.UpdatePrice(ctx, id, requesterID, price)
}

// Delist soft-deletes the requester's unsold listing and prunes the
// filter index for its (event, city) pair.
func (s *ListingService) Delist(ctx context.Context, id, requesterID string) error {
	ticket, err := s.tickets.SoftDelete(ctx, id, requesterID)
	if err != nil {
		return err
	}

	if err := s.index.OnAvailabilityChanged(ctx, ticket.EventName, ticket.City); err != nil {
		slog.Error("filter index prune failed", "ticket", ticket.ID, "error", err)
	}
	return nil
}

func (s *ListingService) Report(ctx context.Context, id string) error {
	return s.tickets.Report(ctx, id)
}
