package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/models"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
)

// TicketStore owns ticket rows. Every mutation is a single conditional
// UPDATE whose WHERE clause re-checks ownership and lifecycle flags, so
// concurrent callers race on the database write, not on a stale read.
type TicketStore struct {
	db *dbx.DB
}

func NewTicketStore(db *dbx.DB) *TicketStore {
	return &TicketStore{db: db}
}

// Create persists a new listing and returns its id. The seat invariant
// len(seat_numbers) == count is enforced here, at the single entry point.
func (s *TicketStore) Create(ctx context.Context, draft models.TicketDraft, ownerID string) (string, error) {
	if len(draft.SeatNumbers) != draft.Count {
		return "", status.ErrSeatMismatch
	}

	id := uuid.NewString()
	_, err := s.db.Insert("tickets", dbx.Params{
		"id":             id,
		"user_id":        ownerID,
		"sold_by":        ownerID,
		"bought_by":      nil,
		"event_name":     draft.EventName,
		"venue":          draft.Venue,
		"city":           draft.City,
		"show_time":      draft.ShowTime,
		"original_price": draft.OriginalPrice,
		"selling_price":  draft.SellingPrice,
		"contact_info":   draft.ContactInfo,
		"ticket_url":     draft.TicketURL,
		"poster_url":     draft.PosterURL,
		"seat_numbers":   models.SeatList(draft.SeatNumbers),
		"count":          draft.Count,
		"is_sold":        0,
		"deleted":        0,
		"created_at":     time.Now().UTC().Format(time.RFC3339),
	}).WithContext(ctx).Execute()
	if err != nil {
		return "", fmt.Errorf("insert ticket: %w", err)
	}

	return id, nil
}

func (s *TicketStore) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var t models.Ticket
	err := s.db.Select().From("tickets").
		Where(dbx.HashExp{"id": id}).
		WithContext(ctx).
		One(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, status.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

// ListAvailable returns unsold, undeleted tickets. The city filter is a
// case-insensitive substring match; sorting happens after retrieval and
// an unknown or empty sort key keeps storage order.
func (s *TicketStore) ListAvailable(ctx context.Context, filter models.ListFilter) ([]models.Ticket, error) {
	conds := []dbx.Expression{dbx.HashExp{"is_sold": 0, "deleted": 0}}
	if filter.City != "" {
		conds = append(conds, dbx.Like("city", filter.City))
	}
	if filter.MinCount > 0 {
		conds = append(conds, dbx.NewExp("count >= {:min}", dbx.Params{"min": filter.MinCount}))
	}

	var tickets []models.Ticket
	err := s.db.Select().From("tickets").
		Where(dbx.And(conds...)).
		WithContext(ctx).
		All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	sortTickets(tickets, filter.Sort)
	return tickets, nil
}

func sortTickets(tickets []models.Ticket, key string) {
	switch key {
	case "price_asc":
		sort.SliceStable(tickets, func(i, j int) bool {
			return tickets[i].SellingPrice.Cmp(tickets[j].SellingPrice) < 0
		})
	case "price_desc":
		sort.SliceStable(tickets, func(i, j int) bool {
			return tickets[j].SellingPrice.Cmp(tickets[i].SellingPrice) < 0
		})
	case "date_asc":
		sort.SliceStable(tickets, func(i, j int) bool {
			return showTime(tickets[i]) < showTime(tickets[j])
		})
	case "date_desc":
		sort.SliceStable(tickets, func(i, j int) bool {
			return showTime(tickets[j]) < showTime(tickets[i])
		})
	}
}

// showTime sorts ISO-formatted timestamps lexically; tickets without one
// sort first.
func showTime(t models.Ticket) string {
	if t.ShowTime == nil {
		return ""
	}
	return *t.ShowTime
}

// ListByOwner returns the seller's own listings, soft-deleted excluded.
func (s *TicketStore) ListByOwner(ctx context.Context, ownerID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.Select().From("tickets").
		Where(dbx.HashExp{"user_id": ownerID, "deleted": 0}).
		WithContext(ctx).
		All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list owned tickets: %w", err)
	}
	return tickets, nil
}

// ListByBuyer returns tickets the user bought.
func (s *TicketStore) ListByBuyer(ctx context.Context, buyerID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.Select().From("tickets").
		Where(dbx.HashExp{"bought_by": buyerID, "deleted": 0}).
		WithContext(ctx).
		All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list bought tickets: %w", err)
	}
	return tickets, nil
}

// ListAll returns every ticket regardless of lifecycle state. Admin only.
func (s *TicketStore) ListAll(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.Select().From("tickets").WithContext(ctx).All(&tickets)
	if err != nil {
		return nil, fmt.Errorf("list all tickets: %w", err)
	}
	return tickets, nil
}

// UpdatePrice changes the asking price if the requester owns the ticket
// and it is still available. Failures are reported with the merged
// not-found-or-unauthorized error regardless of cause.
func (s *TicketStore) UpdatePrice(ctx context.Context, id, requesterID string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return status.ErrInvalidPrice
	}

	res, err := s.db.NewQuery(`
		UPDATE tickets SET selling_price = {:price}
		WHERE id = {:id} AND user_id = {:uid} AND is_sold = 0 AND deleted = 0
	`).Bind(dbx.Params{"price": price, "id": id, "uid": requesterID}).
		WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("update price: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return status.ErrTicketNotFoundOrUnauthorized
	}
	return nil
}

// SoftDelete hides an unsold listing and returns it so the caller can
// prune the active-filter index.
func (s *TicketStore) SoftDelete(ctx context.Context, id, requesterID string) (*models.Ticket, error) {
	res, err := s.db.NewQuery(`
		UPDATE tickets SET deleted = 1
		WHERE id = {:id} AND user_id = {:uid} AND is_sold = 0 AND deleted = 0
	`).Bind(dbx.Params{"id": id, "uid": requesterID}).
		WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("soft delete ticket: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish only the owner's sold ticket; everything else stays
		// behind the merged error.
		t, getErr := s.Get(ctx, id)
		if getErr == nil && t.UserID == requesterID && t.IsSold {
			return nil, status.ErrTicketSoldDelete
		}
		return nil, status.ErrTicketNotFoundOrUnauthorized
	}

	return s.Get(ctx, id)
}

// MarkSold is the single mutation path to the sold state. The WHERE
// clause is the settlement concurrency guard: of two racing buyers with
// valid payment proofs exactly one update matches.
func (s *TicketStore) MarkSold(ctx context.Context, id, buyerID, orderID, paymentID string) (*models.Ticket, error) {
	res, err := s.db.NewQuery(`
		UPDATE tickets SET
			is_sold = 1,
			bought_by = {:buyer},
			order_id = {:order},
			payment_id = {:payment},
			sold_at = {:soldAt}
		WHERE id = {:id} AND is_sold = 0 AND deleted = 0
	`).Bind(dbx.Params{
		"buyer":   buyerID,
		"order":   orderID,
		"payment": paymentID,
		"soldAt":  time.Now().UTC().Format(time.RFC3339),
		"id":      id,
	}).WithContext(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("mark sold: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		t, getErr := s.Get(ctx, id)
		if getErr != nil || t.Deleted {
			return nil, status.ErrTicketNotFound
		}
		return nil, status.ErrTicketAlreadySold
	}

	return s.Get(ctx, id)
}

// CountAvailable reports how many unsold, undeleted tickets remain for
// the exact (event, city) pair. The active-filter index prunes on zero.
func (s *TicketStore) CountAvailable(ctx context.Context, eventName, city string) (int64, error) {
	var n int64
	err := s.db.NewQuery(`
		SELECT COUNT(*) FROM tickets
		WHERE event_name = {:event} AND city = {:city} AND is_sold = 0 AND deleted = 0
	`).Bind(dbx.Params{"event": eventName, "city": city}).
		WithContext(ctx).Row(&n)
	if err != nil {
		return 0, fmt.Errorf("count available tickets: %w", err)
	}
	return n, nil
}

// HardDelete physically removes a ticket. Used by admins and by the
// intake pipeline to compensate a failed index update.
func (s *TicketStore) HardDelete(ctx context.Context, id string) error {
	res, err := s.db.Delete("tickets", dbx.HashExp{"id": id}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("hard delete ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return status.ErrTicketNotFound
	}
	return nil
}

// Report records a complaint against an existing ticket. Duplicate
// reports are allowed.
func (s *TicketStore) Report(ctx context.Context, ticketID string) error {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return err
	}

	_, err := s.db.Insert("reports", dbx.Params{
		"ticket_id":   ticketID,
		"reported_at": time.Now().UTC().Format(time.RFC3339),
	}).WithContext(ctx).Execute()
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}
