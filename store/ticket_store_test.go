package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"ticket-resale/internal/status"
	"ticket-resale/models"

	"github.com/pocketbase/dbx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *dbx.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func testDraft(event, city string, price string, seats []string) models.TicketDraft {
	var eventName *string
	if event != "" {
		eventName = &event
	}
	return models.TicketDraft{
		EventName:     eventName,
		Venue:         "PVR Phoenix",
		City:          city,
		ShowTime:      strPtr("2026-10-01T19:30:00"),
		OriginalPrice: decimal.RequireFromString("300"),
		SellingPrice:  decimal.RequireFromString(price),
		ContactInfo:   "9876543210",
		TicketURL:     "/uploads/ticket.png",
		SeatNumbers:   seats,
		Count:         len(seats),
	}
}

func TestTicketStore_CreateGet_RoundTrip(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450.50", []string{"A1", "A2"}), "seller-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	ticket, err := store.Get(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, ticket.ID)
	assert.Equal(t, "seller-1", ticket.UserID)
	assert.Equal(t, "seller-1", ticket.SoldBy)
	assert.Nil(t, ticket.BoughtBy)
	require.NotNil(t, ticket.EventName)
	assert.Equal(t, "Dune", *ticket.EventName)
	assert.Equal(t, "Mumbai", ticket.City)
	assert.True(t, ticket.SellingPrice.Equal(decimal.RequireFromString("450.50")))
	assert.Equal(t, models.SeatList{"A1", "A2"}, ticket.SeatNumbers)
	assert.Equal(t, 2, ticket.Count)
	assert.False(t, ticket.IsSold)
	assert.False(t, ticket.Deleted)
	assert.NotEmpty(t, ticket.CreatedAt)
}

func TestTicketStore_Create_SeatCountMismatch(t *testing.T) {
	store := NewTicketStore(newTestDB(t))

	draft := testDraft("Dune", "Mumbai", "450", []string{"A1", "A2"})
	draft.Count = 3

	_, err := store.Create(context.Background(), draft, "seller-1")
	assert.ErrorIs(t, err, status.ErrSeatMismatch)
}

func TestTicketStore_Get_NotFound(t *testing.T) {
	store := NewTicketStore(newTestDB(t))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestTicketStore_ListAvailable_CitySubstring(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	_, err = store.Create(ctx, testDraft("Dune", "Delhi", "450", []string{"B1"}), "seller-1")
	require.NoError(t, err)

	tickets, err := store.ListAvailable(ctx, models.ListFilter{City: "mum"})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Mumbai", tickets[0].City)
}

func TestTicketStore_ListAvailable_MinCount(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	_, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	_, err = store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"B1", "B2", "B3"}), "seller-1")
	require.NoError(t, err)

	tickets, err := store.ListAvailable(ctx, models.ListFilter{MinCount: 2})
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, 3, tickets[0].Count)
}

func TestTicketStore_ListAvailable_Sorting(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	cheap := testDraft("Dune", "Mumbai", "100", []string{"A1"})
	cheap.ShowTime = strPtr("2026-12-01T19:30:00")
	mid := testDraft("Dune", "Mumbai", "250", []string{"B1"})
	mid.ShowTime = strPtr("2026-10-01T19:30:00")
	dear := testDraft("Dune", "Mumbai", "900", []string{"C1"})
	dear.ShowTime = strPtr("2026-11-01T19:30:00")

	for _, d := range []models.TicketDraft{mid, dear, cheap} {
		_, err := store.Create(ctx, d, "seller-1")
		require.NoError(t, err)
	}

	byPrice, err := store.ListAvailable(ctx, models.ListFilter{Sort: "price_asc"})
	require.NoError(t, err)
	require.Len(t, byPrice, 3)
	assert.True(t, byPrice[0].SellingPrice.Equal(decimal.RequireFromString("100")))
	assert.True(t, byPrice[2].SellingPrice.Equal(decimal.RequireFromString("900")))

	byDate, err := store.ListAvailable(ctx, models.ListFilter{Sort: "date_desc"})
	require.NoError(t, err)
	require.Len(t, byDate, 3)
	assert.Equal(t, "2026-12-01T19:30:00", *byDate[0].ShowTime)
	assert.Equal(t, "2026-10-01T19:30:00", *byDate[2].ShowTime)
}

func TestTicketStore_UpdatePrice(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	require.NoError(t, store.UpdatePrice(ctx, id, "seller-1", decimal.RequireFromString("399")))

	ticket, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ticket.SellingPrice.Equal(decimal.RequireFromString("399")))
}

func TestTicketStore_UpdatePrice_WrongOwnerMerged(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	err = store.UpdatePrice(ctx, id, "intruder", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, status.ErrTicketNotFoundOrUnauthorized)

	err = store.UpdatePrice(ctx, "missing", "seller-1", decimal.RequireFromString("1"))
	assert.ErrorIs(t, err, status.ErrTicketNotFoundOrUnauthorized)
}

func TestTicketStore_UpdatePrice_RejectsNonPositive(t *testing.T) {
	store := NewTicketStore(newTestDB(t))

	err := store.UpdatePrice(context.Background(), "any", "seller-1", decimal.Zero)
	assert.ErrorIs(t, err, status.ErrInvalidPrice)
}

func TestTicketStore_SoftDelete(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	deleted, err := store.SoftDelete(ctx, id, "seller-1")
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	available, err := store.ListAvailable(ctx, models.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, available)

	owned, err := store.ListByOwner(ctx, "seller-1")
	require.NoError(t, err)
	assert.Empty(t, owned)

	// A second delete no longer matches the conditional update.
	_, err = store.SoftDelete(ctx, id, "seller-1")
	assert.ErrorIs(t, err, status.ErrTicketNotFoundOrUnauthorized)
}

func TestTicketStore_SoftDelete_SoldTicket(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	_, err = store.MarkSold(ctx, id, "buyer-1", "order-1", "pay-1")
	require.NoError(t, err)

	_, err = store.SoftDelete(ctx, id, "seller-1")
	assert.ErrorIs(t, err, status.ErrTicketSoldDelete)

	// Another user only ever sees the merged error.
	_, err = store.SoftDelete(ctx, id, "intruder")
	assert.ErrorIs(t, err, status.ErrTicketNotFoundOrUnauthorized)
}

func TestTicketStore_MarkSold(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	sold, err := store.MarkSold(ctx, id, "buyer-1", "order-1", "pay-1")
	require.NoError(t, err)
	assert.True(t, sold.IsSold)
	require.NotNil(t, sold.BoughtBy)
	assert.Equal(t, "buyer-1", *sold.BoughtBy)
	require.NotNil(t, sold.OrderID)
	assert.Equal(t, "order-1", *sold.OrderID)
	require.NotNil(t, sold.SoldAt)

	bought, err := store.ListByBuyer(ctx, "buyer-1")
	require.NoError(t, err)
	require.Len(t, bought, 1)
}

func TestTicketStore_MarkSold_Terminal(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	_, err = store.MarkSold(ctx, id, "buyer-1", "order-1", "pay-1")
	require.NoError(t, err)

	_, err = store.MarkSold(ctx, id, "buyer-2", "order-2", "pay-2")
	assert.ErrorIs(t, err, status.ErrTicketAlreadySold)

	_, err = store.MarkSold(ctx, "missing", "buyer-2", "order-2", "pay-2")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestTicketStore_MarkSold_DeletedLooksAbsent(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	_, err = store.SoftDelete(ctx, id, "seller-1")
	require.NoError(t, err)

	_, err = store.MarkSold(ctx, id, "buyer-1", "order-1", "pay-1")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestTicketStore_MarkSold_ConcurrentSingleWinner(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	const buyers = 8
	var wg sync.WaitGroup
	errs := make([]error, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.MarkSold(ctx, id, "buyer", "order", "pay")
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			assert.ErrorIs(t, err, status.ErrTicketAlreadySold)
		}
	}
	assert.Equal(t, 1, won)
}

func TestTicketStore_CountAvailable(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	a, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)
	b, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"B1"}), "seller-2")
	require.NoError(t, err)

	n, err := store.CountAvailable(ctx, "Dune", "Mumbai")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = store.MarkSold(ctx, a, "buyer-1", "order-1", "pay-1")
	require.NoError(t, err)
	_, err = store.SoftDelete(ctx, b, "seller-2")
	require.NoError(t, err)

	n, err = store.CountAvailable(ctx, "Dune", "Mumbai")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestTicketStore_HardDelete(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	require.NoError(t, store.HardDelete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)

	assert.ErrorIs(t, store.HardDelete(ctx, id), status.ErrTicketNotFound)
}

func TestTicketStore_Report(t *testing.T) {
	store := NewTicketStore(newTestDB(t))
	ctx := context.Background()

	id, err := store.Create(ctx, testDraft("Dune", "Mumbai", "450", []string{"A1"}), "seller-1")
	require.NoError(t, err)

	require.NoError(t, store.Report(ctx, id))
	require.NoError(t, store.Report(ctx, id))

	assert.ErrorIs(t, store.Report(ctx, "missing"), status.ErrTicketNotFound)
}
