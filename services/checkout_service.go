package services

import (
	"context"
	"fmt"
	"log/slog"

	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/services/gateway"
	"ticket-resale/services/notify"
	"ticket-resale/utils"

	"github.com/shopspring/decimal"
)

// TicketSettlement is the slice of the ticket store checkout needs.
type TicketSettlement interface {
	Get(ctx context.Context, id string) (*models.Ticket, error)
	MarkSold(ctx context.Context, id, buyerID, orderID, paymentID string) (*models.Ticket, error)
}

// OrderDetails is returned to the client to open the gateway widget.
type OrderDetails struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

// SettleRequest is the verified-payment callback payload.
type SettleRequest struct {
	OrderID   string
	PaymentID string
	Signature string
	TicketID  string
}

// CheckoutService drives a purchase from order creation through
// settlement. No reservation is taken at order time: the conditional
// sold-state write in the ticket store is the only concurrency guard,
// so of two buyers holding valid payment proofs for the same ticket
// exactly one settles and the other sees already-sold.
type CheckoutService struct {
	tickets  TicketSettlement
	gateway  gateway.Gateway
	index    FilterIndex
	notifier notify.Notifier
	currency string
}

func NewCheckoutService(tickets TicketSettlement, gw gateway.Gateway, index FilterIndex, notifier notify.Notifier, currency string) *CheckoutService {
	return &CheckoutService{
		tickets:  tickets,
		gateway:  gw,
		index:    index,
		notifier: notifier,
		currency: currency,
	}
}

// CreateOrder opens a payment intent for the ticket's current asking
// price, converted to minor currency units. The amount reflects live
// ticket state at call time.
func (s *CheckoutService) CreateOrder(ctx context.Context, ticketID string) (*OrderDetails, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	amount := ticket.SellingPrice.
		Mul(decimal.NewFromInt(100)).
		Mul(decimal.NewFromInt(int64(ticket.Count))).
		IntPart()

	receipt, err := utils.GenerateCode(12)
	if err != nil {
		return nil, fmt.Errorf("generate receipt: %w", err)
	}

	order, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &OrderDetails{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: s.currency,
		Key:      s.gateway.KeyID(),
	}, nil
}

// VerifyAndSettle validates the payment proof and transitions the
// ticket to sold exactly once. Signature mismatch and already-sold are
// terminal for the attempt; gateway errors earlier in the flow are
// retryable because nothing was mutated.
func (s *CheckoutService) VerifyAndSettle(ctx context.Context, req SettleRequest, buyerID string) (*models.Ticket, error) {
	if err := s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		monitoring.TrackSignatureMismatch()
		slog.Warn("payment signature verification failed",
			"ticket", req.TicketID,
			"order", req.OrderID,
			"buyer", buyerID,
		)
		return nil, err
	}

	ticket, err := s.tickets.MarkSold(ctx, req.TicketID, buyerID, req.OrderID, req.PaymentID)
	if err != nil {
		return nil, err
	}
	monitoring.TrackTicketSold()

	// The index is eventually consistent; a failed prune leaves a stale
	// suggestion, not a wrong sale.
	if err := s.index.OnAvailabilityChanged(ctx, ticket.EventName, ticket.City); err != nil {
		slog.Error("filter index prune failed", "ticket", ticket.ID, "error", err)
	}

	if err := s.notifier.PaymentSettled(ctx, buyerID, ticket.ID, req.PaymentID); err != nil {
		slog.Error("settlement notice failed", "ticket", ticket.ID, "error", err)
	}

	return ticket, nil
}
