package notify

import (
	"context"
	"fmt"
	"log/slog"

	pubnub "github.com/pubnub/go"
)

// Notifier is the out-of-band dispatch collaborator: one-time codes to
// phones and settlement events to buyers. Delivery failures are the
// caller's to log, never to surface.
type Notifier interface {
	SendOTP(ctx context.Context, phone, code string) error
	PaymentSettled(ctx context.Context, userID, ticketID, paymentID string) error
}

// PubNubNotifier publishes to per-recipient channels; a downstream
// worker bridges the otp-dispatch channel to the SMS provider.
type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{pn: pn}
}

func (n *PubNubNotifier) SendOTP(ctx context.Context, phone, code string) error {
	_, _, err := n.pn.Publish().
		Channel("otp-dispatch").
		Message(map[string]any{
			"type":         "otp",
			"phone_number": phone,
			"code":         code,
		}).
		Execute()
	if err != nil {
		return fmt.Errorf("publish otp: %w", err)
	}
	return nil
}

func (n *PubNubNotifier) PaymentSettled(ctx context.Context, userID, ticketID, paymentID string) error {
	channel := fmt.Sprintf("user-%s", userID)
	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(map[string]any{
			"type":       "payment_success",
			"ticket_id":  ticketID,
			"payment_id": paymentID,
		}).
		Execute()
	if err != nil {
		return fmt.Errorf("publish settlement: %w", err)
	}
	return nil
}

// LogNotifier stands in for the dispatch channel in development.
type LogNotifier struct{}

func (LogNotifier) SendOTP(_ context.Context, phone, code string) error {
	slog.Info("otp dispatch (dev)", "phone", phone, "code", code)
	return nil
}

func (LogNotifier) PaymentSettled(_ context.Context, userID, ticketID, paymentID string) error {
	slog.Info("settlement notice (dev)", "user", userID, "ticket", ticketID, "payment", paymentID)
	return nil
}
