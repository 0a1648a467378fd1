package gateway

import "context"

// Provider identifies a payment gateway implementation.
type Provider string

const (
	ProviderRazorpay Provider = "razorpay"
	ProviderSandbox  Provider = "sandbox"
)

// Order is the payment intent created at the gateway. Amount is in
// minor currency units.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway is the external payment collaborator. CreateOrder opens a
// payment intent; VerifySignature checks the settlement callback proof
// computed over "order_id|payment_id" with the shared secret.
type Gateway interface {
	Provider() Provider
	KeyID() string
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) error
}
