package gateway

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Sandbox fabricates orders locally for development. Signatures verify
// with the same HMAC scheme as the real gateway so the full settlement
// path can be exercised without network access.
type Sandbox struct {
	secret []byte
	seq    atomic.Int64
}

func NewSandbox(secret string) *Sandbox {
	return &Sandbox{secret: []byte(secret)}
}

func (g *Sandbox) Provider() Provider { return ProviderSandbox }
func (g *Sandbox) KeyID() string      { return "sandbox" }

func (g *Sandbox) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*Order, error) {
	return &Order{
		ID:       fmt.Sprintf("order_sandbox_%d", g.seq.Add(1)),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func (g *Sandbox) VerifySignature(orderID, paymentID, signature string) error {
	return verifyHMAC(g.secret, orderID, paymentID, signature)
}

// Sign produces a valid callback signature, used by development tooling
// and tests to simulate a completed payment.
func (g *Sandbox) Sign(orderID, paymentID string) string {
	return SignPayload(string(g.secret), orderID, paymentID)
}
