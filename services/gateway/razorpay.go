package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticket-resale/internal/status"
	"ticket-resale/monitoring"

	"github.com/sony/gobreaker/v2"
)

type RazorpayConfig struct {
	BaseURL string
	KeyID   string
	Secret  string
	Timeout time.Duration
}

// Razorpay talks to the Razorpay orders API. Calls run through a
// circuit breaker so a failing gateway degrades fast instead of tying
// up checkout requests.
type Razorpay struct {
	baseURL string
	keyID   string
	secret  []byte

	hc      *http.Client
	breaker *gobreaker.CircuitBreaker[*Order]
}

func NewRazorpay(cfg RazorpayConfig) *Razorpay {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Razorpay{
		baseURL: cfg.BaseURL,
		keyID:   cfg.KeyID,
		secret:  []byte(cfg.Secret),
		hc:      &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*Order](gobreaker.Settings{
			Name: "razorpay",
		}),
	}
}

func (g *Razorpay) Provider() Provider { return ProviderRazorpay }
func (g *Razorpay) KeyID() string      { return g.keyID }

func (g *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	order, err := g.breaker.Execute(func() (*Order, error) {
		return g.createOrder(ctx, amount, currency, receipt)
	})
	if err != nil {
		monitoring.TrackGatewayRequest("create_order", "error")
		return nil, fmt.Errorf("%w: %v", status.ErrGatewayUnavailable, err)
	}

	monitoring.TrackGatewayRequest("create_order", "ok")
	return order, nil
}

func (g *Razorpay) createOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	body, err := json.Marshal(map[string]any{
		"amount":          amount,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, string(g.secret))

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("orders api returned %d: %s", resp.StatusCode, payload)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	return &order, nil
}

func (g *Razorpay) VerifySignature(orderID, paymentID, signature string) error {
	return verifyHMAC(g.secret, orderID, paymentID, signature)
}

// verifyHMAC recomputes the expected callback signature and compares in
// constant time.
func verifyHMAC(secret []byte, orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return status.ErrSignatureMismatch
	}
	return nil
}
