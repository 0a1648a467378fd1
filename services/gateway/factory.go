package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Config selects and parameterizes a gateway implementation. Secrets
// arrive here from process configuration, never from source.
type Config struct {
	Provider Provider
	BaseURL  string
	KeyID    string
	Secret   string
	Timeout  time.Duration
}

// New creates the gateway for the configured provider.
func New(cfg Config) (Gateway, error) {
	switch cfg.Provider {
	case ProviderRazorpay:
		if cfg.KeyID == "" || cfg.Secret == "" {
			return nil, fmt.Errorf("razorpay gateway requires key id and secret")
		}
		return NewRazorpay(RazorpayConfig{
			BaseURL: cfg.BaseURL,
			KeyID:   cfg.KeyID,
			Secret:  cfg.Secret,
			Timeout: cfg.Timeout,
		}), nil

	case ProviderSandbox:
		return NewSandbox(cfg.Secret), nil

	default:
		return nil, fmt.Errorf("unsupported gateway provider: %s", cfg.Provider)
	}
}

// SignPayload computes the callback signature for an order/payment pair.
// Exposed for the sandbox and for tests that fabricate payment proofs.
func SignPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
