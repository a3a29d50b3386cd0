// Package payment defines the swappable payment-gateway capability. The
// real SDK and the development mock both sit behind the same interface,
// so the checkout flow never knows which one it is driving.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/campusdash/orderkit/internal/domain"
)

// ErrCancelled is returned when the user backs out of the gateway UI
var ErrCancelled = errors.New("payment cancelled by user")

// GatewayError is an unrecoverable gateway-side failure (bad key,
// misconfiguration). Callers should offer cash-on-delivery instead.
type GatewayError struct {
	Reason string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway failure: %s", e.Reason)
}

// CheckoutParams is what the gateway needs to collect a payment
type CheckoutParams struct {
	KeyID          string
	GatewayOrderID string
	// Amount is in the gateway's smallest currency unit (paise)
	Amount      int64
	Description string
}

// Gateway opens a checkout for the given order and blocks until the
// user completes, cancels, or the gateway fails
type Gateway interface {
	Open(ctx context.Context, params CheckoutParams) (domain.PaymentConfirmation, error)
}

// Sign computes the confirmation signature the gateway attaches and the
// backend verifies: hex HMAC-SHA256 of "orderID|paymentID"
func Sign(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
