package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusdash/orderkit/internal/domain"
)

// MockGateway completes every payment immediately, producing a
// confirmation whose signature verifies against the same secret the
// development backend holds. CancelNext and FailNext script the other
// two outcomes for the following Open call.
type MockGateway struct {
	KeySecret  string
	CancelNext bool
	FailNext   string
}

func (g *MockGateway) Open(ctx context.Context, params CheckoutParams) (domain.PaymentConfirmation, error) {
	if err := ctx.Err(); err != nil {
		return domain.PaymentConfirmation{}, err
	}
	if g.CancelNext {
		g.CancelNext = false
		return domain.PaymentConfirmation{}, ErrCancelled
	}
	if g.FailNext != "" {
		reason := g.FailNext
		g.FailNext = ""
		return domain.PaymentConfirmation{}, &GatewayError{Reason: reason}
	}

	paymentID := "pay_" + uuid.NewString()
	return domain.PaymentConfirmation{
		GatewayOrderID:   params.GatewayOrderID,
		GatewayPaymentID: paymentID,
		GatewaySignature: Sign(g.KeySecret, params.GatewayOrderID, paymentID),
	}, nil
}
