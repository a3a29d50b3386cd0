package domain

// PaymentMethod selects how an order is paid
type PaymentMethod string

const (
	PaymentMethodOnline         PaymentMethod = "online"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodOnline, PaymentMethodCashOnDelivery:
		return true
	default:
		return false
	}
}

// CheckoutState represents where a checkout attempt is in its lifecycle
type CheckoutState string

const (
	CheckoutStateIdle            CheckoutState = "IDLE"
	CheckoutStateBuilding        CheckoutState = "BUILDING"
	CheckoutStateSubmitting      CheckoutState = "SUBMITTING"
	CheckoutStateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	CheckoutStateVerifying       CheckoutState = "VERIFYING"
	CheckoutStateCompleted       CheckoutState = "COMPLETED"
	CheckoutStateFailed          CheckoutState = "FAILED"
)

// CanTransitionTo checks if a state transition is valid
func (s CheckoutState) CanTransitionTo(newState CheckoutState) bool {
	switch s {
	case CheckoutStateIdle:
		return newState == CheckoutStateBuilding
	case CheckoutStateBuilding:
		return newState == CheckoutStateSubmitting ||
			newState == CheckoutStateFailed
	case CheckoutStateSubmitting:
		return newState == CheckoutStateCompleted ||
			newState == CheckoutStateAwaitingPayment ||
			newState == CheckoutStateFailed
	case CheckoutStateAwaitingPayment:
		return newState == CheckoutStateVerifying ||
			newState == CheckoutStateFailed
	case CheckoutStateVerifying:
		return newState == CheckoutStateCompleted ||
			newState == CheckoutStateFailed
	case CheckoutStateCompleted, CheckoutStateFailed:
		// Terminal for the attempt; the flow resets to IDLE afterwards
		return newState == CheckoutStateIdle
	default:
		return false
	}
}

// IsTerminal reports whether the attempt has finished
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateCompleted || s == CheckoutStateFailed
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
