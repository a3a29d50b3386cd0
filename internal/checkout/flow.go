// Package checkout drives a single order-submission attempt: build the
// request from the cart, submit it, and for online payments run the
// gateway hand-off and server-side verification. Every attempt ends in
// a typed outcome and the flow returns to idle.
package checkout

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusdash/orderkit/internal/api"
	"github.com/campusdash/orderkit/internal/cart"
	"github.com/campusdash/orderkit/internal/config"
	"github.com/campusdash/orderkit/internal/domain"
	"github.com/campusdash/orderkit/internal/hash"
	"github.com/campusdash/orderkit/internal/payment"
	apperrors "github.com/campusdash/orderkit/pkg/errors"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// OrdersAPI is the slice of the backend client the flow depends on
type OrdersAPI interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest) (*api.CreateOrderResponse, error)
	VerifyPayment(ctx context.Context, conf domain.PaymentConfirmation) error
	GatewayKey(ctx context.Context) (string, error)
}

// Outcome classifies how a checkout attempt ended
type Outcome string

const (
	OutcomeCompleted         Outcome = "COMPLETED"
	OutcomeRejectedEmptyCart Outcome = "REJECTED_EMPTY_CART"
	OutcomeRejectedStaleMenu Outcome = "REJECTED_STALE_MENU"
	OutcomeRejectedOther     Outcome = "REJECTED_OTHER"
	OutcomePaymentCancelled  Outcome = "PAYMENT_CANCELLED"
	OutcomePaymentFailed     Outcome = "PAYMENT_FAILED"
)

// Params is the user's checkout input
type Params struct {
	DeliveryAddress     string
	PaymentMethod       domain.PaymentMethod
	SpecialInstructions string
}

// Result is the typed outcome of one attempt. The cart-mutation rules
// are: Completed and RejectedStaleMenu clear the cart, everything else
// preserves it.
type Result struct {
	Outcome          Outcome
	OrderID          string
	GatewayPaymentID string
	// Confirmation is retained when verification failed after the
	// gateway reported success, so a caller can re-drive verification
	Confirmation *domain.PaymentConfirmation
	Detail       string
	// TimedOut marks a RejectedOther caused by a network deadline
	TimedOut bool
	// SuggestCashOnDelivery is set on PaymentFailed
	SuggestCashOnDelivery bool
}

// Flow runs checkout attempts against a cart. One attempt at a time;
// a second Checkout while one is in flight is rejected without side
// effects.
type Flow struct {
	cart    *cart.Aggregate
	api     OrdersAPI
	gateway payment.Gateway
	timeout time.Duration
	logger  *zap.Logger

	mu           sync.Mutex
	state        domain.CheckoutState
	onTransition func(domain.CheckoutState)
}

// NewFlow creates a checkout flow
func NewFlow(agg *cart.Aggregate, backend OrdersAPI, gateway payment.Gateway, cfg config.CheckoutConfig, logger *zap.Logger) *Flow {
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Flow{
		cart:    agg,
		api:     backend,
		gateway: gateway,
		timeout: timeout,
		logger:  logger,
		state:   domain.CheckoutStateIdle,
	}
}

// OnTransition registers a hook invoked on every state change, for UI
// re-render. Called outside the flow lock.
func (f *Flow) OnTransition(fn func(domain.CheckoutState)) {
	f.mu.Lock()
	f.onTransition = fn
	f.mu.Unlock()
}

// State returns the current checkout state
func (f *Flow) State() domain.CheckoutState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Checkout runs one attempt end to end. It never retries on its own:
// a stale-menu rejection clears the cart and hands control back, and
// every other failure preserves the cart for the caller to retry.
func (f *Flow) Checkout(ctx context.Context, params Params) *Result {
	if !params.PaymentMethod.IsValid() {
		return &Result{Outcome: OutcomeRejectedOther, Detail: "invalid payment method"}
	}

	if err := f.transition(domain.CheckoutStateBuilding); err != nil {
		return &Result{Outcome: OutcomeRejectedOther, Detail: "checkout already in progress"}
	}
	defer f.reset()

	req, err := f.build(params)
	if err != nil {
		f.fail()
		return &Result{Outcome: OutcomeRejectedEmptyCart, Detail: err.Error()}
	}

	f.mustTransition(domain.CheckoutStateSubmitting)
	resp, err := f.createOrder(ctx, *req)
	if err != nil {
		var menuErr *apperrors.MenuChangedError
		if errors.As(err, &menuErr) {
			// The one failure that mutates the cart: a stale cart
			// must never be silently resubmitted
			f.cart.Clear()
			f.fail()
			f.logger.Info("order rejected: menu changed",
				zap.Strings("item_ids", menuErr.ItemIDs))
			return &Result{Outcome: OutcomeRejectedStaleMenu, Detail: menuErr.Error()}
		}
		f.fail()
		return &Result{
			Outcome:  OutcomeRejectedOther,
			Detail:   err.Error(),
			TimedOut: isTimeout(err),
		}
	}
	orderID := resp.Order.ID

	if params.PaymentMethod == domain.PaymentMethodCashOnDelivery {
		f.cart.Clear()
		f.mustTransition(domain.CheckoutStateCompleted)
		f.logger.Info("order placed", zap.String("order_id", orderID),
			zap.String("payment_method", string(params.PaymentMethod)))
		return &Result{Outcome: OutcomeCompleted, OrderID: orderID}
	}

	if resp.RazorpayOrder == nil || resp.RazorpayOrder.ID == "" {
		f.fail()
		return &Result{
			Outcome: OutcomeRejectedOther,
			OrderID: orderID,
			Detail:  "backend did not return a gateway order for online payment",
		}
	}

	f.mustTransition(domain.CheckoutStateAwaitingPayment)
	conf, payResult := f.collectPayment(ctx, orderID, *resp.RazorpayOrder)
	if payResult != nil {
		f.fail()
		return payResult
	}

	f.mustTransition(domain.CheckoutStateVerifying)
	if err := f.verifyPayment(ctx, conf); err != nil {
		// Payment may have succeeded at the gateway; keep the cart and
		// the confirmation so verification can be re-driven
		f.fail()
		return &Result{
			Outcome:      OutcomeRejectedOther,
			OrderID:      orderID,
			Confirmation: &conf,
			Detail:       err.Error(),
			TimedOut:     isTimeout(err),
		}
	}

	f.cart.Clear()
	f.mustTransition(domain.CheckoutStateCompleted)
	f.logger.Info("order placed", zap.String("order_id", orderID),
		zap.String("payment_method", string(params.PaymentMethod)))
	return &Result{
		Outcome:          OutcomeCompleted,
		OrderID:          orderID,
		GatewayPaymentID: conf.GatewayPaymentID,
	}
}

// build snapshots the cart and assembles the order request, re-hashing
// every item from its current snapshot fields
func (f *Flow) build(params Params) (*domain.OrderRequest, error) {
	items := f.cart.Items()
	restaurant, ok := f.cart.Restaurant()
	if len(items) == 0 || !ok {
		return nil, ErrEmptyCart
	}

	requestItems := make([]domain.OrderRequestItem, 0, len(items))
	for _, item := range items {
		requestItems = append(requestItems, domain.OrderRequestItem{
			ItemID:      item.ItemID,
			Quantity:    item.Quantity,
			VersionHash: hash.Sum(hash.SnapshotOf(item)),
			IsScheduled: item.IsScheduled,
		})
	}

	return &domain.OrderRequest{
		Items:               requestItems,
		VendorID:            restaurant.ID,
		DeliveryAddress:     params.DeliveryAddress,
		PaymentMethod:       params.PaymentMethod,
		SpecialInstructions: strings.TrimSpace(params.SpecialInstructions),
		ClientReference:     uuid.NewString(),
	}, nil
}

func (f *Flow) createOrder(ctx context.Context, req domain.OrderRequest) (*api.CreateOrderResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.api.CreateOrder(callCtx, req)
}

// collectPayment fetches the gateway key and opens the gateway. A nil
// second return means payment completed; otherwise it is the final
// result for this attempt.
func (f *Flow) collectPayment(ctx context.Context, orderID string, gatewayOrder domain.GatewayOrder) (domain.PaymentConfirmation, *Result) {
	keyCtx, cancel := context.WithTimeout(ctx, f.timeout)
	keyID, err := f.api.GatewayKey(keyCtx)
	cancel()
	if err != nil {
		return domain.PaymentConfirmation{}, &Result{
			Outcome:  OutcomeRejectedOther,
			OrderID:  orderID,
			Detail:   err.Error(),
			TimedOut: isTimeout(err),
		}
	}

	conf, err := f.gateway.Open(ctx, payment.CheckoutParams{
		KeyID:          keyID,
		GatewayOrderID: gatewayOrder.ID,
		Amount:         gatewayOrder.Amount,
		Description:    "order " + orderID,
	})
	if errors.Is(err, payment.ErrCancelled) {
		f.logger.Info("payment cancelled by user", zap.String("order_id", orderID))
		return domain.PaymentConfirmation{}, &Result{
			Outcome: OutcomePaymentCancelled,
			OrderID: orderID,
		}
	}
	if err != nil {
		f.logger.Warn("payment gateway failure", zap.String("order_id", orderID), zap.Error(err))
		return domain.PaymentConfirmation{}, &Result{
			Outcome:               OutcomePaymentFailed,
			OrderID:               orderID,
			Detail:                err.Error(),
			SuggestCashOnDelivery: true,
		}
	}
	if !conf.IsComplete() {
		return domain.PaymentConfirmation{}, &Result{
			Outcome:               OutcomePaymentFailed,
			OrderID:               orderID,
			Detail:                "gateway returned an incomplete confirmation",
			SuggestCashOnDelivery: true,
		}
	}
	return conf, nil
}

func (f *Flow) verifyPayment(ctx context.Context, conf domain.PaymentConfirmation) error {
	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return f.api.VerifyPayment(callCtx, conf)
}

// transition moves to the next state if legal
func (f *Flow) transition(next domain.CheckoutState) error {
	f.mu.Lock()
	if !f.state.CanTransitionTo(next) {
		from := f.state
		f.mu.Unlock()
		return &apperrors.ErrInvalidStateTransition{From: from.String(), To: next.String()}
	}
	f.state = next
	hook := f.onTransition
	f.mu.Unlock()

	if hook != nil {
		hook(next)
	}
	return nil
}

// mustTransition is for transitions that are legal by construction
func (f *Flow) mustTransition(next domain.CheckoutState) {
	if err := f.transition(next); err != nil {
		f.logger.Error("illegal checkout transition", zap.Error(err))
	}
}

func (f *Flow) fail() {
	f.mustTransition(domain.CheckoutStateFailed)
}

// reset returns the flow to idle after every attempt
func (f *Flow) reset() {
	f.mustTransition(domain.CheckoutStateIdle)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
