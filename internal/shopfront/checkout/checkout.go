// Package checkout drives a single checkout attempt from cart snapshot to
// submitted order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/vinkj/autoshop/internal/shopfront/api"
	"github.com/vinkj/autoshop/internal/shopfront/cart"
	"github.com/vinkj/autoshop/internal/shopfront/cart/store"
)

var ErrEmptyCart = errors.New("cart is empty")
var ErrNoPaymentMethod = errors.New("no payment method selected")
var ErrNotOpen = errors.New("checkout is not open")
var ErrSubmitInProgress = errors.New("submission already in progress")

// State is the phase of the current checkout attempt.
type State int

const (
	Idle State = iota
	AwaitingPaymentChoice
	ReadyToSubmit
	Submitting
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case AwaitingPaymentChoice:
		return "awaiting payment choice"
	case ReadyToSubmit:
		return "ready to submit"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// PaymentMethod is one of the exactly two supported payment options.
type PaymentMethod string

const (
	PaymentMpesa      PaymentMethod = "M-Pesa"
	PaymentOnDelivery PaymentMethod = "Delivery"
)

// Form carries the customer contact and address fields of the order form.
type Form struct {
	FullName      string `validate:"required,max=255"`
	PhoneNumber   string `validate:"required,max=20"`
	Estate        string `validate:"required,max=100"`
	StreetAddress string `validate:"required,max=255"`
}

// OrderPlacer is the slice of the API client the orchestrator needs.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req api.OrderRequest) (*api.OrderResponse, error)
	InitiateMpesaPayment(ctx context.Context, orderID int64, phoneNumber string) (*api.PaymentResponse, error)
}

// Result reports a completed checkout. PaymentErr is set when the order was
// created but the follow-up payment initiation failed; the order itself is
// still successful and the cart has been cleared.
type Result struct {
	OrderID    int64
	TotalPrice int64
	Message    string
	PaymentErr error
}

// Checkout is the state machine over one checkout attempt. A fresh attempt
// starts with Open; Completed is terminal for the attempt.
type Checkout struct {
	client   OrderPlacer
	cart     *cart.Cart
	validate *validator.Validate
	logger   *slog.Logger

	state    State
	snapshot []store.Item
	total    int64
	method   PaymentMethod
}

// New creates a Checkout bound to the given cart and API client.
func New(client OrderPlacer, c *cart.Cart, logger *slog.Logger) *Checkout {
	return &Checkout{
		client:   client,
		cart:     c,
		validate: validator.New(),
		logger:   logger.With("component", "checkout"),
		state:    Idle,
	}
}

// State returns the phase of the current attempt.
func (co *Checkout) State() State {
	return co.state
}

// Open starts a new attempt: it snapshots the cart and computes the total
// once, so later cart mutations do not affect this attempt. Opening with an
// empty cart is rejected.
func (co *Checkout) Open() error {
	if co.state == Submitting {
		return ErrSubmitInProgress
	}
	items := co.cart.Items()
	if len(items) == 0 {
		return ErrEmptyCart
	}
	co.snapshot = items
	co.total = 0
	for _, item := range items {
		co.total += item.UnitPrice * int64(item.Quantity)
	}
	co.method = ""
	co.state = AwaitingPaymentChoice
	return nil
}

// Snapshot returns the read-only cart copy taken at Open.
func (co *Checkout) Snapshot() []store.Item {
	out := make([]store.Item, len(co.snapshot))
	copy(out, co.snapshot)
	return out
}

// Total returns the total computed at Open.
func (co *Checkout) Total() int64 {
	return co.total
}

// SelectPayment records the chosen payment method.
func (co *Checkout) SelectPayment(method PaymentMethod) error {
	if co.state != AwaitingPaymentChoice && co.state != ReadyToSubmit && co.state != Failed {
		return ErrNotOpen
	}
	if method != PaymentMpesa && method != PaymentOnDelivery {
		return fmt.Errorf("unknown payment method: %s", method)
	}
	co.method = method
	co.state = ReadyToSubmit
	return nil
}

// Submit validates the form, submits the snapshot payload and, for M-Pesa
// orders, issues exactly one payment-initiation call with the returned
// order ID. On success the cart is cleared. On failure the attempt returns
// to ReadyToSubmit and the user must resubmit manually; nothing is retried.
func (co *Checkout) Submit(ctx context.Context, form Form) (*Result, error) {
	switch co.state {
	case ReadyToSubmit:
	case Submitting:
		return nil, ErrSubmitInProgress
	case AwaitingPaymentChoice:
		return nil, ErrNoPaymentMethod
	default:
		return nil, ErrNotOpen
	}
	if co.method == "" {
		return nil, ErrNoPaymentMethod
	}
	if err := co.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("order form is incomplete: %w", err)
	}

	co.state = Submitting

	items := make([]api.OrderItem, 0, len(co.snapshot))
	for _, item := range co.snapshot {
		items = append(items, api.OrderItem{ProductID: item.ID, Quantity: item.Quantity})
	}
	req := api.OrderRequest{
		Items:         items,
		FullName:      form.FullName,
		PhoneNumber:   form.PhoneNumber,
		Estate:        form.Estate,
		StreetAddress: form.StreetAddress,
		PaymentMethod: string(co.method),
	}

	order, err := co.client.CreateOrder(ctx, req)
	if err != nil {
		co.logger.Warn("Order submission failed", "error", err)
		co.state = ReadyToSubmit
		return nil, err
	}

	result := &Result{
		OrderID:    order.OrderID,
		TotalPrice: order.TotalPrice,
		Message:    "Order placed!",
	}
	if co.method == PaymentMpesa {
		payment, payErr := co.client.InitiateMpesaPayment(ctx, order.OrderID, form.PhoneNumber)
		if payErr != nil {
			// The order itself succeeded; report the payment failure
			// separately instead of swallowing it.
			co.logger.Warn("Payment initiation failed after order creation",
				"order_id", order.OrderID, "error", payErr)
			result.PaymentErr = payErr
		} else {
			result.Message = "STK Push sent! Check your phone."
			if payment.CustomerMessage != "" {
				result.Message = payment.CustomerMessage
			}
		}
	}

	co.cart.Clear()
	co.state = Completed
	co.logger.Info("Checkout completed", "order_id", order.OrderID, "total", order.TotalPrice)
	return result, nil
}
