package domain

import "errors"

// ErrCheckoutSessionNotFound is returned when a checkout session ID does
// not resolve to a persisted session.
var ErrCheckoutSessionNotFound = errors.New("checkout session not found")

// PaymentMethod selects how an order is paid at checkout.
type PaymentMethod string

const (
	PaymentCOD  PaymentMethod = "cod"
	PaymentCard PaymentMethod = "card"
)

// ShippingDetails is the customer-entered shipping snapshot captured at
// order placement. All fields are required before the checkout flow will
// touch the network.
type ShippingDetails struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Address string `json:"address" validate:"required"`
	Notes   string `json:"notes,omitempty"`
}

// CheckoutState is the position of a checkout session in the placement
// state machine.
type CheckoutState string

const (
	CheckoutIdle       CheckoutState = "idle"
	CheckoutValidating CheckoutState = "validating"
	CheckoutPlacing    CheckoutState = "placing_order"
	CheckoutConfirming CheckoutState = "stripe_confirming"

	// CheckoutCapturedPending marks a soft success: the gateway confirmed the
	// charge but our confirm-payment call to the commerce API failed. The
	// customer is told the order is processing; payment is never re-triggered.
	CheckoutCapturedPending CheckoutState = "payment_captured_pending_confirmation"

	CheckoutSuccess CheckoutState = "success"
	CheckoutFailed  CheckoutState = "failed"
)

// Terminal reports whether the state ends a checkout attempt.
// CheckoutCapturedPending is terminal for the customer (they are routed to
// order history) even though reconciliation continues out of band.
func (s CheckoutState) Terminal() bool {
	switch s {
	case CheckoutSuccess, CheckoutFailed, CheckoutCapturedPending:
		return true
	}
	return false
}
