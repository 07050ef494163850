// Package billing abstracts the payment gateway. The storefront only ever
// confirms payments the commerce API has already initiated: order placement
// returns a payment-intent client secret, and the gateway charge is
// confirmed against it with the customer's tokenized payment method.
package billing

import (
	"context"
	"strings"
	"time"
)

// Provider defines the interface for payment gateway operations.
type Provider interface {
	// ConfirmPayment confirms a payment intent with a tokenized payment
	// method. Returns the resulting intent state; a declined card is an
	// error, not a status.
	ConfirmPayment(ctx context.Context, params ConfirmPaymentParams) (*PaymentIntent, error)

	// GetPaymentIntent retrieves the current state of a payment intent.
	// Used to resume an interrupted checkout without re-charging.
	GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// VerifyWebhookSignature verifies that a gateway webhook is authentic.
	VerifyWebhookSignature(payload []byte, signature string, secret string) error
}

// ConfirmPaymentParams identifies the intent to confirm and the method to
// charge.
type ConfirmPaymentParams struct {
	// PaymentIntentID is the gateway intent ID (pi_...). May be empty when
	// ClientSecret is set; the ID is then derived from the secret.
	PaymentIntentID string

	// ClientSecret is the confirmation secret returned at order placement.
	ClientSecret string

	// PaymentMethodID is the tokenized card (pm_...) captured client-side.
	PaymentMethodID string

	// IdempotencyKey prevents duplicate confirmation charges. Typically the
	// checkout session ID.
	IdempotencyKey string
}

// PaymentIntent is the gateway's view of a payment.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	Currency     string

	// Status: requires_payment_method, requires_confirmation, processing,
	// succeeded, canceled.
	Status string

	CreatedAt time.Time
}

// Succeeded reports whether the gateway has confirmed the charge.
func (pi *PaymentIntent) Succeeded() bool {
	return pi != nil && pi.Status == "succeeded"
}

// IntentIDFromClientSecret derives the payment intent ID from a client
// secret of the form "pi_..._secret_...". Returns the input unchanged when
// it does not look like a client secret.
func IntentIDFromClientSecret(secret string) string {
	if i := strings.Index(secret, "_secret"); i > 0 {
		return secret[:i]
	}
	return secret
}
