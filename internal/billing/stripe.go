package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

// StripeConfig configures the Stripe provider.
type StripeConfig struct {
	// APIKey is the secret key (sk_test_... or sk_live_...).
	APIKey string

	// WebhookSecret verifies webhook payload signatures.
	WebhookSecret string
}

// IsTestMode reports whether the configured key is a test-mode key.
func (c StripeConfig) IsTestMode() bool {
	return len(c.APIKey) >= 8 && c.APIKey[:8] == "sk_test_"
}

// StripeProvider implements Provider using the Stripe API.
type StripeProvider struct {
	config StripeConfig
}

// NewStripeProvider creates a new Stripe billing provider.
func NewStripeProvider(config StripeConfig) (*StripeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("stripe: API key is required")
	}

	stripe.Key = config.APIKey
	return &StripeProvider{config: config}, nil
}

// ConfirmPayment confirms the payment intent with the tokenized method.
func (s *StripeProvider) ConfirmPayment(ctx context.Context, params ConfirmPaymentParams) (*PaymentIntent, error) {
	intentID := params.PaymentIntentID
	if intentID == "" {
		intentID = IntentIDFromClientSecret(params.ClientSecret)
	}
	if intentID == "" {
		return nil, fmt.Errorf("stripe: payment intent ID or client secret required")
	}

	confirmParams := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(params.PaymentMethodID),
	}
	confirmParams.Context = ctx
	if params.IdempotencyKey != "" {
		confirmParams.SetIdempotencyKey(params.IdempotencyKey)
	}

	pi, err := paymentintent.Confirm(intentID, confirmParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return fromStripeIntent(pi), nil
}

// GetPaymentIntent retrieves the current state of a payment intent.
func (s *StripeProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	getParams := &stripe.PaymentIntentParams{}
	getParams.Context = ctx

	pi, err := paymentintent.Get(paymentIntentID, getParams)
	if err != nil {
		return nil, wrapStripeError(err)
	}

	return fromStripeIntent(pi), nil
}

// VerifyWebhookSignature verifies a Stripe webhook signature.
func (s *StripeProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	if _, err := webhook.ConstructEvent(payload, signature, secret); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return nil
}

// fromStripeIntent converts the SDK type to the provider type.
func fromStripeIntent(pi *stripe.PaymentIntent) *PaymentIntent {
	out := &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
	}
	if pi.Created > 0 {
		out.CreatedAt = time.Unix(pi.Created, 0).UTC()
	}
	return out
}

// wrapStripeError maps SDK errors onto the provider error taxonomy.
func wrapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}

	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return &DeclineError{
			Code:        string(stripeErr.Code),
			DeclineCode: string(stripeErr.DeclineCode),
			Message:     stripeErr.Msg,
		}
	case stripe.ErrorTypeInvalidRequest:
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return fmt.Errorf("%w: %s", ErrIntentNotFound, stripeErr.Msg)
		}
	}
	return fmt.Errorf("stripe: %s: %s", stripeErr.Type, stripeErr.Msg)
}

var _ Provider = (*StripeProvider)(nil)
