package billing

import (
	"context"
	"fmt"
	"time"
)

// MockProvider is a mock payment gateway for tests. Simulates confirmation
// flows without calling Stripe.
type MockProvider struct {
	// ConfirmPaymentFunc allows customizing confirmation behavior.
	ConfirmPaymentFunc func(ctx context.Context, params ConfirmPaymentParams) (*PaymentIntent, error)

	// GetPaymentIntentFunc allows customizing retrieval behavior.
	GetPaymentIntentFunc func(ctx context.Context, paymentIntentID string) (*PaymentIntent, error)

	// VerifyWebhookSignatureFunc allows customizing verification behavior.
	VerifyWebhookSignatureFunc func(payload []byte, signature string, secret string) error

	// PaymentIntents stores confirmed intents for retrieval.
	PaymentIntents map[string]*PaymentIntent

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockProvider creates a new mock payment gateway.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		PaymentIntents: make(map[string]*PaymentIntent),
	}
}

// ConfirmPayment confirms a mock payment intent. Default behavior: the
// charge succeeds.
func (m *MockProvider) ConfirmPayment(ctx context.Context, params ConfirmPaymentParams) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ConfirmPayment(%s, %s)", params.PaymentIntentID, params.PaymentMethodID))

	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, params)
	}

	intentID := params.PaymentIntentID
	if intentID == "" {
		intentID = IntentIDFromClientSecret(params.ClientSecret)
	}

	pi := &PaymentIntent{
		ID:           intentID,
		ClientSecret: params.ClientSecret,
		Status:       "succeeded",
		CreatedAt:    time.Now(),
	}
	m.PaymentIntents[pi.ID] = pi
	return pi, nil
}

// GetPaymentIntent retrieves a stored mock intent.
func (m *MockProvider) GetPaymentIntent(ctx context.Context, paymentIntentID string) (*PaymentIntent, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("GetPaymentIntent(%s)", paymentIntentID))

	if m.GetPaymentIntentFunc != nil {
		return m.GetPaymentIntentFunc(ctx, paymentIntentID)
	}

	pi, ok := m.PaymentIntents[paymentIntentID]
	if !ok {
		return nil, ErrIntentNotFound
	}
	return pi, nil
}

// VerifyWebhookSignature verifies a mock webhook signature. Default
// behavior: any non-empty signature passes.
func (m *MockProvider) VerifyWebhookSignature(payload []byte, signature string, secret string) error {
	m.CallLog = append(m.CallLog, "VerifyWebhookSignature()")

	if m.VerifyWebhookSignatureFunc != nil {
		return m.VerifyWebhookSignatureFunc(payload, signature, secret)
	}
	if signature == "" {
		return ErrInvalidSignature
	}
	return nil
}

var _ Provider = (*MockProvider)(nil)
