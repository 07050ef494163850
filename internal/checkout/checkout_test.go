package checkout_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/vitrine/internal/billing"
	"github.com/dstrand/vitrine/internal/checkout"
	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
)

const testSession = "sess_test"

func newFlow(client *commerce.MockClient, provider *billing.MockProvider) (*checkout.Flow, *checkout.MemoryStore) {
	store := checkout.NewMemoryStore()
	flow := checkout.NewFlow(checkout.FlowConfig{
		Commerce: client,
		Billing:  provider,
		Store:    store,
	})
	return flow, store
}

func validShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		Name:    "Ada Lovelace",
		Phone:   "+1555000111",
		Email:   "ada@example.com",
		Address: "12 Analytical Way",
	}
}

func TestApplyCoupon_EmptyCodeRejectedLocally(t *testing.T) {
	client := commerce.NewMockClient()
	flow, _ := newFlow(client, billing.NewMockProvider())

	for _, code := range []string{"", "   ", "\t"} {
		_, err := flow.ApplyCoupon(context.Background(), testSession, code)
		require.Error(t, err)
		assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	}

	// No network call for locally rejected codes.
	assert.Equal(t, 0, client.Calls("ApplyCoupon"))
}

func TestApplyCoupon_ServerMessageVerbatim(t *testing.T) {
	client := commerce.NewMockClient()
	client.ApplyCouponFunc = func(ctx context.Context, session, code string) (*commerce.CouponResult, error) {
		return nil, &commerce.APIError{StatusCode: 422, Message: "Coupon expired on 2026-01-01"}
	}
	flow, _ := newFlow(client, billing.NewMockProvider())

	_, err := flow.ApplyCoupon(context.Background(), testSession, "SUMMER20")
	require.Error(t, err)
	assert.Equal(t, "Coupon expired on 2026-01-01", domain.ErrorMessage(err))
}

func TestApplyCoupon_Accepted(t *testing.T) {
	client := commerce.NewMockClient()
	client.ApplyCouponFunc = func(ctx context.Context, session, code string) (*commerce.CouponResult, error) {
		assert.Equal(t, "SAVE10", code)
		return &commerce.CouponResult{Message: "Coupon applied"}, nil
	}
	flow, _ := newFlow(client, billing.NewMockProvider())

	result, err := flow.ApplyCoupon(context.Background(), testSession, "  SAVE10  ")
	require.NoError(t, err)
	assert.Equal(t, "Coupon applied", result.Message)
}

func TestPlaceOrder_ValidationFailsLocally(t *testing.T) {
	client := commerce.NewMockClient()
	flow, store := newFlow(client, billing.NewMockProvider())

	shipping := validShipping()
	shipping.Email = "not-an-email"

	_, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:      shipping,
		PaymentMethod: domain.PaymentCOD,
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 0, client.Calls("PlaceOrder"))

	// The failed attempt is still persisted for inspection.
	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.CheckoutFailed, sessions[0].State)
	assert.NotEmpty(t, sessions[0].FailureMessage)
}

func TestPlaceOrder_CardWithoutCompleteCardRejected(t *testing.T) {
	client := commerce.NewMockClient()
	flow, _ := newFlow(client, billing.NewMockProvider())

	_, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:      validShipping(),
		PaymentMethod: domain.PaymentCard,
		CardComplete:  false,
	})
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, 0, client.Calls("PlaceOrder"))
}

func TestPlaceOrder_CODSuccess(t *testing.T) {
	client := commerce.NewMockClient()
	provider := billing.NewMockProvider()
	flow, store := newFlow(client, provider)

	result, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:      validShipping(),
		PaymentMethod: domain.PaymentCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutSuccess, result.State)
	assert.Equal(t, "INV-0001", result.InvoiceNo)

	// Cash orders never touch the gateway.
	assert.Empty(t, provider.CallLog)
	assert.Equal(t, 1, client.Calls("ClearCart"))

	session, err := store.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutSuccess, session.State)
}

func TestPlaceOrder_CardSuccess(t *testing.T) {
	client := commerce.NewMockClient()
	provider := billing.NewMockProvider()
	flow, store := newFlow(client, provider)

	result, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:        validShipping(),
		PaymentMethod:   domain.PaymentCard,
		CardComplete:    true,
		PaymentMethodID: "pm_visa",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutSuccess, result.State)
	assert.Equal(t, 1, client.Calls("ConfirmPayment"))
	assert.Equal(t, 1, client.Calls("ClearCart"))

	session, err := store.Get(context.Background(), result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "pi_mock_1", session.PaymentIntentID)
	assert.Equal(t, domain.CheckoutSuccess, session.State)
}

func TestPlaceOrder_CardDeclined(t *testing.T) {
	client := commerce.NewMockClient()
	provider := billing.NewMockProvider()
	provider.ConfirmPaymentFunc = func(ctx context.Context, params billing.ConfirmPaymentParams) (*billing.PaymentIntent, error) {
		return nil, &billing.DeclineError{Code: "card_declined", DeclineCode: "insufficient_funds", Message: "Your card has insufficient funds."}
	}
	flow, store := newFlow(client, provider)

	result, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:        validShipping(),
		PaymentMethod:   domain.PaymentCard,
		CardComplete:    true,
		PaymentMethodID: "pm_visa",
	})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
	assert.Equal(t, "Your card has insufficient funds.", domain.ErrorMessage(err))

	// A declined charge never confirms the order or clears the cart.
	assert.Equal(t, 0, client.Calls("ConfirmPayment"))
	assert.Equal(t, 0, client.Calls("ClearCart"))

	sessions := allSessions(t, store)
	require.Len(t, sessions, 1)
	assert.Equal(t, domain.CheckoutFailed, sessions[0].State)
	assert.Equal(t, "Your card has insufficient funds.", sessions[0].FailureMessage)
}

func TestPlaceOrder_SoftSuccessWhenConfirmFails(t *testing.T) {
	client := commerce.NewMockClient()
	client.ConfirmPaymentFunc = func(ctx context.Context, session, paymentIntentID string) (*commerce.ConfirmPaymentResult, error) {
		return nil, &commerce.APIError{StatusCode: 500, Message: "internal error"}
	}
	provider := billing.NewMockProvider()
	flow, store := newFlow(client, provider)

	result, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:        validShipping(),
		PaymentMethod:   domain.PaymentCard,
		CardComplete:    true,
		PaymentMethodID: "pm_visa",
	})

	// The charge landed, so this is never surfaced as an error.
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutCapturedPending, result.State)
	assert.Contains(t, result.Message, "processing")
	assert.NotContains(t, result.Message, "error")
	assert.Equal(t, "INV-0001", result.InvoiceNo)

	session, getErr := store.Get(context.Background(), result.SessionID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.CheckoutCapturedPending, session.State)
	assert.True(t, session.State.Terminal())
}

func TestPlaceOrder_UpstreamPlacementFailure(t *testing.T) {
	client := commerce.NewMockClient()
	client.PlaceOrderFunc = func(ctx context.Context, session string, params commerce.PlaceOrderParams) (*commerce.PlaceOrderResult, error) {
		return nil, &commerce.APIError{StatusCode: 409, Message: "Some items are out of stock"}
	}
	provider := billing.NewMockProvider()
	flow, _ := newFlow(client, provider)

	_, err := flow.PlaceOrder(context.Background(), testSession, checkout.PlaceOrderParams{
		Shipping:        validShipping(),
		PaymentMethod:   domain.PaymentCard,
		CardComplete:    true,
		PaymentMethodID: "pm_visa",
	})
	require.Error(t, err)
	assert.Equal(t, "Some items are out of stock", domain.ErrorMessage(err))

	// Nothing was charged.
	assert.Empty(t, provider.CallLog)
}

func TestResume_CapturedChargeIsNeverReConfirmed(t *testing.T) {
	client := commerce.NewMockClient()
	provider := billing.NewMockProvider()
	provider.PaymentIntents["pi_mock_1"] = &billing.PaymentIntent{
		ID:     "pi_mock_1",
		Status: "succeeded",
	}
	flow, store := newFlow(client, provider)

	// A session interrupted after the gateway charge went through.
	session := &checkout.Session{
		ID:              "cs_interrupted",
		CartSession:     testSession,
		State:           domain.CheckoutConfirming,
		PaymentMethod:   domain.PaymentCard,
		OrderID:         "ord_1",
		InvoiceNo:       "INV-0001",
		PaymentIntentID: "pi_mock_1",
		ClientSecret:    "pi_mock_1_secret",
	}
	require.NoError(t, store.Save(context.Background(), session))

	result, err := flow.Resume(context.Background(), "cs_interrupted")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutSuccess, result.State)
	assert.Equal(t, "INV-0001", result.InvoiceNo)

	// Resume queries the intent; it never confirms a second charge.
	assert.Contains(t, provider.CallLog, "GetPaymentIntent(pi_mock_1)")
	for _, call := range provider.CallLog {
		assert.NotContains(t, call, "ConfirmPayment")
	}
}

func TestResume_IncompletePaymentFails(t *testing.T) {
	client := commerce.NewMockClient()
	provider := billing.NewMockProvider()
	provider.PaymentIntents["pi_mock_1"] = &billing.PaymentIntent{
		ID:     "pi_mock_1",
		Status: "requires_payment_method",
	}
	flow, store := newFlow(client, provider)

	session := &checkout.Session{
		ID:              "cs_interrupted",
		CartSession:     testSession,
		State:           domain.CheckoutConfirming,
		PaymentMethod:   domain.PaymentCard,
		PaymentIntentID: "pi_mock_1",
	}
	require.NoError(t, store.Save(context.Background(), session))

	result, err := flow.Resume(context.Background(), "cs_interrupted")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutFailed, result.State)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, 0, client.Calls("ConfirmPayment"))
}

func TestResume_TerminalStatesReturnedAsIs(t *testing.T) {
	flow, store := newFlow(commerce.NewMockClient(), billing.NewMockProvider())

	session := &checkout.Session{
		ID:             "cs_done",
		CartSession:    testSession,
		State:          domain.CheckoutCapturedPending,
		PaymentMethod:  domain.PaymentCard,
		OrderID:        "ord_9",
		InvoiceNo:      "INV-0009",
		FailureMessage: "",
	}
	require.NoError(t, store.Save(context.Background(), session))

	result, err := flow.Resume(context.Background(), "cs_done")
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutCapturedPending, result.State)
	assert.Contains(t, result.Message, "processing")
}

func TestResume_UnknownSession(t *testing.T) {
	flow, _ := newFlow(commerce.NewMockClient(), billing.NewMockProvider())

	_, err := flow.Resume(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
}

// allSessions drains the memory store. Test helper only: sessions get
// random IDs, so failed-attempt assertions need to scan.
func allSessions(t *testing.T, store *checkout.MemoryStore) []*checkout.Session {
	t.Helper()
	return store.All()
}
