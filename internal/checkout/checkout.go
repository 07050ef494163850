// Package checkout drives order placement as a persisted state machine:
// idle -> validating -> placing_order -> stripe_confirming -> success or
// failed. Every transition is saved before the next network call so an
// interrupted checkout can be resumed by session ID instead of charging
// the customer twice.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dstrand/vitrine/internal/billing"
	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/telemetry"
)

const (
	// declineFallback is shown when the gateway error carries no
	// customer-safe message.
	declineFallback = "Your payment could not be processed. Please try a different payment method."

	// pendingMessage is shown on a soft success: the charge went through but
	// the order confirmation call failed. Never worded as an error.
	pendingMessage = "Your payment was received and your order is processing. Check your order history for updates."

	couponFallback = "Could not apply coupon. Please try again."
)

// PlaceOrderParams is one checkout attempt.
type PlaceOrderParams struct {
	Shipping      domain.ShippingDetails
	PaymentMethod domain.PaymentMethod
	CouponCode    string

	// CardComplete reports whether the card element collected a complete
	// card. Checked locally before any network call.
	CardComplete bool

	// PaymentMethodID is the tokenized card, required for card payment.
	PaymentMethodID string
}

// Result is the outcome of a checkout attempt, terminal or pending.
type Result struct {
	SessionID string
	State     domain.CheckoutState
	OrderID   string
	InvoiceNo string

	// Message is customer-facing: the decline reason on failure, or the
	// order-processing notice on a soft success.
	Message string
}

// Flow orchestrates checkout against the commerce API and the payment
// gateway, persisting each step through a Store.
type Flow struct {
	commerce commerce.Client
	billing  billing.Provider
	store    Store
	validate *validator.Validate
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
}

// FlowConfig wires a Flow. Metrics may be nil.
type FlowConfig struct {
	Commerce commerce.Client
	Billing  billing.Provider
	Store    Store
	Logger   *slog.Logger
	Metrics  *telemetry.BusinessMetrics
}

func NewFlow(cfg FlowConfig) *Flow {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	return &Flow{
		commerce: cfg.Commerce,
		billing:  cfg.Billing,
		store:    store,
		validate: validator.New(),
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// ApplyCoupon applies a coupon code to the cart. An empty code is rejected
// locally without a network call. Server rejections surface the server's
// message verbatim.
func (f *Flow) ApplyCoupon(ctx context.Context, cartSession, code string) (*commerce.CouponResult, error) {
	const op = "checkout.ApplyCoupon"

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.Invalid(op, "Please enter a coupon code")
	}

	result, err := f.commerce.ApplyCoupon(ctx, cartSession, code)
	if err != nil {
		if f.metrics != nil {
			f.metrics.CouponRejected.Inc()
		}
		return nil, domain.Errorf(domain.EINVALID, op, "%s", commerce.ServerMessage(err, couponFallback))
	}

	if f.metrics != nil {
		f.metrics.CouponApplied.Inc()
	}
	return result, nil
}

// PlaceOrder runs the full checkout state machine for one attempt.
//
// Failures before the gateway charge return the failed state with a
// customer-facing message. A gateway success followed by a failed order
// confirmation is a soft success: the customer is told the order is
// processing, the charge is never retried, and reconciliation happens out
// of band against the persisted session.
func (f *Flow) PlaceOrder(ctx context.Context, cartSession string, params PlaceOrderParams) (*Result, error) {
	const op = "checkout.PlaceOrder"

	session := &Session{
		ID:            uuid.New().String(),
		CartSession:   cartSession,
		State:         domain.CheckoutValidating,
		PaymentMethod: params.PaymentMethod,
	}
	if err := f.store.Save(ctx, session); err != nil {
		return nil, domain.Internal(err, op, "could not start checkout")
	}
	if f.metrics != nil {
		f.metrics.CheckoutStarted.Inc()
	}

	if err := f.validateParams(params); err != nil {
		f.fail(ctx, session, domain.ErrorMessage(err))
		return nil, err
	}

	// Create the pending order upstream.
	session.State = domain.CheckoutPlacing
	if err := f.store.Save(ctx, session); err != nil {
		return nil, domain.Internal(err, op, "could not persist checkout state")
	}

	placed, err := f.commerce.PlaceOrder(ctx, cartSession, commerce.PlaceOrderParams{
		Shipping:      params.Shipping,
		PaymentMethod: params.PaymentMethod,
		CouponCode:    strings.TrimSpace(params.CouponCode),
	})
	if err != nil {
		msg := commerce.ServerMessage(err, "Could not place your order. Please try again.")
		f.fail(ctx, session, msg)
		f.logger.Error("order placement failed",
			"checkout_session", session.ID,
			"error", err,
		)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{
			"checkout_session": session.ID,
			"stage":            string(domain.CheckoutPlacing),
		})
		return nil, domain.Errorf(domain.EINVALID, op, "%s", msg)
	}

	session.OrderID = placed.OrderID
	session.InvoiceNo = placed.InvoiceNo
	session.PaymentIntentID = placed.PaymentIntentID
	session.ClientSecret = placed.ClientSecret

	if params.PaymentMethod == domain.PaymentCOD {
		return f.succeed(ctx, session)
	}
	return f.confirmCard(ctx, session, params.PaymentMethodID)
}

// confirmCard runs the gateway confirmation leg for a placed card order.
// Shared by PlaceOrder and Resume.
func (f *Flow) confirmCard(ctx context.Context, session *Session, paymentMethodID string) (*Result, error) {
	const op = "checkout.confirmCard"

	session.State = domain.CheckoutConfirming
	if err := f.store.Save(ctx, session); err != nil {
		return nil, domain.Internal(err, op, "could not persist checkout state")
	}

	if f.metrics != nil {
		f.metrics.PaymentAttempts.WithLabelValues(string(session.PaymentMethod)).Inc()
	}

	intent, err := f.billing.ConfirmPayment(ctx, billing.ConfirmPaymentParams{
		PaymentIntentID: session.PaymentIntentID,
		ClientSecret:    session.ClientSecret,
		PaymentMethodID: paymentMethodID,
		IdempotencyKey:  session.ID,
	})
	if err != nil {
		msg := billing.DeclineMessage(err, declineFallback)
		f.fail(ctx, session, msg)
		if f.metrics != nil {
			f.metrics.PaymentFailed.WithLabelValues(string(session.PaymentMethod), "declined").Inc()
		}
		f.logger.Warn("payment confirmation declined",
			"checkout_session", session.ID,
			"invoice_no", session.InvoiceNo,
			"error", err,
		)
		return nil, domain.PaymentFailed(err, op, msg)
	}
	if !intent.Succeeded() {
		msg := declineFallback
		f.fail(ctx, session, msg)
		if f.metrics != nil {
			f.metrics.PaymentFailed.WithLabelValues(string(session.PaymentMethod), intent.Status).Inc()
		}
		return nil, domain.Errorf(domain.EPAYMENT, op, "%s", msg)
	}

	if f.metrics != nil {
		f.metrics.PaymentSucceeded.WithLabelValues(string(session.PaymentMethod)).Inc()
	}

	// The money has moved. From here on, any upstream failure is a soft
	// success: tell the customer the order is processing, never an error,
	// and never re-trigger the charge.
	if _, err := f.commerce.ConfirmPayment(ctx, session.CartSession, intent.ID); err != nil {
		session.State = domain.CheckoutCapturedPending
		session.FailureMessage = ""
		if saveErr := f.store.Save(ctx, session); saveErr != nil {
			f.logger.Error("could not persist captured-pending state",
				"checkout_session", session.ID,
				"error", saveErr,
			)
		}
		if f.metrics != nil {
			f.metrics.PaymentPending.Inc()
		}
		f.logger.Error("payment captured but order confirmation failed",
			"checkout_session", session.ID,
			"invoice_no", session.InvoiceNo,
			"payment_intent", intent.ID,
			"error", err,
		)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{
			"checkout_session": session.ID,
			"invoice_no":       session.InvoiceNo,
			"payment_intent":   intent.ID,
		})

		// Best effort. The charge succeeded, so a stale cart is the lesser
		// problem.
		if clearErr := f.commerce.ClearCart(ctx, session.CartSession); clearErr != nil {
			f.logger.Warn("cart clear failed after captured payment",
				"checkout_session", session.ID,
				"error", clearErr,
			)
		}

		return &Result{
			SessionID: session.ID,
			State:     domain.CheckoutCapturedPending,
			OrderID:   session.OrderID,
			InvoiceNo: session.InvoiceNo,
			Message:   pendingMessage,
		}, nil
	}

	return f.succeed(ctx, session)
}

// Resume picks up a persisted checkout session after an interruption. For a
// session stuck in stripe_confirming it queries the gateway for the intent's
// current state instead of confirming again, so the customer is never
// re-charged.
func (f *Flow) Resume(ctx context.Context, sessionID string) (*Result, error) {
	const op = "checkout.Resume"

	session, err := f.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrCheckoutSessionNotFound) {
			return nil, domain.NotFound(op, "checkout session", sessionID)
		}
		return nil, domain.Internal(err, op, "could not load checkout session")
	}
	if f.metrics != nil {
		f.metrics.CheckoutResumed.Inc()
	}

	switch session.State {
	case domain.CheckoutSuccess:
		return &Result{
			SessionID: session.ID,
			State:     session.State,
			OrderID:   session.OrderID,
			InvoiceNo: session.InvoiceNo,
		}, nil
	case domain.CheckoutFailed:
		return &Result{
			SessionID: session.ID,
			State:     session.State,
			OrderID:   session.OrderID,
			InvoiceNo: session.InvoiceNo,
			Message:   session.FailureMessage,
		}, nil
	case domain.CheckoutCapturedPending:
		return &Result{
			SessionID: session.ID,
			State:     session.State,
			OrderID:   session.OrderID,
			InvoiceNo: session.InvoiceNo,
			Message:   pendingMessage,
		}, nil
	}

	// Interrupted mid-flight. Without a payment intent no charge can exist,
	// so the attempt is safely failed.
	if session.PaymentIntentID == "" {
		f.fail(ctx, session, "Checkout was interrupted before payment. Please try again.")
		return &Result{
			SessionID: session.ID,
			State:     domain.CheckoutFailed,
			Message:   session.FailureMessage,
		}, nil
	}

	intent, err := f.billing.GetPaymentIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, domain.Upstream(err, op, "could not query payment state")
	}

	if intent.Succeeded() {
		// The charge landed before the interruption; only the order
		// confirmation might be missing.
		if _, err := f.commerce.ConfirmPayment(ctx, session.CartSession, intent.ID); err != nil {
			session.State = domain.CheckoutCapturedPending
			if saveErr := f.store.Save(ctx, session); saveErr != nil {
				f.logger.Error("could not persist captured-pending state",
					"checkout_session", session.ID,
					"error", saveErr,
				)
			}
			return &Result{
				SessionID: session.ID,
				State:     domain.CheckoutCapturedPending,
				OrderID:   session.OrderID,
				InvoiceNo: session.InvoiceNo,
				Message:   pendingMessage,
			}, nil
		}
		return f.succeed(ctx, session)
	}

	f.fail(ctx, session, "Your payment was not completed. Please try again.")
	return &Result{
		SessionID: session.ID,
		State:     domain.CheckoutFailed,
		OrderID:   session.OrderID,
		InvoiceNo: session.InvoiceNo,
		Message:   session.FailureMessage,
	}, nil
}

func (f *Flow) validateParams(params PlaceOrderParams) error {
	const op = "checkout.PlaceOrder"

	if err := f.validate.Struct(params.Shipping); err != nil {
		return domain.Invalid(op, "Please fill in all required shipping fields")
	}

	switch params.PaymentMethod {
	case domain.PaymentCOD:
		return nil
	case domain.PaymentCard:
		if !params.CardComplete {
			return domain.Invalid(op, "Please complete your card details")
		}
		if params.PaymentMethodID == "" {
			return domain.Invalid(op, "Please complete your card details")
		}
		return nil
	default:
		return domain.Invalid(op, "Please choose a payment method")
	}
}

// succeed finalizes a checkout: persist the terminal state and clear the
// cart (best effort, the order is already confirmed).
func (f *Flow) succeed(ctx context.Context, session *Session) (*Result, error) {
	session.State = domain.CheckoutSuccess
	session.FailureMessage = ""
	if err := f.store.Save(ctx, session); err != nil {
		f.logger.Error("could not persist checkout success",
			"checkout_session", session.ID,
			"error", err,
		)
	}
	if f.metrics != nil {
		f.metrics.CheckoutCompleted.WithLabelValues(string(session.PaymentMethod)).Inc()
	}

	if err := f.commerce.ClearCart(ctx, session.CartSession); err != nil {
		f.logger.Warn("cart clear failed after successful order",
			"checkout_session", session.ID,
			"error", err,
		)
	}

	f.logger.Info("order placed",
		"checkout_session", session.ID,
		"invoice_no", session.InvoiceNo,
		"payment_method", session.PaymentMethod,
	)

	return &Result{
		SessionID: session.ID,
		State:     domain.CheckoutSuccess,
		OrderID:   session.OrderID,
		InvoiceNo: session.InvoiceNo,
	}, nil
}

func (f *Flow) fail(ctx context.Context, session *Session, message string) {
	stage := string(session.State)
	session.State = domain.CheckoutFailed
	session.FailureMessage = message
	if err := f.store.Save(ctx, session); err != nil {
		f.logger.Error("could not persist checkout failure",
			"checkout_session", session.ID,
			"error", err,
		)
	}
	if f.metrics != nil {
		f.metrics.CheckoutFailed.WithLabelValues(stage).Inc()
	}
}
