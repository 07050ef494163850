package storefront

import (
	"log/slog"
	"net/http"

	"github.com/dstrand/vitrine/internal/checkout"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/handler"
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/service"
)

// CheckoutHandler drives coupon application and order placement.
type CheckoutHandler struct {
	flow        *checkout.Flow
	cartService service.CartService
	logger      *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(flow *checkout.Flow, cartService service.CartService, logger *slog.Logger) *CheckoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CheckoutHandler{
		flow:        flow,
		cartService: cartService,
		logger:      logger,
	}
}

// ApplyCoupon handles POST /coupon/apply
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var body struct {
		Code string `json:"code"`
	}
	if err := handler.Decode(r, &body); err != nil {
		handler.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.flow.ApplyCoupon(r.Context(), session, body.Code)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, result)
}

type placeOrderRequest struct {
	Shipping        domain.ShippingDetails `json:"shipping"`
	PaymentMethod   string                 `json:"payment_method"`
	CouponCode      string                 `json:"coupon_code"`
	CardComplete    bool                   `json:"card_complete"`
	PaymentMethodID string                 `json:"payment_method_id"`
}

type placeOrderResponse struct {
	SessionID string `json:"checkout_session_id"`
	State     string `json:"state"`
	OrderID   string `json:"order_id,omitempty"`
	InvoiceNo string `json:"invoice_no,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PlaceOrder handles POST /checkout/place-order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var body placeOrderRequest
	if err := handler.Decode(r, &body); err != nil {
		handler.BadRequest(w, "invalid request body")
		return
	}

	// Push pending debounced cart edits through first so the order is
	// placed against the cart the customer is looking at.
	h.cartService.Flush(session)

	result, err := h.flow.PlaceOrder(r.Context(), session, checkout.PlaceOrderParams{
		Shipping:        body.Shipping,
		PaymentMethod:   domain.PaymentMethod(body.PaymentMethod),
		CouponCode:      body.CouponCode,
		CardComplete:    body.CardComplete,
		PaymentMethodID: body.PaymentMethodID,
	})
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}

	handler.JSON(w, http.StatusOK, placeOrderResponse{
		SessionID: result.SessionID,
		State:     string(result.State),
		OrderID:   result.OrderID,
		InvoiceNo: result.InvoiceNo,
		Message:   result.Message,
	})
}

// Resume handles GET /checkout/sessions/{id}
func (h *CheckoutHandler) Resume(w http.ResponseWriter, r *http.Request) {
	result, err := h.flow.Resume(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}

	handler.JSON(w, http.StatusOK, placeOrderResponse{
		SessionID: result.SessionID,
		State:     string(result.State),
		OrderID:   result.OrderID,
		InvoiceNo: result.InvoiceNo,
		Message:   result.Message,
	})
}
