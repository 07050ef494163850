package storefront

import (
	"log/slog"
	"net/http"

	"github.com/dstrand/vitrine/internal/handler"
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/service"
)

// OrderHandler serves the customer's order history.
type OrderHandler struct {
	orderService service.OrderService
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService, logger *slog.Logger) *OrderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// List handles GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	orders, err := h.orderService.ListOrders(r.Context(), session)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, orders)
}

// Get handles GET /orders/{invoice_no}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	order, err := h.orderService.GetOrder(r.Context(), session, r.PathValue("invoice_no"))
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, order)
}

// RequestReturn handles POST /orders/{invoice_no}/return
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var body struct {
		Reason string `json:"reason"`
	}
	if err := handler.Decode(r, &body); err != nil {
		handler.BadRequest(w, "invalid request body")
		return
	}

	if err := h.orderService.RequestReturn(r.Context(), session, r.PathValue("invoice_no"), body.Reason); err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.Message(w, http.StatusOK, "return requested")
}
