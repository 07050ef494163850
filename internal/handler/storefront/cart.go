// Package storefront holds the customer-facing JSON handlers.
package storefront

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/handler"
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/service"
)

// CartHandler handles all cart-related storefront routes
type CartHandler struct {
	cartService service.CartService
	logger      *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService service.CartService, logger *slog.Logger) *CartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	summary, err := h.cartService.GetCart(r.Context(), session)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Add handles POST /cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	var params commerce.AddItemParams
	if err := handler.Decode(r, &params); err != nil {
		handler.BadRequest(w, "invalid request body")
		return
	}
	if params.ProductID == 0 {
		handler.BadRequest(w, "product_id is required")
		return
	}

	summary, err := h.cartService.AddItem(r.Context(), session, params)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusCreated, summary)
}

// Adjust handles PATCH /cart/items/{id}. The body carries a delta, not an
// absolute quantity; rapid clicks coalesce server-side into one upstream
// write.
func (h *CartHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handler.BadRequest(w, "invalid cart item id")
		return
	}

	var body struct {
		Delta int `json:"delta"`
	}
	if err := handler.Decode(r, &body); err != nil || body.Delta == 0 {
		handler.BadRequest(w, "delta must be a non-zero integer")
		return
	}

	summary, err := h.cartService.AdjustItemQuantity(r.Context(), session, itemID, body.Delta)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Remove handles DELETE /cart/items/{id}
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handler.BadRequest(w, "invalid cart item id")
		return
	}

	summary, err := h.cartService.RemoveItem(r.Context(), session, itemID)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	if err := h.cartService.ClearCart(r.Context(), session); err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.Message(w, http.StatusOK, "cart cleared")
}
