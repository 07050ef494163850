package storefront

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dstrand/vitrine/internal/handler"
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/service"
)

// WishlistHandler serves the saved-for-later list.
type WishlistHandler struct {
	wishlistService service.WishlistService
	logger          *slog.Logger
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlistService service.WishlistService, logger *slog.Logger) *WishlistHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WishlistHandler{
		wishlistService: wishlistService,
		logger:          logger,
	}
}

// List handles GET /wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	products, err := h.wishlistService.List(r.Context(), session)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, products)
}

// Add handles POST /wishlist/{product_id}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil {
		handler.BadRequest(w, "invalid product id")
		return
	}

	if err := h.wishlistService.Add(r.Context(), session, productID); err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.Message(w, http.StatusCreated, "added to wishlist")
}

// Remove handles DELETE /wishlist/{product_id}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil {
		handler.BadRequest(w, "invalid product id")
		return
	}

	if err := h.wishlistService.Remove(r.Context(), session, productID); err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.Message(w, http.StatusOK, "removed from wishlist")
}
