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

// ProductHandler serves catalog reads and typeahead suggestions.
type ProductHandler struct {
	productService service.ProductService
	logger         *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService service.ProductService, logger *slog.Logger) *ProductHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	products, err := h.productService.ListProducts(r.Context(), commerce.ListProductsParams{
		Category: q.Get("category"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, products)
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		handler.BadRequest(w, "invalid product id")
		return
	}

	detail, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		handler.Error(w, h.logger, err)
		return
	}
	handler.JSON(w, http.StatusOK, detail)
}

// Suggest handles GET /products/suggest?q=...
// Rapid keystrokes from one session coalesce into a single upstream query;
// the response always reflects the latest settled input.
func (h *ProductHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	suggestions := h.productService.Suggest(session, r.URL.Query().Get("q"))
	handler.JSON(w, http.StatusOK, suggestions)
}
