package routes

import (
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/router"
)

// RegisterVendorRoutes registers the vendor back-office routes. The vendor
// session token is forwarded upstream the same way as customer sessions;
// the commerce API enforces vendor authorization.
func RegisterVendorRoutes(r *router.Router, deps VendorDeps) {
	backoffice := r.Group(middleware.Session)

	// Products
	backoffice.Get("/vendor/products", deps.ProductHandler.List)
	backoffice.Post("/vendor/products", deps.ProductHandler.Create)
	backoffice.Put("/vendor/products/{id}", deps.ProductHandler.Update)
	backoffice.Delete("/vendor/products/{id}", deps.ProductHandler.Delete)

	// Orders
	backoffice.Get("/vendor/orders", deps.OrderHandler.List)
	backoffice.Patch("/vendor/orders/{invoice_no}/status", deps.OrderHandler.UpdateStatus)

	// Shop profile
	backoffice.Get("/vendor/profile", deps.ProfileHandler.Get)
	backoffice.Put("/vendor/profile", deps.ProfileHandler.Update)
}
