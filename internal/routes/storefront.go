package routes

import (
	"github.com/dstrand/vitrine/internal/middleware"
	"github.com/dstrand/vitrine/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing routes. Every
// route runs behind the session middleware; the storefront cannot address
// a cart, wishlist or order history without a session token.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	shop := r.Group(middleware.Session)

	// Catalog
	shop.Get("/products", deps.ProductHandler.List)
	shop.Get("/products/suggest", deps.ProductHandler.Suggest)
	shop.Get("/products/{id}", deps.ProductHandler.Get)

	// Shopping cart
	shop.Get("/cart", deps.CartHandler.View)
	shop.Delete("/cart", deps.CartHandler.Clear)
	shop.Post("/cart/items", deps.CartHandler.Add)
	shop.Patch("/cart/items/{id}", deps.CartHandler.Adjust)
	shop.Delete("/cart/items/{id}", deps.CartHandler.Remove)

	// Checkout flow
	shop.Post("/coupon/apply", deps.CheckoutHandler.ApplyCoupon)
	shop.Post("/checkout/place-order", deps.CheckoutHandler.PlaceOrder, middleware.Timeout(middleware.CheckoutTimeout))
	shop.Get("/checkout/sessions/{id}", deps.CheckoutHandler.Resume)

	// Order history
	shop.Get("/orders", deps.OrderHandler.List)
	shop.Get("/orders/{invoice_no}", deps.OrderHandler.Get)
	shop.Post("/orders/{invoice_no}/return", deps.OrderHandler.RequestReturn)

	// Wishlist
	shop.Get("/wishlist", deps.WishlistHandler.List)
	shop.Post("/wishlist/{product_id}", deps.WishlistHandler.Add)
	shop.Delete("/wishlist/{product_id}", deps.WishlistHandler.Remove)
}
