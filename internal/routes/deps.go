package routes

import (
	"github.com/dstrand/vitrine/internal/handler/storefront"
	"github.com/dstrand/vitrine/internal/handler/vendor"
)

// StorefrontDeps contains dependencies for customer-facing routes
type StorefrontDeps struct {
	// Catalog (list, detail, typeahead suggestions)
	ProductHandler *storefront.ProductHandler

	// Cart
	CartHandler *storefront.CartHandler

	// Checkout (coupon, place order, resume)
	CheckoutHandler *storefront.CheckoutHandler

	// Order history
	OrderHandler *storefront.OrderHandler

	// Wishlist
	WishlistHandler *storefront.WishlistHandler
}

// VendorDeps contains dependencies for vendor back-office routes
type VendorDeps struct {
	// Products
	ProductHandler *vendor.ProductHandler

	// Orders
	OrderHandler *vendor.OrderHandler

	// Shop profile
	ProfileHandler *vendor.ProfileHandler
}
