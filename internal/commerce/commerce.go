// Package commerce is the boundary to the remote commerce API that owns all
// persistent storefront state: catalog, carts, coupons, orders and the
// vendor back office. The storefront never stores this data itself; it
// mirrors, derives and displays.
package commerce

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/domain"
)

// Client defines the commerce API surface the storefront consumes.
// Implementations: HTTPClient (production) and MockClient (tests).
type Client interface {
	// GetCart fetches the cart snapshot for a session.
	GetCart(ctx context.Context, session string) (*domain.Cart, error)

	// AddItem adds a product (with optional variant) to the cart.
	AddItem(ctx context.Context, session string, params AddItemParams) (*domain.Cart, error)

	// UpdateItemQuantity sets the absolute quantity of a cart line.
	UpdateItemQuantity(ctx context.Context, session string, itemID int64, qty int) (*domain.Cart, error)

	// RemoveItem deletes a cart line.
	RemoveItem(ctx context.Context, session string, itemID int64) error

	// ClearCart removes every line after a placed order or logout.
	ClearCart(ctx context.Context, session string) error

	// ApplyCoupon applies a coupon code to the cart. The server owns all
	// coupon validation; the result carries the granted discount amount.
	ApplyCoupon(ctx context.Context, session string, code string) (*CouponResult, error)

	// PlaceOrder creates a pending order from the cart. For card payment the
	// result includes a payment-intent client secret to confirm against.
	PlaceOrder(ctx context.Context, session string, params PlaceOrderParams) (*PlaceOrderResult, error)

	// ConfirmPayment tells the commerce API a gateway payment succeeded so
	// the pending order can be confirmed.
	ConfirmPayment(ctx context.Context, session string, paymentIntentID string) (*ConfirmPaymentResult, error)

	// Catalog reads.
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error)

	// Wishlist.
	ListWishlist(ctx context.Context, session string) ([]domain.Product, error)
	AddToWishlist(ctx context.Context, session string, productID int64) error
	RemoveFromWishlist(ctx context.Context, session string, productID int64) error

	// Customer order history.
	ListOrders(ctx context.Context, session string) ([]domain.Order, error)
	GetOrder(ctx context.Context, session string, invoiceNo string) (*domain.Order, error)
	RequestReturn(ctx context.Context, session string, invoiceNo string, reason string) error

	// Vendor back office.
	VendorListProducts(ctx context.Context, session string) ([]domain.Product, error)
	VendorCreateProduct(ctx context.Context, session string, input domain.ProductInput) (*domain.Product, error)
	VendorUpdateProduct(ctx context.Context, session string, id int64, input domain.ProductInput) (*domain.Product, error)
	VendorDeleteProduct(ctx context.Context, session string, id int64) error
	VendorListOrders(ctx context.Context, session string, status domain.OrderStatus) ([]domain.Order, error)
	VendorUpdateOrderStatus(ctx context.Context, session string, invoiceNo string, status domain.OrderStatus) error
	VendorGetProfile(ctx context.Context, session string) (*VendorProfile, error)
	VendorUpdateProfile(ctx context.Context, session string, profile VendorProfile) error
}

// AddItemParams identifies the product and variant to add to a cart.
type AddItemParams struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"qty"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// ListProductsParams filters a catalog listing.
type ListProductsParams struct {
	Category string
	Page     int
	PerPage  int
}

// CouponResult is the server's answer to a coupon application.
type CouponResult struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message,omitempty"`
}

// PlaceOrderParams captures everything the commerce API needs to create a
// pending order.
type PlaceOrderParams struct {
	Shipping      domain.ShippingDetails `json:"shipping"`
	PaymentMethod domain.PaymentMethod   `json:"payment_method"`
	CouponCode    string                 `json:"coupon_code,omitempty"`
}

// PlaceOrderResult is the created pending order. ClientSecret is set only
// for card payment.
type PlaceOrderResult struct {
	OrderID         string `json:"order_id"`
	InvoiceNo       string `json:"invoice_no"`
	ClientSecret    string `json:"client_secret,omitempty"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
}

// ConfirmPaymentResult acknowledges a confirmed payment.
type ConfirmPaymentResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// VendorProfile is the vendor's shop profile.
type VendorProfile struct {
	ShopName    string `json:"shop_name" validate:"required"`
	OwnerName   string `json:"owner_name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Address     string `json:"address"`
	Description string `json:"description,omitempty"`
	PhotoURL    string `json:"photo,omitempty"`
}
