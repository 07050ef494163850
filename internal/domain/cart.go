package domain

import (
	"github.com/shopspring/decimal"
)

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)

// CartItem represents one line in a shopping cart: a product plus an
// optional size/color variant and a positive quantity.
type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image,omitempty"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	Quantity    int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// LineSubtotal is the unit price times quantity for this line.
func (i CartItem) LineSubtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ShippingConfig carries the flat shipping cost attached to a cart by the
// commerce API.
type ShippingConfig struct {
	Cost decimal.Decimal `json:"cost"`
}

// Cart is the server cart snapshot: line items plus the derived money fields
// the commerce API computes. DiscountAmount is nil until a coupon has been
// applied.
type Cart struct {
	Items          []CartItem       `json:"items"`
	CartTotal      decimal.Decimal  `json:"cart_total"`
	TaxPercentage  decimal.Decimal  `json:"tax_percentage"`
	ShippingConfig ShippingConfig   `json:"shipping_config"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
	CartCount      int              `json:"cart_count"`
}

// Item returns the line with the given ID, or nil.
func (c *Cart) Item(itemID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}
