package domain

import (
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = &Error{Code: ENOTFOUND, Message: "Product not found"}
)

// WholesaleTier is a quantity-banded unit price attached to a product.
// Tiers are supplied by the commerce API pre-sorted by MinQty with
// non-overlapping ranges; that shape is not re-validated here.
type WholesaleTier struct {
	MinQty       int             `json:"min_qty"`
	MaxQty       int             `json:"max_qty"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// Product is the read-only catalog projection used by the storefront.
// DiscountPrice, when present, indicates an active discount overriding
// SellingPrice. StockQty arrives from the commerce API as a numeric string.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"product_name"`
	Slug          string           `json:"product_slug,omitempty"`
	ImageURL      string           `json:"product_thumbnail,omitempty"`
	SellingPrice  decimal.Decimal  `json:"selling_price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	StockQty      string           `json:"product_qty"`
	Sizes         []string         `json:"sizes,omitempty"`
	Colors        []string         `json:"colors,omitempty"`
	Wholesale     []WholesaleTier  `json:"wholesales,omitempty"`
}

// ProductInput is the vendor-supplied payload for product create/update.
type ProductInput struct {
	Name          string           `json:"product_name" validate:"required"`
	SellingPrice  decimal.Decimal  `json:"selling_price" validate:"required"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	StockQty      string           `json:"product_qty" validate:"required,numeric"`
	Sizes         []string         `json:"sizes,omitempty"`
	Colors        []string         `json:"colors,omitempty"`
	Wholesale     []WholesaleTier  `json:"wholesales,omitempty"`
}
