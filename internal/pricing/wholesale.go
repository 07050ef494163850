// Package pricing derives unit prices and order totals from cart and
// product snapshots. It is pure computation: no network, no storage.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/domain"
)

// ResolveWholesalePrice returns the per-unit price of the first tier whose
// range contains qty, or nil when no tier matches. Tiers arrive from the
// commerce API sorted by MinQty with non-overlapping ranges; on malformed
// data the first match still wins.
func ResolveWholesalePrice(qty int, tiers []domain.WholesaleTier) *decimal.Decimal {
	for _, t := range tiers {
		if qty >= t.MinQty && qty <= t.MaxQty {
			price := t.PricePerUnit
			return &price
		}
	}
	return nil
}

// UnitPrice resolves the effective per-unit price for a product at the given
// quantity. Wholesale pricing takes precedence over an active discount,
// which in turn overrides the selling price.
func UnitPrice(p domain.Product, qty int) decimal.Decimal {
	if wholesale := ResolveWholesalePrice(qty, p.Wholesale); wholesale != nil {
		return *wholesale
	}
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.SellingPrice
}
