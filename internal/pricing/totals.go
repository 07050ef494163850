package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/domain"
)

// OrderTotal is the money breakdown for a cart snapshot. All fields are
// unrounded; Format them for display with two decimal places.
type OrderTotal struct {
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// CalculateOrderTotal derives display totals from a cart snapshot:
//
//	subtotal = cart_total
//	tax      = subtotal * tax_percentage / 100
//	grand    = subtotal + tax + shipping - discount
//
// Tax is a percentage of the subtotal, not a flat fee. The result is
// advisory; the commerce API recomputes the authoritative amount at order
// placement.
func CalculateOrderTotal(cart *domain.Cart) OrderTotal {
	subtotal := cart.CartTotal
	tax := subtotal.Mul(cart.TaxPercentage).Div(hundred)
	shipping := cart.ShippingConfig.Cost

	discount := decimal.Zero
	if cart.DiscountAmount != nil {
		discount = *cart.DiscountAmount
	}

	return OrderTotal{
		Subtotal:   subtotal,
		TaxAmount:  tax,
		Shipping:   shipping,
		Discount:   discount,
		GrandTotal: subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}

// ItemsSubtotal backs the pre-tax item total out of a settled order:
//
//	itemsSubtotal = amount - tax - shipping + coupon_amount
//
// This is the inverse of CalculateOrderTotal and must stay consistent
// with it.
func ItemsSubtotal(o *domain.Order) decimal.Decimal {
	return o.Amount.Sub(o.Tax).Sub(o.Shipping).Add(o.CouponAmount)
}

// FormatMoney renders a monetary value with exactly two decimal places.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}
