package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound = &Error{Code: ENOTFOUND, Message: "Order not found"}
)

// OrderStatus is the lifecycle state of an order as managed by the
// commerce API. The storefront only displays and requests transitions.
type OrderStatus string

const (
	OrderPending       OrderStatus = "pending"
	OrderConfirm       OrderStatus = "confirm"
	OrderProcessing    OrderStatus = "processing"
	OrderShipped       OrderStatus = "shipped"
	OrderPickedUp      OrderStatus = "picked_up"
	OrderDelivered     OrderStatus = "delivered"
	OrderCancel        OrderStatus = "cancel"
	OrderReturnRequest OrderStatus = "return_request"
	OrderReturnApprove OrderStatus = "return_approve"
	OrderReturnCancel  OrderStatus = "return_cancel"
)

// ValidOrderStatus reports whether s is a known lifecycle state.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirm, OrderProcessing, OrderShipped,
		OrderPickedUp, OrderDelivered, OrderCancel,
		OrderReturnRequest, OrderReturnApprove, OrderReturnCancel:
		return true
	}
	return false
}

// Order is a settled order read back from the commerce API for display.
// Amount is authoritative: Amount == (subtotal + Tax + Shipping) - CouponAmount.
type Order struct {
	InvoiceNo     string          `json:"invoice_no"`
	Name          string          `json:"name"`
	Phone         string          `json:"phone"`
	Email         string          `json:"email"`
	Address       string          `json:"address"`
	Amount        decimal.Decimal `json:"amount"`
	Tax           decimal.Decimal `json:"tax"`
	Shipping      decimal.Decimal `json:"shipping"`
	CouponAmount  decimal.Decimal `json:"coupon_amount"`
	Currency      string          `json:"currency"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	TransactionID string          `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []CartItem      `json:"items,omitempty"`
}
