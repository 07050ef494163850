package service

import (
	"context"
	"strings"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/pricing"
)

// OrderService provides customer order history.
type OrderService interface {
	ListOrders(ctx context.Context, session string) ([]OrderView, error)
	GetOrder(ctx context.Context, session string, invoiceNo string) (*OrderView, error)
	RequestReturn(ctx context.Context, session string, invoiceNo string, reason string) error
}

// OrderView is an order rendered for display. ItemsSubtotal is derived from
// the stored grand total by reversing the charge formula, since the
// commerce API does not return a separate subtotal field.
type OrderView struct {
	Order domain.Order

	ItemsSubtotal string
	Tax           string
	Shipping      string
	CouponAmount  string
	GrandTotal    string
}

type orderService struct {
	client commerce.Client
}

// NewOrderService creates a new OrderService instance
func NewOrderService(client commerce.Client) OrderService {
	return &orderService{client: client}
}

func (s *orderService) ListOrders(ctx context.Context, session string) ([]OrderView, error) {
	orders, err := s.client.ListOrders(ctx, session)
	if err != nil {
		return nil, domain.Upstream(err, "order.list", "could not load orders")
	}

	views := make([]OrderView, len(orders))
	for i := range orders {
		views[i] = renderOrder(&orders[i])
	}
	return views, nil
}

func (s *orderService) GetOrder(ctx context.Context, session string, invoiceNo string) (*OrderView, error) {
	const op = "order.get"

	order, err := s.client.GetOrder(ctx, session, invoiceNo)
	if err != nil {
		if commerce.IsNotFound(err) {
			return nil, domain.NotFound(op, "order", invoiceNo)
		}
		return nil, domain.Upstream(err, op, "could not load order")
	}

	view := renderOrder(order)
	return &view, nil
}

func (s *orderService) RequestReturn(ctx context.Context, session string, invoiceNo string, reason string) error {
	const op = "order.request_return"

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Invalid(op, "Please provide a reason for the return")
	}

	order, err := s.client.GetOrder(ctx, session, invoiceNo)
	if err != nil {
		if commerce.IsNotFound(err) {
			return domain.NotFound(op, "order", invoiceNo)
		}
		return domain.Upstream(err, op, "could not load order")
	}
	if order.Status != domain.OrderDelivered {
		return domain.Invalid(op, "Only delivered orders can be returned")
	}

	if err := s.client.RequestReturn(ctx, session, invoiceNo, reason); err != nil {
		return domain.Upstream(err, op, commerce.ServerMessage(err, "Could not request a return"))
	}
	return nil
}

func renderOrder(order *domain.Order) OrderView {
	return OrderView{
		Order:         *order,
		ItemsSubtotal: pricing.FormatMoney(pricing.ItemsSubtotal(order)),
		Tax:           pricing.FormatMoney(order.Tax),
		Shipping:      pricing.FormatMoney(order.Shipping),
		CouponAmount:  pricing.FormatMoney(order.CouponAmount),
		GrandTotal:    pricing.FormatMoney(order.Amount),
	}
}
