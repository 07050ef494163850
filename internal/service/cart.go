package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/cartsync"
	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/pricing"
	"github.com/dstrand/vitrine/internal/telemetry"
)

// CartService provides business logic for shopping cart operations. Reads
// are served from the optimistic per-session mirror; quantity writes are
// debounced and reconciled against the commerce API in the background.
type CartService interface {
	GetCart(ctx context.Context, session string) (*CartSummary, error)
	AddItem(ctx context.Context, session string, params commerce.AddItemParams) (*CartSummary, error)
	AdjustItemQuantity(ctx context.Context, session string, itemID int64, delta int) (*CartSummary, error)
	RemoveItem(ctx context.Context, session string, itemID int64) (*CartSummary, error)
	ClearCart(ctx context.Context, session string) error

	// Flush forces all pending debounced writes through. Used on shutdown
	// and before checkout so the server cart matches what the customer sees.
	Flush(session string)
}

// CartSummary aggregates the mirrored cart with calculated totals and the
// set of lines still being written upstream.
type CartSummary struct {
	Items     []CartLine
	ItemCount int

	Subtotal   string
	TaxAmount  string
	Shipping   string
	Discount   string
	GrandTotal string
}

// CartLine is a cart line item view with per-line totals.
type CartLine struct {
	ID           int64
	ProductID    int64
	ProductName  string
	ImageURL     string
	Size         string
	Color        string
	Quantity     int
	UnitPrice    string
	LineSubtotal string

	// Updating reports a debounced write still in flight for this line.
	Updating bool
}

type cartService struct {
	client   commerce.Client
	debounce time.Duration
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics

	mu    sync.Mutex
	syncs map[string]*cartsync.Synchronizer
}

// NewCartService creates a new CartService instance
func NewCartService(client commerce.Client, debounce time.Duration, logger *slog.Logger, metrics *telemetry.BusinessMetrics) CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{
		client:   client,
		debounce: debounce,
		logger:   logger,
		metrics:  metrics,
		syncs:    make(map[string]*cartsync.Synchronizer),
	}
}

// sync returns the session's cart mirror, creating and seeding it on first
// use.
func (s *cartService) sync(ctx context.Context, session string) (*cartsync.Synchronizer, error) {
	s.mu.Lock()
	sy, ok := s.syncs[session]
	s.mu.Unlock()
	if ok {
		return sy, nil
	}

	cart, err := s.client.GetCart(ctx, session)
	if err != nil {
		return nil, domain.Upstream(err, "cart.get", "could not load cart")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sy, ok = s.syncs[session]; ok {
		return sy, nil
	}

	sy = cartsync.New(cartsync.Config{
		Client:   s.client,
		Session:  session,
		Debounce: s.debounce,
		Logger:   s.logger,
		OnWriteResult: func(itemID int64, err error) {
			if s.metrics == nil {
				return
			}
			if err != nil {
				s.metrics.CartWrites.WithLabelValues("update_quantity", "error").Inc()
				s.metrics.CartWriteRollback.Inc()
				return
			}
			s.metrics.CartWrites.WithLabelValues("update_quantity", "ok").Inc()
		},
	})
	sy.SetCart(cart)
	s.syncs[session] = sy
	return sy, nil
}

func (s *cartService) GetCart(ctx context.Context, session string) (*CartSummary, error) {
	sy, err := s.sync(ctx, session)
	if err != nil {
		return nil, err
	}
	return s.summarize(sy), nil
}

func (s *cartService) AddItem(ctx context.Context, session string, params commerce.AddItemParams) (*CartSummary, error) {
	const op = "cart.add_item"

	if params.Quantity < 1 {
		params.Quantity = 1
	}

	sy, err := s.sync(ctx, session)
	if err != nil {
		return nil, err
	}

	// Adds go straight through; only quantity edits are debounced.
	cart, err := s.client.AddItem(ctx, session, params)
	if err != nil {
		return nil, domain.Upstream(err, op, commerce.ServerMessage(err, "Could not add item to cart"))
	}
	sy.SetCart(cart)

	return s.summarize(sy), nil
}

func (s *cartService) AdjustItemQuantity(ctx context.Context, session string, itemID int64, delta int) (*CartSummary, error) {
	sy, err := s.sync(ctx, session)
	if err != nil {
		return nil, err
	}

	if _, err := sy.UpdateQuantity(itemID, delta); err != nil {
		return nil, domain.NotFound("cart.adjust_quantity", "cart item", "")
	}
	return s.summarize(sy), nil
}

func (s *cartService) RemoveItem(ctx context.Context, session string, itemID int64) (*CartSummary, error) {
	sy, err := s.sync(ctx, session)
	if err != nil {
		return nil, err
	}

	if err := sy.RemoveItem(ctx, itemID); err != nil {
		if s.metrics != nil {
			s.metrics.CartWrites.WithLabelValues("remove", "error").Inc()
		}
		return nil, domain.Upstream(err, "cart.remove_item", commerce.ServerMessage(err, "Could not remove item"))
	}
	if s.metrics != nil {
		s.metrics.CartWrites.WithLabelValues("remove", "ok").Inc()
	}
	return s.summarize(sy), nil
}

func (s *cartService) ClearCart(ctx context.Context, session string) error {
	if err := s.client.ClearCart(ctx, session); err != nil {
		return domain.Upstream(err, "cart.clear", "could not clear cart")
	}

	s.mu.Lock()
	sy, ok := s.syncs[session]
	delete(s.syncs, session)
	s.mu.Unlock()
	if ok {
		sy.Stop()
	}
	return nil
}

func (s *cartService) Flush(session string) {
	s.mu.Lock()
	sy, ok := s.syncs[session]
	s.mu.Unlock()
	if ok {
		sy.Flush()
	}
}

// summarize renders the mirrored cart with totals. Totals are always
// recomputed from the overlaid quantities so the customer never sees a
// subtotal lagging behind an edit.
func (s *cartService) summarize(sy *cartsync.Synchronizer) *CartSummary {
	cart := sy.Cart()
	totals := pricing.CalculateOrderTotal(cart)

	summary := &CartSummary{
		Items:      make([]CartLine, len(cart.Items)),
		ItemCount:  cart.CartCount,
		Subtotal:   pricing.FormatMoney(totals.Subtotal),
		TaxAmount:  pricing.FormatMoney(totals.TaxAmount),
		Shipping:   pricing.FormatMoney(totals.Shipping),
		Discount:   pricing.FormatMoney(totals.Discount),
		GrandTotal: pricing.FormatMoney(totals.GrandTotal),
	}
	for i, item := range cart.Items {
		summary.Items[i] = CartLine{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			ImageURL:     item.ImageURL,
			Size:         item.Size,
			Color:        item.Color,
			Quantity:     item.Quantity,
			UnitPrice:    pricing.FormatMoney(item.UnitPrice),
			LineSubtotal: pricing.FormatMoney(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))),
			Updating:     sy.Updating(item.ID),
		}
	}
	return summary
}
