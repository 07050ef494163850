package service

import (
	"context"
	"strings"
	"sync"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/pricing"
	"github.com/dstrand/vitrine/internal/search"
)

// ProductService provides catalog reads and typeahead suggestions.
type ProductService interface {
	ListProducts(ctx context.Context, params commerce.ListProductsParams) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*ProductDetail, error)

	// Suggest feeds the session's typeahead input and returns the latest
	// settled suggestions. Rapid calls coalesce into one upstream query;
	// out-of-order responses are discarded.
	Suggest(session, text string) []domain.Product

	// CloseSession releases the session's suggestion state.
	CloseSession(session string)
}

// ProductDetail is a product with its quantity price breaks rendered.
type ProductDetail struct {
	Product     domain.Product
	UnitPrice   string
	PriceBreaks []PriceBreak
}

// PriceBreak is one wholesale tier rendered for display.
type PriceBreak struct {
	MinQty       int
	MaxQty       int
	PricePerUnit string
}

type productService struct {
	client commerce.Client

	mu         sync.Mutex
	suggesters map[string]*suggestSession
	newSuggest func(session string, cache *suggestSession) *search.Suggester
}

type suggestSession struct {
	mu        sync.Mutex
	suggester *search.Suggester
	latest    []domain.Product
}

// NewProductService creates a new ProductService instance
func NewProductService(client commerce.Client) ProductService {
	s := &productService{
		client:     client,
		suggesters: make(map[string]*suggestSession),
	}
	s.newSuggest = func(session string, cache *suggestSession) *search.Suggester {
		return search.New(search.Config{
			Client: client,
			OnResults: func(query string, products []domain.Product) {
				cache.mu.Lock()
				cache.latest = products
				cache.mu.Unlock()
			},
		})
	}
	return s
}

func (s *productService) ListProducts(ctx context.Context, params commerce.ListProductsParams) ([]domain.Product, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 24
	}

	products, err := s.client.ListProducts(ctx, params)
	if err != nil {
		return nil, domain.Upstream(err, "product.list", "could not load products")
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, id int64) (*ProductDetail, error) {
	const op = "product.get"

	product, err := s.client.GetProduct(ctx, id)
	if err != nil {
		if commerce.IsNotFound(err) {
			return nil, domain.NotFound(op, "product", "")
		}
		return nil, domain.Upstream(err, op, "could not load product")
	}

	detail := &ProductDetail{
		Product:   *product,
		UnitPrice: pricing.FormatMoney(pricing.UnitPrice(*product, 1)),
	}
	for _, tier := range product.Wholesale {
		detail.PriceBreaks = append(detail.PriceBreaks, PriceBreak{
			MinQty:       tier.MinQty,
			MaxQty:       tier.MaxQty,
			PricePerUnit: pricing.FormatMoney(tier.PricePerUnit),
		})
	}
	return detail, nil
}

func (s *productService) Suggest(session, text string) []domain.Product {
	s.mu.Lock()
	ss, ok := s.suggesters[session]
	if !ok {
		ss = &suggestSession{}
		ss.suggester = s.newSuggest(session, ss)
		s.suggesters[session] = ss
	}
	s.mu.Unlock()

	ss.suggester.Update(strings.TrimSpace(text))

	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.latest
}

func (s *productService) CloseSession(session string) {
	s.mu.Lock()
	ss, ok := s.suggesters[session]
	delete(s.suggesters, session)
	s.mu.Unlock()
	if ok {
		ss.suggester.Close()
	}
}
