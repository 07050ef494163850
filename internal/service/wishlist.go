package service

import (
	"context"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
)

// WishlistService provides the customer's saved-for-later list.
type WishlistService interface {
	List(ctx context.Context, session string) ([]domain.Product, error)
	Add(ctx context.Context, session string, productID int64) error
	Remove(ctx context.Context, session string, productID int64) error
}

type wishlistService struct {
	client commerce.Client
}

// NewWishlistService creates a new WishlistService instance
func NewWishlistService(client commerce.Client) WishlistService {
	return &wishlistService{client: client}
}

func (s *wishlistService) List(ctx context.Context, session string) ([]domain.Product, error) {
	products, err := s.client.ListWishlist(ctx, session)
	if err != nil {
		return nil, domain.Upstream(err, "wishlist.list", "could not load wishlist")
	}
	return products, nil
}

func (s *wishlistService) Add(ctx context.Context, session string, productID int64) error {
	const op = "wishlist.add"

	if err := s.client.AddToWishlist(ctx, session, productID); err != nil {
		if commerce.IsNotFound(err) {
			return domain.NotFound(op, "product", "")
		}
		return domain.Upstream(err, op, "could not add to wishlist")
	}
	return nil
}

func (s *wishlistService) Remove(ctx context.Context, session string, productID int64) error {
	if err := s.client.RemoveFromWishlist(ctx, session, productID); err != nil {
		return domain.Upstream(err, "wishlist.remove", "could not remove from wishlist")
	}
	return nil
}
