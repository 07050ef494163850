package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
)

// VendorService provides the vendor back office: product management, order
// fulfillment and the shop profile. All writes are validated before they
// reach the commerce API.
type VendorService interface {
	ListProducts(ctx context.Context, session string) ([]domain.Product, error)
	CreateProduct(ctx context.Context, session string, input domain.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, session string, id int64, input domain.ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, session string, id int64) error

	ListOrders(ctx context.Context, session string, status domain.OrderStatus) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, session string, invoiceNo string, status domain.OrderStatus) error

	GetProfile(ctx context.Context, session string) (*commerce.VendorProfile, error)
	UpdateProfile(ctx context.Context, session string, profile commerce.VendorProfile) error
}

type vendorService struct {
	client   commerce.Client
	validate *validator.Validate
}

// NewVendorService creates a new VendorService instance
func NewVendorService(client commerce.Client) VendorService {
	return &vendorService{
		client:   client,
		validate: validator.New(),
	}
}

func (s *vendorService) ListProducts(ctx context.Context, session string) ([]domain.Product, error) {
	products, err := s.client.VendorListProducts(ctx, session)
	if err != nil {
		return nil, domain.Upstream(err, "vendor.list_products", "could not load products")
	}
	return products, nil
}

func (s *vendorService) CreateProduct(ctx context.Context, session string, input domain.ProductInput) (*domain.Product, error) {
	const op = "vendor.create_product"

	if err := s.validateProduct(op, input); err != nil {
		return nil, err
	}

	product, err := s.client.VendorCreateProduct(ctx, session, input)
	if err != nil {
		return nil, domain.Upstream(err, op, commerce.ServerMessage(err, "Could not create product"))
	}
	return product, nil
}

func (s *vendorService) UpdateProduct(ctx context.Context, session string, id int64, input domain.ProductInput) (*domain.Product, error) {
	const op = "vendor.update_product"

	if err := s.validateProduct(op, input); err != nil {
		return nil, err
	}

	product, err := s.client.VendorUpdateProduct(ctx, session, id, input)
	if err != nil {
		if commerce.IsNotFound(err) {
			return nil, domain.NotFound(op, "product", "")
		}
		return nil, domain.Upstream(err, op, commerce.ServerMessage(err, "Could not update product"))
	}
	return product, nil
}

func (s *vendorService) DeleteProduct(ctx context.Context, session string, id int64) error {
	const op = "vendor.delete_product"

	if err := s.client.VendorDeleteProduct(ctx, session, id); err != nil {
		if commerce.IsNotFound(err) {
			return domain.NotFound(op, "product", "")
		}
		return domain.Upstream(err, op, "could not delete product")
	}
	return nil
}

func (s *vendorService) ListOrders(ctx context.Context, session string, status domain.OrderStatus) ([]domain.Order, error) {
	const op = "vendor.list_orders"

	if status != "" && !domain.ValidOrderStatus(status) {
		return nil, domain.Invalid(op, "unknown order status filter")
	}

	orders, err := s.client.VendorListOrders(ctx, session, status)
	if err != nil {
		return nil, domain.Upstream(err, op, "could not load orders")
	}
	return orders, nil
}

func (s *vendorService) UpdateOrderStatus(ctx context.Context, session string, invoiceNo string, status domain.OrderStatus) error {
	const op = "vendor.update_order_status"

	if !domain.ValidOrderStatus(status) {
		return domain.Invalid(op, "unknown order status")
	}

	if err := s.client.VendorUpdateOrderStatus(ctx, session, invoiceNo, status); err != nil {
		if commerce.IsNotFound(err) {
			return domain.NotFound(op, "order", invoiceNo)
		}
		return domain.Upstream(err, op, commerce.ServerMessage(err, "Could not update order status"))
	}
	return nil
}

func (s *vendorService) GetProfile(ctx context.Context, session string) (*commerce.VendorProfile, error) {
	profile, err := s.client.VendorGetProfile(ctx, session)
	if err != nil {
		return nil, domain.Upstream(err, "vendor.get_profile", "could not load profile")
	}
	return profile, nil
}

func (s *vendorService) UpdateProfile(ctx context.Context, session string, profile commerce.VendorProfile) error {
	const op = "vendor.update_profile"

	if err := s.validate.Struct(profile); err != nil {
		return domain.Invalid(op, "Please fill in all required profile fields")
	}

	if err := s.client.VendorUpdateProfile(ctx, session, profile); err != nil {
		return domain.Upstream(err, op, commerce.ServerMessage(err, "Could not update profile"))
	}
	return nil
}

func (s *vendorService) validateProduct(op string, input domain.ProductInput) error {
	if err := s.validate.Struct(input); err != nil {
		return domain.Invalid(op, "Please fill in all required product fields")
	}
	if input.SellingPrice.IsNegative() {
		return domain.Invalid(op, "Selling price cannot be negative")
	}
	if input.DiscountPrice != nil && input.DiscountPrice.GreaterThan(input.SellingPrice) {
		return domain.Invalid(op, "Discount price cannot exceed the selling price")
	}
	for _, tier := range input.Wholesale {
		if tier.MinQty < 1 || tier.MaxQty < tier.MinQty {
			return domain.Invalid(op, "Wholesale tiers need a valid quantity range")
		}
		if tier.PricePerUnit.IsNegative() {
			return domain.Invalid(op, "Wholesale price cannot be negative")
		}
	}
	return nil
}
