package commerce

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/dstrand/vitrine/internal/domain"
)

// MockClient is an in-memory commerce API for tests. Per-method Func fields
// override the default behavior; CallLog records every invocation for
// assertions against request counts and payloads.
type MockClient struct {
	mu sync.Mutex

	// Cart holds the mock server-side cart state.
	Cart domain.Cart

	// Overrides. When set, the corresponding method delegates entirely.
	GetCartFunc            func(ctx context.Context, session string) (*domain.Cart, error)
	UpdateItemQuantityFunc func(ctx context.Context, session string, itemID int64, qty int) (*domain.Cart, error)
	RemoveItemFunc         func(ctx context.Context, session string, itemID int64) error
	ApplyCouponFunc        func(ctx context.Context, session string, code string) (*CouponResult, error)
	PlaceOrderFunc         func(ctx context.Context, session string, params PlaceOrderParams) (*PlaceOrderResult, error)
	ConfirmPaymentFunc     func(ctx context.Context, session string, paymentIntentID string) (*ConfirmPaymentResult, error)
	SearchProductsFunc     func(ctx context.Context, query string, limit int) ([]domain.Product, error)

	// Products backs catalog reads.
	Products []domain.Product

	// Orders backs order history reads.
	Orders []domain.Order

	// Wishlist backs wishlist reads, keyed by product ID.
	Wishlist map[int64]domain.Product

	// Profile backs vendor profile reads.
	Profile VendorProfile

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockClient creates a mock commerce API with empty state.
func NewMockClient() *MockClient {
	return &MockClient{
		Wishlist: make(map[int64]domain.Product),
	}
}

func (m *MockClient) log(format string, args ...interface{}) {
	m.CallLog = append(m.CallLog, fmt.Sprintf(format, args...))
}

// Calls counts logged invocations whose entry starts with prefix, e.g.
// Calls("UpdateItemQuantity").
func (m *MockClient) Calls(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, entry := range m.CallLog {
		if strings.HasPrefix(entry, prefix) {
			n++
		}
	}
	return n
}

func (m *MockClient) GetCart(ctx context.Context, session string) (*domain.Cart, error) {
	m.mu.Lock()
	m.log("GetCart(%s)", session)
	fn := m.GetCartFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cart := m.snapshotLocked()
	return &cart, nil
}

func (m *MockClient) AddItem(ctx context.Context, session string, params AddItemParams) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("AddItem(%d, %d)", params.ProductID, params.Quantity)

	item := domain.CartItem{
		ID:        int64(len(m.Cart.Items) + 1),
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		Size:      params.Size,
		Color:     params.Color,
	}
	for _, p := range m.Products {
		if p.ID == params.ProductID {
			item.ProductName = p.Name
			item.UnitPrice = p.SellingPrice
		}
	}
	m.Cart.Items = append(m.Cart.Items, item)
	m.recalcLocked()

	cart := m.snapshotLocked()
	return &cart, nil
}

func (m *MockClient) UpdateItemQuantity(ctx context.Context, session string, itemID int64, qty int) (*domain.Cart, error) {
	m.mu.Lock()
	m.log("UpdateItemQuantity(%d, %d)", itemID, qty)
	fn := m.UpdateItemQuantityFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session, itemID, qty)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	item := m.Cart.Item(itemID)
	if item == nil {
		return nil, &APIError{StatusCode: 404, Message: "Cart item not found"}
	}
	item.Quantity = qty
	m.recalcLocked()

	cart := m.snapshotLocked()
	return &cart, nil
}

func (m *MockClient) RemoveItem(ctx context.Context, session string, itemID int64) error {
	m.mu.Lock()
	m.log("RemoveItem(%d)", itemID)
	fn := m.RemoveItemFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session, itemID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.Cart.Items {
		if item.ID == itemID {
			m.Cart.Items = append(m.Cart.Items[:i], m.Cart.Items[i+1:]...)
			m.recalcLocked()
			return nil
		}
	}
	return &APIError{StatusCode: 404, Message: "Cart item not found"}
}

func (m *MockClient) ClearCart(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ClearCart()")

	m.Cart = domain.Cart{}
	return nil
}

func (m *MockClient) ApplyCoupon(ctx context.Context, session string, code string) (*CouponResult, error) {
	m.mu.Lock()
	m.log("ApplyCoupon(%s)", code)
	fn := m.ApplyCouponFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session, code)
	}
	return nil, &APIError{StatusCode: 404, Message: "Invalid coupon code"}
}

func (m *MockClient) PlaceOrder(ctx context.Context, session string, params PlaceOrderParams) (*PlaceOrderResult, error) {
	m.mu.Lock()
	m.log("PlaceOrder(%s)", params.PaymentMethod)
	fn := m.PlaceOrderFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session, params)
	}

	result := &PlaceOrderResult{
		OrderID:   "ord_1",
		InvoiceNo: "INV-0001",
	}
	if params.PaymentMethod == domain.PaymentCard {
		result.PaymentIntentID = "pi_mock_1"
		result.ClientSecret = "pi_mock_1_secret"
	}
	return result, nil
}

func (m *MockClient) ConfirmPayment(ctx context.Context, session string, paymentIntentID string) (*ConfirmPaymentResult, error) {
	m.mu.Lock()
	m.log("ConfirmPayment(%s)", paymentIntentID)
	fn := m.ConfirmPaymentFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, session, paymentIntentID)
	}
	return &ConfirmPaymentResult{OrderID: "ord_1", Status: "confirm"}, nil
}

func (m *MockClient) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListProducts(%s)", params.Category)
	return append([]domain.Product(nil), m.Products...), nil
}

func (m *MockClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("GetProduct(%d)", id)

	for _, p := range m.Products {
		if p.ID == id {
			product := p
			return &product, nil
		}
	}
	return nil, &APIError{StatusCode: 404, Message: "Product not found"}
}

func (m *MockClient) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	m.mu.Lock()
	m.log("SearchProducts(%s)", query)
	fn := m.SearchProductsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []domain.Product
	for _, p := range m.Products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			matches = append(matches, p)
		}
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *MockClient) ListWishlist(ctx context.Context, session string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListWishlist()")

	products := make([]domain.Product, 0, len(m.Wishlist))
	for _, p := range m.Wishlist {
		products = append(products, p)
	}
	return products, nil
}

func (m *MockClient) AddToWishlist(ctx context.Context, session string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("AddToWishlist(%d)", productID)

	for _, p := range m.Products {
		if p.ID == productID {
			m.Wishlist[productID] = p
			return nil
		}
	}
	return &APIError{StatusCode: 404, Message: "Product not found"}
}

func (m *MockClient) RemoveFromWishlist(ctx context.Context, session string, productID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("RemoveFromWishlist(%d)", productID)

	delete(m.Wishlist, productID)
	return nil
}

func (m *MockClient) ListOrders(ctx context.Context, session string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("ListOrders()")
	return append([]domain.Order(nil), m.Orders...), nil
}

func (m *MockClient) GetOrder(ctx context.Context, session string, invoiceNo string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("GetOrder(%s)", invoiceNo)

	for _, o := range m.Orders {
		if o.InvoiceNo == invoiceNo {
			order := o
			return &order, nil
		}
	}
	return nil, &APIError{StatusCode: 404, Message: "Order not found"}
}

func (m *MockClient) RequestReturn(ctx context.Context, session string, invoiceNo string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("RequestReturn(%s)", invoiceNo)

	for i := range m.Orders {
		if m.Orders[i].InvoiceNo == invoiceNo {
			m.Orders[i].Status = domain.OrderReturnRequest
			return nil
		}
	}
	return &APIError{StatusCode: 404, Message: "Order not found"}
}

func (m *MockClient) VendorListProducts(ctx context.Context, session string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorListProducts()")
	return append([]domain.Product(nil), m.Products...), nil
}

func (m *MockClient) VendorCreateProduct(ctx context.Context, session string, input domain.ProductInput) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorCreateProduct(%s)", input.Name)

	product := domain.Product{
		ID:            int64(len(m.Products) + 1),
		Name:          input.Name,
		SellingPrice:  input.SellingPrice,
		DiscountPrice: input.DiscountPrice,
		StockQty:      input.StockQty,
		Sizes:         input.Sizes,
		Colors:        input.Colors,
		Wholesale:     input.Wholesale,
	}
	m.Products = append(m.Products, product)
	return &product, nil
}

func (m *MockClient) VendorUpdateProduct(ctx context.Context, session string, id int64, input domain.ProductInput) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorUpdateProduct(%d)", id)

	for i := range m.Products {
		if m.Products[i].ID == id {
			m.Products[i].Name = input.Name
			m.Products[i].SellingPrice = input.SellingPrice
			m.Products[i].DiscountPrice = input.DiscountPrice
			m.Products[i].StockQty = input.StockQty
			m.Products[i].Sizes = input.Sizes
			m.Products[i].Colors = input.Colors
			m.Products[i].Wholesale = input.Wholesale
			product := m.Products[i]
			return &product, nil
		}
	}
	return nil, &APIError{StatusCode: 404, Message: "Product not found"}
}

func (m *MockClient) VendorDeleteProduct(ctx context.Context, session string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorDeleteProduct(%d)", id)

	for i, p := range m.Products {
		if p.ID == id {
			m.Products = append(m.Products[:i], m.Products[i+1:]...)
			return nil
		}
	}
	return &APIError{StatusCode: 404, Message: "Product not found"}
}

func (m *MockClient) VendorListOrders(ctx context.Context, session string, status domain.OrderStatus) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorListOrders(%s)", status)

	if status == "" {
		return append([]domain.Order(nil), m.Orders...), nil
	}
	var orders []domain.Order
	for _, o := range m.Orders {
		if o.Status == status {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *MockClient) VendorUpdateOrderStatus(ctx context.Context, session string, invoiceNo string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorUpdateOrderStatus(%s, %s)", invoiceNo, status)

	for i := range m.Orders {
		if m.Orders[i].InvoiceNo == invoiceNo {
			m.Orders[i].Status = status
			return nil
		}
	}
	return &APIError{StatusCode: 404, Message: "Order not found"}
}

func (m *MockClient) VendorGetProfile(ctx context.Context, session string) (*VendorProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorGetProfile()")

	profile := m.Profile
	return &profile, nil
}

func (m *MockClient) VendorUpdateProfile(ctx context.Context, session string, profile VendorProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("VendorUpdateProfile(%s)", profile.ShopName)

	m.Profile = profile
	return nil
}

// recalcLocked recomputes the derived cart fields the way the real API does.
func (m *MockClient) recalcLocked() {
	total := decimal.Zero
	count := 0
	for _, item := range m.Cart.Items {
		total = total.Add(item.LineSubtotal())
		count += item.Quantity
	}
	m.Cart.CartTotal = total
	m.Cart.CartCount = count
}

// snapshotLocked deep-copies the cart so callers can't mutate mock state.
func (m *MockClient) snapshotLocked() domain.Cart {
	cart := m.Cart
	cart.Items = append([]domain.CartItem(nil), m.Cart.Items...)
	if m.Cart.DiscountAmount != nil {
		d := *m.Cart.DiscountAmount
		cart.DiscountAmount = &d
	}
	return cart
}

var _ Client = (*MockClient)(nil)
var _ Client = (*HTTPClient)(nil)
