package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dstrand/vitrine/internal/domain"
)

// HTTPClient talks to the commerce API over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// HTTPClientConfig configures the commerce API client.
type HTTPClientConfig struct {
	// BaseURL is the API root, e.g. "https://api.example.com/v1".
	BaseURL string

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// DefaultTimeout bounds commerce API calls when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// NewHTTPClient creates a commerce API client.
func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("commerce: base URL is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &HTTPClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// envelope is the standard commerce API response shape.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do issues a request and decodes the data field of the response envelope
// into out (when out is non-nil). Non-2xx responses become *APIError with
// the server message preserved verbatim.
func (c *HTTPClient) do(ctx context.Context, method, path, session string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("commerce: encode request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("commerce: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var env envelope
		if json.Unmarshal(payload, &env) == nil {
			apiErr.Message = env.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return fmt.Errorf("commerce: decode response: %w", err)
	}
	data := env.Data
	if len(data) == 0 {
		// Some endpoints return the object at the top level.
		data = payload
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("commerce: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) GetCart(ctx context.Context, session string) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodGet, "/cart", session, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *HTTPClient) AddItem(ctx context.Context, session string, params AddItemParams) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, http.MethodPost, "/cart/items", session, params, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *HTTPClient) UpdateItemQuantity(ctx context.Context, session string, itemID int64, qty int) (*domain.Cart, error) {
	body := map[string]int{"qty": qty}
	var cart domain.Cart
	path := "/cart/items/" + strconv.FormatInt(itemID, 10)
	if err := c.do(ctx, http.MethodPut, path, session, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *HTTPClient) RemoveItem(ctx context.Context, session string, itemID int64) error {
	path := "/cart/items/" + strconv.FormatInt(itemID, 10)
	return c.do(ctx, http.MethodDelete, path, session, nil, nil)
}

func (c *HTTPClient) ClearCart(ctx context.Context, session string) error {
	return c.do(ctx, http.MethodDelete, "/cart", session, nil, nil)
}

func (c *HTTPClient) ApplyCoupon(ctx context.Context, session string, code string) (*CouponResult, error) {
	body := map[string]string{"code": code}
	var result CouponResult
	if err := c.do(ctx, http.MethodPost, "/coupon/apply", session, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) PlaceOrder(ctx context.Context, session string, params PlaceOrderParams) (*PlaceOrderResult, error) {
	var result PlaceOrderResult
	if err := c.do(ctx, http.MethodPost, "/checkout/place-order", session, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ConfirmPayment(ctx context.Context, session string, paymentIntentID string) (*ConfirmPaymentResult, error) {
	body := map[string]string{"payment_intent_id": paymentIntentID}
	var result ConfirmPaymentResult
	if err := c.do(ctx, http.MethodPost, "/checkout/confirm-payment", session, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error) {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	path := "/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	path := "/products/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, query string, limit int) ([]domain.Product, error) {
	q := url.Values{"q": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/search?"+q.Encode(), "", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) ListWishlist(ctx context.Context, session string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/wishlist", session, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) AddToWishlist(ctx context.Context, session string, productID int64) error {
	body := map[string]int64{"product_id": productID}
	return c.do(ctx, http.MethodPost, "/wishlist", session, body, nil)
}

func (c *HTTPClient) RemoveFromWishlist(ctx context.Context, session string, productID int64) error {
	path := "/wishlist/" + strconv.FormatInt(productID, 10)
	return c.do(ctx, http.MethodDelete, path, session, nil, nil)
}

func (c *HTTPClient) ListOrders(ctx context.Context, session string) ([]domain.Order, error) {
	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders", session, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPClient) GetOrder(ctx context.Context, session string, invoiceNo string) (*domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(invoiceNo), session, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *HTTPClient) RequestReturn(ctx context.Context, session string, invoiceNo string, reason string) error {
	body := map[string]string{"reason": reason}
	path := "/orders/" + url.PathEscape(invoiceNo) + "/return"
	return c.do(ctx, http.MethodPost, path, session, body, nil)
}

func (c *HTTPClient) VendorListProducts(ctx context.Context, session string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/vendor/products", session, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *HTTPClient) VendorCreateProduct(ctx context.Context, session string, input domain.ProductInput) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodPost, "/vendor/products", session, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *HTTPClient) VendorUpdateProduct(ctx context.Context, session string, id int64, input domain.ProductInput) (*domain.Product, error) {
	var product domain.Product
	path := "/vendor/products/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, session, input, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *HTTPClient) VendorDeleteProduct(ctx context.Context, session string, id int64) error {
	path := "/vendor/products/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, session, nil, nil)
}

func (c *HTTPClient) VendorListOrders(ctx context.Context, session string, status domain.OrderStatus) ([]domain.Order, error) {
	path := "/vendor/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}

	var orders []domain.Order
	if err := c.do(ctx, http.MethodGet, path, session, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *HTTPClient) VendorUpdateOrderStatus(ctx context.Context, session string, invoiceNo string, status domain.OrderStatus) error {
	body := map[string]string{"status": string(status)}
	path := "/vendor/orders/" + url.PathEscape(invoiceNo) + "/status"
	return c.do(ctx, http.MethodPut, path, session, body, nil)
}

func (c *HTTPClient) VendorGetProfile(ctx context.Context, session string) (*VendorProfile, error) {
	var profile VendorProfile
	if err := c.do(ctx, http.MethodGet, "/vendor/profile", session, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) VendorUpdateProfile(ctx context.Context, session string, profile VendorProfile) error {
	return c.do(ctx, http.MethodPut, "/vendor/profile", session, profile, nil)
}
