package storefront_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/vitrine/internal/billing"
	"github.com/dstrand/vitrine/internal/checkout"
	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/handler/storefront"
	"github.com/dstrand/vitrine/internal/router"
	"github.com/dstrand/vitrine/internal/routes"
	"github.com/dstrand/vitrine/internal/service"
)

// newTestServer wires the full storefront route tree over an in-memory
// commerce API and payment gateway.
func newTestServer(t *testing.T, client *commerce.MockClient) http.Handler {
	t.Helper()

	flow := checkout.NewFlow(checkout.FlowConfig{
		Commerce: client,
		Billing:  billing.NewMockProvider(),
	})
	cartService := service.NewCartService(client, 20*time.Millisecond, nil, nil)

	r := router.New()
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(service.NewProductService(client), nil),
		CartHandler:     storefront.NewCartHandler(cartService, nil),
		CheckoutHandler: storefront.NewCheckoutHandler(flow, cartService, nil),
		OrderHandler:    storefront.NewOrderHandler(service.NewOrderService(client), nil),
		WishlistHandler: storefront.NewWishlistHandler(service.NewWishlistService(client), nil),
	})
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd *strings.Reader
	if body == "" {
		rd = strings.NewReader("")
	} else {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer sess_test")
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func parse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func cartClient() *commerce.MockClient {
	client := commerce.NewMockClient()
	client.Cart = domain.Cart{
		Items: []domain.CartItem{
			{ID: 1, ProductID: 10, ProductName: "Oxford Shirt", Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
		},
		TaxPercentage:  decimal.NewFromInt(5),
		ShippingConfig: domain.ShippingConfig{Cost: decimal.NewFromInt(10)},
		CartTotal:      decimal.NewFromInt(200),
		CartCount:      2,
	}
	return client
}

func TestCartRoutes_RequireSession(t *testing.T) {
	h := newTestServer(t, cartClient())

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartView(t *testing.T) {
	h := newTestServer(t, cartClient())

	w := doJSON(t, h, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := parse(t, w)
	assert.Equal(t, "success", resp.Status)

	var summary service.CartSummary
	require.NoError(t, json.Unmarshal(resp.Data, &summary))
	assert.Equal(t, "220.00", summary.GrandTotal)
}

func TestCartAdjust_OptimisticResponse(t *testing.T) {
	client := cartClient()
	h := newTestServer(t, client)

	w := doJSON(t, h, http.MethodPatch, "/cart/items/1", `{"delta":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var summary service.CartSummary
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &summary))
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.True(t, summary.Items[0].Updating)
	assert.Equal(t, "325.00", summary.GrandTotal)
}

func TestCartAdjust_RejectsZeroDelta(t *testing.T) {
	h := newTestServer(t, cartClient())

	w := doJSON(t, h, http.MethodPatch, "/cart/items/1", `{"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCouponApply_EmptyRejected(t *testing.T) {
	client := cartClient()
	h := newTestServer(t, client)

	w := doJSON(t, h, http.MethodPost, "/coupon/apply", `{"code":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, client.Calls("ApplyCoupon"))
}

func TestCouponApply_ServerRejectionVerbatim(t *testing.T) {
	h := newTestServer(t, cartClient())

	w := doJSON(t, h, http.MethodPost, "/coupon/apply", `{"code":"NOPE"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid coupon code", parse(t, w).Message)
}

func TestPlaceOrder_CODEndToEnd(t *testing.T) {
	client := cartClient()
	h := newTestServer(t, client)

	body := `{
		"shipping": {"name":"Ada Lovelace","phone":"+1555000111","email":"ada@example.com","address":"12 Analytical Way"},
		"payment_method": "cod"
	}`
	w := doJSON(t, h, http.MethodPost, "/checkout/place-order", body)
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		State     string `json:"state"`
		InvoiceNo string `json:"invoice_no"`
	}
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &result))
	assert.Equal(t, "success", result.State)
	assert.Equal(t, "INV-0001", result.InvoiceNo)
	assert.Equal(t, 1, client.Calls("ClearCart"))
}

func TestPlaceOrder_DeclinedCardIs402(t *testing.T) {
	client := cartClient()

	provider := billing.NewMockProvider()
	provider.ConfirmPaymentFunc = func(ctx context.Context, params billing.ConfirmPaymentParams) (*billing.PaymentIntent, error) {
		return nil, &billing.DeclineError{Code: "card_declined", Message: "Your card was declined."}
	}

	flow := checkout.NewFlow(checkout.FlowConfig{Commerce: client, Billing: provider})
	cartService := service.NewCartService(client, 20*time.Millisecond, nil, nil)

	r := router.New()
	routes.RegisterStorefrontRoutes(r, routes.StorefrontDeps{
		ProductHandler:  storefront.NewProductHandler(service.NewProductService(client), nil),
		CartHandler:     storefront.NewCartHandler(cartService, nil),
		CheckoutHandler: storefront.NewCheckoutHandler(flow, cartService, nil),
		OrderHandler:    storefront.NewOrderHandler(service.NewOrderService(client), nil),
		WishlistHandler: storefront.NewWishlistHandler(service.NewWishlistService(client), nil),
	})

	body := `{
		"shipping": {"name":"Ada Lovelace","phone":"+1555000111","email":"ada@example.com","address":"12 Analytical Way"},
		"payment_method": "card",
		"card_complete": true,
		"payment_method_id": "pm_visa"
	}`
	w := doJSON(t, r, http.MethodPost, "/checkout/place-order", body)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "Your card was declined.", parse(t, w).Message)
}

func TestOrderHistory(t *testing.T) {
	client := cartClient()
	client.Orders = []domain.Order{{
		InvoiceNo: "INV-0042",
		Amount:    decimal.RequireFromString("325.00"),
		Tax:       decimal.RequireFromString("15.00"),
		Shipping:  decimal.RequireFromString("10.00"),
		Status:    domain.OrderDelivered,
	}}
	h := newTestServer(t, client)

	w := doJSON(t, h, http.MethodGet, "/orders/INV-0042", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view service.OrderView
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &view))
	assert.Equal(t, "300.00", view.ItemsSubtotal)
}

func TestWishlistAddAndList(t *testing.T) {
	client := cartClient()
	client.Products = []domain.Product{{ID: 10, Name: "Oxford Shirt", SellingPrice: decimal.NewFromInt(100)}}
	h := newTestServer(t, client)

	w := doJSON(t, h, http.MethodPost, "/wishlist/10", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, http.MethodGet, "/wishlist", "")
	require.Equal(t, http.StatusOK, w.Code)

	var products []domain.Product
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Oxford Shirt", products[0].Name)
}
