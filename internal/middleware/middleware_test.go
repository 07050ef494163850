package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_BearerToken(t *testing.T) {
	var got string
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer tok_abc")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok_abc", got)
}

func TestSession_Cookie(t *testing.T) {
	var got string
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "tok_cookie"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, "tok_cookie", got)
}

func TestSession_MissingRejected(t *testing.T) {
	handler := Session(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a session")
	}))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, GetRequestID(r.Context()))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/cart":                  "/cart",
		"/cart/items/42":         "/cart/items/:id",
		"/products/7":            "/products/:id",
		"/products/search":       "/products/search",
		"/orders/INV-0042":       "/orders/:invoice_no",
		"/orders/INV-0042/return": "/orders/:invoice_no/return",
		"/wishlist/9":            "/wishlist/:product_id",
		"/checkout/sessions/abc": "/checkout/sessions/:id",
		"/vendor/products/3":     "/vendor/products/:id",
		"/vendor/orders/INV-1/status": "/vendor/orders/:invoice_no/status",
	}

	for path, want := range cases {
		assert.Equal(t, want, normalizePath(path), path)
	}
}
