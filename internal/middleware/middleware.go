// Package middleware holds the HTTP middleware shared by the storefront and
// vendor route groups.
package middleware

// contextKey is a private type for context values set by middleware.
type contextKey string
