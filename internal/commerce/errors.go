package commerce

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the commerce API. Message carries the
// server-provided text verbatim so handlers can surface it to the user;
// callers fall back to a generic message when it is empty.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("commerce api: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("commerce api: %d", e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the commerce API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// ServerMessage extracts the verbatim server message from an API error, or
// returns fallback when the error is not an APIError or carries no message.
func ServerMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
