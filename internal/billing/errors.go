package billing

import (
	"errors"
	"fmt"
)

var (
	// ErrPaymentDeclined is returned when the gateway declines the charge.
	// Wrapped errors carry the decline detail for logging.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrIntentNotFound is returned when the payment intent does not exist.
	ErrIntentNotFound = errors.New("payment intent not found")

	// ErrInvalidSignature is returned for unverifiable webhook payloads.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// DeclineError carries the customer-safe decline message from the gateway.
type DeclineError struct {
	Code        string
	DeclineCode string
	Message     string
}

func (e *DeclineError) Error() string {
	if e.DeclineCode != "" {
		return fmt.Sprintf("payment declined (%s/%s): %s", e.Code, e.DeclineCode, e.Message)
	}
	return fmt.Sprintf("payment declined (%s): %s", e.Code, e.Message)
}

// Unwrap lets errors.Is(err, ErrPaymentDeclined) match decline errors.
func (e *DeclineError) Unwrap() error {
	return ErrPaymentDeclined
}

// DeclineMessage extracts a message safe to show the customer, or returns
// fallback for non-decline errors.
func DeclineMessage(err error, fallback string) string {
	var decline *DeclineError
	if errors.As(err, &decline) && decline.Message != "" {
		return decline.Message
	}
	return fallback
}
