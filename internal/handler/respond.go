// Package handler holds the JSON response helpers shared by the storefront
// and vendor handler packages.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dstrand/vitrine/internal/domain"
)

// envelope is the uniform JSON response shape.
type envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a success response.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

// Message writes a success response with a message and no data.
func Message(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Message: message})
}

// Error writes an error response. The HTTP status is derived from the
// domain error code; the message is the customer-facing one carried by the
// error.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFromCode(domain.ErrorCode(err))

	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "op", domain.ErrorOp(err), "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: domain.ErrorMessage(err)})
}

// BadRequest writes a 400 with a plain message, for malformed payloads that
// never reach the service layer.
func BadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: message})
}

// Decode reads a JSON request body into dst.
func Decode(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func statusFromCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusUnprocessableEntity
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests
	case domain.EUNAVAILABLE:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
