// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"papertrade/internal/api/types"
	"papertrade/internal/util" // For custom errors
)

// DefaultTimeout bounds every request. It leaves room for one quote lookup.
const DefaultTimeout = 15 * time.Second

// responder holds the JSON helpers shared by all handlers.
type responder struct {
	logger *slog.Logger
}

// Helper function to send JSON responses.
func (h responder) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithData wraps data and an optional flash message in the success envelope.
func respondWithData[T any](h responder, w http.ResponseWriter, code int, message string, data T) {
	h.respondWithJSON(w, code, types.Response[T]{Message: message, Data: data})
}

// Helper function to send error responses.
func (h responder) respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := StatusFor(err)
	if statusCode == http.StatusInternalServerError {
		h.logger.Error("Unhandled service error", "error", err)
	}
	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// StatusFor maps a service error to its HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	switch {
	case util.IsError(err, util.ErrInvalidInput):
		return http.StatusBadRequest, err.Error() // Use the error message directly for invalid input
	case util.IsError(err, util.ErrUnauthenticated), util.IsError(err, util.ErrUserNotFound):
		return http.StatusUnauthorized, util.ErrUnauthenticated.Error()
	case util.IsError(err, util.ErrInvalidCredentials):
		return http.StatusForbidden, util.ErrInvalidCredentials.Error()
	case util.IsError(err, util.ErrUnknownSymbol):
		return http.StatusNotFound, util.ErrUnknownSymbol.Error()
	case util.IsError(err, util.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case util.IsError(err, util.ErrUsernameTaken):
		return http.StatusConflict, util.ErrUsernameTaken.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		return http.StatusPaymentRequired, util.ErrInsufficientFunds.Error() // 402 Payment Required
	case util.IsError(err, util.ErrInsufficientHoldings):
		return http.StatusUnprocessableEntity, util.ErrInsufficientHoldings.Error()
	case util.IsError(err, util.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, util.ErrServiceUnavailable.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
