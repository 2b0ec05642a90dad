/**
 * @description
 * JSON response helpers shared by all handlers, including the uniform error
 * body and the mapping from domain errors to HTTP statuses. The error body
 * shape is {"message": string} with an optional "stack" field that is only
 * populated outside production.
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/glabank/banking-service/internal/app"
	"github.com/glabank/banking-service/internal/store"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Error().Err(err).Msg("failed to encode response")
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}

// errorMapping pairs a sentinel error with its HTTP representation.
type errorMapping struct {
	err     error
	status  int
	message string
}

var errorMappings = []errorMapping{
	{app.ErrMissingFields, http.StatusBadRequest, "All fields are required"},
	{app.ErrPasswordTooShort, http.StatusBadRequest, "Password must be at least 6 characters"},
	{app.ErrEmailExists, http.StatusBadRequest, "User already exists"},
	{app.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{app.ErrNameAndTypeRequired, http.StatusBadRequest, "Name and type are required"},
	{app.ErrInvalidAccountType, http.StatusBadRequest, "Invalid account type"},
	{app.ErrInvalidStatus, http.StatusBadRequest, "Invalid account status"},
	{app.ErrNegativeBalance, http.StatusBadRequest, "Initial balance cannot be negative"},
	{app.ErrInvalidAmount, http.StatusBadRequest, "Valid amount is required"},
	{app.ErrDescriptionRequired, http.StatusBadRequest, "Description is required"},
	{app.ErrInvalidTransactionType, http.StatusBadRequest, "Invalid transaction type"},
	{app.ErrFromAccountNotFound, http.StatusNotFound, "From account not found"},
	{app.ErrToAccountNotFound, http.StatusNotFound, "To account not found"},
	{app.ErrAlreadyCheckedIn, http.StatusBadRequest, "Already checked in today"},
	{store.ErrInsufficientFunds, http.StatusBadRequest, "Insufficient balance"},
	{store.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
	{store.ErrTransactionNotFound, http.StatusNotFound, "Transaction not found"},
	{store.ErrTransactionNotPending, http.StatusBadRequest, "Transaction is not pending"},
	{store.ErrUserNotFound, http.StatusNotFound, "User not found"},
}

// respondError maps a service error onto the wire. Unrecognized errors are
// logged and surfaced as 500s, with a stack trace outside production.
func (h *Handlers) respondError(w http.ResponseWriter, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.message)
			return
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	body := errorBody{Message: "Internal server error"}
	if !h.production {
		body.Message = err.Error()
		body.Stack = string(debug.Stack())
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
