/**
 * @description
 * Handlers for the transaction resource. Creation records a pending
 * transaction with no balance effect; the approve and reject endpoints drive
 * the one-way disposition that applies or discards the balance change.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glabank/banking-service/internal/domain"
)

func (h *Handlers) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	filter := domain.TransactionFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	txs, err := h.transactions.List(r.Context(), user.ID, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handlers) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req domain.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.transactions.Create(r.Context(), user.ID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *Handlers) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.transactions.Get(r.Context(), id, user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handlers) handleApproveTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.transactions.Approve(r.Context(), id, user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handlers) handleRejectTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.transactions.Reject(r.Context(), id, user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
