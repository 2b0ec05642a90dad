/**
 * @description
 * Handlers for the admin console: aggregate stats, global listings, and the
 * admin override on transaction disposition. All routes sit behind the admin
 * role gate.
 */

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glabank/banking-service/internal/domain"
)

func (h *Handlers) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handlers) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	public := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}
	writeJSON(w, http.StatusOK, public)
}

func (h *Handlers) handleAdminListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.admin.ListAccounts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handlers) handleAdminListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.admin.ListTransactions(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handlers) handleAdminApprove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.transactions.AdminApprove(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (h *Handlers) handleAdminReject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := h.transactions.AdminReject(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}
