/**
 * @description
 * Handlers for the account resource. All routes are owner scoped: a user can
 * only see and mutate their own accounts.
 */

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glabank/banking-service/internal/domain"
)

func (h *Handlers) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	accounts, err := h.accounts.List(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handlers) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accounts.Create(r.Context(), user.ID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (h *Handlers) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	account, err := h.accounts.Get(r.Context(), id, user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handlers) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	var req domain.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.accounts.Update(r.Context(), id, user.ID, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *Handlers) handleCloseAccount(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Account not found")
		return
	}

	if err := h.accounts.Close(r.Context(), id, user.ID); err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account closed successfully"})
}
