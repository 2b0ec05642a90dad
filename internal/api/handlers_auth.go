/**
 * @description
 * Handlers for registration, login, and the authenticated profile endpoint.
 * Login is rate limited per source IP when Redis is configured.
 */

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/glabank/banking-service/internal/domain"
)

func authResponse(user *domain.User, token string) domain.AuthResponse {
	pub := user.Public()
	return domain.AuthResponse{
		ID:    pub.ID,
		Email: pub.Email,
		Name:  pub.Name,
		Role:  pub.Role,
		Token: token,
		User:  pub,
	}
}

func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse(user, token))
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if ok, retryAfter := h.limiter.Allow(r.Context(), "login", r.RemoteAddr, h.loginLimit, time.Minute); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeError(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		return
	}

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse(user, token))
}

func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}
	writeJSON(w, http.StatusOK, user.Public())
}
