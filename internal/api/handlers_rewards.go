/**
 * @description
 * Handlers for the rewards layer: profile, daily check-in, quests, badges,
 * the event feed, and level progression. Check-in is rate limited per user
 * when Redis is configured, on top of the once-per-day rule enforced by the
 * service itself.
 */

package api

import (
	"net/http"
	"strconv"
	"time"
)

func (h *Handlers) handleRewardProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	profile, err := h.rewards.Profile(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handlers) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	if ok, retryAfter := h.limiter.Allow(r.Context(), "check_in", user.ID.String(), h.checkInLimit, time.Minute); !ok {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeError(w, http.StatusTooManyRequests, "Too many check-in attempts, please try again later")
		return
	}

	result, err := h.rewards.CheckIn(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleQuests(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	quests, err := h.rewards.Quests(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

func (h *Handlers) handleInitializeQuests(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	quests, err := h.rewards.InitializeQuests(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quests)
}

func (h *Handlers) handleBadges(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	badges, err := h.rewards.Badges(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

func (h *Handlers) handleRewardEvents(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	events, err := h.rewards.Events(r.Context(), user.ID, limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (h *Handlers) handleLevelInfo(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())

	info, err := h.rewards.LevelInfo(r.Context(), user.ID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
