/**
 * @description
 * HTTP router for the banking service. Wires the chi middleware stack, CORS,
 * and all route groups under /api. Route groups mirror the resource model:
 * auth, accounts, transactions, rewards, and the admin console.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glabank/banking-service/internal/app"
	"github.com/glabank/banking-service/internal/config"
)

// Handlers bundles the application services behind the HTTP surface.
type Handlers struct {
	auth         *app.AuthService
	accounts     *app.AccountService
	transactions *app.TransactionService
	rewards      *app.RewardsService
	admin        *app.AdminService
	limiter      *app.RedisRateLimiter

	production   bool
	loginLimit   int
	checkInLimit int
}

// NewHandlers builds the handler set from the assembled services.
func NewHandlers(
	cfg *config.Config,
	auth *app.AuthService,
	accounts *app.AccountService,
	transactions *app.TransactionService,
	rewards *app.RewardsService,
	admin *app.AdminService,
	limiter *app.RedisRateLimiter,
) *Handlers {
	return &Handlers{
		auth:         auth,
		accounts:     accounts,
		transactions: transactions,
		rewards:      rewards,
		admin:        admin,
		limiter:      limiter,
		production:   cfg.IsProduction(),
		loginLimit:   cfg.LoginRateLimitPerMin,
		checkInLimit: cfg.CheckInRateLimitPerMin,
	}
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(cfg *config.Config, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.handleRegister)
			r.Post("/login", h.handleLogin)
			r.With(h.requireAuth).Get("/me", h.handleMe)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/", h.handleListAccounts)
			r.Post("/", h.handleCreateAccount)
			r.Get("/{id}", h.handleGetAccount)
			r.Put("/{id}", h.handleUpdateAccount)
			r.Delete("/{id}", h.handleCloseAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/", h.handleListTransactions)
			r.Post("/", h.handleCreateTransaction)
			r.Get("/{id}", h.handleGetTransaction)
			r.Post("/{id}/approve", h.handleApproveTransaction)
			r.Post("/{id}/reject", h.handleRejectTransaction)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/profile", h.handleRewardProfile)
			r.Post("/check-in", h.handleCheckIn)
			r.Get("/quests", h.handleQuests)
			r.Post("/quests/initialize", h.handleInitializeQuests)
			r.Get("/badges", h.handleBadges)
			r.Get("/events", h.handleRewardEvents)
			r.Get("/level-info", h.handleLevelInfo)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Use(h.requireAdmin)
			r.Get("/stats", h.handleAdminStats)
			r.Get("/users", h.handleAdminListUsers)
			r.Get("/accounts", h.handleAdminListAccounts)
			r.Get("/transactions", h.handleAdminListTransactions)
			r.Post("/transactions/{id}/approve", h.handleAdminApprove)
			r.Post("/transactions/{id}/reject", h.handleAdminReject)
		})
	})

	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
