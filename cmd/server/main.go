/**
 * @description
 * This is the main entry point for the banking service. It is responsible for
 * initializing all components: configuration, logging, the storage backend,
 * the optional Redis rate limiter, the application services, and the HTTP
 * server. It wires everything together and runs until interrupted.
 *
 * @dependencies
 * - github.com/joho/godotenv: Optional .env loading for local development.
 * - github.com/rs/zerolog: Structured logging.
 * - github.com/redis/go-redis/v9: Optional distributed rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 */

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glabank/banking-service/internal/api"
	"github.com/glabank/banking-service/internal/app"
	"github.com/glabank/banking-service/internal/config"
	"github.com/glabank/banking-service/internal/pkg/db"
	"github.com/glabank/banking-service/internal/store"
	"github.com/glabank/banking-service/internal/store/memory"
)

func main() {
	// The .env file is optional; environment variables win.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg)

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		if cfg.IsProduction() {
			log.Fatal().Msg("JWT_SECRET must be configured in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
		log.Warn().Msg("JWT_SECRET not set, using insecure development default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, cleanup := buildRepository(ctx, cfg)
	defer cleanup()

	limiter := buildRateLimiter(ctx, cfg)

	authService := app.NewAuthService(repo, cfg.JWTSecret, cfg.JWTExpiry)
	accountService := app.NewAccountService(repo)
	transactionService := app.NewTransactionService(repo, repo)
	rewardsService := app.NewRewardsService(repo)
	adminService := app.NewAdminService(repo)

	handlers := api.NewHandlers(&cfg, authService, accountService, transactionService, rewardsService, adminService, limiter)
	router := api.NewRouter(&cfg, handlers)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Starting banking service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Server stopped")
}

func setupLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// buildRepository selects the storage backend. With DATABASE_URL set the
// service runs on PostgreSQL; without it the in-memory store keeps the
// service fully usable for local development and demos.
func buildRepository(ctx context.Context, cfg config.Config) (store.Repository, func()) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Warn().Msg("DATABASE_URL not set, using in-memory store (data is not persisted)")
		return memory.New(), func() {}
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	if err := store.EnsureSchema(ctx, pool.Pool); err != nil {
		pool.Close()
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	return store.NewPostgresRepository(pool.Pool), pool.Close
}

// buildRateLimiter returns a nil-safe limiter. Without REDIS_URL rate
// limiting is disabled and every check passes.
func buildRateLimiter(ctx context.Context, cfg config.Config) *app.RedisRateLimiter {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		log.Info().Msg("REDIS_URL not set, rate limiting disabled")
		return app.NewRedisRateLimiter(nil, cfg.RedisRateLimitPrefix)
	}

	options, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid REDIS_URL, rate limiting disabled")
		return app.NewRedisRateLimiter(nil, cfg.RedisRateLimitPrefix)
	}

	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Msg("Redis ping failed, rate limiting disabled")
		_ = client.Close()
		return app.NewRedisRateLimiter(nil, cfg.RedisRateLimitPrefix)
	}

	log.Info().Msg("Redis connected, rate limiting enabled")
	return app.NewRedisRateLimiter(client, cfg.RedisRateLimitPrefix)
}
