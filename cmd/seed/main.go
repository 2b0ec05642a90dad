/**
 * @description
 * Seed CLI. Provisions the demo admin and test users with their accounts and
 * a fresh reward profile. Safe to run repeatedly: existing users are left
 * untouched. Passwords come from SEED_ADMIN_PASSWORD / SEED_USER_PASSWORD or,
 * when unset on an interactive terminal, from a hidden prompt.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/glabank/banking-service/internal/app"
	"github.com/glabank/banking-service/internal/config"
	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/pkg/db"
	"github.com/glabank/banking-service/internal/store"
)

const (
	adminEmail = "admin@glabank.com"
	userEmail  = "test@glabank.com"
)

type seedAccount struct {
	name        string
	accountType string
	balance     decimal.Decimal
}

var demoAccounts = []seedAccount{
	{name: "Primary Checking", accountType: domain.AccountTypeChecking, balance: decimal.NewFromInt(5000)},
	{name: "Savings Account", accountType: domain.AccountTypeSavings, balance: decimal.NewFromInt(10000)},
	{name: "Credit Card", accountType: domain.AccountTypeCredit, balance: decimal.Zero},
}

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal().Msg("DATABASE_URL must be set to seed the database")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool.Pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}
	repo := store.NewPostgresRepository(pool.Pool)

	adminPassword := resolvePassword("SEED_ADMIN_PASSWORD", adminEmail)
	userPassword := resolvePassword("SEED_USER_PASSWORD", userEmail)

	admin, created, err := ensureUser(ctx, repo, adminEmail, adminPassword, "Admin", domain.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin user")
	}
	log.Info().Str("email", admin.Email).Bool("created", created).Msg("Admin user ready")

	user, created, err := ensureUser(ctx, repo, userEmail, userPassword, "Test User", domain.RoleUser)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed test user")
	}
	log.Info().Str("email", user.Email).Bool("created", created).Msg("Test user ready")

	if created {
		accounts := app.NewAccountService(repo)
		for _, a := range demoAccounts {
			balance := a.balance
			acct, err := accounts.Create(ctx, user.ID, domain.CreateAccountRequest{
				Name:           a.name,
				Type:           a.accountType,
				InitialBalance: &balance,
			})
			if err != nil {
				log.Fatal().Err(err).Str("account", a.name).Msg("Failed to seed account")
			}
			log.Info().Str("account", acct.Name).Str("number", acct.AccountNumber).Msg("Account created")
		}

		if _, err := repo.GetOrCreateProfile(ctx, user.ID); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed reward profile")
		}
		log.Info().Msg("Reward profile created")
	}

	log.Info().Msg("Seeding complete")
}

// ensureUser creates the user unless the email is already registered. The
// bool result reports whether a new record was inserted.
func ensureUser(ctx context.Context, repo store.Repository, email, password, name, role string) (*domain.User, bool, error) {
	existing, err := repo.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// resolvePassword reads the named env var, falling back to a hidden terminal
// prompt when running interactively.
func resolvePassword(envVar, email string) string {
	if password := strings.TrimSpace(os.Getenv(envVar)); password != "" {
		return password
	}
	if !term.IsTerminal(int(syscall.Stdin)) {
		log.Fatal().Str("env", envVar).Msg("Password env var not set and no terminal available")
	}

	fmt.Fprintf(os.Stderr, "Password for %s: ", email)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read password")
	}
	password := strings.TrimSpace(string(raw))
	if len(password) < app.MinPasswordLength {
		log.Fatal().Int("min_length", app.MinPasswordLength).Msg("Password too short")
	}
	return password
}
