/**
 * @description
 * This file contains the account provisioning service. Account numbers are
 * 16-digit numerals drawn at random, checked for uniqueness with a bounded
 * number of retries, then derived from the clock as a last resort. This
 * bounded-retry-then-fallback policy trades perfect uniqueness for
 * availability and is part of the provisioning contract.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store"
)

// Account validation errors.
var (
	ErrNameAndTypeRequired = errors.New("name and type are required")
	ErrInvalidAccountType  = errors.New("invalid account type")
	ErrInvalidStatus       = errors.New("invalid account status")
	ErrNegativeBalance     = errors.New("initial balance cannot be negative")
)

// accountNumberAttempts bounds the random-draw retries before the
// timestamp fallback kicks in.
const accountNumberAttempts = 10

// AccountService provisions and manages accounts.
type AccountService struct {
	repo store.AccountRepository

	// randomNumber and now are swappable for tests.
	randomNumber func() string
	now          func() time.Time
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(repo store.AccountRepository) *AccountService {
	return &AccountService{
		repo:         repo,
		randomNumber: randomAccountNumber,
		now:          time.Now,
	}
}

// randomAccountNumber draws a uniform 16-digit numeral (first digit 1-9).
func randomAccountNumber() string {
	n := 1_000_000_000_000_000 + rand.Int63n(9_000_000_000_000_000)
	return strconv.FormatInt(n, 10)
}

// fallbackAccountNumber derives a 16-digit numeral from the clock.
func fallbackAccountNumber(now time.Time) string {
	s := strconv.FormatInt(now.UnixNano(), 10)
	if len(s) >= 16 {
		return s[len(s)-16:]
	}
	return strings.Repeat("0", 16-len(s)) + s
}

// generateAccountNumber draws random candidates until one is unused, up to
// accountNumberAttempts, then falls back to a timestamp-derived value.
func (s *AccountService) generateAccountNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		candidate := s.randomNumber()
		exists, err := s.repo.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	fallback := fallbackAccountNumber(s.now())
	log.Warn().Str("account_number", fallback).Msg("account number generation exhausted retries, using timestamp fallback")
	return fallback, nil
}

// Create provisions an active account for the owner.
func (s *AccountService) Create(ctx context.Context, ownerID uuid.UUID, req domain.CreateAccountRequest) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Type == "" {
		return nil, ErrNameAndTypeRequired
	}
	if !domain.ValidAccountType(req.Type) {
		return nil, ErrInvalidAccountType
	}
	balance := decimal.Zero
	if req.InitialBalance != nil {
		if req.InitialBalance.IsNegative() {
			return nil, ErrNegativeBalance
		}
		balance = *req.InitialBalance
	}

	number, err := s.generateAccountNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        ownerID,
		Name:          name,
		Type:          req.Type,
		Balance:       balance,
		AccountNumber: number,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// List returns the owner's non-closed accounts.
func (s *AccountService) List(ctx context.Context, ownerID uuid.UUID) ([]domain.Account, error) {
	return s.repo.ListAccountsByUser(ctx, ownerID)
}

// Get returns one of the owner's accounts. Foreign accounts surface as
// not-found to avoid leaking their existence.
func (s *AccountService) Get(ctx context.Context, id, ownerID uuid.UUID) (*domain.Account, error) {
	return s.repo.FindAccountForUser(ctx, id, ownerID)
}

// Update applies name and status changes to one of the owner's accounts.
func (s *AccountService) Update(ctx context.Context, id, ownerID uuid.UUID, req domain.UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.repo.FindAccountForUser(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		if !domain.ValidAccountStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		account.Status = *req.Status
	}
	if err := s.repo.UpdateAccount(ctx, account); err != nil {
		return nil, err
	}
	return s.repo.FindAccountForUser(ctx, id, ownerID)
}

// Close soft-closes one of the owner's accounts. There is no reopen path.
func (s *AccountService) Close(ctx context.Context, id, ownerID uuid.UUID) error {
	account, err := s.repo.FindAccountForUser(ctx, id, ownerID)
	if err != nil {
		return err
	}
	account.Status = domain.AccountStatusClosed
	return s.repo.UpdateAccount(ctx, account)
}
