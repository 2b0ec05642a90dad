/**
 * @description
 * This file defines the Repository interfaces consumed by the application
 * services, together with the sentinel errors shared by all store
 * implementations. Each entity gets its own narrow interface; Repository
 * composes them for wiring convenience.
 *
 * Balance mutation is deliberately expressed as atomic repository operations
 * (ApplyBalanceDelta, TransferBalance) so no caller ever performs an
 * unprotected read-modify-write against an account balance.
 */

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already registered")
	ErrAccountNotFound       = errors.New("account not found")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrTransactionNotPending = errors.New("transaction is not pending")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrProfileNotFound       = errors.New("reward profile not found")
)

// UserRepository persists user records.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AccountRepository persists account records and owns all balance mutation.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *domain.Account) error
	// FindAccountByID looks an account up regardless of owner. Reserved for
	// the engine's approval-time re-fetch and admin paths.
	FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// FindAccountForUser scopes the lookup to the owner; a foreign account
	// behaves exactly like a missing one.
	FindAccountForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Account, error)
	// ListAccountsByUser returns the user's non-closed accounts, newest first.
	ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) error
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	// ApplyBalanceDelta atomically adjusts the balance, failing with
	// ErrInsufficientFunds when the resulting balance would drop below zero.
	ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error)
	// TransferBalance debits from and credits to within a single storage
	// transaction. The debit carries the same non-negative guard as
	// ApplyBalanceDelta; on any failure neither account is changed.
	TransferBalance(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error
	CountActiveAccounts(ctx context.Context) (int64, error)
	SumActiveBalances(ctx context.Context) (decimal.Decimal, error)
}

// TransactionRepository persists transaction records.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	FindTransactionForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	// SetTransactionStatus transitions id from the expected status to the new
	// one, failing with ErrTransactionNotPending when the record is no longer
	// in the expected state. This is the monotonicity guard.
	SetTransactionStatus(ctx context.Context, id uuid.UUID, expected, next string) error
	CountTransactions(ctx context.Context) (int64, error)
	CountTransactionsByStatus(ctx context.Context, status string) (int64, error)
}

// RewardsRepository persists reward profiles, quests, badges and events.
type RewardsRepository interface {
	GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*domain.RewardProfile, error)
	UpdateProfile(ctx context.Context, profile *domain.RewardProfile) error
	ListQuests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error)
	ListActiveQuests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error)
	InsertQuests(ctx context.Context, quests []domain.UserQuest) error
	UpdateQuest(ctx context.Context, quest *domain.UserQuest) error
	CountCompletedQuests(ctx context.Context, userID uuid.UUID) (int64, error)
	ListBadges(ctx context.Context, userID uuid.UUID) ([]domain.UserBadge, error)
	// AwardBadge inserts the badge when absent. It returns false when the
	// (user, badge) pair already exists; badges are permanent and unique.
	AwardBadge(ctx context.Context, badge *domain.UserBadge) (bool, error)
	AppendEvent(ctx context.Context, event *domain.RewardEvent) error
	ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEvent, error)
}

// Repository composes the per-entity repositories.
type Repository interface {
	UserRepository
	AccountRepository
	TransactionRepository
	RewardsRepository
}
