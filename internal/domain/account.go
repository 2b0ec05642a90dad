/**
 * @description
 * This file defines the account domain model. An account is a balance-bearing
 * record owned by exactly one user. Balances are stored as decimals to avoid
 * floating-point inaccuracies with currency amounts.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account types.
const (
	AccountTypeChecking = "checking"
	AccountTypeSavings  = "savings"
	AccountTypeCredit   = "credit"
)

// Account statuses. Transitions active -> inactive -> closed are one-way in
// intent; no resurrection path exists.
const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusClosed   = "closed"
)

// ValidAccountType reports whether t is one of the supported account types.
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit:
		return true
	}
	return false
}

// ValidAccountStatus reports whether s is a known account status.
func ValidAccountStatus(s string) bool {
	switch s {
	case AccountStatusActive, AccountStatusInactive, AccountStatusClosed:
		return true
	}
	return false
}

// Account represents a user's balance-bearing account. The AccountNumber is a
// 16-digit numeral string, globally unique, generated at creation. The store
// enforces Balance >= 0.
type Account struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	Balance       decimal.Decimal `json:"balance"`
	AccountNumber string          `json:"account_number"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateAccountRequest is the DTO for account creation.
type CreateAccountRequest struct {
	Name           string           `json:"name"`
	Type           string           `json:"type"`
	InitialBalance *decimal.Decimal `json:"initial_balance,omitempty"`
}

// UpdateAccountRequest is the DTO for account updates. Nil fields are left
// unchanged.
type UpdateAccountRequest struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}
