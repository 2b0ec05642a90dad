/**
 * @description
 * This file defines the transaction domain model. A transaction is a request
 * to move or apply funds, progressing pending -> approved|rejected. Status is
 * monotonic: once terminal it never changes, and only a pending transaction
 * may be approved or rejected.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction types. The type selects which balance-mutation branch runs at
// approval time.
const (
	TransactionTypeSend       = "send"
	TransactionTypeReceive    = "receive"
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
)

// Transaction statuses.
const (
	TransactionStatusPending  = "pending"
	TransactionStatusApproved = "approved"
	TransactionStatusRejected = "rejected"
)

// MinTransactionAmount is the smallest accepted amount.
var MinTransactionAmount = decimal.RequireFromString("0.01")

// ValidTransactionType reports whether t is one of the supported types.
func ValidTransactionType(t string) bool {
	switch t {
	case TransactionTypeSend, TransactionTypeReceive, TransactionTypeDeposit,
		TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction represents a single funds movement request. FromAccountID and
// ToAccountID are optional: a pure deposit carries only ToAccountID, a pure
// withdrawal only FromAccountID, a transfer both.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	FromAccountID *uuid.UUID      `json:"from_account,omitempty"`
	ToAccountID   *uuid.UUID      `json:"to_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Category      *string         `json:"category,omitempty"`
	Date          time.Time       `json:"date"`
}

// CreateTransactionRequest is the DTO for transaction creation.
type CreateTransactionRequest struct {
	FromAccount *uuid.UUID      `json:"from_account,omitempty"`
	ToAccount   *uuid.UUID      `json:"to_account,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Type        string          `json:"type,omitempty"`
	Category    *string         `json:"category,omitempty"`
}

// TransactionFilter narrows transaction listings. Zero values mean "no
// filter"; Limit <= 0 falls back to the default of 50.
type TransactionFilter struct {
	Status string
	Type   string
	Limit  int
}

// DefaultTransactionListLimit caps unfiltered transaction listings.
const DefaultTransactionListLimit = 50
