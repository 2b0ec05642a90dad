/**
 * @description
 * This file contains the transaction lifecycle engine. It owns the state
 * machine governing a transaction from creation to terminal disposition and
 * performs the associated balance mutation exactly once, at approval time.
 *
 * Key invariants:
 * - A transaction is created in pending state; only a pending transaction
 *   may be approved or rejected, and both are terminal.
 * - Balance effects run only on approval, dispatched by which account
 *   references the transaction carries.
 * - Dispositions are serialized per transaction id, and every balance write
 *   is an atomic conditional update in the store, so a disposition race can
 *   never double-apply a balance effect.
 */

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/pkg/lock"
	"github.com/glabank/banking-service/internal/store"
)

// Transaction validation errors.
var (
	ErrInvalidAmount          = errors.New("valid amount is required")
	ErrDescriptionRequired    = errors.New("description is required")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrFromAccountNotFound    = errors.New("from account not found")
	ErrToAccountNotFound      = errors.New("to account not found")
)

// TransactionService is the transaction lifecycle engine.
type TransactionService struct {
	accounts store.AccountRepository
	txs      store.TransactionRepository
	locks    *lock.KeyedLock
	now      func() time.Time
}

// NewTransactionService creates a new TransactionService instance.
func NewTransactionService(accounts store.AccountRepository, txs store.TransactionRepository) *TransactionService {
	return &TransactionService{
		accounts: accounts,
		txs:      txs,
		locks:    lock.NewKeyedLock(),
		now:      time.Now,
	}
}

// Create validates the request and persists a pending transaction. Nothing
// is persisted when validation fails. The balance check for send-type
// transactions is advisory: it does not reserve funds, and approval checks
// again authoritatively.
func (s *TransactionService) Create(ctx context.Context, callerID uuid.UUID, req domain.CreateTransactionRequest) (*domain.Transaction, error) {
	if req.Amount.LessThan(domain.MinTransactionAmount) {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, ErrDescriptionRequired
	}
	txType := req.Type
	if txType == "" {
		txType = domain.TransactionTypeTransfer
	}
	if !domain.ValidTransactionType(txType) {
		return nil, ErrInvalidTransactionType
	}

	// Referenced accounts must exist and belong to the caller. A foreign
	// account surfaces as not-found, never as forbidden.
	if req.FromAccount != nil {
		fromAcc, err := s.accounts.FindAccountForUser(ctx, *req.FromAccount, callerID)
		if err != nil {
			if errors.Is(err, store.ErrAccountNotFound) {
				return nil, ErrFromAccountNotFound
			}
			return nil, err
		}
		if txType == domain.TransactionTypeSend && fromAcc.Balance.LessThan(req.Amount) {
			return nil, store.ErrInsufficientFunds
		}
	}
	if req.ToAccount != nil {
		if _, err := s.accounts.FindAccountForUser(ctx, *req.ToAccount, callerID); err != nil {
			if errors.Is(err, store.ErrAccountNotFound) {
				return nil, ErrToAccountNotFound
			}
			return nil, err
		}
	}

	tx := &domain.Transaction{
		ID:            uuid.New(),
		UserID:        callerID,
		FromAccountID: req.FromAccount,
		ToAccountID:   req.ToAccount,
		Amount:        req.Amount,
		Description:   strings.TrimSpace(req.Description),
		Type:          txType,
		Status:        domain.TransactionStatusPending,
		Category:      req.Category,
		Date:          s.now(),
	}
	if err := s.txs.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}
	log.Info().
		Str("transaction_id", tx.ID.String()).
		Str("type", tx.Type).
		Str("amount", tx.Amount.String()).
		Msg("transaction created")
	return tx, nil
}

// List returns the caller's transactions, newest first, with optional
// status/type filters.
func (s *TransactionService) List(ctx context.Context, callerID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	return s.txs.ListTransactionsByUser(ctx, callerID, filter)
}

// Get returns one of the caller's transactions.
func (s *TransactionService) Get(ctx context.Context, id, callerID uuid.UUID) (*domain.Transaction, error) {
	return s.txs.FindTransactionForUser(ctx, id, callerID)
}

// Approve applies the balance effect of one of the caller's pending
// transactions and marks it approved.
func (s *TransactionService) Approve(ctx context.Context, id, callerID uuid.UUID) (*domain.Transaction, error) {
	if _, err := s.txs.FindTransactionForUser(ctx, id, callerID); err != nil {
		return nil, err
	}
	return s.disposition(ctx, id, domain.TransactionStatusApproved)
}

// Reject marks one of the caller's pending transactions rejected. No balance
// effect.
func (s *TransactionService) Reject(ctx context.Context, id, callerID uuid.UUID) (*domain.Transaction, error) {
	if _, err := s.txs.FindTransactionForUser(ctx, id, callerID); err != nil {
		return nil, err
	}
	return s.disposition(ctx, id, domain.TransactionStatusRejected)
}

// AdminApprove approves any user's pending transaction.
func (s *TransactionService) AdminApprove(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return s.disposition(ctx, id, domain.TransactionStatusApproved)
}

// AdminReject rejects any user's pending transaction.
func (s *TransactionService) AdminReject(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return s.disposition(ctx, id, domain.TransactionStatusRejected)
}

// disposition drives a pending transaction to a terminal state. The whole
// sequence runs under the per-transaction lock: re-read, apply balance
// effect (approval only), flip status.
func (s *TransactionService) disposition(ctx context.Context, id uuid.UUID, next string) (*domain.Transaction, error) {
	var result *domain.Transaction
	err := s.locks.WithLock(id.String(), func() error {
		tx, err := s.txs.FindTransactionByID(ctx, id)
		if err != nil {
			return err
		}
		if tx.Status != domain.TransactionStatusPending {
			return store.ErrTransactionNotPending
		}

		if next == domain.TransactionStatusApproved {
			if err := s.applyBalanceEffect(ctx, tx); err != nil {
				return err
			}
		}
		if err := s.txs.SetTransactionStatus(ctx, id, domain.TransactionStatusPending, next); err != nil {
			return err
		}
		tx.Status = next
		result = tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("transaction_id", id.String()).
		Str("status", next).
		Msg("transaction disposed")
	return result, nil
}

// applyBalanceEffect dispatches the approval-time balance mutation on the
// account references present. The four branches are mutually exclusive:
//
//	from+to            debit source, credit destination (single storage tx)
//	to only            credit, for receive/deposit types
//	from only          debit with sufficiency guard, for withdrawals
//	anything else      no balance effect
//
// The debit guard re-checks sufficiency at approval time: the creation-time
// check is advisory and the balance may have drifted since.
func (s *TransactionService) applyBalanceEffect(ctx context.Context, tx *domain.Transaction) error {
	switch {
	case tx.FromAccountID != nil && tx.ToAccountID != nil:
		return s.accounts.TransferBalance(ctx, *tx.FromAccountID, *tx.ToAccountID, tx.Amount)

	case tx.ToAccountID != nil &&
		(tx.Type == domain.TransactionTypeReceive || tx.Type == domain.TransactionTypeDeposit):
		_, err := s.accounts.ApplyBalanceDelta(ctx, *tx.ToAccountID, tx.Amount)
		return err

	case tx.FromAccountID != nil && tx.Type == domain.TransactionTypeWithdrawal:
		_, err := s.accounts.ApplyBalanceDelta(ctx, *tx.FromAccountID, tx.Amount.Neg())
		return err

	default:
		return nil
	}
}
