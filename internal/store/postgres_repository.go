/**
 * @description
 * This file provides the PostgreSQL implementation of the user, account and
 * transaction repositories. All balance mutation happens through conditional
 * UPDATE statements so a balance check and its write are a single atomic
 * statement; the two-sided transfer wraps both statements in one database
 * transaction.
 *
 * @dependencies
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Users ---

// CreateUser inserts a new user record. The email is stored lowercased.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES ($1, lower($2), $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Email, user.PasswordHash, user.Name, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user by id.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, name, role, created_at FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

// FindUserByEmail retrieves a user by email, case-insensitively.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, name, role, created_at FROM users WHERE email = lower($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, strings.TrimSpace(email)))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users, newest first.
func (r *PostgresRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT id, email, password_hash, name, role, created_at FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (r *PostgresRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// --- Accounts ---

const accountColumns = `id, user_id, name, type, balance, account_number, status, created_at, updated_at`

// CreateAccount inserts a new account record.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	const query = `
		INSERT INTO accounts (id, user_id, name, type, balance, account_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		account.ID, account.UserID, account.Name, account.Type,
		account.Balance.String(), account.AccountNumber, account.Status,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// FindAccountByID retrieves an account regardless of owner.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRow(ctx, query, id))
}

// FindAccountForUser retrieves an account only when owned by the given user.
func (r *PostgresRepository) FindAccountForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`
	return r.scanAccount(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PostgresRepository) scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID, &account.UserID, &account.Name, &account.Type,
		&account.Balance, &account.AccountNumber, &account.Status,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// ListAccountsByUser returns the user's non-closed accounts, newest first.
func (r *PostgresRepository) ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND status <> 'closed' ORDER BY created_at DESC`
	return r.queryAccounts(ctx, query, userID)
}

// ListAccounts returns every account, newest first.
func (r *PostgresRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC`
	return r.queryAccounts(ctx, query)
}

func (r *PostgresRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID, &account.UserID, &account.Name, &account.Type,
			&account.Balance, &account.AccountNumber, &account.Status,
			&account.CreatedAt, &account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// UpdateAccount persists name and status changes.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, account *domain.Account) error {
	const query = `UPDATE accounts SET name = $2, status = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, account.ID, account.Name, account.Status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// AccountNumberExists reports whether any account already carries the number.
func (r *PostgresRepository) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// ApplyBalanceDelta atomically adjusts the balance. The WHERE clause guards
// against a negative resulting balance so the check and the write are one
// statement.
func (r *PostgresRepository) ApplyBalanceDelta(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	return applyBalanceDelta(ctx, r.db, accountID, delta)
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func applyBalanceDelta(ctx context.Context, q execQuerier, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2::numeric, updated_at = NOW()
		WHERE id = $1 AND balance + $2::numeric >= 0
		RETURNING ` + accountColumns
	var account domain.Account
	err := q.QueryRow(ctx, query, accountID, delta.String()).Scan(
		&account.ID, &account.UserID, &account.Name, &account.Type,
		&account.Balance, &account.AccountNumber, &account.Status,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err == nil {
		return &account, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to apply balance delta: %w", err)
	}

	// No row matched: either the account is missing or the guard rejected
	// the delta. Distinguish the two for the caller.
	var exists bool
	if checkErr := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); checkErr != nil {
		return nil, fmt.Errorf("failed to apply balance delta: %w", checkErr)
	}
	if !exists {
		return nil, ErrAccountNotFound
	}
	return nil, ErrInsufficientFunds
}

// TransferBalance debits fromID and credits toID inside a single database
// transaction. A failed credit rolls the debit back, so partial transfer
// states are never visible.
func (r *PostgresRepository) TransferBalance(ctx context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := applyBalanceDelta(ctx, tx, fromID, amount.Neg()); err != nil {
		return err
	}
	if _, err := applyBalanceDelta(ctx, tx, toID, amount); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// CountActiveAccounts returns the number of active accounts.
func (r *PostgresRepository) CountActiveAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE status = 'active'`).Scan(&count)
	return count, err
}

// SumActiveBalances returns the total balance held across active accounts.
func (r *PostgresRepository) SumActiveBalances(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM accounts WHERE status = 'active'`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// --- Transactions ---

const transactionColumns = `id, user_id, from_account, to_account, amount, description, type, status, category, date`

// CreateTransaction inserts a new transaction record.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	const query = `
		INSERT INTO transactions (id, user_id, from_account, to_account, amount, description, type, status, category, date)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		tx.ID, tx.UserID, tx.FromAccountID, tx.ToAccountID,
		tx.Amount.String(), tx.Description, tx.Type, tx.Status, tx.Category, tx.Date,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// FindTransactionByID retrieves a transaction regardless of owner. Reserved
// for the admin path.
func (r *PostgresRepository) FindTransactionByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.scanTransaction(r.db.QueryRow(ctx, query, id))
}

// FindTransactionForUser retrieves a transaction only when owned by the user.
func (r *PostgresRepository) FindTransactionForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	return r.scanTransaction(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PostgresRepository) scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.FromAccountID, &tx.ToAccountID,
		&tx.Amount, &tx.Description, &tx.Type, &tx.Status, &tx.Category, &tx.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &tx, nil
}

// ListTransactionsByUser returns the user's transactions, newest first,
// optionally filtered by status and type.
func (r *PostgresRepository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultTransactionListLimit
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d", len(args))

	return r.queryTransactions(ctx, query, args...)
}

// ListTransactions returns every transaction, newest first.
func (r *PostgresRepository) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY date DESC`
	return r.queryTransactions(ctx, query)
}

func (r *PostgresRepository) queryTransactions(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.FromAccountID, &tx.ToAccountID,
			&tx.Amount, &tx.Description, &tx.Type, &tx.Status, &tx.Category, &tx.Date,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// SetTransactionStatus transitions the transaction from the expected status.
// The conditional WHERE clause is the status-monotonicity guard: a lost race
// or a terminal record yields ErrTransactionNotPending.
func (r *PostgresRepository) SetTransactionStatus(ctx context.Context, id uuid.UUID, expected, next string) error {
	const query = `UPDATE transactions SET status = $3 WHERE id = $1 AND status = $2`
	tag, err := r.db.Exec(ctx, query, id, expected, next)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if checkErr := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); checkErr != nil {
			return fmt.Errorf("failed to update transaction status: %w", checkErr)
		}
		if !exists {
			return ErrTransactionNotFound
		}
		return ErrTransactionNotPending
	}
	return nil
}

// CountTransactions returns the total number of transactions.
func (r *PostgresRepository) CountTransactions(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	return count, err
}

// CountTransactionsByStatus returns the number of transactions in the status.
func (r *PostgresRepository) CountTransactionsByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE status = $1`, status).Scan(&count)
	return count, err
}
