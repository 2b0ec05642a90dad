package app

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store"
	"github.com/glabank/banking-service/internal/store/memory"
)

func seedTestAccount(t *testing.T, repo store.Repository, userID uuid.UUID, balance string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Test Account",
		Type:          domain.AccountTypeChecking,
		Balance:       decimal.RequireFromString(balance),
		AccountNumber: uuid.NewString()[:16],
		Status:        domain.AccountStatusActive,
	}
	require.NoError(t, repo.CreateAccount(context.Background(), account))
	return account
}

func TestApproveTransferMovesFunds(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	from := seedTestAccount(t, repo, userID, "1000")
	to := seedTestAccount(t, repo, userID, "0")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		FromAccount: &from.ID,
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("400"),
		Description: "Rent share",
		Type:        domain.TransactionTypeSend,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, tx.Status)

	// Creation must not touch balances.
	fromAcc, err := repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, fromAcc.Balance.Equal(decimal.RequireFromString("1000")))

	approved, err := svc.Approve(ctx, tx.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, approved.Status)

	fromAcc, err = repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	toAcc, err := repo.FindAccountByID(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, fromAcc.Balance.Equal(decimal.RequireFromString("600")), "got %s", fromAcc.Balance)
	assert.True(t, toAcc.Balance.Equal(decimal.RequireFromString("400")), "got %s", toAcc.Balance)
}

func TestCreateSendInsufficientFundsNotPersisted(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	from := seedTestAccount(t, repo, userID, "100")
	to := seedTestAccount(t, repo, userID, "0")

	_, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		FromAccount: &from.ID,
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("400"),
		Description: "Too big",
		Type:        domain.TransactionTypeSend,
	})
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	txs, err := svc.List(ctx, userID, domain.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestRejectIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	from := seedTestAccount(t, repo, userID, "1000")
	to := seedTestAccount(t, repo, userID, "0")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		FromAccount: &from.ID,
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("250"),
		Description: "Groceries",
		Type:        domain.TransactionTypeSend,
	})
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, tx.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusRejected, rejected.Status)

	// A terminal transaction cannot be approved afterwards.
	_, err = svc.Approve(ctx, tx.ID, userID)
	require.ErrorIs(t, err, store.ErrTransactionNotPending)

	fromAcc, err := repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	toAcc, err := repo.FindAccountByID(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, fromAcc.Balance.Equal(decimal.RequireFromString("1000")))
	assert.True(t, toAcc.Balance.Equal(decimal.Zero))
}

func TestApproveTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	to := seedTestAccount(t, repo, userID, "0")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("50"),
		Description: "Paycheck",
		Type:        domain.TransactionTypeDeposit,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, tx.ID, userID)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, tx.ID, userID)
	require.ErrorIs(t, err, store.ErrTransactionNotPending)

	// The balance effect must have applied exactly once.
	toAcc, err := repo.FindAccountByID(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, toAcc.Balance.Equal(decimal.RequireFromString("50")))
}

func TestApprovalTimeInsufficiencyLeavesPending(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	from := seedTestAccount(t, repo, userID, "500")
	to := seedTestAccount(t, repo, userID, "0")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		FromAccount: &from.ID,
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("400"),
		Description: "Delayed payment",
		Type:        domain.TransactionTypeSend,
	})
	require.NoError(t, err)

	// Drain the source after creation: the advisory check passed, but the
	// approval-time guard must now fail.
	_, err = repo.ApplyBalanceDelta(ctx, from.ID, decimal.RequireFromString("-300"))
	require.NoError(t, err)

	_, err = svc.Approve(ctx, tx.ID, userID)
	require.ErrorIs(t, err, store.ErrInsufficientFunds)

	current, err := repo.FindTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, current.Status)

	fromAcc, err := repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	toAcc, err := repo.FindAccountByID(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, fromAcc.Balance.Equal(decimal.RequireFromString("200")))
	assert.True(t, toAcc.Balance.Equal(decimal.Zero))
}

func TestWithdrawalDebitsSource(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	from := seedTestAccount(t, repo, userID, "80")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		FromAccount: &from.ID,
		Amount:      decimal.RequireFromString("30"),
		Description: "ATM withdrawal",
		Type:        domain.TransactionTypeWithdrawal,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, tx.ID, userID)
	require.NoError(t, err)

	fromAcc, err := repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	assert.True(t, fromAcc.Balance.Equal(decimal.RequireFromString("50")))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	account := seedTestAccount(t, repo, userID, "100")

	tests := []struct {
		name    string
		req     domain.CreateTransactionRequest
		wantErr error
	}{
		{
			name: "amount below minimum",
			req: domain.CreateTransactionRequest{
				ToAccount:   &account.ID,
				Amount:      decimal.Zero,
				Description: "x",
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name: "blank description",
			req: domain.CreateTransactionRequest{
				ToAccount:   &account.ID,
				Amount:      decimal.RequireFromString("10"),
				Description: "   ",
			},
			wantErr: ErrDescriptionRequired,
		},
		{
			name: "unknown type",
			req: domain.CreateTransactionRequest{
				ToAccount:   &account.ID,
				Amount:      decimal.RequireFromString("10"),
				Description: "x",
				Type:        "wire",
			},
			wantErr: ErrInvalidTransactionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, userID, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestForeignAccountSurfacesAsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	owner := uuid.New()
	stranger := uuid.New()
	account := seedTestAccount(t, repo, owner, "1000")

	_, err := svc.Create(ctx, stranger, domain.CreateTransactionRequest{
		FromAccount: &account.ID,
		Amount:      decimal.RequireFromString("10"),
		Description: "Sneaky",
		Type:        domain.TransactionTypeWithdrawal,
	})
	require.ErrorIs(t, err, ErrFromAccountNotFound)
}

func TestCreateDefaultsToTransferType(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewTransactionService(repo, repo)

	userID := uuid.New()
	to := seedTestAccount(t, repo, userID, "0")

	tx, err := svc.Create(ctx, userID, domain.CreateTransactionRequest{
		ToAccount:   &to.ID,
		Amount:      decimal.RequireFromString("10"),
		Description: "No type given",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTransfer, tx.Type)
}
