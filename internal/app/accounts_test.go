package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store"
	"github.com/glabank/banking-service/internal/store/memory"
)

func TestCreateAccountDefaults(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(memory.New())

	account, err := svc.Create(ctx, uuid.New(), domain.CreateAccountRequest{
		Name: "Everyday",
		Type: domain.AccountTypeChecking,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.True(t, account.Balance.Equal(decimal.Zero))
	assert.Len(t, account.AccountNumber, 16)
}

func TestCreateAccountValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(memory.New())
	negative := decimal.RequireFromString("-5")

	tests := []struct {
		name    string
		req     domain.CreateAccountRequest
		wantErr error
	}{
		{"missing name", domain.CreateAccountRequest{Type: domain.AccountTypeSavings}, ErrNameAndTypeRequired},
		{"missing type", domain.CreateAccountRequest{Name: "Rainy Day"}, ErrNameAndTypeRequired},
		{"unknown type", domain.CreateAccountRequest{Name: "X", Type: "offshore"}, ErrInvalidAccountType},
		{"negative balance", domain.CreateAccountRequest{Name: "X", Type: domain.AccountTypeSavings, InitialBalance: &negative}, ErrNegativeBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, uuid.New(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAccountNumberCollisionFallback(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewAccountService(repo)

	userID := uuid.New()
	taken := "1234567890123456"
	_, err := svc.Create(ctx, userID, domain.CreateAccountRequest{
		Name: "First",
		Type: domain.AccountTypeChecking,
	})
	require.NoError(t, err)

	seed := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Holder",
		Type:          domain.AccountTypeChecking,
		Balance:       decimal.Zero,
		AccountNumber: taken,
		Status:        domain.AccountStatusActive,
	}
	require.NoError(t, repo.CreateAccount(ctx, seed))

	// Every random draw collides, so provisioning must fall back to the
	// timestamp-derived number.
	fixed := time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC)
	svc.randomNumber = func() string { return taken }
	svc.now = func() time.Time { return fixed }

	account, err := svc.Create(ctx, userID, domain.CreateAccountRequest{
		Name: "Second",
		Type: domain.AccountTypeSavings,
	})
	require.NoError(t, err)
	assert.Equal(t, fallbackAccountNumber(fixed), account.AccountNumber)
	assert.Len(t, account.AccountNumber, 16)
}

func TestUpdateAccountNameAndStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(memory.New())
	userID := uuid.New()

	account, err := svc.Create(ctx, userID, domain.CreateAccountRequest{
		Name: "Old Name",
		Type: domain.AccountTypeChecking,
	})
	require.NoError(t, err)

	newName := "New Name"
	inactive := domain.AccountStatusInactive
	updated, err := svc.Update(ctx, account.ID, userID, domain.UpdateAccountRequest{
		Name:   &newName,
		Status: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, domain.AccountStatusInactive, updated.Status)

	bogus := "frozen"
	_, err = svc.Update(ctx, account.ID, userID, domain.UpdateAccountRequest{Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCloseAccountHidesItFromListing(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewAccountService(repo)
	userID := uuid.New()

	account, err := svc.Create(ctx, userID, domain.CreateAccountRequest{
		Name: "Short-lived",
		Type: domain.AccountTypeChecking,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Close(ctx, account.ID, userID))

	listed, err := svc.List(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The record itself survives as closed.
	closed, err := repo.FindAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusClosed, closed.Status)
}

func TestGetForeignAccountNotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewAccountService(memory.New())

	owner := uuid.New()
	account, err := svc.Create(ctx, owner, domain.CreateAccountRequest{
		Name: "Private",
		Type: domain.AccountTypeSavings,
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, account.ID, uuid.New())
	require.ErrorIs(t, err, store.ErrAccountNotFound)
}
