// Integration tests for the PostgreSQL repository. A throwaway PostgreSQL
// container is started per test run; tests are skipped when Docker is not
// available.
package store

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/glabank/banking-service/internal/domain"
)

func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	return cmd.Run() == nil
}

func setupTestRepo(t *testing.T) *PostgresRepository {
	t.Helper()
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("bankingtest"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, pool))

	t.Cleanup(func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	})

	return NewPostgresRepository(pool)
}

func createTestUser(t *testing.T, repo *PostgresRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         domain.RoleUser,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func createTestAccount(t *testing.T, repo *PostgresRepository, userID uuid.UUID, balance string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          "Account",
		Type:          domain.AccountTypeChecking,
		Balance:       decimal.RequireFromString(balance),
		AccountNumber: uuid.NewString()[:16],
		Status:        domain.AccountStatusActive,
	}
	require.NoError(t, repo.CreateAccount(context.Background(), account))
	return account
}

func TestPostgresUserRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")

	byID, err := repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.FindUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.FindUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)

	// The unique index catches case-variant duplicates.
	dup := &domain.User{
		ID:           uuid.New(),
		Email:        "Alice@Example.com",
		PasswordHash: "y",
		Name:         "Dup",
		Role:         domain.RoleUser,
	}
	err = repo.CreateUser(ctx, dup)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestPostgresApplyBalanceDeltaGuard(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	account := createTestAccount(t, repo, user.ID, "100")

	updated, err := repo.ApplyBalanceDelta(ctx, account.ID, decimal.RequireFromString("-40"))
	require.NoError(t, err)
	assert.True(t, updated.Balance.Equal(decimal.RequireFromString("60")), "got %s", updated.Balance)

	// Overdraw fails and leaves the balance untouched.
	_, err = repo.ApplyBalanceDelta(ctx, account.ID, decimal.RequireFromString("-100"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	current, err := repo.FindAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, current.Balance.Equal(decimal.RequireFromString("60")))

	_, err = repo.ApplyBalanceDelta(ctx, uuid.New(), decimal.RequireFromString("-1"))
	require.ErrorIs(t, err, ErrAccountNotFound)
}

func TestPostgresTransferBalanceAtomicity(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	from := createTestAccount(t, repo, user.ID, "100")
	to := createTestAccount(t, repo, user.ID, "0")

	require.NoError(t, repo.TransferBalance(ctx, from.ID, to.ID, decimal.RequireFromString("30")))

	// A failing transfer must change neither side.
	err := repo.TransferBalance(ctx, from.ID, to.ID, decimal.RequireFromString("500"))
	require.ErrorIs(t, err, ErrInsufficientFunds)

	fromAfter, err := repo.FindAccountByID(ctx, from.ID)
	require.NoError(t, err)
	toAfter, err := repo.FindAccountByID(ctx, to.ID)
	require.NoError(t, err)
	assert.True(t, fromAfter.Balance.Equal(decimal.RequireFromString("70")), "got %s", fromAfter.Balance)
	assert.True(t, toAfter.Balance.Equal(decimal.RequireFromString("30")), "got %s", toAfter.Balance)
}

func TestPostgresTransactionStatusGuard(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	account := createTestAccount(t, repo, user.ID, "100")

	tx := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      user.ID,
		ToAccountID: &account.ID,
		Amount:      decimal.RequireFromString("10"),
		Description: "Deposit",
		Type:        domain.TransactionTypeDeposit,
		Status:      domain.TransactionStatusPending,
		Date:        time.Now(),
	}
	require.NoError(t, repo.CreateTransaction(ctx, tx))

	require.NoError(t, repo.SetTransactionStatus(ctx, tx.ID, domain.TransactionStatusPending, domain.TransactionStatusApproved))

	// The transition is one-way.
	err := repo.SetTransactionStatus(ctx, tx.ID, domain.TransactionStatusPending, domain.TransactionStatusRejected)
	require.ErrorIs(t, err, ErrTransactionNotPending)

	err = repo.SetTransactionStatus(ctx, uuid.New(), domain.TransactionStatusPending, domain.TransactionStatusApproved)
	require.ErrorIs(t, err, ErrTransactionNotFound)

	current, err := repo.FindTransactionByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, current.Status)
}

func TestPostgresTransactionFilters(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")
	account := createTestAccount(t, repo, user.ID, "100")

	for i, txType := range []string{domain.TransactionTypeDeposit, domain.TransactionTypeWithdrawal, domain.TransactionTypeDeposit} {
		tx := &domain.Transaction{
			ID:          uuid.New(),
			UserID:      user.ID,
			ToAccountID: &account.ID,
			Amount:      decimal.RequireFromString("10"),
			Description: "Tx",
			Type:        txType,
			Status:      domain.TransactionStatusPending,
			Date:        time.Now().Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.CreateTransaction(ctx, tx))
	}

	all, err := repo.ListTransactionsByUser(ctx, user.ID, domain.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first.
	assert.True(t, !all[0].Date.Before(all[1].Date))

	deposits, err := repo.ListTransactionsByUser(ctx, user.ID, domain.TransactionFilter{Type: domain.TransactionTypeDeposit})
	require.NoError(t, err)
	assert.Len(t, deposits, 2)

	limited, err := repo.ListTransactionsByUser(ctx, user.ID, domain.TransactionFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestPostgresRewardsRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")

	profile, err := repo.GetOrCreateProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.TotalPoints)
	assert.Equal(t, 1, profile.CurrentLevel)

	profile.TotalPoints = 120
	profile.CurrentStreak = 3
	profile.LongestStreak = 3
	now := time.Now()
	profile.LastCheckInDate = &now
	require.NoError(t, repo.UpdateProfile(ctx, profile))

	again, err := repo.GetOrCreateProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, again.TotalPoints)
	require.NotNil(t, again.LastCheckInDate)

	// Badge awards are unique per (user, badge).
	awarded, err := repo.AwardBadge(ctx, &domain.UserBadge{ID: uuid.New(), UserID: user.ID, BadgeID: "b1", EarnedAt: time.Now()})
	require.NoError(t, err)
	assert.True(t, awarded)

	awarded, err = repo.AwardBadge(ctx, &domain.UserBadge{ID: uuid.New(), UserID: user.ID, BadgeID: "b1", EarnedAt: time.Now()})
	require.NoError(t, err)
	assert.False(t, awarded)

	badges, err := repo.ListBadges(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, badges, 1)
}

func TestPostgresQuestInsertIgnoresDuplicates(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	user := createTestUser(t, repo, "alice@example.com")

	quests := []domain.UserQuest{
		{ID: uuid.New(), UserID: user.ID, QuestID: "q1", ProgressValue: decimal.Zero, Status: domain.QuestStatusActive, StartedAt: time.Now()},
		{ID: uuid.New(), UserID: user.ID, QuestID: "q2", ProgressValue: decimal.Zero, Status: domain.QuestStatusActive, StartedAt: time.Now()},
	}
	require.NoError(t, repo.InsertQuests(ctx, quests))
	require.NoError(t, repo.InsertQuests(ctx, quests))

	listed, err := repo.ListQuests(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
