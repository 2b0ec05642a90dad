/**
 * @description
 * Admin read paths: cross-user listings and the dashboard stats aggregate.
 * Role enforcement happens in the API middleware, not here.
 */

package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store"
)

// AdminStats is the dashboard aggregate.
type AdminStats struct {
	TotalUsers          int64           `json:"total_users"`
	TotalAccounts       int64           `json:"total_accounts"`
	TotalTransactions   int64           `json:"total_transactions"`
	PendingTransactions int64           `json:"pending_transactions"`
	TotalBalance        decimal.Decimal `json:"total_balance"`
}

// AdminService serves the cross-user admin views.
type AdminService struct {
	repo store.Repository
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(repo store.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// ListUsers returns every user.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// ListAccounts returns every account.
func (s *AdminService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	return s.repo.ListAccounts(ctx)
}

// ListTransactions returns every transaction, newest first.
func (s *AdminService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return s.repo.ListTransactions(ctx)
}

// Stats aggregates the dashboard counters. TotalAccounts and TotalBalance
// cover active accounts only.
func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalAccounts, err := s.repo.CountActiveAccounts(ctx)
	if err != nil {
		return nil, err
	}
	totalTransactions, err := s.repo.CountTransactions(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.CountTransactionsByStatus(ctx, domain.TransactionStatusPending)
	if err != nil {
		return nil, err
	}
	totalBalance, err := s.repo.SumActiveBalances(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminStats{
		TotalUsers:          totalUsers,
		TotalAccounts:       totalAccounts,
		TotalTransactions:   totalTransactions,
		PendingTransactions: pending,
		TotalBalance:        totalBalance,
	}, nil
}
