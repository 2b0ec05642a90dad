// Package memory provides an in-memory Repository implementation, used for
// DB-less local development and as a substitutable fake in tests. All
// operations copy records on the way in and out so callers never share
// mutable state with the store.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/store"
)

// Store is an in-memory implementation of store.Repository.
type Store struct {
	mu           sync.RWMutex
	users        map[uuid.UUID]domain.User
	usersByEmail map[string]uuid.UUID
	accounts     map[uuid.UUID]domain.Account
	transactions map[uuid.UUID]domain.Transaction
	profiles     map[uuid.UUID]domain.RewardProfile
	quests       map[uuid.UUID]domain.UserQuest
	badges       map[uuid.UUID]domain.UserBadge
	events       []domain.RewardEvent
}

// compile-time interface check
var _ store.Repository = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:        make(map[uuid.UUID]domain.User),
		usersByEmail: make(map[string]uuid.UUID),
		accounts:     make(map[uuid.UUID]domain.Account),
		transactions: make(map[uuid.UUID]domain.Transaction),
		profiles:     make(map[uuid.UUID]domain.RewardProfile),
		quests:       make(map[uuid.UUID]domain.UserQuest),
		badges:       make(map[uuid.UUID]domain.UserBadge),
	}
}

// --- Users ---

func (s *Store) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(user.Email))
	if _, taken := s.usersByEmail[email]; taken {
		return store.ErrEmailTaken
	}
	u := *user
	u.Email = email
	s.users[u.ID] = u
	s.usersByEmail[email] = u.ID
	return nil
}

func (s *Store) FindUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := u
	return &out, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	out := s.users[id]
	return &out, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// --- Accounts ---

func (s *Store) CreateAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	out := a
	return &out, nil
}

func (s *Store) FindAccountForUser(_ context.Context, id, userID uuid.UUID) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok || a.UserID != userID {
		return nil, store.ErrAccountNotFound
	}
	out := a
	return &out, nil
}

func (s *Store) ListAccountsByUser(_ context.Context, userID uuid.UUID) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := []domain.Account{}
	for _, a := range s.accounts {
		if a.UserID == userID && a.Status != domain.AccountStatusClosed {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })
	return accounts, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].CreatedAt.After(accounts[j].CreatedAt) })
	return accounts, nil
}

func (s *Store) UpdateAccount(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.ID]
	if !ok {
		return store.ErrAccountNotFound
	}
	existing.Name = account.Name
	existing.Status = account.Status
	existing.UpdatedAt = time.Now()
	s.accounts[account.ID] = existing
	return nil
}

func (s *Store) AccountNumberExists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if a.AccountNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ApplyBalanceDelta(_ context.Context, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyBalanceDeltaLocked(accountID, delta)
}

func (s *Store) applyBalanceDeltaLocked(accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	a, ok := s.accounts[accountID]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return nil, store.ErrInsufficientFunds
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	s.accounts[accountID] = a
	out := a
	return &out, nil
}

func (s *Store) TransferBalance(_ context.Context, fromID, toID uuid.UUID, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate both sides before mutating either, so failure leaves no
	// partial state.
	from, ok := s.accounts[fromID]
	if !ok {
		return store.ErrAccountNotFound
	}
	if _, ok := s.accounts[toID]; !ok {
		return store.ErrAccountNotFound
	}
	if from.Balance.LessThan(amount) {
		return store.ErrInsufficientFunds
	}
	if _, err := s.applyBalanceDeltaLocked(fromID, amount.Neg()); err != nil {
		return err
	}
	if _, err := s.applyBalanceDeltaLocked(toID, amount); err != nil {
		return err
	}
	return nil
}

func (s *Store) CountActiveAccounts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, a := range s.accounts {
		if a.Status == domain.AccountStatusActive {
			count++
		}
	}
	return count, nil
}

func (s *Store) SumActiveBalances(_ context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, a := range s.accounts {
		if a.Status == domain.AccountStatusActive {
			total = total.Add(a.Balance)
		}
	}
	return total, nil
}

// --- Transactions ---

func (s *Store) CreateTransaction(_ context.Context, tx *domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.ID] = *tx
	return nil
}

func (s *Store) FindTransactionByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, store.ErrTransactionNotFound
	}
	out := tx
	return &out, nil
}

func (s *Store) FindTransactionForUser(_ context.Context, id, userID uuid.UUID) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, store.ErrTransactionNotFound
	}
	out := tx
	return &out, nil
}

func (s *Store) ListTransactionsByUser(_ context.Context, userID uuid.UUID, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := []domain.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID != userID {
			continue
		}
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultTransactionListLimit
	}
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txs := make([]domain.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		txs = append(txs, tx)
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.After(txs[j].Date) })
	return txs, nil
}

func (s *Store) SetTransactionStatus(_ context.Context, id uuid.UUID, expected, next string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return store.ErrTransactionNotFound
	}
	if tx.Status != expected {
		return store.ErrTransactionNotPending
	}
	tx.Status = next
	s.transactions[id] = tx
	return nil
}

func (s *Store) CountTransactions(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.transactions)), nil
}

func (s *Store) CountTransactionsByStatus(_ context.Context, status string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, tx := range s.transactions {
		if tx.Status == status {
			count++
		}
	}
	return count, nil
}

// --- Rewards ---

func (s *Store) GetOrCreateProfile(_ context.Context, userID uuid.UUID) (*domain.RewardProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		now := time.Now()
		p = domain.RewardProfile{
			UserID:       userID,
			TotalPoints:  0,
			CurrentLevel: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.profiles[userID] = p
	}
	out := p
	return &out, nil
}

func (s *Store) UpdateProfile(_ context.Context, profile *domain.RewardProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.UserID]; !ok {
		return store.ErrProfileNotFound
	}
	p := *profile
	p.UpdatedAt = time.Now()
	s.profiles[profile.UserID] = p
	return nil
}

func (s *Store) ListQuests(_ context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	return s.listQuests(userID, "")
}

func (s *Store) ListActiveQuests(_ context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	return s.listQuests(userID, domain.QuestStatusActive)
}

func (s *Store) listQuests(userID uuid.UUID, status string) ([]domain.UserQuest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quests := []domain.UserQuest{}
	for _, q := range s.quests {
		if q.UserID != userID {
			continue
		}
		if status != "" && q.Status != status {
			continue
		}
		quests = append(quests, q)
	}
	sort.Slice(quests, func(i, j int) bool { return quests[i].QuestID < quests[j].QuestID })
	return quests, nil
}

func (s *Store) InsertQuests(_ context.Context, quests []domain.UserQuest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range quests {
		exists := false
		for _, have := range s.quests {
			if have.UserID == q.UserID && have.QuestID == q.QuestID {
				exists = true
				break
			}
		}
		if !exists {
			s.quests[q.ID] = q
		}
	}
	return nil
}

func (s *Store) UpdateQuest(_ context.Context, quest *domain.UserQuest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quests[quest.ID] = *quest
	return nil
}

func (s *Store) CountCompletedQuests(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, q := range s.quests {
		if q.UserID == userID && q.Status == domain.QuestStatusCompleted {
			count++
		}
	}
	return count, nil
}

func (s *Store) ListBadges(_ context.Context, userID uuid.UUID) ([]domain.UserBadge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	badges := []domain.UserBadge{}
	for _, b := range s.badges {
		if b.UserID == userID {
			badges = append(badges, b)
		}
	}
	sort.Slice(badges, func(i, j int) bool { return badges[i].EarnedAt.Before(badges[j].EarnedAt) })
	return badges, nil
}

func (s *Store) AwardBadge(_ context.Context, badge *domain.UserBadge) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.badges {
		if b.UserID == badge.UserID && b.BadgeID == badge.BadgeID {
			return false, nil
		}
	}
	s.badges[badge.ID] = *badge
	return true, nil
}

func (s *Store) AppendEvent(_ context.Context, event *domain.RewardEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *event)
	return nil
}

func (s *Store) ListEvents(_ context.Context, userID uuid.UUID, limit int) ([]domain.RewardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	events := []domain.RewardEvent{}
	for _, e := range s.events {
		if e.UserID == userID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp.After(events[j].Timestamp) })
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
