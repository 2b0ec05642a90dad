package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema holds the DDL for all collections. Statements are idempotent so the
// service can apply them at startup and tests can apply them against fresh
// containers.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		balance NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		account_number TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		from_account UUID,
		to_account UUID,
		amount NUMERIC(14,2) NOT NULL CHECK (amount >= 0.01),
		description TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'transfer',
		status TEXT NOT NULL DEFAULT 'pending',
		category TEXT,
		date TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
	`CREATE TABLE IF NOT EXISTS reward_profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id),
		total_points INTEGER NOT NULL DEFAULT 0,
		current_level INTEGER NOT NULL DEFAULT 1,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		last_check_in_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS user_quests (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		quest_id TEXT NOT NULL,
		progress_value NUMERIC(14,2) NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ,
		UNIQUE (user_id, quest_id)
	)`,
	`CREATE TABLE IF NOT EXISTS user_badges (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		badge_id TEXT NOT NULL,
		earned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (user_id, badge_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reward_events (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reward_events_user_ts ON reward_events(user_id, timestamp DESC)`,
}

// EnsureSchema applies the DDL. Safe to call on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
