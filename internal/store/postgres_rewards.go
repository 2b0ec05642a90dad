/**
 * @description
 * PostgreSQL persistence for the rewards collections: profiles, quests,
 * badges and the append-only event log. Badge uniqueness rides on the
 * (user_id, badge_id) unique constraint rather than a pre-check.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/glabank/banking-service/internal/domain"
)

const profileColumns = `user_id, total_points, current_level, current_streak, longest_streak, last_check_in_date, created_at, updated_at`

// GetOrCreateProfile returns the user's reward profile, lazily creating a
// zeroed one on first access.
func (r *PostgresRepository) GetOrCreateProfile(ctx context.Context, userID uuid.UUID) (*domain.RewardProfile, error) {
	const insert = `
		INSERT INTO reward_profiles (user_id, total_points, current_level, current_streak, longest_streak, created_at, updated_at)
		VALUES ($1, 0, 1, 0, 0, NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("failed to create reward profile: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM reward_profiles WHERE user_id = $1`
	var p domain.RewardProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.TotalPoints, &p.CurrentLevel, &p.CurrentStreak,
		&p.LongestStreak, &p.LastCheckInDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get reward profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile persists the mutable profile counters.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, profile *domain.RewardProfile) error {
	const query = `
		UPDATE reward_profiles
		SET total_points = $2, current_level = $3, current_streak = $4,
		    longest_streak = $5, last_check_in_date = $6, updated_at = $7
		WHERE user_id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		profile.UserID, profile.TotalPoints, profile.CurrentLevel,
		profile.CurrentStreak, profile.LongestStreak, profile.LastCheckInDate, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update reward profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

const questColumns = `id, user_id, quest_id, progress_value, status, started_at, completed_at`

// ListQuests returns all quest instances for the user.
func (r *PostgresRepository) ListQuests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	query := `SELECT ` + questColumns + ` FROM user_quests WHERE user_id = $1 ORDER BY started_at`
	return r.queryQuests(ctx, query, userID)
}

// ListActiveQuests returns the user's quests still in the active state.
func (r *PostgresRepository) ListActiveQuests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	query := `SELECT ` + questColumns + ` FROM user_quests WHERE user_id = $1 AND status = 'active' ORDER BY started_at`
	return r.queryQuests(ctx, query, userID)
}

func (r *PostgresRepository) queryQuests(ctx context.Context, query string, args ...any) ([]domain.UserQuest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}
	defer rows.Close()

	quests := []domain.UserQuest{}
	for rows.Next() {
		var q domain.UserQuest
		if err := rows.Scan(&q.ID, &q.UserID, &q.QuestID, &q.ProgressValue, &q.Status, &q.StartedAt, &q.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quest: %w", err)
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

// InsertQuests adds quest instances, skipping (user, quest) pairs that
// already exist.
func (r *PostgresRepository) InsertQuests(ctx context.Context, quests []domain.UserQuest) error {
	const query = `
		INSERT INTO user_quests (id, user_id, quest_id, progress_value, status, started_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)
		ON CONFLICT (user_id, quest_id) DO NOTHING
	`
	for _, q := range quests {
		if _, err := r.db.Exec(ctx, query, q.ID, q.UserID, q.QuestID, q.ProgressValue.String(), q.Status, q.StartedAt); err != nil {
			return fmt.Errorf("failed to insert quest: %w", err)
		}
	}
	return nil
}

// UpdateQuest persists quest progress and status.
func (r *PostgresRepository) UpdateQuest(ctx context.Context, quest *domain.UserQuest) error {
	const query = `
		UPDATE user_quests
		SET progress_value = $2::numeric, status = $3, completed_at = $4
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, quest.ID, quest.ProgressValue.String(), quest.Status, quest.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update quest: %w", err)
	}
	return nil
}

// CountCompletedQuests returns how many quests the user has completed.
func (r *PostgresRepository) CountCompletedQuests(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM user_quests WHERE user_id = $1 AND status = 'completed'`, userID).Scan(&count)
	return count, err
}

// ListBadges returns the user's earned badges.
func (r *PostgresRepository) ListBadges(ctx context.Context, userID uuid.UUID) ([]domain.UserBadge, error) {
	const query = `SELECT id, user_id, badge_id, earned_at FROM user_badges WHERE user_id = $1 ORDER BY earned_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	badges := []domain.UserBadge{}
	for rows.Next() {
		var b domain.UserBadge
		if err := rows.Scan(&b.ID, &b.UserID, &b.BadgeID, &b.EarnedAt); err != nil {
			return nil, fmt.Errorf("failed to scan badge: %w", err)
		}
		badges = append(badges, b)
	}
	return badges, rows.Err()
}

// AwardBadge inserts the badge if the user does not hold it yet. Returns
// false when the badge was already held.
func (r *PostgresRepository) AwardBadge(ctx context.Context, badge *domain.UserBadge) (bool, error) {
	const query = `
		INSERT INTO user_badges (id, user_id, badge_id, earned_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, badge_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, badge.ID, badge.UserID, badge.BadgeID, badge.EarnedAt)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AppendEvent appends a reward event. Events are never updated or deleted.
func (r *PostgresRepository) AppendEvent(ctx context.Context, event *domain.RewardEvent) error {
	const query = `
		INSERT INTO reward_events (id, user_id, type, points, description, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query, event.ID, event.UserID, event.Type, event.Points, event.Description, event.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append reward event: %w", err)
	}
	return nil
}

// ListEvents returns the user's most recent reward events.
func (r *PostgresRepository) ListEvents(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEvent, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, user_id, type, points, description, timestamp
		FROM reward_events
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward events: %w", err)
	}
	defer rows.Close()

	events := []domain.RewardEvent{}
	for rows.Next() {
		var e domain.RewardEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Type, &e.Points, &e.Description, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan reward event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
