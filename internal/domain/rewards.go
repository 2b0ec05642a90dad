/**
 * @description
 * This file defines the rewards domain models: the per-user reward profile
 * (points, level, streaks), per-user quest instances, permanently held
 * badges, and the append-only reward event log.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Quest statuses. A quest moves active -> completed and never back.
const (
	QuestStatusActive    = "active"
	QuestStatusCompleted = "completed"
	QuestStatusExpired   = "expired"
)

// Reward event types.
const (
	RewardEventCheckIn        = "check_in"
	RewardEventQuestCompleted = "quest_completed"
	RewardEventLevelUp        = "level_up"
	RewardEventBadgeEarned    = "badge_earned"
)

// RewardProfile holds the per-user reward counters. CurrentLevel is always
// derived from TotalPoints; LongestStreak never drops below CurrentStreak.
// Profiles are created lazily on first access.
type RewardProfile struct {
	UserID          uuid.UUID  `json:"user_id"`
	TotalPoints     int        `json:"total_points"`
	CurrentLevel    int        `json:"current_level"`
	CurrentStreak   int        `json:"current_streak"`
	LongestStreak   int        `json:"longest_streak"`
	LastCheckInDate *time.Time `json:"last_check_in_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// UserQuest is a per-user instance of a static quest definition.
type UserQuest struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	QuestID       string          `json:"quest_id"`
	ProgressValue decimal.Decimal `json:"progress_value"`
	Status        string          `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

// UserBadge records a permanently held badge. Uniqueness is enforced per
// (user, badge).
type UserBadge struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	BadgeID  string    `json:"badge_id"`
	EarnedAt time.Time `json:"earned_at"`
}

// RewardEvent is an append-only log entry for a point-granting or milestone
// occurrence. Events are never mutated after creation.
type RewardEvent struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Type        string    `json:"type"`
	Points      int       `json:"points,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// CheckInResponse is returned from the daily check-in endpoint.
type CheckInResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Points  int            `json:"points"`
	Profile *RewardProfile `json:"profile"`
}

// LevelInfoResponse describes the caller's position within the level table.
type LevelInfoResponse struct {
	Level        int       `json:"level"`
	LevelInfo    LevelTier `json:"level_info"`
	Progress     float64   `json:"progress"`
	PointsToNext int       `json:"points_to_next"`
	TotalPoints  int       `json:"total_points"`
}

// LevelTier is one row of the fixed level table. MaxPoints < 0 marks an
// open-ended top tier.
type LevelTier struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	MaxPoints int    `json:"max_points"`
}

// QuestDefinition is a static, code-defined quest template.
type QuestDefinition struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TargetType   string          `json:"target_type"`
	TargetValue  decimal.Decimal `json:"target_value"`
	RewardPoints int             `json:"reward_points"`
}

// BadgeDefinition is a static, code-defined badge template.
type BadgeDefinition struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ConditionType  string `json:"condition_type"`
	ConditionValue int    `json:"condition_value"`
	Icon           string `json:"icon"`
	Rarity         string `json:"rarity"`
}
