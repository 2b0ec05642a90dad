/**
 * @description
 * This file contains the rewards accrual engine: daily check-ins, quest
 * progress, level transitions and badge awarding. Point totals only ever
 * grow; the current level is recomputed from the total after every award.
 *
 * Rewards accrual is NOT triggered by transaction approval. Check-in and
 * quest progress are the only entry points.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
	"github.com/glabank/banking-service/internal/pkg/lock"
	"github.com/glabank/banking-service/internal/store"
)

// ErrAlreadyCheckedIn is returned for a second check-in on the same
// calendar day.
var ErrAlreadyCheckedIn = errors.New("already checked in today")

// baseCheckInPoints is awarded for every check-in; streaks add a bonus on
// top.
const baseCheckInPoints = 10

// RewardsService is the rewards accrual engine.
type RewardsService struct {
	repo  store.RewardsRepository
	locks *lock.KeyedLock
	now   func() time.Time
}

// NewRewardsService creates a new RewardsService instance.
func NewRewardsService(repo store.RewardsRepository) *RewardsService {
	return &RewardsService{
		repo:  repo,
		locks: lock.NewKeyedLock(),
		now:   time.Now,
	}
}

// Profile returns the user's reward profile, creating it lazily.
func (s *RewardsService) Profile(ctx context.Context, userID uuid.UUID) (*domain.RewardProfile, error) {
	return s.repo.GetOrCreateProfile(ctx, userID)
}

// midnight normalizes a time to local midnight of its calendar day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// checkInPoints computes the award for a check-in that lands the user on the
// given streak: 10 base, plus streak*2 when the streak exceeds one day.
func checkInPoints(streak int) int {
	if streak > 1 {
		return baseCheckInPoints + streak*2
	}
	return baseCheckInPoints
}

// CheckIn performs the once-per-calendar-day check-in. The read-modify-write
// over the profile is serialized per user.
func (s *RewardsService) CheckIn(ctx context.Context, userID uuid.UUID) (*domain.CheckInResponse, error) {
	var resp *domain.CheckInResponse
	err := s.locks.WithLock(userID.String(), func() error {
		profile, err := s.repo.GetOrCreateProfile(ctx, userID)
		if err != nil {
			return err
		}

		now := s.now()
		today := midnight(now)
		if profile.LastCheckInDate != nil && midnight(*profile.LastCheckInDate).Equal(today) {
			return ErrAlreadyCheckedIn
		}

		yesterday := today.AddDate(0, 0, -1)
		streak := profile.CurrentStreak
		switch {
		case profile.LastCheckInDate == nil || midnight(*profile.LastCheckInDate).Before(yesterday):
			streak = 1
		case midnight(*profile.LastCheckInDate).Equal(yesterday):
			streak++
		}

		points := checkInPoints(streak)
		oldLevel := profile.CurrentLevel

		profile.CurrentStreak = streak
		if streak > profile.LongestStreak {
			profile.LongestStreak = streak
		}
		profile.TotalPoints += points
		profile.CurrentLevel = LevelForPoints(profile.TotalPoints)
		checkInTime := now
		profile.LastCheckInDate = &checkInTime

		if err := s.repo.UpdateProfile(ctx, profile); err != nil {
			return err
		}

		if err := s.appendEvent(ctx, userID, domain.RewardEventCheckIn, points,
			fmt.Sprintf("Daily check-in - %d day streak!", streak)); err != nil {
			return err
		}
		if profile.CurrentLevel > oldLevel {
			if err := s.appendEvent(ctx, userID, domain.RewardEventLevelUp, 0,
				fmt.Sprintf("Leveled up to Level %d!", profile.CurrentLevel)); err != nil {
				return err
			}
		}
		if err := s.evaluateBadges(ctx, userID, profile); err != nil {
			return err
		}

		resp = &domain.CheckInResponse{
			Success: true,
			Message: "Checked in successfully",
			Points:  points,
			Profile: profile,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// appendEvent records one entry in the user's reward event feed.
func (s *RewardsService) appendEvent(ctx context.Context, userID uuid.UUID, eventType string, points int, description string) error {
	return s.repo.AppendEvent(ctx, &domain.RewardEvent{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        eventType,
		Points:      points,
		Description: description,
		Timestamp:   s.now(),
	})
}

// Quests returns all of the user's quest instances.
func (s *RewardsService) Quests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	return s.repo.ListQuests(ctx, userID)
}

// InitializeQuests instantiates any static quests the user does not hold yet
// and returns the full set.
func (s *RewardsService) InitializeQuests(ctx context.Context, userID uuid.UUID) ([]domain.UserQuest, error) {
	existing, err := s.repo.ListQuests(ctx, userID)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, q := range existing {
		have[q.QuestID] = true
	}

	missing := []domain.UserQuest{}
	for _, def := range SeedQuests {
		if !have[def.ID] {
			missing = append(missing, domain.UserQuest{
				ID:            uuid.New(),
				UserID:        userID,
				QuestID:       def.ID,
				ProgressValue: decimal.Zero,
				Status:        domain.QuestStatusActive,
				StartedAt:     s.now(),
			})
		}
	}
	if len(missing) > 0 {
		if err := s.repo.InsertQuests(ctx, missing); err != nil {
			return nil, err
		}
	}
	return s.repo.ListQuests(ctx, userID)
}

// UpdateQuestProgress applies a progress signal to every active quest whose
// target type matches, completing those that reach their target and awarding
// their points.
func (s *RewardsService) UpdateQuestProgress(ctx context.Context, userID uuid.UUID, targetType string, value decimal.Decimal) error {
	quests, err := s.repo.ListActiveQuests(ctx, userID)
	if err != nil {
		return err
	}

	for i := range quests {
		quest := quests[i]
		def, ok := QuestDefinitionByID(quest.QuestID)
		if !ok || def.TargetType != targetType {
			continue
		}

		quest.ProgressValue = quest.ProgressValue.Add(value)
		if quest.ProgressValue.GreaterThanOrEqual(def.TargetValue) {
			quest.Status = domain.QuestStatusCompleted
			completedAt := s.now()
			quest.CompletedAt = &completedAt

			if err := s.awardPoints(ctx, userID, def.RewardPoints); err != nil {
				return err
			}
			if err := s.appendEvent(ctx, userID, domain.RewardEventQuestCompleted, def.RewardPoints,
				fmt.Sprintf("Completed quest: %s", def.Name)); err != nil {
				return err
			}
		}
		if err := s.repo.UpdateQuest(ctx, &quest); err != nil {
			return err
		}
	}

	profile, err := s.repo.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}
	return s.evaluateBadges(ctx, userID, profile)
}

// awardPoints adds points to the profile, recomputes the level and appends a
// level_up event when a tier boundary is crossed.
func (s *RewardsService) awardPoints(ctx context.Context, userID uuid.UUID, points int) error {
	profile, err := s.repo.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return err
	}

	oldLevel := profile.CurrentLevel
	profile.TotalPoints += points
	profile.CurrentLevel = LevelForPoints(profile.TotalPoints)
	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		return err
	}

	if profile.CurrentLevel > oldLevel {
		return s.appendEvent(ctx, userID, domain.RewardEventLevelUp, 0,
			fmt.Sprintf("Leveled up to Level %d!", profile.CurrentLevel))
	}
	return nil
}

// Badges returns the user's earned badges.
func (s *RewardsService) Badges(ctx context.Context, userID uuid.UUID) ([]domain.UserBadge, error) {
	return s.repo.ListBadges(ctx, userID)
}

// evaluateBadges awards any badge whose milestone condition the user now
// satisfies. Awards are idempotent per (user, badge).
func (s *RewardsService) evaluateBadges(ctx context.Context, userID uuid.UUID, profile *domain.RewardProfile) error {
	completedQuests, err := s.repo.CountCompletedQuests(ctx, userID)
	if err != nil {
		return err
	}

	for _, def := range SeedBadges {
		met := false
		switch def.ConditionType {
		case BadgeConditionStreakDays:
			met = profile.LongestStreak >= def.ConditionValue
		case BadgeConditionTotalPoints:
			met = profile.TotalPoints >= def.ConditionValue
		case BadgeConditionLevel:
			met = profile.CurrentLevel >= def.ConditionValue
		case BadgeConditionQuestsCompleted:
			met = completedQuests >= int64(def.ConditionValue)
		default:
			// savings_amount has no wired signal source.
		}
		if !met {
			continue
		}

		awarded, err := s.repo.AwardBadge(ctx, &domain.UserBadge{
			ID:       uuid.New(),
			UserID:   userID,
			BadgeID:  def.ID,
			EarnedAt: s.now(),
		})
		if err != nil {
			return err
		}
		if awarded {
			if err := s.appendEvent(ctx, userID, domain.RewardEventBadgeEarned, 0,
				fmt.Sprintf("Earned badge: %s", def.Name)); err != nil {
				return err
			}
			log.Info().Str("user_id", userID.String()).Str("badge_id", def.ID).Msg("badge earned")
		}
	}
	return nil
}

// Events returns the user's most recent reward events.
func (s *RewardsService) Events(ctx context.Context, userID uuid.UUID, limit int) ([]domain.RewardEvent, error) {
	return s.repo.ListEvents(ctx, userID, limit)
}

// LevelInfo describes the user's position within the level table.
func (s *RewardsService) LevelInfo(ctx context.Context, userID uuid.UUID) (*domain.LevelInfoResponse, error) {
	profile, err := s.repo.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	tier := LevelInfo(profile.CurrentLevel)
	resp := &domain.LevelInfoResponse{
		Level:       profile.CurrentLevel,
		LevelInfo:   tier,
		TotalPoints: profile.TotalPoints,
	}
	if tier.MaxPoints < 0 {
		// Open-ended top tier.
		resp.Progress = 100
		resp.PointsToNext = 0
		return resp, nil
	}

	span := tier.MaxPoints - tier.MinPoints
	progress := float64(profile.TotalPoints-tier.MinPoints) / float64(span) * 100
	if progress > 100 {
		progress = 100
	}
	resp.Progress = progress
	resp.PointsToNext = tier.MaxPoints - profile.TotalPoints + 1
	return resp, nil
}
