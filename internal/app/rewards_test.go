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
	"github.com/glabank/banking-service/internal/store/memory"
)

func rewardsServiceAt(repo *memory.Store, at time.Time) *RewardsService {
	svc := NewRewardsService(repo)
	svc.now = func() time.Time { return at }
	return svc
}

func TestCheckInFirstTime(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := rewardsServiceAt(repo, now)
	userID := uuid.New()

	resp, err := svc.CheckIn(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, 10, resp.Points)
	assert.Equal(t, 1, resp.Profile.CurrentStreak)
	assert.Equal(t, 10, resp.Profile.TotalPoints)
	assert.Equal(t, 1, resp.Profile.CurrentLevel)
	require.NotNil(t, resp.Profile.LastCheckInDate)
}

func TestCheckInTwiceSameDayRejected(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := rewardsServiceAt(repo, now)
	userID := uuid.New()

	_, err := svc.CheckIn(ctx, userID)
	require.NoError(t, err)

	// Later the same day, even one second before midnight.
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC) }
	_, err = svc.CheckIn(ctx, userID)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 10, profile.TotalPoints)
	assert.Equal(t, 1, profile.CurrentStreak)
}

func TestCheckInConsecutiveDayExtendsStreak(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := rewardsServiceAt(repo, day)
	userID := uuid.New()

	// Build a 4-day streak.
	total := 0
	for i := 0; i < 4; i++ {
		svc.now = func() time.Time { return day.AddDate(0, 0, i) }
		resp, err := svc.CheckIn(ctx, userID)
		require.NoError(t, err)
		total += resp.Points
	}

	// Day 5 lands a streak of 5: 10 base + 5*2 bonus.
	svc.now = func() time.Time { return day.AddDate(0, 0, 4) }
	resp, err := svc.CheckIn(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.Points)
	assert.Equal(t, 5, resp.Profile.CurrentStreak)
	assert.Equal(t, 5, resp.Profile.LongestStreak)
	assert.Equal(t, total+20, resp.Profile.TotalPoints)
}

func TestCheckInAfterGapResetsStreak(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	day := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := rewardsServiceAt(repo, day)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		svc.now = func() time.Time { return day.AddDate(0, 0, i) }
		_, err := svc.CheckIn(ctx, userID)
		require.NoError(t, err)
	}

	// Two days missed: streak resets to 1 but the longest streak survives.
	svc.now = func() time.Time { return day.AddDate(0, 0, 5) }
	resp, err := svc.CheckIn(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Profile.CurrentStreak)
	assert.Equal(t, 3, resp.Profile.LongestStreak)
	assert.Equal(t, 10, resp.Points)
}

func TestInitializeQuestsIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewRewardsService(repo)
	userID := uuid.New()

	first, err := svc.InitializeQuests(ctx, userID)
	require.NoError(t, err)
	require.Len(t, first, len(SeedQuests))

	second, err := svc.InitializeQuests(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, second, len(SeedQuests))
}

func TestQuestCompletionAwardsPoints(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewRewardsService(repo)
	userID := uuid.New()

	_, err := svc.InitializeQuests(ctx, userID)
	require.NoError(t, err)

	// q3 "Deposit Champion": deposit 1000 or more for 75 points.
	require.NoError(t, svc.UpdateQuestProgress(ctx, userID, QuestTargetDepositAmount, decimal.NewFromInt(1200)))

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 75, profile.TotalPoints)

	quests, err := svc.Quests(ctx, userID)
	require.NoError(t, err)
	var q3 *domain.UserQuest
	for i := range quests {
		if quests[i].QuestID == "q3" {
			q3 = &quests[i]
		}
	}
	require.NotNil(t, q3)
	assert.Equal(t, domain.QuestStatusCompleted, q3.Status)
	require.NotNil(t, q3.CompletedAt)

	// A second signal must not complete the quest again.
	require.NoError(t, svc.UpdateQuestProgress(ctx, userID, QuestTargetDepositAmount, decimal.NewFromInt(1200)))
	profile, err = svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 75, profile.TotalPoints)
}

func TestQuestProgressAccumulates(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewRewardsService(repo)
	userID := uuid.New()

	_, err := svc.InitializeQuests(ctx, userID)
	require.NoError(t, err)

	// q1 "Weekly Saver" targets 500.
	require.NoError(t, svc.UpdateQuestProgress(ctx, userID, QuestTargetSaveAmount, decimal.NewFromInt(200)))
	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.TotalPoints)

	require.NoError(t, svc.UpdateQuestProgress(ctx, userID, QuestTargetSaveAmount, decimal.NewFromInt(300)))
	profile, err = svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 100, profile.TotalPoints)
}

func TestStreakBadgeAwardedOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	day := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	svc := rewardsServiceAt(repo, day)
	userID := uuid.New()

	for i := 0; i < 8; i++ {
		svc.now = func() time.Time { return day.AddDate(0, 0, i) }
		_, err := svc.CheckIn(ctx, userID)
		require.NoError(t, err)
	}

	badges, err := svc.Badges(ctx, userID)
	require.NoError(t, err)

	streakBadges := 0
	for _, b := range badges {
		if b.BadgeID == "b1" {
			streakBadges++
		}
	}
	assert.Equal(t, 1, streakBadges, "7-day streak badge must be awarded exactly once")
}

func TestLevelUpEmitsEvent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewRewardsService(repo)
	userID := uuid.New()

	// 500 points crosses into level 2.
	require.NoError(t, svc.awardPoints(ctx, userID, 500))

	profile, err := svc.Profile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.CurrentLevel)

	events, err := svc.Events(ctx, userID, 10)
	require.NoError(t, err)

	found := false
	for _, e := range events {
		if e.Type == domain.RewardEventLevelUp {
			found = true
		}
	}
	assert.True(t, found, "expected a level_up event")
}

func TestLevelInfoProgress(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := NewRewardsService(repo)
	userID := uuid.New()

	require.NoError(t, svc.awardPoints(ctx, userID, 750))

	info, err := svc.LevelInfo(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, 750, info.TotalPoints)
	assert.InDelta(t, float64(750-500)/float64(1499-500)*100, info.Progress, 0.001)
	assert.Equal(t, 1499-750+1, info.PointsToNext)
}
