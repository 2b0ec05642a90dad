/**
 * @description
 * Static reward definitions: the fixed 8-tier level table, the quest
 * catalog, and the badge catalog. These are code-defined constants; per-user
 * state lives in the store.
 */

package app

import (
	"github.com/shopspring/decimal"

	"github.com/glabank/banking-service/internal/domain"
)

// Levels is the fixed level table. Tier 8 is open-ended (MaxPoints < 0).
var Levels = []domain.LevelTier{
	{Level: 1, Name: "Rookie Saver", MinPoints: 0, MaxPoints: 499},
	{Level: 2, Name: "Smart Spender", MinPoints: 500, MaxPoints: 1499},
	{Level: 3, Name: "Budget Ninja", MinPoints: 1500, MaxPoints: 2999},
	{Level: 4, Name: "Financial Wizard", MinPoints: 3000, MaxPoints: 4999},
	{Level: 5, Name: "Money Master", MinPoints: 5000, MaxPoints: 7499},
	{Level: 6, Name: "Wealth Builder", MinPoints: 7500, MaxPoints: 9999},
	{Level: 7, Name: "Finance Guru", MinPoints: 10000, MaxPoints: 14999},
	{Level: 8, Name: "Legendary Saver", MinPoints: 15000, MaxPoints: -1},
}

// LevelForPoints returns the highest level whose MinPoints <= points,
// scanning from the top tier downward.
func LevelForPoints(points int) int {
	for i := len(Levels) - 1; i >= 0; i-- {
		if points >= Levels[i].MinPoints {
			return Levels[i].Level
		}
	}
	return 1
}

// LevelInfo returns the tier metadata for a level, falling back to tier 1
// for unknown levels.
func LevelInfo(level int) domain.LevelTier {
	for _, tier := range Levels {
		if tier.Level == level {
			return tier
		}
	}
	return Levels[0]
}

// Quest target types.
const (
	QuestTargetSaveAmount      = "save_amount"
	QuestTargetSpendLess       = "spend_less"
	QuestTargetDepositAmount   = "deposit_amount"
	QuestTargetMaintainBalance = "maintain_balance"
)

// SeedQuests is the static quest catalog. Every user receives an instance of
// each on initialization.
var SeedQuests = []domain.QuestDefinition{
	{
		ID:           "q1",
		Name:         "Weekly Saver",
		Description:  "Save ₹500 this week",
		TargetType:   QuestTargetSaveAmount,
		TargetValue:  decimal.NewFromInt(500),
		RewardPoints: 100,
	},
	{
		ID:           "q2",
		Name:         "Frugal Foodie",
		Description:  "Spend less than ₹1000 on Food & Dining this month",
		TargetType:   QuestTargetSpendLess,
		TargetValue:  decimal.NewFromInt(1000),
		RewardPoints: 150,
	},
	{
		ID:           "q3",
		Name:         "Deposit Champion",
		Description:  "Make a deposit of ₹1000 or more",
		TargetType:   QuestTargetDepositAmount,
		TargetValue:  decimal.NewFromInt(1000),
		RewardPoints: 75,
	},
	{
		ID:           "q4",
		Name:         "Balance Keeper",
		Description:  "Maintain minimum balance of ₹5000 for 7 days",
		TargetType:   QuestTargetMaintainBalance,
		TargetValue:  decimal.NewFromInt(5000),
		RewardPoints: 200,
	},
}

// QuestDefinition resolves a static quest by id.
func QuestDefinitionByID(id string) (domain.QuestDefinition, bool) {
	for _, q := range SeedQuests {
		if q.ID == id {
			return q, true
		}
	}
	return domain.QuestDefinition{}, false
}

// Badge condition types.
const (
	BadgeConditionStreakDays      = "streak_days"
	BadgeConditionTotalPoints     = "total_points"
	BadgeConditionSavingsAmount   = "savings_amount"
	BadgeConditionLevel           = "level"
	BadgeConditionQuestsCompleted = "quests_completed"
)

// SeedBadges is the static badge catalog.
var SeedBadges = []domain.BadgeDefinition{
	{ID: "b1", Name: "7-Day Streak", Description: "Check in for 7 consecutive days", ConditionType: BadgeConditionStreakDays, ConditionValue: 7, Icon: "🔥", Rarity: "common"},
	{ID: "b2", Name: "First Steps", Description: "Earn your first 100 points", ConditionType: BadgeConditionTotalPoints, ConditionValue: 100, Icon: "🌟", Rarity: "common"},
	{ID: "b3", Name: "Savings Star", Description: "Save ₹5000 in your savings account", ConditionType: BadgeConditionSavingsAmount, ConditionValue: 5000, Icon: "⭐", Rarity: "rare"},
	{ID: "b4", Name: "Budget Ninja", Description: "Reach Level 3", ConditionType: BadgeConditionLevel, ConditionValue: 3, Icon: "🥷", Rarity: "epic"},
	{ID: "b5", Name: "Quest Master", Description: "Complete 5 quests", ConditionType: BadgeConditionQuestsCompleted, ConditionValue: 5, Icon: "🏆", Rarity: "legendary"},
	{ID: "b6", Name: "30-Day Champion", Description: "Maintain a 30-day check-in streak", ConditionType: BadgeConditionStreakDays, ConditionValue: 30, Icon: "👑", Rarity: "legendary"},
}
