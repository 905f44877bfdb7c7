package models

import (
	"fmt"
	"time"
)

// UnlockCondition is the closed set of achievement unlock conditions.
// Persisted as a (kind, value) column pair; evaluation is an exhaustive type
// switch in the engine, so a new condition kind is a compile-visible addition
// rather than a silently ignored string.
type UnlockCondition interface {
	isUnlockCondition()
}

// TotalCheckIns unlocks once the user's lifetime check-in count reaches N.
type TotalCheckIns struct {
	N int
}

// LongestStreak unlocks once the user's longest streak reaches N days.
type LongestStreak struct {
	N int
}

func (TotalCheckIns) isUnlockCondition() {}
func (LongestStreak) isUnlockCondition() {}

const (
	ConditionKindTotalCheckIns = "total_check_ins"
	ConditionKindLongestStreak = "longest_streak"
)

// ParseUnlockCondition converts the stored (kind, value) pair back into the
// tagged variant. Unknown kinds are an error, not a no-op.
func ParseUnlockCondition(kind string, value int) (UnlockCondition, error) {
	switch kind {
	case ConditionKindTotalCheckIns:
		return TotalCheckIns{N: value}, nil
	case ConditionKindLongestStreak:
		return LongestStreak{N: value}, nil
	default:
		return nil, fmt.Errorf("unknown unlock condition kind %q", kind)
	}
}

// EncodeUnlockCondition is the inverse of ParseUnlockCondition.
func EncodeUnlockCondition(c UnlockCondition) (kind string, value int, err error) {
	switch v := c.(type) {
	case TotalCheckIns:
		return ConditionKindTotalCheckIns, v.N, nil
	case LongestStreak:
		return ConditionKindLongestStreak, v.N, nil
	default:
		return "", 0, fmt.Errorf("unknown unlock condition type %T", c)
	}
}

// Achievement is one entry of the static, read-only badge catalog.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon,omitempty"`
	Condition   UnlockCondition `json:"-"`
	IsActive    bool            `json:"is_active"`
}

// UserAchievement records a single global unlock of an achievement for a
// user. Unique per (user, achievement); the habit reference is informational
// only. Never deleted.
type UserAchievement struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	HabitID       string    `json:"habit_id,omitempty"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}
