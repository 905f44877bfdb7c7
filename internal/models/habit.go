package models

import "time"

// Habit is a tracked personal habit. Lifetime counters are derived state:
// only the streak recompute that follows a check-in write mutates them.
// Habits are deactivated, never hard-deleted, while check-ins reference them.
type Habit struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Category      string     `json:"category,omitempty"`
	TargetDays    int        `json:"target_days"`
	TotalCheckIns int        `json:"total_check_ins"`
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}
