package models

import "time"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
)

// UserProfile carries the per-user aggregate counters. The counters are
// mutated transactionally alongside check-in writes; readers never observe a
// check-in without its counter update.
type UserProfile struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	DisplayName     string    `json:"display_name"`
	Plan            Plan      `json:"plan"`
	MaxActiveHabits int       `json:"max_active_habits"`
	MakeupCount     int       `json:"makeup_count"`
	TotalCheckIns   int       `json:"total_check_ins"`
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	CreatedAt       time.Time `json:"created_at"`
}
