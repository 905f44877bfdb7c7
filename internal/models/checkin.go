package models

import "time"

type Mood string

const (
	MoodGreat Mood = "great"
	MoodGood  Mood = "good"
	MoodOkay  Mood = "okay"
	MoodLow   Mood = "low"
	MoodBad   Mood = "bad"
)

// ValidMood reports whether m is one of the known mood values. Empty is
// allowed; mood is optional on a check-in.
func ValidMood(m Mood) bool {
	switch m {
	case "", MoodGreat, MoodGood, MoodOkay, MoodLow, MoodBad:
		return true
	}
	return false
}

// CheckIn is one dated record that a user performed a habit. At most one
// exists per (user, habit, date); rows are immutable once created except for
// same-day deletion. Date is calendar-date only (YYYY-MM-DD), no time-of-day
// semantics.
type CheckIn struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	HabitID          string             `json:"habit_id"`
	Date             string             `json:"check_in_date"`
	CompletedOptions []string           `json:"completed_options,omitempty"`
	Metrics          map[string]float64 `json:"metrics,omitempty"`
	Mood             Mood               `json:"mood,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	IsMakeup         bool               `json:"is_makeup"`
	MakeupReason     string             `json:"makeup_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}
