package models

import "time"

type EncouragementContext string

const (
	ContextDaily      EncouragementContext = "daily"
	ContextMilestone  EncouragementContext = "milestone"
	ContextStreak     EncouragementContext = "streak"
	ContextCompletion EncouragementContext = "completion"
)

type Emotion string

const (
	EmotionGentle       Emotion = "gentle"
	EmotionMotivational Emotion = "motivational"
	EmotionCelebratory  Emotion = "celebratory"
	EmotionHumorous     Emotion = "humorous"
)

// Encouragement is one message from the weighted candidate pool. An empty
// Category means the message is category-agnostic. MinStreak/MaxStreak bound
// the streak range it applies to; a nil bound is open. TriggerDay matches
// exact milestone days (3, 7, 21, ...). Weight drives the proportional
// random draw; UsageCount and LikeCount are popularity counters, not
// correctness-critical values.
type Encouragement struct {
	ID         string               `json:"id"`
	Text       string               `json:"text"`
	Category   string               `json:"category,omitempty"`
	Context    EncouragementContext `json:"context"`
	Emotion    Emotion              `json:"emotion,omitempty"`
	MinStreak  *int                 `json:"min_streak,omitempty"`
	MaxStreak  *int                 `json:"max_streak,omitempty"`
	TriggerDay *int                 `json:"trigger_day,omitempty"`
	Weight     int                  `json:"weight"`
	UsageCount int                  `json:"usage_count"`
	LikeCount  int                  `json:"like_count"`
	IsActive   bool                 `json:"is_active"`
}

// EncouragementExposure records that a message was shown to a user. Rows are
// never deleted; the 7-day exclusion window is applied by query.
type EncouragementExposure struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	EncouragementID string    `json:"encouragement_id"`
	HabitID         string    `json:"habit_id,omitempty"`
	ShownAt         time.Time `json:"shown_at"`
	WasLiked        bool      `json:"was_liked"`
}
