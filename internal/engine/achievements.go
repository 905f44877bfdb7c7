package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/models"
)

// EvaluateUnlocks checks the full achievement catalog against the user's
// current aggregates and unlocks everything newly earned. Inserts are
// conflict-ignored on the (user, achievement) constraint, so re-evaluation is
// idempotent and only genuinely new unlocks are returned.
func (e *Engine) EvaluateUnlocks(userID, habitID string) ([]models.Achievement, error) {
	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	catalog, err := e.store.ListAchievements()
	if err != nil {
		return nil, err
	}

	var unlocked []models.Achievement
	for _, a := range catalog {
		var met bool
		switch c := a.Condition.(type) {
		case models.TotalCheckIns:
			met = profile.TotalCheckIns >= c.N
		case models.LongestStreak:
			met = profile.LongestStreak >= c.N
		default:
			return nil, fmt.Errorf("achievement %s: unknown unlock condition type %T", a.ID, c)
		}
		if !met {
			continue
		}

		inserted, err := e.store.InsertUserAchievement(models.UserAchievement{
			ID:            uuid.New().String(),
			UserID:        userID,
			AchievementID: a.ID,
			HabitID:       habitID,
			UnlockedAt:    e.now().UTC(),
		})
		if err != nil {
			return nil, err
		}
		if inserted {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked, nil
}

// AchievementStatus is a catalog entry joined with the user's unlock state.
type AchievementStatus struct {
	Achievement models.Achievement
	Unlocked    bool
	UnlockedAt  *time.Time
}

// ListAchievements returns the full catalog with the user's unlock state.
func (e *Engine) ListAchievements(userID string) ([]AchievementStatus, error) {
	catalog, err := e.store.ListAchievements()
	if err != nil {
		return nil, err
	}
	unlocked, err := e.store.ListUserAchievements(userID)
	if err != nil {
		return nil, err
	}

	unlockedAt := make(map[string]time.Time, len(unlocked))
	for _, ua := range unlocked {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		status := AchievementStatus{Achievement: a}
		if at, ok := unlockedAt[a.ID]; ok {
			status.Unlocked = true
			status.UnlockedAt = &at
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
