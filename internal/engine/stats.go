package engine

import (
	"errors"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
	"github.com/sproutapp/sprout/internal/utils"
)

// UserStatsResult aggregates a user's progress across all habits.
type UserStatsResult struct {
	Profile      models.UserProfile
	ActiveHabits int
	TotalHabits  int
	Achievements int
	Week         WeeklyActivity
}

// UserStats collects the profile counters, habit counts, achievement count,
// and the current week's activity.
func (e *Engine) UserStats(userID string) (*UserStatsResult, error) {
	profile, err := e.store.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	habits, err := e.store.GetHabits(userID, true)
	if err != nil {
		return nil, err
	}
	achievements, err := e.store.CountUserAchievements(userID)
	if err != nil {
		return nil, err
	}
	week, err := e.WeeklyCheckIns(userID)
	if err != nil {
		return nil, err
	}

	stats := &UserStatsResult{
		Profile:      profile,
		TotalHabits:  len(habits),
		Achievements: achievements,
		Week:         *week,
	}
	for _, h := range habits {
		if h.IsActive {
			stats.ActiveHabits++
		}
	}
	return stats, nil
}

// HabitStatsResult is one habit's progress summary.
type HabitStatsResult struct {
	Habit        models.Habit
	CheckedToday bool
	// CompletionRate is the share of days since the habit was created that
	// have a check-in, in [0, 1].
	CompletionRate float64
	// TargetProgress is the current streak relative to the target, capped
	// at 1.
	TargetProgress float64
}

// HabitStats summarizes one habit: streaks, completion rate since creation,
// and progress toward the streak target.
func (e *Engine) HabitStats(userID, habitID string) (*HabitStatsResult, error) {
	habit, err := e.store.GetHabit(userID, habitID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}

	now := e.now()
	today := utils.Today(now)
	checkedToday, err := e.store.HasCheckIn(userID, habitID, today)
	if err != nil {
		return nil, err
	}

	stats := &HabitStatsResult{Habit: habit, CheckedToday: checkedToday}

	todayDay, err := utils.ParseDay(today)
	if err != nil {
		return nil, err
	}
	daysTracked := utils.DaysBetween(habit.CreatedAt, todayDay) + 1
	if daysTracked > 0 {
		stats.CompletionRate = float64(habit.TotalCheckIns) / float64(daysTracked)
		if stats.CompletionRate > 1 {
			stats.CompletionRate = 1
		}
	}
	if habit.TargetDays > 0 {
		stats.TargetProgress = float64(habit.CurrentStreak) / float64(habit.TargetDays)
		if stats.TargetProgress > 1 {
			stats.TargetProgress = 1
		}
	}
	return stats, nil
}
