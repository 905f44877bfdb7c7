package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/logger"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
	"github.com/sproutapp/sprout/internal/utils"
)

// CheckInRequest describes a check-in to record. An empty Date means today.
type CheckInRequest struct {
	UserID           string
	HabitID          string
	Date             string
	CompletedOptions []string
	Metrics          map[string]float64
	Mood             models.Mood
	Notes            string
	IsMakeup         bool
	MakeupReason     string
}

// CheckInResult is the outcome of a successful RecordCheckIn: the stored
// check-in, the habit with refreshed streaks, and any achievements the write
// unlocked.
type CheckInResult struct {
	CheckIn  models.CheckIn
	Habit    models.Habit
	Unlocked []models.Achievement
}

// RecordCheckIn stores a check-in and recomputes derived state. The insert,
// the counter increments, and the streak recompute commit in one transaction;
// a duplicate date surfaces as ErrDuplicateCheckIn straight from the store's
// unique constraint. Achievement evaluation runs after commit so a failure
// there never loses the check-in.
func (e *Engine) RecordCheckIn(req CheckInRequest) (*CheckInResult, error) {
	if !models.ValidMood(req.Mood) {
		return nil, fmt.Errorf("invalid mood %q", req.Mood)
	}

	now := e.now()
	today := utils.Today(now)
	date := req.Date
	if date == "" {
		date = today
	}
	day, err := utils.ParseDay(date)
	if err != nil {
		return nil, err
	}
	todayDay, err := utils.ParseDay(today)
	if err != nil {
		return nil, err
	}
	switch gap := utils.DaysBetween(day, todayDay); {
	case gap < 0:
		return nil, fmt.Errorf("cannot check in for a future date %s", date)
	case gap > 0 && !req.IsMakeup:
		return nil, ErrMakeupRequired
	case gap == 0 && req.IsMakeup:
		return nil, fmt.Errorf("makeup check-ins are for past dates only")
	}

	result := &CheckInResult{}
	err = e.store.InTx(func(tx storage.Ledger) error {
		habit, err := tx.GetHabit(req.UserID, req.HabitID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrHabitNotFound
		}
		if err != nil {
			return err
		}
		if !habit.IsActive {
			return fmt.Errorf("habit %q is deactivated", habit.Name)
		}

		if req.IsMakeup {
			ok, err := tx.DecrementMakeupCount(req.UserID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrQuotaExceeded
			}
		}

		checkIn := models.CheckIn{
			ID:               uuid.New().String(),
			UserID:           req.UserID,
			HabitID:          req.HabitID,
			Date:             date,
			CompletedOptions: req.CompletedOptions,
			Metrics:          req.Metrics,
			Mood:             req.Mood,
			Notes:            req.Notes,
			IsMakeup:         req.IsMakeup,
			MakeupReason:     req.MakeupReason,
			CreatedAt:        now.UTC(),
		}
		if err := tx.CreateCheckIn(checkIn); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				return ErrDuplicateCheckIn
			}
			return err
		}
		if err := tx.AddCheckInTotals(req.UserID, req.HabitID, 1); err != nil {
			return err
		}

		// refreshStreaks re-reads the habit inside this transaction, so the
		// row it returns already carries the incremented total.
		habit, err = e.refreshStreaks(tx, req.UserID, req.HabitID, todayDay)
		if err != nil {
			return err
		}
		result.CheckIn = checkIn
		result.Habit = habit
		return nil
	})
	if err != nil {
		return nil, err
	}

	unlocked, err := e.EvaluateUnlocks(req.UserID, req.HabitID)
	if err != nil {
		logger.Warn("achievement evaluation failed after check-in",
			"user", req.UserID, "habit", req.HabitID, "error", err)
	} else {
		result.Unlocked = unlocked
	}
	return result, nil
}

// DeleteCheckIn removes a check-in recorded earlier the same day and restores
// the counters and streaks it contributed to. Older check-ins are immutable.
func (e *Engine) DeleteCheckIn(userID, checkInID string) error {
	now := e.now()
	today := utils.Today(now)
	todayDay, err := utils.ParseDay(today)
	if err != nil {
		return err
	}

	return e.store.InTx(func(tx storage.Ledger) error {
		checkIn, err := tx.GetCheckIn(userID, checkInID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check-in %s: %w", checkInID, storage.ErrNotFound)
		}
		if err != nil {
			return err
		}
		if checkIn.Date != today {
			return ErrSameDayOnly
		}

		if err := tx.DeleteCheckIn(userID, checkInID); err != nil {
			return err
		}
		if err := tx.AddCheckInTotals(userID, checkIn.HabitID, -1); err != nil {
			return err
		}
		_, err = e.refreshStreaks(tx, userID, checkIn.HabitID, todayDay)
		return err
	})
}

// refreshStreaks recomputes the habit's streaks from its full date set and
// rolls the user-level aggregates up from the active habits. Must run inside
// the same transaction as the write that invalidated them.
func (e *Engine) refreshStreaks(tx storage.Ledger, userID, habitID string, today time.Time) (models.Habit, error) {
	dates, err := tx.GetCheckInDates(habitID)
	if err != nil {
		return models.Habit{}, err
	}
	current, longest, err := computeStreaks(dates, today)
	if err != nil {
		return models.Habit{}, err
	}
	if err := tx.UpdateHabitStreaks(habitID, current, longest); err != nil {
		return models.Habit{}, err
	}

	habits, err := tx.GetHabits(userID, false)
	if err != nil {
		return models.Habit{}, err
	}
	var userCurrent, userLongest int
	var updated models.Habit
	for _, h := range habits {
		if h.ID == habitID {
			h.CurrentStreak, h.LongestStreak = current, longest
			updated = h
		}
		if h.CurrentStreak > userCurrent {
			userCurrent = h.CurrentStreak
		}
		if h.LongestStreak > userLongest {
			userLongest = h.LongestStreak
		}
	}
	if err := tx.UpdateProfileStreaks(userID, userCurrent, userLongest); err != nil {
		return models.Habit{}, err
	}
	return updated, nil
}

// HabitState is a habit joined with its day-level progress.
type HabitState struct {
	Habit         models.Habit
	CheckedToday  bool
	DaysRemaining int
}

// GetHabitState returns the habit with its persisted streaks, whether it has
// a check-in today, and how many streak days remain to the target.
func (e *Engine) GetHabitState(userID, habitID string) (*HabitState, error) {
	habit, err := e.store.GetHabit(userID, habitID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrHabitNotFound
	}
	if err != nil {
		return nil, err
	}

	today := utils.Today(e.now())
	checkedToday, err := e.store.HasCheckIn(userID, habitID, today)
	if err != nil {
		return nil, err
	}

	remaining := habit.TargetDays - habit.CurrentStreak
	if remaining < 0 {
		remaining = 0
	}
	return &HabitState{
		Habit:         habit,
		CheckedToday:  checkedToday,
		DaysRemaining: remaining,
	}, nil
}

// CheckInHistory returns the habit's most recent check-ins, newest first.
func (e *Engine) CheckInHistory(userID, habitID string, limit int) ([]models.CheckIn, error) {
	if limit <= 0 {
		limit = 30
	}
	if _, err := e.store.GetHabit(userID, habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}
	return e.store.GetCheckIns(userID, habitID, limit)
}

// CheckInCalendar returns the habit's check-in days for one month as a
// date -> present map, for heat-map style rendering.
func (e *Engine) CheckInCalendar(userID, habitID string, year int, month time.Month) (map[string]bool, error) {
	if _, err := e.store.GetHabit(userID, habitID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	checkIns, err := e.store.GetCheckInsByDateRange(userID, habitID,
		utils.FormatDay(start), utils.FormatDay(end))
	if err != nil {
		return nil, err
	}

	calendar := make(map[string]bool, len(checkIns))
	for _, c := range checkIns {
		calendar[c.Date] = true
	}
	return calendar, nil
}

// WeeklyActivity tallies the user's check-ins for the current week.
type WeeklyActivity struct {
	WeekStart string
	Counts    [7]int // Monday first
	Total     int
}

// WeeklyCheckIns counts the user's check-ins across all habits for the week
// containing today, Monday through Sunday.
func (e *Engine) WeeklyCheckIns(userID string) (*WeeklyActivity, error) {
	now := e.now()
	start := utils.WeekStart(now)
	end := start.AddDate(0, 0, 6)

	dates, err := e.store.GetUserCheckInDates(userID, utils.FormatDay(start), utils.FormatDay(end))
	if err != nil {
		return nil, err
	}

	activity := &WeeklyActivity{WeekStart: utils.FormatDay(start)}
	for _, d := range dates {
		day, err := utils.ParseDay(d)
		if err != nil {
			return nil, err
		}
		offset := utils.DaysBetween(start, day)
		if offset < 0 || offset > 6 {
			continue
		}
		activity.Counts[offset]++
		activity.Total++
	}
	return activity, nil
}
