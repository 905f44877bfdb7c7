package engine

import (
	"errors"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
	"github.com/sproutapp/sprout/internal/storage/sqlite"
)

// fakeClock is a settable time source for deterministic streak and
// exposure-window tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) advance(days int) {
	c.t = c.t.AddDate(0, 0, days)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "sprout.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedProfile(t *testing.T, store storage.Provider, makeupCount int) models.UserProfile {
	t.Helper()
	profile := models.UserProfile{
		ID:              uuid.New().String(),
		Email:           "test@sprout",
		Plan:            models.PlanFree,
		MaxActiveHabits: 3,
		MakeupCount:     makeupCount,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.CreateProfile(profile); err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

func seedHabit(t *testing.T, store storage.Provider, userID, name, category string) models.Habit {
	t.Helper()
	habit := models.Habit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       name,
		Category:   category,
		TargetDays: 21,
		IsActive:   true,
		CreatedAt:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.AddHabit(habit); err != nil {
		t.Fatalf("failed to create test habit: %v", err)
	}
	return habit
}

func newTestEngine(t *testing.T) (*Engine, storage.Provider, *fakeClock, models.UserProfile, models.Habit) {
	t.Helper()
	store := newTestStore(t)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	eng := New(store, WithClock(clock.Now), WithRand(rand.New(rand.NewSource(1))))
	profile := seedProfile(t, store, 1)
	habit := seedHabit(t, store, profile.ID, "meditate", "")
	return eng, store, clock, profile, habit
}

func TestRecordCheckInStreakProgression(t *testing.T) {
	eng, _, clock, profile, habit := newTestEngine(t)

	// Three consecutive days.
	for i := 0; i < 3; i++ {
		result, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
		if err != nil {
			t.Fatalf("day %d: RecordCheckIn() failed: %v", i+1, err)
		}
		if result.Habit.CurrentStreak != i+1 {
			t.Errorf("day %d: current streak = %d, want %d", i+1, result.Habit.CurrentStreak, i+1)
		}
		clock.advance(1)
	}

	// Skip a day, then check in again: streak resets, longest survives.
	clock.advance(1)
	result, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if err != nil {
		t.Fatalf("RecordCheckIn() after gap failed: %v", err)
	}
	if result.Habit.CurrentStreak != 1 {
		t.Errorf("current streak after gap = %d, want 1", result.Habit.CurrentStreak)
	}
	if result.Habit.LongestStreak != 3 {
		t.Errorf("longest streak after gap = %d, want 3", result.Habit.LongestStreak)
	}
	if result.Habit.TotalCheckIns != 4 {
		t.Errorf("total check-ins = %d, want 4", result.Habit.TotalCheckIns)
	}
}

func TestRecordCheckInResultMatchesStore(t *testing.T) {
	eng, store, _, profile, habit := newTestEngine(t)

	result, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	// The returned habit reflects exactly what the transaction committed.
	stored, err := store.GetHabit(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if result.Habit.TotalCheckIns != stored.TotalCheckIns {
		t.Errorf("result total = %d, stored total = %d", result.Habit.TotalCheckIns, stored.TotalCheckIns)
	}
	if stored.TotalCheckIns != 1 {
		t.Errorf("stored total = %d, want 1", stored.TotalCheckIns)
	}
	if result.Habit.CurrentStreak != stored.CurrentStreak {
		t.Errorf("result streak = %d, stored streak = %d", result.Habit.CurrentStreak, stored.CurrentStreak)
	}
}

func TestConcurrentCheckInsSingleWinner(t *testing.T) {
	eng, store, _, profile, habit := newTestEngine(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
		}(i)
	}
	wg.Wait()

	var succeeded, duplicate int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrDuplicateCheckIn):
			duplicate++
		default:
			t.Fatalf("unexpected RecordCheckIn() error: %v", err)
		}
	}
	if succeeded != 1 || duplicate != 1 {
		t.Fatalf("successes = %d, duplicates = %d, want exactly one of each", succeeded, duplicate)
	}

	checkIns, err := store.GetCheckIns(profile.ID, habit.ID, 10)
	if err != nil {
		t.Fatalf("GetCheckIns() failed: %v", err)
	}
	if len(checkIns) != 1 {
		t.Errorf("stored check-ins = %d, want 1", len(checkIns))
	}
	updatedHabit, err := store.GetHabit(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if updatedHabit.TotalCheckIns != 1 {
		t.Errorf("habit total = %d, want 1", updatedHabit.TotalCheckIns)
	}
	updatedProfile, err := store.GetProfile(profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updatedProfile.TotalCheckIns != 1 {
		t.Errorf("profile total = %d, want 1", updatedProfile.TotalCheckIns)
	}
}

func TestRecordCheckInDuplicate(t *testing.T) {
	eng, store, _, profile, habit := newTestEngine(t)

	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("first RecordCheckIn() failed: %v", err)
	}
	_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if !errors.Is(err, ErrDuplicateCheckIn) {
		t.Fatalf("second RecordCheckIn() error = %v, want ErrDuplicateCheckIn", err)
	}

	// Exactly one row stored, and counters were not double-bumped.
	checkIns, err := store.GetCheckIns(profile.ID, habit.ID, 10)
	if err != nil {
		t.Fatalf("GetCheckIns() failed: %v", err)
	}
	if len(checkIns) != 1 {
		t.Errorf("stored check-ins = %d, want 1", len(checkIns))
	}
	updated, err := store.GetProfile(profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updated.TotalCheckIns != 1 {
		t.Errorf("profile total check-ins = %d, want 1", updated.TotalCheckIns)
	}
}

func TestRecordCheckInValidation(t *testing.T) {
	eng, _, _, profile, habit := newTestEngine(t)

	t.Run("future date rejected", func(t *testing.T) {
		_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID, Date: "2024-01-02"})
		if err == nil {
			t.Error("RecordCheckIn() with future date should fail")
		}
	})

	t.Run("backdate without makeup flag", func(t *testing.T) {
		_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID, Date: "2023-12-31"})
		if !errors.Is(err, ErrMakeupRequired) {
			t.Errorf("error = %v, want ErrMakeupRequired", err)
		}
	})

	t.Run("makeup for today rejected", func(t *testing.T) {
		_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID, IsMakeup: true})
		if err == nil {
			t.Error("RecordCheckIn() with same-day makeup should fail")
		}
	})

	t.Run("unknown habit", func(t *testing.T) {
		_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: "nope"})
		if !errors.Is(err, ErrHabitNotFound) {
			t.Errorf("error = %v, want ErrHabitNotFound", err)
		}
	})

	t.Run("invalid mood", func(t *testing.T) {
		_, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID, Mood: "ecstatic"})
		if err == nil {
			t.Error("RecordCheckIn() with invalid mood should fail")
		}
	})
}

func TestRecordCheckInMakeupQuota(t *testing.T) {
	eng, store, clock, profile, habit := newTestEngine(t)
	clock.t = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	// One makeup allowed by the seeded profile.
	result, err := eng.RecordCheckIn(CheckInRequest{
		UserID:       profile.ID,
		HabitID:      habit.ID,
		Date:         "2024-01-09",
		IsMakeup:     true,
		MakeupReason: "was traveling",
	})
	if err != nil {
		t.Fatalf("makeup RecordCheckIn() failed: %v", err)
	}
	if !result.CheckIn.IsMakeup {
		t.Error("stored check-in not flagged as makeup")
	}

	updated, err := store.GetProfile(profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updated.MakeupCount != 0 {
		t.Errorf("makeup count = %d, want 0", updated.MakeupCount)
	}

	// Quota exhausted: the second makeup fails and stores nothing.
	_, err = eng.RecordCheckIn(CheckInRequest{
		UserID:   profile.ID,
		HabitID:  habit.ID,
		Date:     "2024-01-08",
		IsMakeup: true,
	})
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("error = %v, want ErrQuotaExceeded", err)
	}
	checkIns, err := store.GetCheckIns(profile.ID, habit.ID, 10)
	if err != nil {
		t.Fatalf("GetCheckIns() failed: %v", err)
	}
	if len(checkIns) != 1 {
		t.Errorf("stored check-ins = %d, want 1", len(checkIns))
	}
}

func TestMakeupFillsStreakGap(t *testing.T) {
	eng, _, clock, profile, habit := newTestEngine(t)

	record := func(date string, makeup bool) *CheckInResult {
		t.Helper()
		result, err := eng.RecordCheckIn(CheckInRequest{
			UserID: profile.ID, HabitID: habit.ID, Date: date, IsMakeup: makeup,
		})
		if err != nil {
			t.Fatalf("RecordCheckIn(%s) failed: %v", date, err)
		}
		return result
	}

	record("2024-01-01", false)
	clock.advance(2) // now 2024-01-03, January 2nd was missed
	record("2024-01-03", false)

	result := record("2024-01-02", true)
	if result.Habit.CurrentStreak != 3 {
		t.Errorf("current streak after makeup = %d, want 3", result.Habit.CurrentStreak)
	}
	if result.Habit.LongestStreak != 3 {
		t.Errorf("longest streak after makeup = %d, want 3", result.Habit.LongestStreak)
	}
}

func TestDeleteCheckIn(t *testing.T) {
	eng, store, clock, profile, habit := newTestEngine(t)

	result, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	if err := eng.DeleteCheckIn(profile.ID, result.CheckIn.ID); err != nil {
		t.Fatalf("DeleteCheckIn() failed: %v", err)
	}

	updatedHabit, err := store.GetHabit(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if updatedHabit.TotalCheckIns != 0 || updatedHabit.CurrentStreak != 0 {
		t.Errorf("habit after delete: total=%d current=%d, want 0/0",
			updatedHabit.TotalCheckIns, updatedHabit.CurrentStreak)
	}
	updatedProfile, err := store.GetProfile(profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updatedProfile.TotalCheckIns != 0 {
		t.Errorf("profile total after delete = %d, want 0", updatedProfile.TotalCheckIns)
	}

	// Yesterday's check-in is immutable.
	result, err = eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}
	clock.advance(1)
	if err := eng.DeleteCheckIn(profile.ID, result.CheckIn.ID); !errors.Is(err, ErrSameDayOnly) {
		t.Errorf("DeleteCheckIn() next day error = %v, want ErrSameDayOnly", err)
	}
}

func TestEvaluateUnlocks(t *testing.T) {
	eng, _, _, profile, habit := newTestEngine(t)

	result, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
	if err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	// The first check-in unlocks the first-step achievement.
	found := false
	for _, a := range result.Unlocked {
		if a.ID == "ach-first-step" {
			found = true
		}
	}
	if !found {
		t.Errorf("first check-in unlocked %v, want ach-first-step included", result.Unlocked)
	}

	// Re-evaluation with no new activity unlocks nothing.
	again, err := eng.EvaluateUnlocks(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("EvaluateUnlocks() failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second EvaluateUnlocks() returned %d achievements, want 0", len(again))
	}

	statuses, err := eng.ListAchievements(profile.ID)
	if err != nil {
		t.Fatalf("ListAchievements() failed: %v", err)
	}
	unlocked := 0
	for _, s := range statuses {
		if s.Unlocked {
			unlocked++
			if s.UnlockedAt == nil {
				t.Errorf("achievement %s unlocked without timestamp", s.Achievement.ID)
			}
		}
	}
	if unlocked != 1 {
		t.Errorf("unlocked achievements = %d, want 1", unlocked)
	}
}

func TestStreakAchievementUnlocks(t *testing.T) {
	eng, _, clock, profile, habit := newTestEngine(t)

	var last *CheckInResult
	for i := 0; i < 3; i++ {
		var err error
		last, err = eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID})
		if err != nil {
			t.Fatalf("day %d: RecordCheckIn() failed: %v", i+1, err)
		}
		clock.advance(1)
	}

	found := false
	for _, a := range last.Unlocked {
		if a.ID == "ach-streak-three" {
			found = true
		}
	}
	if !found {
		t.Errorf("third consecutive check-in unlocked %v, want ach-streak-three included", last.Unlocked)
	}
}

func TestGetHabitState(t *testing.T) {
	eng, _, _, profile, habit := newTestEngine(t)

	state, err := eng.GetHabitState(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("GetHabitState() failed: %v", err)
	}
	if state.CheckedToday {
		t.Error("CheckedToday = true before any check-in")
	}
	if state.DaysRemaining != 21 {
		t.Errorf("DaysRemaining = %d, want 21", state.DaysRemaining)
	}

	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}
	state, err = eng.GetHabitState(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("GetHabitState() failed: %v", err)
	}
	if !state.CheckedToday {
		t.Error("CheckedToday = false after check-in")
	}
	if state.DaysRemaining != 20 {
		t.Errorf("DaysRemaining = %d, want 20", state.DaysRemaining)
	}
}

func TestUserStreakAggregation(t *testing.T) {
	eng, store, clock, profile, habit := newTestEngine(t)
	second := seedHabit(t, store, profile.ID, "journal", "")

	// Two days on the first habit, one on the second: the user streak is the
	// max across habits, the total is the sum.
	for i := 0; i < 2; i++ {
		if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
			t.Fatalf("RecordCheckIn() failed: %v", err)
		}
		clock.advance(1)
	}
	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: second.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	updated, err := store.GetProfile(profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updated.CurrentStreak != 2 {
		t.Errorf("user current streak = %d, want 2", updated.CurrentStreak)
	}
	if updated.TotalCheckIns != 3 {
		t.Errorf("user total check-ins = %d, want 3", updated.TotalCheckIns)
	}
}

func TestWeeklyCheckIns(t *testing.T) {
	eng, store, clock, profile, habit := newTestEngine(t)
	second := seedHabit(t, store, profile.ID, "journal", "")

	// 2024-01-01 is a Monday.
	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}
	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: second.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}
	clock.advance(2)
	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	week, err := eng.WeeklyCheckIns(profile.ID)
	if err != nil {
		t.Fatalf("WeeklyCheckIns() failed: %v", err)
	}
	if week.WeekStart != "2024-01-01" {
		t.Errorf("WeekStart = %s, want 2024-01-01", week.WeekStart)
	}
	if week.Total != 3 {
		t.Errorf("Total = %d, want 3", week.Total)
	}
	if week.Counts[0] != 2 || week.Counts[2] != 1 {
		t.Errorf("Counts = %v, want 2 on Monday and 1 on Wednesday", week.Counts)
	}
}

func TestCheckInCalendar(t *testing.T) {
	eng, _, clock, profile, habit := newTestEngine(t)

	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}
	clock.advance(1)
	if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
		t.Fatalf("RecordCheckIn() failed: %v", err)
	}

	calendar, err := eng.CheckInCalendar(profile.ID, habit.ID, 2024, time.January)
	if err != nil {
		t.Fatalf("CheckInCalendar() failed: %v", err)
	}
	if !calendar["2024-01-01"] || !calendar["2024-01-02"] {
		t.Errorf("calendar = %v, want 2024-01-01 and 2024-01-02 marked", calendar)
	}
	if calendar["2024-01-03"] {
		t.Error("calendar marks a day with no check-in")
	}
}

func TestHabitStats(t *testing.T) {
	eng, _, clock, profile, habit := newTestEngine(t)

	for i := 0; i < 2; i++ {
		if _, err := eng.RecordCheckIn(CheckInRequest{UserID: profile.ID, HabitID: habit.ID}); err != nil {
			t.Fatalf("RecordCheckIn() failed: %v", err)
		}
		clock.advance(1)
	}
	clock.advance(1) // 2024-01-04: two check-ins over four tracked days

	stats, err := eng.HabitStats(profile.ID, habit.ID)
	if err != nil {
		t.Fatalf("HabitStats() failed: %v", err)
	}
	if got, want := stats.CompletionRate, 0.5; got != want {
		t.Errorf("CompletionRate = %v, want %v", got, want)
	}
	if stats.Habit.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", stats.Habit.CurrentStreak)
	}
}
