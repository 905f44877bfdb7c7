package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "sprout.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testProfile(t *testing.T, store *Store) models.UserProfile {
	t.Helper()
	p := models.UserProfile{
		ID:              uuid.New().String(),
		Email:           "test@sprout",
		Plan:            models.PlanFree,
		MaxActiveHabits: 3,
		MakeupCount:     1,
		CreatedAt:       time.Now().UTC(),
	}
	if err := store.CreateProfile(p); err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}
	return p
}

func testHabit(t *testing.T, store *Store, userID string) models.Habit {
	t.Helper()
	h := models.Habit{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       "meditate",
		TargetDays: 21,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("failed to create habit: %v", err)
	}
	return h
}

func TestInitAppliesMigrations(t *testing.T) {
	store := setupTestStore(t)

	current, latest, err := store.MigrationStatus()
	if err != nil {
		t.Fatalf("MigrationStatus() failed: %v", err)
	}
	if current != latest {
		t.Errorf("schema version = %d, want latest %d", current, latest)
	}
	if current == 0 {
		t.Error("schema version = 0 after Init")
	}

	// The catalog seed rode in with the migrations.
	achievements, err := store.ListAchievements()
	if err != nil {
		t.Fatalf("ListAchievements() failed: %v", err)
	}
	if len(achievements) == 0 {
		t.Error("achievement catalog empty after Init")
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("Load() on a missing database should fail")
	}
}

func TestCheckInUniqueConstraint(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)
	h := testHabit(t, store, p.ID)

	checkIn := models.CheckIn{
		ID:        uuid.New().String(),
		UserID:    p.ID,
		HabitID:   h.ID,
		Date:      "2024-01-01",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateCheckIn(checkIn); err != nil {
		t.Fatalf("first CreateCheckIn() failed: %v", err)
	}

	dup := checkIn
	dup.ID = uuid.New().String()
	if err := store.CreateCheckIn(dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate CreateCheckIn() error = %v, want ErrConflict", err)
	}
}

func TestHabitNameUniquePerUser(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)
	testHabit(t, store, p.ID)

	dup := models.Habit{
		ID:        uuid.New().String(),
		UserID:    p.ID,
		Name:      "meditate",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.AddHabit(dup); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate AddHabit() error = %v, want ErrConflict", err)
	}
}

func TestInsertUserAchievementIdempotent(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)

	ua := models.UserAchievement{
		ID:            uuid.New().String(),
		UserID:        p.ID,
		AchievementID: "ach-first-step",
		UnlockedAt:    time.Now().UTC(),
	}
	inserted, err := store.InsertUserAchievement(ua)
	if err != nil {
		t.Fatalf("InsertUserAchievement() failed: %v", err)
	}
	if !inserted {
		t.Error("first insert reported not inserted")
	}

	ua.ID = uuid.New().String()
	inserted, err = store.InsertUserAchievement(ua)
	if err != nil {
		t.Fatalf("second InsertUserAchievement() failed: %v", err)
	}
	if inserted {
		t.Error("second insert for the same achievement reported inserted")
	}

	count, err := store.CountUserAchievements(p.ID)
	if err != nil {
		t.Fatalf("CountUserAchievements() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("achievement count = %d, want 1", count)
	}
}

func TestDecrementMakeupCount(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store) // seeded with one makeup

	ok, err := store.DecrementMakeupCount(p.ID)
	if err != nil {
		t.Fatalf("DecrementMakeupCount() failed: %v", err)
	}
	if !ok {
		t.Error("first decrement reported no allowance")
	}

	ok, err = store.DecrementMakeupCount(p.ID)
	if err != nil {
		t.Fatalf("second DecrementMakeupCount() failed: %v", err)
	}
	if ok {
		t.Error("decrement below zero reported success")
	}

	updated, err := store.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("GetProfile() failed: %v", err)
	}
	if updated.MakeupCount != 0 {
		t.Errorf("makeup count = %d, want 0", updated.MakeupCount)
	}
}

func TestDeactivateAndReactivateHabit(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)
	h := testHabit(t, store, p.ID)

	if err := store.DeactivateHabit(p.ID, h.ID); err != nil {
		t.Fatalf("DeactivateHabit() failed: %v", err)
	}
	got, err := store.GetHabit(p.ID, h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.IsActive || got.DeactivatedAt == nil {
		t.Errorf("habit after deactivate: active=%v deactivatedAt=%v", got.IsActive, got.DeactivatedAt)
	}

	// Deactivating twice hits no row.
	if err := store.DeactivateHabit(p.ID, h.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second DeactivateHabit() error = %v, want ErrNotFound", err)
	}

	// Inactive habits are hidden from the active listing but kept.
	active, err := store.GetHabits(p.ID, false)
	if err != nil {
		t.Fatalf("GetHabits() failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active habits = %d, want 0", len(active))
	}
	all, err := store.GetHabits(p.ID, true)
	if err != nil {
		t.Fatalf("GetHabits(all) failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("all habits = %d, want 1", len(all))
	}

	if err := store.ReactivateHabit(p.ID, h.ID); err != nil {
		t.Fatalf("ReactivateHabit() failed: %v", err)
	}
	got, err = store.GetHabit(p.ID, h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if !got.IsActive || got.DeactivatedAt != nil {
		t.Errorf("habit after reactivate: active=%v deactivatedAt=%v", got.IsActive, got.DeactivatedAt)
	}
}

func TestCheckInRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)
	h := testHabit(t, store, p.ID)

	checkIn := models.CheckIn{
		ID:               uuid.New().String(),
		UserID:           p.ID,
		HabitID:          h.ID,
		Date:             "2024-01-01",
		CompletedOptions: []string{"opt-a", "opt-b"},
		Metrics:          map[string]float64{"minutes": 12.5},
		Mood:             models.MoodGood,
		Notes:            "felt calm",
		CreatedAt:        time.Now().UTC().Truncate(time.Second),
	}
	if err := store.CreateCheckIn(checkIn); err != nil {
		t.Fatalf("CreateCheckIn() failed: %v", err)
	}

	got, err := store.GetCheckIn(p.ID, checkIn.ID)
	if err != nil {
		t.Fatalf("GetCheckIn() failed: %v", err)
	}
	if got.Mood != models.MoodGood || got.Notes != "felt calm" {
		t.Errorf("got mood=%s notes=%q", got.Mood, got.Notes)
	}
	if len(got.CompletedOptions) != 2 || got.CompletedOptions[0] != "opt-a" {
		t.Errorf("completed options = %v", got.CompletedOptions)
	}
	if got.Metrics["minutes"] != 12.5 {
		t.Errorf("metrics = %v", got.Metrics)
	}
}

func TestListEncouragementsFilters(t *testing.T) {
	store := setupTestStore(t)

	t.Run("category includes agnostic", func(t *testing.T) {
		pool, err := store.ListEncouragements(storage.EncouragementFilter{
			Context:  models.ContextDaily,
			Category: "reading",
		})
		if err != nil {
			t.Fatalf("ListEncouragements() failed: %v", err)
		}
		foundReading := false
		for _, e := range pool {
			if e.Category != "" && e.Category != "reading" {
				t.Errorf("pool contains foreign category %q", e.Category)
			}
			if e.ID == "enc-read-01" {
				foundReading = true
			}
		}
		if !foundReading {
			t.Error("reading-specific message missing from pool")
		}
	})

	t.Run("empty category is agnostic only", func(t *testing.T) {
		pool, err := store.ListEncouragements(storage.EncouragementFilter{Context: models.ContextDaily})
		if err != nil {
			t.Fatalf("ListEncouragements() failed: %v", err)
		}
		for _, e := range pool {
			if e.Category != "" {
				t.Errorf("pool contains categorized message %s", e.ID)
			}
		}
	})

	t.Run("streak bounds", func(t *testing.T) {
		streak := 10
		pool, err := store.ListEncouragements(storage.EncouragementFilter{
			Context: models.ContextDaily,
			Streak:  &streak,
		})
		if err != nil {
			t.Fatalf("ListEncouragements() failed: %v", err)
		}
		for _, e := range pool {
			if e.ID == "enc-early-01" || e.ID == "enc-long-01" {
				t.Errorf("pool contains %s outside its streak range", e.ID)
			}
		}
	})

	t.Run("exclusions", func(t *testing.T) {
		pool, err := store.ListEncouragements(storage.EncouragementFilter{
			Context:    models.ContextDaily,
			ExcludeIDs: []string{"enc-daily-01", "enc-daily-02"},
		})
		if err != nil {
			t.Fatalf("ListEncouragements() failed: %v", err)
		}
		for _, e := range pool {
			if e.ID == "enc-daily-01" || e.ID == "enc-daily-02" {
				t.Errorf("pool contains excluded message %s", e.ID)
			}
		}
	})
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := setupTestStore(t)
	p := testProfile(t, store)
	h := testHabit(t, store, p.ID)

	wantErr := errors.New("boom")
	err := store.InTx(func(tx storage.Ledger) error {
		if err := tx.CreateCheckIn(models.CheckIn{
			ID:        uuid.New().String(),
			UserID:    p.ID,
			HabitID:   h.ID,
			Date:      "2024-01-01",
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("InTx() error = %v, want %v", err, wantErr)
	}

	checkIns, err := store.GetCheckIns(p.ID, h.ID, 10)
	if err != nil {
		t.Fatalf("GetCheckIns() failed: %v", err)
	}
	if len(checkIns) != 0 {
		t.Errorf("check-ins after rollback = %d, want 0", len(checkIns))
	}
}
