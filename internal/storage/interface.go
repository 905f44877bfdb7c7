// Package storage defines the transactional ledger interface the engine
// writes through. Implementations live in the sqlite and postgres
// subpackages; the engine holds authoritative state nowhere else.
package storage

import (
	"errors"
	"time"

	"github.com/sproutapp/sprout/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when an insert violates a unique constraint.
	// The constraint, not a prior read, is the duplicate-detection mechanism.
	ErrConflict = errors.New("record already exists")
)

// EncouragementFilter narrows the candidate pool for a selection. A zero
// Category keeps only category-agnostic entries; a set Category keeps both
// matching and category-agnostic ones. A nil Streak skips range filtering.
type EncouragementFilter struct {
	Context    models.EncouragementContext
	Category   string
	Streak     *int
	ExcludeIDs []string
}

// Ledger is the read/write surface shared by a live connection and an open
// transaction. All methods map missing rows to ErrNotFound and unique
// violations to ErrConflict.
type Ledger interface {
	// Profiles
	CreateProfile(p models.UserProfile) error
	GetProfile(userID string) (models.UserProfile, error)
	GetProfileByEmail(email string) (models.UserProfile, error)
	UpdateProfileStreaks(userID string, current, longest int) error
	// DecrementMakeupCount atomically consumes one makeup allowance.
	// Returns false without error when the allowance is already zero.
	DecrementMakeupCount(userID string) (bool, error)

	// Habits
	AddHabit(h models.Habit) error
	GetHabit(userID, habitID string) (models.Habit, error)
	GetHabitByName(userID, name string) (models.Habit, error)
	GetHabits(userID string, includeInactive bool) ([]models.Habit, error)
	UpdateHabitStreaks(habitID string, current, longest int) error
	DeactivateHabit(userID, habitID string) error
	ReactivateHabit(userID, habitID string) error

	// Check-ins
	CreateCheckIn(c models.CheckIn) error
	GetCheckIn(userID, checkInID string) (models.CheckIn, error)
	DeleteCheckIn(userID, checkInID string) error
	// GetCheckInDates returns the habit's distinct check-in dates in
	// ascending calendar order.
	GetCheckInDates(habitID string) ([]string, error)
	GetCheckIns(userID, habitID string, limit int) ([]models.CheckIn, error)
	GetCheckInsByDateRange(userID, habitID, startDate, endDate string) ([]models.CheckIn, error)
	// GetUserCheckInDates returns every check-in date for the user across
	// all habits in the range, duplicates included, for weekly tallies.
	GetUserCheckInDates(userID, startDate, endDate string) ([]string, error)
	HasCheckIn(userID, habitID, date string) (bool, error)
	// AddCheckInTotals shifts the habit's and the user's total_check_ins by
	// delta in one statement each (atomic increments, no read-modify-write).
	AddCheckInTotals(userID, habitID string, delta int) error

	// Achievements
	ListAchievements() ([]models.Achievement, error)
	ListUserAchievements(userID string) ([]models.UserAchievement, error)
	CountUserAchievements(userID string) (int, error)
	// InsertUserAchievement inserts with conflict-ignore semantics on the
	// (user, achievement) unique constraint. Returns false when the
	// achievement was already unlocked.
	InsertUserAchievement(ua models.UserAchievement) (bool, error)

	// Encouragements
	ListEncouragements(f EncouragementFilter) ([]models.Encouragement, error)
	// FallbackEncouragement returns the highest-weight category-agnostic
	// active entry for the context, ignoring any exclusion window.
	FallbackEncouragement(ctx models.EncouragementContext) (models.Encouragement, error)
	// MilestoneEncouragement returns the highest-weight active milestone
	// entry whose trigger_day equals day.
	MilestoneEncouragement(day int) (models.Encouragement, error)
	RecentEncouragementIDs(userID string, since time.Time, limit int) ([]string, error)
	IncrementEncouragementUsage(id string) error
	IncrementEncouragementLikes(id string) error
	RecordExposure(e models.EncouragementExposure) error
	MarkExposureLiked(userID, encouragementID string) error
}

// Provider adds lifecycle and transaction control on top of Ledger.
type Provider interface {
	Ledger

	Init() error
	Load() error
	Close() error
	// InTx runs fn against a Ledger bound to a single transaction,
	// committing on nil and rolling back on error.
	InTx(fn func(Ledger) error) error
	GetConfigPath() string
}
