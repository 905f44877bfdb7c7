package engine

import "errors"

var (
	// ErrDuplicateCheckIn is returned when a check-in already exists for the
	// same user, habit, and date.
	ErrDuplicateCheckIn = errors.New("already checked in for this date")

	// ErrQuotaExceeded is returned when a makeup check-in is requested but
	// the user's makeup allowance is exhausted.
	ErrQuotaExceeded = errors.New("no makeup check-ins remaining")

	// ErrHabitNotFound is returned when the referenced habit does not exist
	// or belongs to another user.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrNoEncouragementAvailable is returned when neither the filtered pool
	// nor the fallback query yields a message.
	ErrNoEncouragementAvailable = errors.New("no encouragement available")

	// ErrMakeupRequired is returned for a backdated check-in that was not
	// flagged as a makeup.
	ErrMakeupRequired = errors.New("backdated check-in requires the makeup flag")

	// ErrSameDayOnly is returned when deleting a check-in recorded on an
	// earlier date.
	ErrSameDayOnly = errors.New("check-ins can only be deleted on the day they were recorded")
)
