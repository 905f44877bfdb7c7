package constants

const (
	AppName            = "sprout"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/sprout/sprout.db"
	Version            = "v0.2.0"

	// DateFormat is the standard calendar-date format used throughout the
	// application (YYYY-MM-DD). Check-in uniqueness is keyed on this format.
	DateFormat = "2006-01-02"

	// DefaultUserEmail is the profile used when no --user flag is given.
	DefaultUserEmail = "local@sprout"

	// ExposureWindowDays is the rolling window during which a shown
	// encouragement is excluded from re-selection.
	ExposureWindowDays = 7

	// ExposureHistoryLimit caps how many recent exposures are consulted
	// when building the exclusion list.
	ExposureHistoryLimit = 20

	// Free-plan defaults applied when a profile is created.
	DefaultMaxActiveHabits = 3
	DefaultMakeupCount     = 1

	// DefaultTargetDays is the habit target length when none is given.
	DefaultTargetDays = 21
)
