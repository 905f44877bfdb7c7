package cli

import (
	"errors"
	"fmt"

	"github.com/sproutapp/sprout/internal/engine"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

// Context is passed to every command by kong.
type Context struct {
	Store     storage.Provider
	Engine    *engine.Engine
	UserEmail string
}

// CurrentUser resolves the acting user's profile from the --user email.
func (c *Context) CurrentUser() (models.UserProfile, error) {
	profile, err := c.Store.GetProfileByEmail(c.UserEmail)
	if errors.Is(err, storage.ErrNotFound) {
		return models.UserProfile{}, fmt.Errorf("no profile for %s, run 'sprout init' first", c.UserEmail)
	}
	return profile, err
}

// ResolveHabit looks a habit up by name for the given user.
func (c *Context) ResolveHabit(userID, name string) (models.Habit, error) {
	habit, err := c.Store.GetHabitByName(userID, name)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Habit{}, fmt.Errorf("habit %q not found", name)
	}
	return habit, err
}

// Maintainer is implemented by backends that expose migration control for
// the migrate and doctor commands.
type Maintainer interface {
	Migrate(logFn func(string)) (int, error)
	MigrationStatus() (current, latest int, err error)
}
