package system

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/cli"
	"github.com/sproutapp/sprout/internal/constants"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

type InitCmd struct {
	Email string `help:"Email for the default profile." default:"local@sprout"`
	Name  string `help:"Display name for the default profile."`
	Force bool   `help:"Force reset by deleting the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		dbPath := ctx.Store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			fmt.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized sprout storage at: %s\n", ctx.Store.GetConfigPath())

	email := c.Email
	if email == "" {
		email = constants.DefaultUserEmail
	}
	_, err := ctx.Store.GetProfileByEmail(email)
	if err == nil {
		fmt.Printf("Profile %s already exists.\n", email)
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	profile := models.UserProfile{
		ID:              uuid.New().String(),
		Email:           email,
		DisplayName:     c.Name,
		Plan:            models.PlanFree,
		MaxActiveHabits: constants.DefaultMaxActiveHabits,
		MakeupCount:     constants.DefaultMakeupCount,
		CreatedAt:       time.Now().UTC(),
	}
	if err := ctx.Store.CreateProfile(profile); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	fmt.Printf("Created profile: %s\n", email)
	return nil
}
