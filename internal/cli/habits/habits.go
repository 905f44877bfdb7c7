package habits

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sproutapp/sprout/internal/cli"
	"github.com/sproutapp/sprout/internal/constants"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/storage"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	List       HabitListCmd       `cmd:"" default:"1" help:"List habits."`
	Deactivate HabitDeactivateCmd `cmd:"" help:"Deactivate a habit."`
	Restore    HabitRestoreCmd    `cmd:"" help:"Restore a deactivated habit."`
}

type HabitAddCmd struct {
	Name     string `arg:"" help:"Habit name."`
	Category string `help:"Habit category (e.g. fitness, reading)."`
	Target   int    `help:"Target streak length in days." default:"21"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	active, err := ctx.Store.GetHabits(user.ID, false)
	if err != nil {
		return err
	}
	if len(active) >= user.MaxActiveHabits {
		return fmt.Errorf("active habit limit reached (%d); deactivate one first or upgrade your plan", user.MaxActiveHabits)
	}

	target := c.Target
	if target <= 0 {
		target = constants.DefaultTargetDays
	}
	habit := models.Habit{
		ID:         uuid.New().String(),
		UserID:     user.ID,
		Name:       c.Name,
		Category:   c.Category,
		TargetDays: target,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if err := ctx.Store.AddHabit(habit); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return fmt.Errorf("habit %q already exists", c.Name)
		}
		return err
	}

	fmt.Printf("Added habit: %s (target %d days)\n", c.Name, target)
	return nil
}

type HabitListCmd struct {
	All bool `help:"Include deactivated habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	habits, err := ctx.Store.GetHabits(user.ID, c.All)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found. Add one with 'sprout habit add'.")
		return nil
	}

	for _, h := range habits {
		state, err := ctx.Engine.GetHabitState(user.ID, h.ID)
		if err != nil {
			return err
		}

		mark := "[ ]"
		if state.CheckedToday {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, h.Name)
		if h.Category != "" {
			line += cli.FaintStyle.Render(" ("+h.Category+")")
		}
		if !h.IsActive {
			line += cli.WarnStyle.Render(" [inactive]")
		}
		fmt.Println(line)
		fmt.Printf("    %s  longest %d  total %d  %d day(s) to target\n",
			cli.StreakStyle.Render(fmt.Sprintf("streak %d", h.CurrentStreak)),
			h.LongestStreak, h.TotalCheckIns, state.DaysRemaining)
	}
	return nil
}

type HabitDeactivateCmd struct {
	Name string `arg:"" help:"Habit name to deactivate."`
}

func (c *HabitDeactivateCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(user.ID, c.Name)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeactivateHabit(user.ID, habit.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit %q is already inactive", c.Name)
		}
		return err
	}

	fmt.Printf("Deactivated habit: %s\n", c.Name)
	fmt.Println("(Check-in history is kept. Use 'sprout habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Name string `arg:"" help:"Habit name to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(user.ID, c.Name)
	if err != nil {
		return err
	}

	active, err := ctx.Store.GetHabits(user.ID, false)
	if err != nil {
		return err
	}
	if len(active) >= user.MaxActiveHabits {
		return fmt.Errorf("active habit limit reached (%d); deactivate one first", user.MaxActiveHabits)
	}

	if err := ctx.Store.ReactivateHabit(user.ID, habit.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("habit %q is already active", c.Name)
		}
		return err
	}

	fmt.Printf("Restored habit: %s\n", c.Name)
	return nil
}
