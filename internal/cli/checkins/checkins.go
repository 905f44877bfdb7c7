package checkins

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/sproutapp/sprout/internal/cli"
	"github.com/sproutapp/sprout/internal/engine"
	"github.com/sproutapp/sprout/internal/models"
	"github.com/sproutapp/sprout/internal/utils"
)

type CheckinCmd struct {
	Record   RecordCmd   `cmd:"" default:"1" help:"Record a check-in."`
	Delete   DeleteCmd   `cmd:"" help:"Delete a check-in recorded today."`
	History  HistoryCmd  `cmd:"" help:"Show recent check-ins for a habit."`
	Calendar CalendarCmd `cmd:"" help:"Show a month of check-ins for a habit."`
}

type RecordCmd struct {
	Habit       string             `arg:"" help:"Habit name."`
	Date        string             `help:"Date in YYYY-MM-DD format (default: today)."`
	Makeup      bool               `help:"Record as a makeup for a missed day (consumes one makeup allowance)."`
	Reason      string             `help:"Reason for the makeup."`
	Mood        string             `help:"Mood: great, good, okay, low, or bad."`
	Notes       string             `help:"Free-form notes."`
	Option      []string           `help:"Completed option IDs." name:"option"`
	Metric      map[string]float64 `help:"Numeric measurements as key=value pairs."`
	Interactive bool               `short:"i" help:"Prompt for mood and notes."`
}

func (c *RecordCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(user.ID, c.Habit)
	if err != nil {
		return err
	}

	mood := c.Mood
	notes := c.Notes
	if c.Interactive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[string]().
					Title("How did it feel?").
					Options(
						huh.NewOption("Great", "great"),
						huh.NewOption("Good", "good"),
						huh.NewOption("Okay", "okay"),
						huh.NewOption("Low", "low"),
						huh.NewOption("Bad", "bad"),
					).
					Value(&mood),
				huh.NewText().
					Title("Notes (optional)").
					Value(&notes),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	result, err := ctx.Engine.RecordCheckIn(engine.CheckInRequest{
		UserID:           user.ID,
		HabitID:          habit.ID,
		Date:             c.Date,
		CompletedOptions: c.Option,
		Metrics:          c.Metric,
		Mood:             models.Mood(mood),
		Notes:            notes,
		IsMakeup:         c.Makeup,
		MakeupReason:     c.Reason,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checked in: %s (%s)\n", habit.Name, result.CheckIn.Date)
	fmt.Println(cli.StreakStyle.Render(fmt.Sprintf("🔥 Streak: %d day(s)", result.Habit.CurrentStreak)))
	if result.Habit.CurrentStreak >= habit.TargetDays {
		fmt.Println(cli.OKStyle.Render(fmt.Sprintf("Target of %d days reached!", habit.TargetDays)))
	}

	for _, a := range result.Unlocked {
		fmt.Println(cli.BadgeStyle.Render(fmt.Sprintf("🏆 Achievement unlocked: %s - %s", a.Name, a.Description)))
	}

	printEncouragement(ctx, user.ID, habit, result.Habit.CurrentStreak)
	return nil
}

// printEncouragement shows a message for the new streak. Milestone streaks
// get the milestone message; day one gets a daily one. Selection failures
// never fail the check-in.
func printEncouragement(ctx *cli.Context, userID string, habit models.Habit, streak int) {
	var enc *models.Encouragement
	var err error
	if streak > 1 {
		enc, err = ctx.Engine.MilestoneEncouragement(userID, habit.ID, streak)
	} else {
		enc, err = ctx.Engine.SelectEncouragement(engine.SelectionRequest{
			UserID:   userID,
			HabitID:  habit.ID,
			Context:  models.ContextDaily,
			Category: habit.Category,
			Streak:   &streak,
		})
	}
	if err != nil {
		if !errors.Is(err, engine.ErrNoEncouragementAvailable) {
			fmt.Println(cli.FaintStyle.Render("(encouragement unavailable)"))
		}
		return
	}
	fmt.Println(cli.QuoteStyle.Render("“" + enc.Text + "”"))
	fmt.Println(cli.FaintStyle.Render("Like it? 'sprout encourage like " + enc.ID + "'"))
}

type DeleteCmd struct {
	ID string `arg:"" help:"Check-in ID to delete."`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.Engine.DeleteCheckIn(user.ID, c.ID); err != nil {
		return err
	}
	fmt.Println("Check-in deleted; streaks recomputed.")
	return nil
}

type HistoryCmd struct {
	Habit string `arg:"" help:"Habit name."`
	Limit int    `help:"Number of check-ins to show." default:"14"`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(user.ID, c.Habit)
	if err != nil {
		return err
	}

	checkIns, err := ctx.Engine.CheckInHistory(user.ID, habit.ID, c.Limit)
	if err != nil {
		return err
	}
	if len(checkIns) == 0 {
		fmt.Printf("No check-ins recorded for %q yet.\n", habit.Name)
		return nil
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Recent check-ins: %s", habit.Name)))
	for _, ci := range checkIns {
		line := "  " + ci.Date
		if ci.Mood != "" {
			line += "  " + string(ci.Mood)
		}
		if ci.IsMakeup {
			line += cli.WarnStyle.Render("  [makeup]")
		}
		if ci.Notes != "" {
			line += cli.FaintStyle.Render("  " + ci.Notes)
		}
		line += cli.FaintStyle.Render("  id=" + ci.ID)
		fmt.Println(line)
	}
	return nil
}

type CalendarCmd struct {
	Habit string `arg:"" help:"Habit name."`
	Year  int    `help:"Year (default: current)."`
	Month int    `help:"Month 1-12 (default: current)."`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	habit, err := ctx.ResolveHabit(user.ID, c.Habit)
	if err != nil {
		return err
	}

	now := time.Now()
	year := c.Year
	if year == 0 {
		year = now.Year()
	}
	month := time.Month(c.Month)
	if c.Month == 0 {
		month = now.Month()
	}
	if month < time.January || month > time.December {
		return fmt.Errorf("invalid month %d", c.Month)
	}

	calendar, err := ctx.Engine.CheckInCalendar(user.ID, habit.ID, year, month)
	if err != nil {
		return err
	}

	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("%s - %s %d", habit.Name, month, year)))
	fmt.Println("Mo Tu We Th Fr Sa Su")

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday()) - 1
	if first.Weekday() == time.Sunday {
		lead = 6
	}
	fmt.Print(strings.Repeat("   ", lead))

	daysInMonth := first.AddDate(0, 1, -1).Day()
	col := lead
	for day := 1; day <= daysInMonth; day++ {
		date := utils.FormatDay(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
		if calendar[date] {
			fmt.Print(cli.OKStyle.Render(" x "))
		} else {
			fmt.Printf("%2d ", day)
		}
		col++
		if col%7 == 0 {
			fmt.Println()
		}
	}
	if col%7 != 0 {
		fmt.Println()
	}
	return nil
}
