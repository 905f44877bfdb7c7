package stats

import (
	"fmt"
	"strings"

	"github.com/sproutapp/sprout/internal/cli"
)

type StatsCmd struct {
	Habit string `help:"Show stats for a single habit."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	if c.Habit != "" {
		habit, err := ctx.ResolveHabit(user.ID, c.Habit)
		if err != nil {
			return err
		}
		return c.showHabit(ctx, user.ID, habit.ID)
	}
	return c.showUser(ctx, user.ID)
}

func (c *StatsCmd) showUser(ctx *cli.Context, userID string) error {
	stats, err := ctx.Engine.UserStats(userID)
	if err != nil {
		return err
	}

	name := stats.Profile.DisplayName
	if name == "" {
		name = stats.Profile.Email
	}
	fmt.Println(cli.HeaderStyle.Render("Stats for " + name))
	fmt.Printf("  Total check-ins:  %d\n", stats.Profile.TotalCheckIns)
	fmt.Printf("  Current streak:   %s\n", cli.StreakStyle.Render(fmt.Sprintf("%d day(s)", stats.Profile.CurrentStreak)))
	fmt.Printf("  Longest streak:   %d day(s)\n", stats.Profile.LongestStreak)
	fmt.Printf("  Habits:           %d active / %d total\n", stats.ActiveHabits, stats.TotalHabits)
	fmt.Printf("  Achievements:     %d\n", stats.Achievements)
	fmt.Printf("  Makeups left:     %d\n", stats.Profile.MakeupCount)
	fmt.Println()

	fmt.Printf("  This week (from %s): %d check-in(s)\n", stats.Week.WeekStart, stats.Week.Total)
	labels := []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}
	for i, label := range labels {
		bar := strings.Repeat("█", stats.Week.Counts[i])
		if bar == "" {
			bar = cli.FaintStyle.Render("·")
		}
		fmt.Printf("  %s %s\n", label, bar)
	}
	return nil
}

func (c *StatsCmd) showHabit(ctx *cli.Context, userID, habitID string) error {
	stats, err := ctx.Engine.HabitStats(userID, habitID)
	if err != nil {
		return err
	}

	h := stats.Habit
	fmt.Println(cli.HeaderStyle.Render("Stats for " + h.Name))
	status := "not yet"
	if stats.CheckedToday {
		status = cli.OKStyle.Render("done")
	}
	fmt.Printf("  Today:            %s\n", status)
	fmt.Printf("  Current streak:   %s\n", cli.StreakStyle.Render(fmt.Sprintf("%d day(s)", h.CurrentStreak)))
	fmt.Printf("  Longest streak:   %d day(s)\n", h.LongestStreak)
	fmt.Printf("  Total check-ins:  %d\n", h.TotalCheckIns)
	fmt.Printf("  Completion rate:  %.0f%%\n", stats.CompletionRate*100)
	fmt.Printf("  Target progress:  %s %.0f%%\n", progressBar(stats.TargetProgress), stats.TargetProgress*100)
	return nil
}

func progressBar(fraction float64) string {
	const width = 20
	filled := int(fraction * width)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "]"
}
