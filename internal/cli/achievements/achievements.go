package achievements

import (
	"fmt"

	"github.com/sproutapp/sprout/internal/cli"
	"github.com/sproutapp/sprout/internal/constants"
)

type AchievementsCmd struct {
	List     ListCmd     `cmd:"" default:"1" help:"List achievements and unlock state."`
	Evaluate EvaluateCmd `cmd:"" help:"Re-evaluate unlock conditions."`
}

type ListCmd struct{}

func (c *ListCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	statuses, err := ctx.Engine.ListAchievements(user.ID)
	if err != nil {
		return err
	}

	unlocked := 0
	for _, s := range statuses {
		if s.Unlocked {
			unlocked++
		}
	}
	fmt.Println(cli.HeaderStyle.Render(fmt.Sprintf("Achievements (%d/%d unlocked)", unlocked, len(statuses))))

	for _, s := range statuses {
		a := s.Achievement
		icon := a.Icon
		if icon == "" {
			icon = "🏅"
		}
		if s.Unlocked {
			line := fmt.Sprintf("%s %s - %s", icon, cli.BadgeStyle.Render(a.Name), a.Description)
			line += cli.FaintStyle.Render("  (unlocked " + s.UnlockedAt.Format(constants.DateFormat) + ")")
			fmt.Println(line)
		} else {
			fmt.Println(cli.FaintStyle.Render(fmt.Sprintf("🔒 %s - %s", a.Name, a.Description)))
		}
	}
	return nil
}

type EvaluateCmd struct{}

func (c *EvaluateCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	newly, err := ctx.Engine.EvaluateUnlocks(user.ID, "")
	if err != nil {
		return err
	}
	if len(newly) == 0 {
		fmt.Println("No new achievements unlocked.")
		return nil
	}
	for _, a := range newly {
		fmt.Println(cli.BadgeStyle.Render(fmt.Sprintf("🏆 Achievement unlocked: %s - %s", a.Name, a.Description)))
	}
	return nil
}
