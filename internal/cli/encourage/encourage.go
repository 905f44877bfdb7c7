package encourage

import (
	"errors"
	"fmt"

	"github.com/sproutapp/sprout/internal/cli"
	"github.com/sproutapp/sprout/internal/engine"
	"github.com/sproutapp/sprout/internal/models"
)

type EncourageCmd struct {
	Show ShowCmd `cmd:"" default:"1" help:"Show an encouragement."`
	Like LikeCmd `cmd:"" help:"Like an encouragement so similar ones appear more often."`
}

type ShowCmd struct {
	Habit    string `help:"Habit name to draw context (category and streak) from."`
	Category string `help:"Override the category filter."`
	Context  string `help:"Message context: daily, milestone, streak, or completion." default:"daily"`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}

	req := engine.SelectionRequest{
		UserID:   user.ID,
		Context:  models.EncouragementContext(c.Context),
		Category: c.Category,
	}
	if c.Habit != "" {
		habit, err := ctx.ResolveHabit(user.ID, c.Habit)
		if err != nil {
			return err
		}
		req.HabitID = habit.ID
		if req.Category == "" {
			req.Category = habit.Category
		}
		streak := habit.CurrentStreak
		req.Streak = &streak
	}

	enc, err := ctx.Engine.SelectEncouragement(req)
	if errors.Is(err, engine.ErrNoEncouragementAvailable) {
		fmt.Println("No encouragement available right now.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(cli.QuoteStyle.Render("“" + enc.Text + "”"))
	fmt.Println(cli.FaintStyle.Render("Like it? 'sprout encourage like " + enc.ID + "'"))
	return nil
}

type LikeCmd struct {
	ID string `arg:"" help:"Encouragement ID to like."`
}

func (c *LikeCmd) Run(ctx *cli.Context) error {
	user, err := ctx.CurrentUser()
	if err != nil {
		return err
	}
	if err := ctx.Engine.LikeEncouragement(user.ID, c.ID); err != nil {
		return err
	}
	fmt.Println("Liked. Noted for future picks.")
	return nil
}
