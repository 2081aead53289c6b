package console

import (
	"context"
	"errors"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/log"
)

// ErrInputClosed is returned when the view runs out of input mid-battle.
var ErrInputClosed = errors.New("console: input closed")

// Controller is a PlayerController that prompts on a View. When two
// controllers share one view (hotseat), only one of them should render
// events so the transcript is printed once.
type Controller struct {
	view         View
	renderEvents bool
}

// NewController creates a console player. renderEvents makes Notify print
// the transcript lines for each battle event.
func NewController(view View, renderEvents bool) *Controller {
	return &Controller{view: view, renderEvents: renderEvents}
}

// NewHotseat returns two controllers sharing view; player 1 renders events.
func NewHotseat(view View) (p1, p2 *Controller) {
	return NewController(view, true), NewController(view, false)
}

func (c *Controller) ChooseAction(ctx context.Context, prompt battle.ActionPrompt) (battle.ActionKind, error) {
	c.writeLines(ActionMenuLines(prompt))
	in, err := c.read(ctx)
	if err != nil {
		return battle.ActionPass, err
	}
	c.view.WriteLine(Separator)
	return prompt.Options[ParseChoice(in, len(prompt.Options))-1], nil
}

func (c *Controller) ChooseTarget(ctx context.Context, prompt battle.TargetPrompt) (int, error) {
	if len(prompt.Targets) == 0 {
		return battle.Cancel, nil
	}
	c.writeLines(TargetMenuLines(prompt))
	in, err := c.read(ctx)
	if err != nil {
		return battle.Cancel, err
	}
	return ParseChoice(in, len(prompt.Targets)+1) - 1, nil
}

func (c *Controller) ChooseSkill(ctx context.Context, prompt battle.SkillPrompt) (int, error) {
	c.writeLines(SkillMenuLines(prompt.Actor, SkillOptions(prompt.Skills)))
	in, err := c.read(ctx)
	if err != nil {
		return battle.Cancel, err
	}
	if len(prompt.Skills) == 0 {
		return battle.Cancel, nil
	}
	return ParseChoice(in, len(prompt.Skills)+1) - 1, nil
}

func (c *Controller) Notify(ctx context.Context, event log.BattleEvent) error {
	if c.renderEvents {
		c.writeLines(EventLines(event))
	}
	return nil
}

func (c *Controller) writeLines(lines []string) {
	for _, l := range lines {
		c.view.WriteLine(l)
	}
}

func (c *Controller) read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, ok := c.view.ReadLine()
	if !ok {
		return "", ErrInputClosed
	}
	return line, nil
}
