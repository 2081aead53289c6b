package mcp

import (
	"context"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/log"
	smtxnet "github.com/peterkuimelis/smtx/internal/net"
)

// MCPController implements battle.PlayerController by sending decisions
// to the MCP session's pending channel and blocking on a response channel.
type MCPController struct {
	player     int
	session    *BattleSession
	responseCh chan IndexResponse
}

// NewMCPController creates a controller for the given player.
func NewMCPController(player int, session *BattleSession) *MCPController {
	return &MCPController{
		player:     player,
		session:    session,
		responseCh: make(chan IndexResponse),
	}
}

// decide publishes a pending decision and waits for the tool call that
// answers it.
func (c *MCPController) decide(ctx context.Context, pending *PendingDecision) (int, error) {
	pending.Player = c.player
	select {
	case c.session.pendingCh <- pending:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case resp := <-c.responseCh:
		return resp.Index, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// ChooseAction implements battle.PlayerController.
func (c *MCPController) ChooseAction(ctx context.Context, prompt battle.ActionPrompt) (battle.ActionKind, error) {
	c.session.setTeams(prompt.Teams[:])
	idx, err := c.decide(ctx, &PendingDecision{
		Type:    DecisionChooseAction,
		Actor:   prompt.Actor.Name,
		Attempt: prompt.Attempt,
		Actions: smtxnet.ActionViews(prompt.Options),
	})
	if err != nil {
		return battle.ActionPass, err
	}
	if idx < 0 || idx >= len(prompt.Options) {
		return prompt.Options[0], nil
	}
	return prompt.Options[idx], nil
}

// ChooseTarget implements battle.PlayerController.
func (c *MCPController) ChooseTarget(ctx context.Context, prompt battle.TargetPrompt) (int, error) {
	if len(prompt.Targets) == 0 {
		return battle.Cancel, nil
	}
	idx, err := c.decide(ctx, &PendingDecision{
		Type:    DecisionChooseTarget,
		Actor:   prompt.Actor,
		Targets: prompt.Targets,
	})
	if err != nil {
		return battle.Cancel, err
	}
	return idx, nil
}

// ChooseSkill implements battle.PlayerController. An empty list cancels
// without asking.
func (c *MCPController) ChooseSkill(ctx context.Context, prompt battle.SkillPrompt) (int, error) {
	if len(prompt.Skills) == 0 {
		return battle.Cancel, nil
	}
	views := make([]SkillView, len(prompt.Skills))
	for i, s := range prompt.Skills {
		views[i] = SkillView{Index: i, Name: s.Name, Cost: s.Cost, Type: s.Type}
	}
	idx, err := c.decide(ctx, &PendingDecision{
		Type:   DecisionChooseSkill,
		Actor:  prompt.Actor,
		Skills: views,
	})
	if err != nil {
		return battle.Cancel, err
	}
	return idx, nil
}

// Notify implements battle.PlayerController.
// Only the AI controller appends events, so each is recorded once.
func (c *MCPController) Notify(ctx context.Context, event log.BattleEvent) error {
	if c.player == c.session.aiPlayer {
		c.session.appendEvent(event)
	}
	return nil
}
