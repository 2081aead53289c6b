package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/smtx/internal/battle"
)

var (
	// activeSession is the singleton battle session (one per stdio process).
	activeSession *BattleSession
	sessionMu     sync.Mutex

	// settings holds the roster file, data dir and port, set by main.
	settings SessionConfig
)

// Configure sets the roster file, catalog dir and TCP port used by
// start_battle. AIRoster and AIPlayer come from the tool call.
func Configure(cfg SessionConfig) {
	settings = cfg
}

func currentSession() *BattleSession {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	return activeSession
}

func setSession(s *BattleSession) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	activeSession = s
}

// RegisterTools adds all battle tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startBattleTool(), handleStartBattle)
	s.AddTool(chooseActionTool(), handleChooseAction)
	s.AddTool(chooseTargetTool(), handleChooseTarget)
	s.AddTool(chooseSkillTool(), handleChooseSkill)
	s.AddTool(getBattleStateTool(), handleGetBattleState)
}

// --- Tool definitions ---

func startBattleTool() mcp.Tool {
	return mcp.NewTool("start_battle",
		mcp.WithDescription("Start a new samurai battle. Returns the first pending decision. "+
			"The human player connects via `smtx-cli join --addr localhost:<port> --roster N` in a separate terminal. "+
			"This call blocks until the human connects."),
		mcp.WithNumber("ai_roster", mcp.Required(), mcp.Description("Roster number for the AI (1-indexed from rosters.yaml)")),
		mcp.WithNumber("ai_player", mcp.Required(), mcp.Description("Which player the AI is: 0 = plays first, 1 = plays second")),
	)
}

func chooseActionTool() mcp.Tool {
	return mcp.NewTool("choose_action",
		mcp.WithDescription("Choose an action for the acting unit. Use this when the pending decision type is 'choose_action'. "+
			"Attack and Shoot ask for a target next; Use Skill asks for a skill."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the actions list")),
	)
}

func chooseTargetTool() mcp.Tool {
	return mcp.NewTool("choose_target",
		mcp.WithDescription("Choose the enemy unit to hit. Use this when the pending decision type is 'choose_target'. "+
			"Cancelling returns to the action menu."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the targets list, or -1 to cancel")),
	)
}

func chooseSkillTool() mcp.Tool {
	return mcp.NewTool("choose_skill",
		mcp.WithDescription("Choose a skill to use. Use this when the pending decision type is 'choose_skill'. "+
			"Cancelling returns to the action menu."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the skills list, or -1 to cancel")),
	)
}

func getBattleStateTool() mcp.Tool {
	return mcp.NewTool("get_battle_state",
		mcp.WithDescription("Get the boards, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

// --- Tool handlers ---

func handleStartBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if currentSession() != nil {
		return mcp.NewToolResultError("A battle is already running. Only one battle at a time is supported."), nil
	}

	cfg := settings
	cfg.AIRoster = request.GetInt("ai_roster", 0)
	cfg.AIPlayer = request.GetInt("ai_player", 0)

	if cfg.AIRoster < 1 {
		return mcp.NewToolResultError("ai_roster must be >= 1"), nil
	}
	if cfg.AIPlayer != 0 && cfg.AIPlayer != 1 {
		return mcp.NewToolResultError("ai_player must be 0 or 1"), nil
	}

	sess, err := NewBattleSession(cfg)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start battle: %v", err), nil
	}
	setSession(sess)

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for first decision: %v", err), nil
	}
	resp.Port = cfg.Port
	if resp.GameOver {
		setSession(nil)
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleChooseAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -1)
	sess, pending, errResult := claim(DecisionChooseAction, func(p *PendingDecision) error {
		if index < 0 || index >= len(p.Actions) {
			return fmt.Errorf("Invalid index %d. Must be 0-%d.", index, len(p.Actions)-1)
		}
		return nil
	})
	if errResult != nil {
		return errResult, nil
	}
	return submit(ctx, sess, pending, index)
}

func handleChooseTarget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -2)
	sess, pending, errResult := claim(DecisionChooseTarget, func(p *PendingDecision) error {
		return checkCancelable(index, len(p.Targets))
	})
	if errResult != nil {
		return errResult, nil
	}
	return submit(ctx, sess, pending, index)
}

func handleChooseSkill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -2)
	sess, pending, errResult := claim(DecisionChooseSkill, func(p *PendingDecision) error {
		return checkCancelable(index, len(p.Skills))
	})
	if errResult != nil {
		return errResult, nil
	}
	return submit(ctx, sess, pending, index)
}

func checkCancelable(index, n int) error {
	if index < battle.Cancel || index >= n {
		return fmt.Errorf("Invalid index %d. Must be 0-%d, or -1 to cancel.", index, n-1)
	}
	return nil
}

// claim takes the AI's pending decision of type want if check accepts it.
func claim(want DecisionType, check func(*PendingDecision) error) (*BattleSession, *PendingDecision, *mcp.CallToolResult) {
	sess := currentSession()
	if sess == nil {
		return nil, nil, mcp.NewToolResultError("No battle is running. Use start_battle first.")
	}
	pending, err := sess.takePending(want, check)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(err.Error())
	}
	return sess, pending, nil
}

// submit hands index to the waiting controller and returns the next decision.
func submit(ctx context.Context, sess *BattleSession, pending *PendingDecision, index int) (*mcp.CallToolResult, error) {
	select {
	case sess.aiCtrl.responseCh <- IndexResponse{Index: index}:
	case <-ctx.Done():
		// The controller is still waiting; hand the decision back.
		sess.setPending(pending)
		return mcp.NewToolResultErrorf("Cancelled: %v", ctx.Err()), nil
	}

	resp, err := sess.waitForPending(ctx)
	if err != nil {
		return mcp.NewToolResultErrorf("Error waiting for next decision: %v", err), nil
	}
	if resp.GameOver {
		setSession(nil)
	}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetBattleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := currentSession()
	if sess == nil {
		return mcp.NewToolResultError("No battle is running. Use start_battle first."), nil
	}

	resp := &ToolResponse{
		BattleID: sess.id.String(),
		Events:   sess.drainEvents(),
	}

	sess.mu.Lock()
	resp.Teams = sess.teams
	resp.GameOver = sess.gameOver
	resp.Winner = sess.winner
	resp.Result = sess.result
	sess.mu.Unlock()

	if !resp.GameOver {
		if p := sess.pendingSnapshot(); p != nil {
			resp.Pending = sess.pendingView(p)
		} else {
			resp.Pending = &PendingView{Type: DecisionChooseAction, ForPlayer: "human"}
		}
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}
