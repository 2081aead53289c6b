package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	stdnet "net"
	"sync"

	"github.com/google/uuid"
	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/log"
	smtxnet "github.com/peterkuimelis/smtx/internal/net"
	"github.com/peterkuimelis/smtx/internal/roster"
)

// DecisionType identifies what kind of decision the battle is waiting for.
type DecisionType string

const (
	DecisionChooseAction DecisionType = "choose_action"
	DecisionChooseTarget DecisionType = "choose_target"
	DecisionChooseSkill  DecisionType = "choose_skill"
	DecisionGameOver     DecisionType = "game_over"
)

// PendingDecision represents a decision the battle is waiting for.
type PendingDecision struct {
	Type    DecisionType         `json:"type"`
	Player  int                  `json:"player"`
	Actor   string               `json:"actor,omitempty"`
	Attempt int                  `json:"attempt,omitempty"`
	Actions []smtxnet.ActionView `json:"actions,omitempty"`
	Targets []log.UnitSnapshot   `json:"targets,omitempty"`
	Skills  []SkillView          `json:"skills,omitempty"`
	Teams   []log.TeamSnapshot   `json:"-"`
}

// SkillView is a numbered skill choice.
type SkillView struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Cost  int    `json:"cost"`
	Type  string `json:"type,omitempty"`
}

// IndexResponse carries the chosen index from a tool back to the controller.
type IndexResponse struct {
	Index int
}

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	BattleID string              `json:"battle_id,omitempty"`
	Events   []smtxnet.EventView `json:"events"`
	Teams    []log.TeamSnapshot  `json:"teams,omitempty"`
	Pending  *PendingView        `json:"pending,omitempty"`
	GameOver bool                `json:"game_over"`
	Winner   int                 `json:"winner,omitempty"`
	Result   string              `json:"result,omitempty"`
	Port     string              `json:"port,omitempty"`
}

// PendingView is the pending decision as presented in the tool response JSON.
type PendingView struct {
	Type      DecisionType         `json:"type"`
	ForPlayer string               `json:"for_player"`
	Actor     string               `json:"actor,omitempty"`
	Actions   []smtxnet.ActionView `json:"actions,omitempty"`
	Targets   []log.UnitSnapshot   `json:"targets,omitempty"`
	Skills    []SkillView          `json:"skills,omitempty"`
}

// SessionConfig selects rosters and the side the AI plays.
type SessionConfig struct {
	RostersFile string
	DataDir     string
	Port        string
	AIRoster    int // 1-indexed
	AIPlayer    int // 0 goes first
	Slog        *slog.Logger
}

// BattleSession holds the state of a single MCP battle.
type BattleSession struct {
	id        uuid.UUID
	battle    *battle.Battle
	aiCtrl    *MCPController
	humanCtrl *smtxnet.NetworkController
	aiPlayer  int

	listener  stdnet.Listener
	humanConn stdnet.Conn
	cancel    context.CancelFunc

	pendingCh chan *PendingDecision

	// mu guards currentPending and everything below it.
	mu             sync.Mutex
	currentPending *PendingDecision
	events         []smtxnet.EventView
	teams          []log.TeamSnapshot
	gameOver       bool
	winner         int
	result         string
}

// NewBattleSession starts a TCP listener, waits for the human player to
// connect via `smtx-cli join`, then starts the battle.
func NewBattleSession(cfg SessionConfig) (*BattleSession, error) {
	ln, err := stdnet.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", cfg.Port, err)
	}
	sess, err := startSession(ln, cfg)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return sess, nil
}

func startSession(ln stdnet.Listener, cfg SessionConfig) (*BattleSession, error) {
	sl := cfg.Slog
	if sl == nil {
		sl = slog.Default()
	}

	cat, err := roster.LoadCatalog(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	_, aiTeam, err := roster.RosterByNumber(cfg.RostersFile, cfg.AIRoster, cat)
	if err != nil {
		return nil, fmt.Errorf("load ai roster: %w", err)
	}

	// Accept one connection (blocks until the human runs `smtx-cli join`)
	conn, err := ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("accept: %w", err)
	}

	dec := json.NewDecoder(conn)
	var joinMsg smtxnet.ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read join message: %w", err)
	}
	humanRoster := joinMsg.RosterNumber
	if humanRoster == 0 {
		humanRoster = 2
	}

	humanPlayer := 1 - cfg.AIPlayer
	humanCtrl := smtxnet.NewNetworkController(conn, humanPlayer)

	_, humanTeam, err := roster.RosterByNumber(cfg.RostersFile, humanRoster, cat)
	if err != nil {
		err = fmt.Errorf("load human roster: %w", err)
		_ = humanCtrl.SendError(err)
		conn.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess := &BattleSession{
		aiPlayer:  cfg.AIPlayer,
		pendingCh: make(chan *PendingDecision, 2),
		winner:    -1,
		listener:  ln,
		humanConn: conn,
		humanCtrl: humanCtrl,
		cancel:    cancel,
	}
	sess.aiCtrl = NewMCPController(cfg.AIPlayer, sess)

	// Assign rosters to player indices
	team1, team2 := aiTeam, humanTeam
	var ctrl1, ctrl2 battle.PlayerController = sess.aiCtrl, humanCtrl
	if cfg.AIPlayer == 1 {
		team1, team2 = humanTeam, aiTeam
		ctrl1, ctrl2 = humanCtrl, sess.aiCtrl
	}

	sess.battle = battle.NewBattle(battle.Config{
		Team1:  team1,
		Team2:  team2,
		Logger: log.NewMemoryLogger(),
		Slog:   sl,
	}, ctrl1, ctrl2)
	sess.id = sess.battle.ID
	sess.teams = []log.TeamSnapshot{team1.Snapshot(), team2.Snapshot()}

	go sess.run(ctx)
	return sess, nil
}

func (s *BattleSession) run(ctx context.Context) {
	winner, err := s.battle.Run(ctx)
	result := s.battle.Result
	if err != nil {
		result = fmt.Sprintf("error: %v", err)
	}

	// Notify the human over TCP
	_ = s.humanCtrl.SendGameOver(winner, result)

	s.humanConn.Close()
	s.listener.Close()

	s.mu.Lock()
	s.gameOver = true
	s.winner = winner
	s.result = result
	s.mu.Unlock()

	// Wake the tool call waiting on the AI's next decision
	s.pendingCh <- &PendingDecision{Type: DecisionGameOver, Player: winner}
}

// Close stops the battle and releases the connection.
func (s *BattleSession) Close() {
	s.cancel()
	s.humanConn.Close()
	s.listener.Close()
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *BattleSession) appendEvent(ev log.BattleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, smtxnet.NewEventView(ev))
	if ev.Type == log.EventBoards {
		s.teams = ev.Teams
	}
}

func (s *BattleSession) setTeams(teams []log.TeamSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = teams
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *BattleSession) drainEvents() []smtxnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []smtxnet.EventView{}
	}
	return events
}

// waitForPending blocks until the next decision arrives from the battle,
// then builds a ToolResponse with accumulated events + the pending decision.
func (s *BattleSession) waitForPending(ctx context.Context) (*ToolResponse, error) {
	var pending *PendingDecision
	select {
	case pending = <-s.pendingCh:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	s.setPending(pending)

	resp := &ToolResponse{
		BattleID: s.id.String(),
		Events:   s.drainEvents(),
	}

	s.mu.Lock()
	resp.Teams = s.teams
	if pending.Type == DecisionGameOver {
		resp.GameOver = true
		resp.Winner = s.winner
		resp.Result = s.result
		s.mu.Unlock()
		return resp, nil
	}
	s.mu.Unlock()

	resp.Pending = s.pendingView(pending)
	return resp, nil
}

func (s *BattleSession) setPending(p *PendingDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPending = p
}

func (s *BattleSession) pendingSnapshot() *PendingDecision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPending
}

// takePending claims the AI's pending decision of type want. check
// validates the answer against it before the claim. Only one caller can
// claim a given decision; the rest see "No pending decision.".
func (s *BattleSession) takePending(want DecisionType, check func(*PendingDecision) error) (*PendingDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.currentPending
	if pending == nil {
		return nil, errors.New("No pending decision.")
	}
	if pending.Player != s.aiPlayer {
		return nil, errors.New("Waiting for human player to respond via their terminal.")
	}
	if pending.Type != want {
		return nil, fmt.Errorf("Wrong tool: pending decision is '%s', not '%s'. Use the correct tool.", pending.Type, want)
	}
	if err := check(pending); err != nil {
		return nil, err
	}
	s.currentPending = nil
	return pending, nil
}

func (s *BattleSession) pendingView(p *PendingDecision) *PendingView {
	if p.Player != s.aiPlayer {
		return &PendingView{Type: p.Type, ForPlayer: "human"}
	}
	return &PendingView{
		Type:      p.Type,
		ForPlayer: s.playerLabel(p.Player),
		Actor:     p.Actor,
		Actions:   p.Actions,
		Targets:   p.Targets,
		Skills:    p.Skills,
	}
}

// playerLabel returns "ai" or "human" for the given player index.
func (s *BattleSession) playerLabel(player int) string {
	if player == s.aiPlayer {
		return "ai"
	}
	return "human"
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
