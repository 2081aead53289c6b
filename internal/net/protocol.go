package net

import (
	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/log"
)

// Message types for the JSON protocol over TCP.
const (
	MsgNotify       = "notify"
	MsgChooseAction = "choose_action"
	MsgChooseTarget = "choose_target"
	MsgChooseSkill  = "choose_skill"
	MsgGameOver     = "game_over"
	MsgError        = "error"

	MsgJoin   = "join"
	MsgAction = "action"
	MsgTarget = "target"
	MsgSkill  = "skill"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For the choose_* messages
	Actor   string                `json:"actor,omitempty"`
	Round   int                   `json:"round,omitempty"`
	Attempt int                   `json:"attempt,omitempty"`
	Unit    *log.UnitSnapshot     `json:"unit,omitempty"`
	Actions []ActionView          `json:"actions,omitempty"`
	Targets []log.UnitSnapshot    `json:"targets,omitempty"`
	Skills  []console.SkillOption `json:"skills,omitempty"`
	Teams   []log.TeamSnapshot    `json:"teams,omitempty"`

	// For "game_over" and "error"
	Winner int    `json:"winner,omitempty"`
	Result string `json:"result,omitempty"`
}

// EventView is a battle event plus the transcript lines it prints.
type EventView struct {
	Seq     int      `json:"seq"`
	Round   int      `json:"round"`
	Player  int      `json:"player"`
	Type    string   `json:"type"`
	Unit    string   `json:"unit,omitempty"`
	Target  string   `json:"target,omitempty"`
	Amount  int      `json:"amount,omitempty"`
	Details string   `json:"details"`
	Lines   []string `json:"lines,omitempty"`
}

// ActionView is a numbered action menu entry.
type ActionView struct {
	Index int               `json:"index"`
	Kind  battle.ActionKind `json:"kind"`
	Label string            `json:"label"`
}

// NewEventView converts an engine event for the wire.
func NewEventView(e log.BattleEvent) EventView {
	return EventView{
		Seq:     e.Seq,
		Round:   e.Round,
		Player:  e.Player,
		Type:    e.Type.String(),
		Unit:    e.Unit,
		Target:  e.Target,
		Amount:  e.Amount,
		Details: e.Details,
		Lines:   console.EventLines(e),
	}
}

// ActionViews numbers the menu options of a prompt.
func ActionViews(options []battle.ActionKind) []ActionView {
	views := make([]ActionView, len(options))
	for i, k := range options {
		views[i] = ActionView{Index: i, Kind: k, Label: console.ActionLabel(k)}
	}
	return views
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "action", "target" and "skill". -1 cancels a target or skill choice.
	Index int `json:"index"`

	// For "join" (initial handshake)
	RosterNumber int `json:"roster_number,omitempty"`
}
