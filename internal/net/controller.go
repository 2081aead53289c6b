package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/log"
)

// NetworkController implements battle.PlayerController over a TCP connection.
type NetworkController struct {
	conn   net.Conn
	enc    *json.Encoder
	dec    *json.Decoder
	player int // which player this controller is (0 or 1)
	mu     sync.Mutex
}

// NewNetworkController creates a new controller for the given connection.
func NewNetworkController(conn net.Conn, player int) *NetworkController {
	return &NetworkController{
		conn:   conn,
		enc:    json.NewEncoder(conn),
		dec:    json.NewDecoder(conn),
		player: player,
	}
}

// send sends a server message to the client. Must be called with mu held.
func (nc *NetworkController) send(msg ServerMessage) error {
	return nc.enc.Encode(msg)
}

// recv reads a client message. Must be called with mu held.
func (nc *NetworkController) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := nc.dec.Decode(&msg)
	return msg, err
}

// interruptible runs fn with mu held. A cancelled ctx unblocks fn by
// expiring the connection deadline.
func (nc *NetworkController) interruptible(ctx context.Context, fn func() error) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = nc.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := fn(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// exchange sends msg and waits for the reply.
func (nc *NetworkController) exchange(ctx context.Context, msg ServerMessage) (ClientMessage, error) {
	var resp ClientMessage
	err := nc.interruptible(ctx, func() error {
		if err := nc.send(msg); err != nil {
			return fmt.Errorf("send %s: %w", msg.Type, err)
		}
		var err error
		if resp, err = nc.recv(); err != nil {
			return fmt.Errorf("recv %s reply: %w", msg.Type, err)
		}
		return nil
	})
	return resp, err
}

// ChooseAction implements battle.PlayerController. An out-of-range index
// picks the first option.
func (nc *NetworkController) ChooseAction(ctx context.Context, prompt battle.ActionPrompt) (battle.ActionKind, error) {
	unit := prompt.Actor
	resp, err := nc.exchange(ctx, ServerMessage{
		Type:    MsgChooseAction,
		Actor:   prompt.Actor.Name,
		Round:   prompt.Round,
		Attempt: prompt.Attempt,
		Unit:    &unit,
		Actions: ActionViews(prompt.Options),
		Teams:   prompt.Teams[:],
	})
	if err != nil {
		return battle.ActionPass, err
	}
	if resp.Index < 0 || resp.Index >= len(prompt.Options) {
		return prompt.Options[0], nil
	}
	return prompt.Options[resp.Index], nil
}

// ChooseTarget implements battle.PlayerController. The engine treats any
// index outside the list as the first target, and -1 as cancel.
func (nc *NetworkController) ChooseTarget(ctx context.Context, prompt battle.TargetPrompt) (int, error) {
	if len(prompt.Targets) == 0 {
		return battle.Cancel, nil
	}
	resp, err := nc.exchange(ctx, ServerMessage{
		Type:    MsgChooseTarget,
		Actor:   prompt.Actor,
		Targets: prompt.Targets,
	})
	if err != nil {
		return battle.Cancel, err
	}
	return resp.Index, nil
}

// ChooseSkill implements battle.PlayerController.
func (nc *NetworkController) ChooseSkill(ctx context.Context, prompt battle.SkillPrompt) (int, error) {
	resp, err := nc.exchange(ctx, ServerMessage{
		Type:   MsgChooseSkill,
		Actor:  prompt.Actor,
		Skills: console.SkillOptions(prompt.Skills),
	})
	if err != nil {
		return battle.Cancel, err
	}
	if len(prompt.Skills) == 0 {
		return battle.Cancel, nil
	}
	return resp.Index, nil
}

// SendGameOver sends a game_over message to the client.
func (nc *NetworkController) SendGameOver(winner int, result string) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgGameOver, Winner: winner, Result: result})
}

// SendError tells the client the battle could not start.
func (nc *NetworkController) SendError(err error) error {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	return nc.send(ServerMessage{Type: MsgError, Result: err.Error()})
}

// Notify implements battle.PlayerController.
func (nc *NetworkController) Notify(ctx context.Context, event log.BattleEvent) error {
	ev := NewEventView(event)
	return nc.interruptible(ctx, func() error {
		return nc.send(ServerMessage{Type: MsgNotify, Event: &ev})
	})
}
