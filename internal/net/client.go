package net

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"slices"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/log"
)

// ErrRejected is returned when the server refuses to start the battle.
var ErrRejected = errors.New("net: battle rejected by server")

// Client connects to a battle server and provides a terminal REPL.
type Client struct {
	conn       net.Conn
	view       console.View
	prompter   *console.Controller
	playerName string // "J1" or "J2"
}

// NewClient wraps an established connection. Menus and transcript lines go
// to view.
func NewClient(conn net.Conn, view console.View, player int) *Client {
	return &Client{
		conn:       conn,
		view:       view,
		prompter:   console.NewController(view, false),
		playerName: log.PlayerTag(player),
	}
}

// Connect connects to a server, sends the roster choice, and runs the REPL.
func Connect(ctx context.Context, addr string, rosterNumber int, view console.View) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(ClientMessage{Type: MsgJoin, RosterNumber: rosterNumber}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	client := NewClient(conn, view, 1)
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively until the
// battle ends.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("read message: server closed the connection")
			}
			return fmt.Errorf("read message: %w", err)
		}

		var reply *ClientMessage
		switch msg.Type {
		case MsgNotify:
			if msg.Event != nil {
				for _, l := range msg.Event.Lines {
					c.view.WriteLine(l)
				}
			}

		case MsgChooseAction:
			idx, err := c.chooseAction(ctx, msg)
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgAction, Index: idx}

		case MsgChooseTarget:
			idx, err := c.prompter.ChooseTarget(ctx, battle.TargetPrompt{Actor: msg.Actor, Targets: msg.Targets})
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgTarget, Index: idx}

		case MsgChooseSkill:
			idx, err := c.chooseSkill(ctx, msg)
			if err != nil {
				return err
			}
			reply = &ClientMessage{Type: MsgSkill, Index: idx}

		case MsgError:
			return fmt.Errorf("%w: %s", ErrRejected, msg.Result)

		case MsgGameOver:
			return nil
		}

		if reply != nil {
			if err := enc.Encode(reply); err != nil {
				return fmt.Errorf("send %s: %w", reply.Type, err)
			}
		}
	}
}

func (c *Client) chooseAction(ctx context.Context, msg ServerMessage) (int, error) {
	options := make([]battle.ActionKind, len(msg.Actions))
	for i, a := range msg.Actions {
		options[i] = a.Kind
	}
	if len(options) == 0 {
		return 0, nil
	}
	prompt := battle.ActionPrompt{Round: msg.Round, Options: options, Attempt: msg.Attempt}
	if msg.Unit != nil {
		prompt.Actor = *msg.Unit
	} else {
		prompt.Actor.Name = msg.Actor
	}
	kind, err := c.prompter.ChooseAction(ctx, prompt)
	if err != nil {
		return 0, err
	}
	return slices.Index(options, kind), nil
}

func (c *Client) chooseSkill(ctx context.Context, msg ServerMessage) (int, error) {
	skills := make([]*battle.Skill, len(msg.Skills))
	for i, s := range msg.Skills {
		skills[i] = &battle.Skill{Name: s.Name, Cost: s.Cost}
	}
	return c.prompter.ChooseSkill(ctx, battle.SkillPrompt{Actor: msg.Actor, Skills: skills})
}
