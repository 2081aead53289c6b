package net

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient is the far end of a controller's pipe.
type fakeClient struct {
	enc *json.Encoder
	dec *json.Decoder
}

func newPipeController(t *testing.T) (*NetworkController, *fakeClient) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewNetworkController(server, 0), &fakeClient{
		enc: json.NewEncoder(client),
		dec: json.NewDecoder(client),
	}
}

// answer reads one server message and replies with index.
func (f *fakeClient) answer(replyType string, index int) <-chan ServerMessage {
	got := make(chan ServerMessage, 1)
	go func() {
		var msg ServerMessage
		if err := f.dec.Decode(&msg); err != nil {
			close(got)
			return
		}
		got <- msg
		_ = f.enc.Encode(ClientMessage{Type: replyType, Index: index})
	}()
	return got
}

func actionPrompt() battle.ActionPrompt {
	return battle.ActionPrompt{
		Round:   1,
		Actor:   log.UnitSnapshot{Name: "Flynn", HP: 100, MaxHP: 100},
		Options: []battle.ActionKind{battle.ActionAttack, battle.ActionShoot, battle.ActionPass},
		Attempt: 2,
	}
}

func TestNetworkController_ChooseAction(t *testing.T) {
	nc, fc := newPipeController(t)
	got := fc.answer(MsgAction, 1)

	kind, err := nc.ChooseAction(context.Background(), actionPrompt())
	require.NoError(t, err)
	assert.Equal(t, battle.ActionShoot, kind)

	msg := <-got
	assert.Equal(t, MsgChooseAction, msg.Type)
	assert.Equal(t, "Flynn", msg.Actor)
	assert.Equal(t, 2, msg.Attempt)
	require.Len(t, msg.Actions, 3)
	assert.Equal(t, "Disparar", msg.Actions[1].Label)
	assert.Equal(t, battle.ActionPass, msg.Actions[2].Kind)
	assert.Len(t, msg.Teams, 2)
}

func TestNetworkController_ChooseActionOutOfRange(t *testing.T) {
	nc, fc := newPipeController(t)
	fc.answer(MsgAction, 9)

	kind, err := nc.ChooseAction(context.Background(), actionPrompt())
	require.NoError(t, err)
	assert.Equal(t, battle.ActionAttack, kind)
}

func TestNetworkController_ChooseTarget(t *testing.T) {
	nc, fc := newPipeController(t)
	got := fc.answer(MsgTarget, battle.Cancel)

	idx, err := nc.ChooseTarget(context.Background(), battle.TargetPrompt{
		Actor:   "Flynn",
		Targets: []log.UnitSnapshot{{Name: "Walter", HP: 100, MaxHP: 100}},
	})
	require.NoError(t, err)
	assert.Equal(t, battle.Cancel, idx)

	msg := <-got
	assert.Equal(t, MsgChooseTarget, msg.Type)
	require.Len(t, msg.Targets, 1)
	assert.Equal(t, "Walter", msg.Targets[0].Name)
}

func TestNetworkController_NoTargetsSendsNothing(t *testing.T) {
	nc, _ := newPipeController(t)

	// Nobody reads the pipe, so any send would block.
	idx, err := nc.ChooseTarget(context.Background(), battle.TargetPrompt{Actor: "Flynn"})
	require.NoError(t, err)
	assert.Equal(t, battle.Cancel, idx)
}

func TestNetworkController_ChooseSkill(t *testing.T) {
	nc, fc := newPipeController(t)
	got := fc.answer(MsgSkill, 0)

	idx, err := nc.ChooseSkill(context.Background(), battle.SkillPrompt{
		Actor:  "Flynn",
		Skills: []*battle.Skill{{Name: "Agi", Cost: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	msg := <-got
	assert.Equal(t, []console.SkillOption{{Name: "Agi", Cost: 3}}, msg.Skills)
}

func TestNetworkController_EmptySkillListCancels(t *testing.T) {
	nc, fc := newPipeController(t)
	fc.answer(MsgSkill, 0)

	idx, err := nc.ChooseSkill(context.Background(), battle.SkillPrompt{Actor: "Flynn"})
	require.NoError(t, err)
	assert.Equal(t, battle.Cancel, idx)
}

func TestNetworkController_ContextCancelUnblocks(t *testing.T) {
	nc, fc := newPipeController(t)
	ctx, cancel := context.WithCancel(context.Background())

	// Read the prompt but never answer it.
	go func() {
		var msg ServerMessage
		_ = fc.dec.Decode(&msg)
		cancel()
	}()

	_, err := nc.ChooseAction(ctx, actionPrompt())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNetworkController_Notify(t *testing.T) {
	nc, fc := newPipeController(t)
	got := make(chan ServerMessage, 1)
	go func() {
		var msg ServerMessage
		_ = fc.dec.Decode(&msg)
		got <- msg
	}()

	ev := log.NewAttackEvent(1, 0, "Flynn", "Walter", false)
	require.NoError(t, nc.Notify(context.Background(), ev))

	msg := <-got
	assert.Equal(t, MsgNotify, msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, "Attack", msg.Event.Type)
	assert.Equal(t, []string{console.Separator, "Flynn ataca a Walter"}, msg.Event.Lines)
}

func TestNetworkController_NotifyStalledPeer(t *testing.T) {
	nc, _ := newPipeController(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// Nobody reads the pipe, so the write blocks until the deadline.
	ev := log.NewAttackEvent(1, 0, "Flynn", "Walter", false)
	err := nc.Notify(ctx, ev)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_RunREPL(t *testing.T) {
	server, conn := net.Pipe()
	defer server.Close()
	view := console.NewScriptedView("2", "7")
	c := NewClient(conn, view, 1)

	replies := make(chan ClientMessage, 2)
	go func() {
		enc := json.NewEncoder(server)
		dec := json.NewDecoder(server)
		ev := NewEventView(log.NewTurnEndEvent(1, 1))
		_ = enc.Encode(ServerMessage{Type: MsgNotify, Event: &ev})

		_ = enc.Encode(ServerMessage{
			Type:    MsgChooseAction,
			Actor:   "Walter",
			Actions: ActionViews([]battle.ActionKind{battle.ActionAttack, battle.ActionPass}),
		})
		var reply ClientMessage
		_ = dec.Decode(&reply)
		replies <- reply

		_ = enc.Encode(ServerMessage{
			Type:    MsgChooseTarget,
			Actor:   "Walter",
			Targets: []log.UnitSnapshot{{Name: "Flynn", HP: 100, MaxHP: 100, MP: 20, MaxMP: 20}},
		})
		_ = dec.Decode(&reply)
		replies <- reply

		_ = enc.Encode(ServerMessage{Type: MsgGameOver, Winner: 1})
	}()

	require.NoError(t, c.RunREPL(context.Background()))

	assert.Equal(t, ClientMessage{Type: MsgAction, Index: 1}, <-replies)
	// "7" is out of range for a two-entry menu and falls back to 1.
	assert.Equal(t, ClientMessage{Type: MsgTarget, Index: 0}, <-replies)
	assert.Equal(t, []string{
		console.Separator,
		"Seleccione una acción para Walter",
		"1: Atacar",
		"2: Pasar Turno",
		console.Separator,
		"Seleccione un objetivo para Walter",
		"1-Flynn HP:100/100 MP:20/20",
		"2-Cancelar",
	}, view.Lines())
}

func TestClient_Rejected(t *testing.T) {
	server, conn := net.Pipe()
	defer server.Close()
	c := NewClient(conn, console.NewScriptedView(), 1)

	go func() {
		_ = json.NewEncoder(server).Encode(ServerMessage{Type: MsgError, Result: "roster 5 not found (have 2 rosters)"})
	}()

	err := c.RunREPL(context.Background())
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "roster 5 not found")
}

const (
	testSamurai = `[{"name": "Flynn", "stats": {"HP": 100, "MP": 20, "Str": 100, "Skl": 50, "Mag": 5, "Spd": 10, "Lck": 5}},
{"name": "Walter", "stats": {"HP": 100, "MP": 10, "Str": 10, "Skl": 10, "Mag": 5, "Spd": 5, "Lck": 5}}]`
	testRosters = `rosters:
  - name: Host
    units:
      - name: Flynn
        samurai: true
  - name: Joiner
    units:
      - name: Walter
        samurai: true
`
)

func setupServer(t *testing.T, hostView console.View) (*Server, net.Listener) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "samurai.json"), []byte(testSamurai), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rosters.yaml"), []byte(testRosters), 0644))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	return &Server{
		RostersFile: filepath.Join(dir, "rosters.yaml"),
		DataDir:     dir,
		HostRoster:  1,
		View:        hostView,
	}, ln
}

func TestServer_HostAndJoin(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Flynn hits for 61, Walter for 6: Flynn wins on his second attack.
	hostView := console.NewScriptedView("1", "1", "1", "1")
	joinView := console.NewScriptedView("1", "1")
	var events strings.Builder
	srv, ln := setupServer(t, hostView)
	srv.EventLog = &events

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx, ln) }()

	require.NoError(t, Connect(ctx, ln.Addr().String(), 2, joinView))
	require.NoError(t, <-serveErr)

	host := hostView.Output()
	join := joinView.Output()
	assert.Contains(t, host, "Seleccione una acción para Flynn")
	assert.NotContains(t, host, "Seleccione una acción para Walter")
	assert.Contains(t, join, "Seleccione una acción para Walter")
	assert.NotContains(t, join, "Seleccione una acción para Flynn")

	for _, out := range []string{host, join} {
		assert.Contains(t, out, "Flynn recibe 6 de daño")
		assert.Contains(t, out, "Walter termina con HP:39/100")
		assert.True(t, strings.HasSuffix(out, console.Separator+"\nGanador: Flynn (J1)"), out)
	}
	assert.Contains(t, events.String(), "Flynn (J1) wins!")
}

func TestServer_UnknownRoster(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv, ln := setupServer(t, console.NewScriptedView())
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx, ln) }()

	err := Connect(ctx, ln.Addr().String(), 5, console.NewScriptedView())
	require.ErrorIs(t, err, ErrRejected)

	err = <-serveErr
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roster 5 not found (have 2 rosters)")
}
