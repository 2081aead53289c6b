package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/console"
	"github.com/peterkuimelis/smtx/internal/log"
	"github.com/peterkuimelis/smtx/internal/roster"
)

// Server hosts a battle between the local player and one TCP client.
type Server struct {
	RostersFile string
	DataDir     string // where the unit and skill catalogs are looked up
	Port        string
	HostRoster  int          // host's roster number (1-indexed)
	View        console.View // host's terminal
	EventLog    io.Writer    // optional; one line per battle event
	Slog        *slog.Logger
}

// Run starts the server, waits for a client to join, then runs the battle.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve accepts exactly one joiner on ln and plays the battle.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	sl := s.Slog
	if sl == nil {
		sl = slog.Default()
	}
	sl.Info("Waiting for opponent", "addr", ln.Addr().String())

	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	sl.Info("Opponent connected", "remote", conn.RemoteAddr().String())

	dec := json.NewDecoder(conn)
	var joinMsg ClientMessage
	if err := dec.Decode(&joinMsg); err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	joinerRoster := joinMsg.RosterNumber
	if joinerRoster == 0 {
		joinerRoster = 2
	}

	// Player 0 = host, Player 1 = joiner
	joinerCtrl := NewNetworkController(conn, 1)

	hostName, hostTeam, joinerName, joinerTeam, err := s.loadRosters(joinerRoster)
	if err != nil {
		_ = joinerCtrl.SendError(err)
		return err
	}
	sl.Info("Rosters loaded", "host", hostName, "joiner", joinerName)

	// The host plays through a pipe so both sides speak the same protocol.
	hostConn, hostServerConn := net.Pipe()
	defer hostConn.Close()
	defer hostServerConn.Close()
	hostCtrl := NewNetworkController(hostServerConn, 0)

	var logger log.EventLogger = log.NewMemoryLogger()
	if s.EventLog != nil {
		logger = log.NewTextLogger(s.EventLog)
	}
	b := battle.NewBattle(battle.Config{
		Team1:  hostTeam,
		Team2:  joinerTeam,
		Logger: logger,
		Slog:   sl,
	}, hostCtrl, joinerCtrl)
	sl.Info("Battle created", "battle", b.ID.String())

	replCh := make(chan error, 1)
	go func() {
		client := NewClient(hostConn, s.View, 0)
		replCh <- client.RunREPL(ctx)
	}()

	battleCh := make(chan error, 1)
	go func() {
		winner, err := b.Run(ctx)
		if err != nil {
			battleCh <- fmt.Errorf("battle error: %w", err)
			return
		}

		_ = joinerCtrl.SendGameOver(winner, b.Result)
		_ = hostCtrl.SendGameOver(winner, b.Result)
		battleCh <- nil
	}()

	select {
	case err := <-battleCh:
		if err != nil {
			return err
		}
		// Let the host REPL finish printing before returning.
		return <-replCh
	case err := <-replCh:
		return err
	}
}

func (s *Server) loadRosters(joinerRoster int) (hostName string, host *battle.Team, joinerName string, joiner *battle.Team, err error) {
	cat, err := roster.LoadCatalog(s.DataDir)
	if err != nil {
		return "", nil, "", nil, err
	}
	hostName, host, err = roster.RosterByNumber(s.RostersFile, s.HostRoster, cat)
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("load host roster: %w", err)
	}
	joinerName, joiner, err = roster.RosterByNumber(s.RostersFile, joinerRoster, cat)
	if err != nil {
		return "", nil, "", nil, fmt.Errorf("load joiner roster: %w", err)
	}
	return hostName, host, joinerName, joiner, nil
}
