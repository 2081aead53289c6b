package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/log"
	"github.com/peterkuimelis/smtx/internal/roster"
)

// ErrNoTeamFiles is returned when the teams directory holds no team file.
var ErrNoTeamFiles = errors.New("console: no team files")

// InvalidTeamsMessage is printed when the chosen file cannot be played.
const InvalidTeamsMessage = "Archivo de equipos inválido"

// Game is a hotseat console game: pick a team file, then both players
// share one view.
type Game struct {
	View     View
	TeamsDir string
	Logger   log.EventLogger // optional; receives every battle event
	Slog     *slog.Logger
}

// Play lists the team files, reads a selection and runs the battle. An
// unplayable file prints InvalidTeamsMessage and returns nil.
func (g *Game) Play(ctx context.Context) error {
	sl := g.Slog
	if sl == nil {
		sl = slog.Default()
	}

	files, err := roster.ListTeamFiles(g.TeamsDir)
	if err != nil {
		return err
	}

	g.View.WriteLine("Elige un archivo para cargar los equipos")
	for i, f := range files {
		g.View.WriteLine(fmt.Sprintf("%d: %s", i, filepath.Base(f)))
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoTeamFiles, g.TeamsDir)
	}

	input, _ := g.View.ReadLine()
	path := files[ParseFileIndex(input, len(files))]

	teams, err := roster.LoadTeams(path)
	if err != nil {
		sl.Info("team file rejected", "file", filepath.Base(path), "error", err)
		g.View.WriteLine(InvalidTeamsMessage)
		return nil
	}

	p1, p2 := NewHotseat(g.View)
	b := battle.NewBattle(battle.Config{
		Team1:  teams.Player1,
		Team2:  teams.Player2,
		Logger: g.Logger,
		Slog:   sl,
	}, p1, p2)

	if _, err := b.Run(ctx); err != nil {
		return fmt.Errorf("battle: %w", err)
	}
	return nil
}
