package battle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/peterkuimelis/smtx/internal/log"
)

var (
	ErrNoController = errors.New("battle: missing player controller")
	ErrNoTeam       = errors.New("battle: missing team")
	ErrRoundLimit   = errors.New("battle: round limit reached")
)

// Cancel is the index a controller returns to back out of a target or skill choice.
const Cancel = -1

// ActionPrompt describes a pending menu choice.
type ActionPrompt struct {
	Player  int
	Round   int
	Actor   log.UnitSnapshot
	Options []ActionKind
	Attempt int // 0 on the first showing of the menu for this turn
	Teams   [2]log.TeamSnapshot
}

// TargetPrompt lists the living opposing units the actor may hit.
type TargetPrompt struct {
	Player  int
	Actor   string
	Targets []log.UnitSnapshot
}

// SkillPrompt lists the skills the actor can afford. It may be empty.
type SkillPrompt struct {
	Player int
	Actor  string
	Skills []*Skill
}

// PlayerController is implemented by console, network and MCP players.
type PlayerController interface {
	// ChooseAction returns one of prompt.Options.
	ChooseAction(ctx context.Context, prompt ActionPrompt) (ActionKind, error)

	// ChooseTarget returns an index into prompt.Targets, or Cancel.
	// len(prompt.Targets), the menu's cancel entry, also cancels.
	ChooseTarget(ctx context.Context, prompt TargetPrompt) (int, error)

	// ChooseSkill returns an index into prompt.Skills, or Cancel as above.
	ChooseSkill(ctx context.Context, prompt SkillPrompt) (int, error)

	// Notify sends a battle event notification (no response needed).
	Notify(ctx context.Context, event log.BattleEvent) error
}

// Config holds configuration for creating a new battle.
type Config struct {
	Team1     *Team // player 1's roster; copied, never mutated
	Team2     *Team // player 2's roster
	Logger    log.EventLogger
	Slog      *slog.Logger
	MaxRounds int // stop with ErrRoundLimit after this many rounds (0 = no limit)
}

// Battle orchestrates one battle between two players.
type Battle struct {
	ID          uuid.UUID
	Teams       [2]*Team
	Controllers [2]PlayerController
	Logger      log.EventLogger
	Round       int
	Over        bool
	Winner      int
	Result      string

	ctx       context.Context
	slog      *slog.Logger
	metrics   *battleMetrics
	maxRounds int
}

// NewBattle copies both rosters, restores every unit to full HP and MP and
// binds the two controllers.
func NewBattle(cfg Config, p1, p2 PlayerController) *Battle {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	sl := cfg.Slog
	if sl == nil {
		sl = slog.Default()
	}

	b := &Battle{
		ID:          uuid.New(),
		Controllers: [2]PlayerController{p1, p2},
		Logger:      logger,
		Winner:      -1,
		ctx:         context.Background(),
		metrics:     newBattleMetrics(sl),
		maxRounds:   cfg.MaxRounds,
	}
	b.slog = sl.With("battle", b.ID.String())

	for i, t := range []*Team{cfg.Team1, cfg.Team2} {
		if t == nil {
			continue
		}
		c := t.Clone()
		c.ResetToMax()
		b.Teams[i] = c
	}
	return b
}

// Run executes the battle loop. Returns the winner (0 or 1).
func (b *Battle) Run(ctx context.Context) (int, error) {
	b.ctx = ctx
	if b.Teams[0] == nil || b.Teams[1] == nil {
		return -1, ErrNoTeam
	}
	if b.Controllers[0] == nil || b.Controllers[1] == nil {
		return -1, ErrNoController
	}

	b.slog.Info("battle started",
		"p1", b.Teams[0].LeaderName(), "p2", b.Teams[1].LeaderName())
	b.metrics.battleStarted(ctx)

	if b.battleOver() {
		b.resolveWinner(0)
	}

	for !b.Over {
		for player := 0; player < 2 && !b.Over; player++ {
			if b.maxRounds > 0 && b.Round >= b.maxRounds {
				b.Over = true
				b.Result = fmt.Sprintf("Round limit reached (%d rounds)", b.maxRounds)
				return -1, ErrRoundLimit
			}
			if err := b.playRound(player); err != nil {
				return -1, err
			}
			if err := b.ctx.Err(); err != nil {
				return -1, err
			}
			if b.battleOver() {
				b.resolveWinner(player)
			}
		}
	}

	b.slog.Info("battle finished", "winner", log.PlayerTag(b.Winner), "rounds", b.Round)
	b.metrics.battleFinished(ctx, b.Winner)
	return b.Winner, nil
}

// battleOver is true once either side has no living board unit.
func (b *Battle) battleOver() bool {
	return b.Teams[0].Defeated() || b.Teams[1].Defeated()
}

// resolveWinner declares the only side with living board units the winner.
// If both or neither have any, the acting player wins; round termination
// should make that branch unreachable.
func (b *Battle) resolveWinner(acting int) {
	alive1 := !b.Teams[0].Defeated()
	alive2 := !b.Teams[1].Defeated()

	winner, reason := acting, "acting player"
	switch {
	case alive1 && !alive2:
		winner, reason = 0, "opposing board cleared"
	case alive2 && !alive1:
		winner, reason = 1, "opposing board cleared"
	default:
		b.slog.Warn("winner resolved by acting player", "acting", log.PlayerTag(acting))
	}

	b.Over = true
	b.Winner = winner
	leader := b.Teams[winner].LeaderName()
	b.Result = fmt.Sprintf("%s (%s) wins", leader, log.PlayerTag(winner))
	b.log(log.NewWinEvent(b.Round, winner, leader, reason))
}

// snapshot returns both boards as players see them.
func (b *Battle) snapshot() [2]log.TeamSnapshot {
	return [2]log.TeamSnapshot{b.Teams[0].Snapshot(), b.Teams[1].Snapshot()}
}

// log emits a battle event through the logger and notifies both players.
func (b *Battle) log(event log.BattleEvent) {
	b.Logger.Log(event)
	for i := 0; i < 2; i++ {
		if err := b.Controllers[i].Notify(b.ctx, event); err != nil {
			b.slog.Debug("notify failed", "player", log.PlayerTag(i), "error", err)
		}
	}
}
