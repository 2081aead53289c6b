package battle

import (
	"context"
	"testing"

	"github.com/peterkuimelis/smtx/internal/log"
)

// ScriptedController is a PlayerController that follows a predefined script.
// Used in tests to deterministically drive the battle.
type ScriptedController struct {
	t    *testing.T
	name string

	actions []ActionKind
	pos     int

	targets   []int
	targetPos int

	skills   []int
	skillPos int

	// Recorded prompts for assertions
	ActionPrompts []ActionPrompt
	TargetPrompts []TargetPrompt
	SkillPrompts  []SkillPrompt
	Notified      int
}

func NewScriptedController(t *testing.T, name string) *ScriptedController {
	return &ScriptedController{t: t, name: name}
}

func (sc *ScriptedController) AddAction(kinds ...ActionKind) *ScriptedController {
	sc.actions = append(sc.actions, kinds...)
	return sc
}

func (sc *ScriptedController) AddAttack(target int) *ScriptedController {
	sc.actions = append(sc.actions, ActionAttack)
	sc.targets = append(sc.targets, target)
	return sc
}

func (sc *ScriptedController) AddShoot(target int) *ScriptedController {
	sc.actions = append(sc.actions, ActionShoot)
	sc.targets = append(sc.targets, target)
	return sc
}

func (sc *ScriptedController) AddTarget(idx int) *ScriptedController {
	sc.targets = append(sc.targets, idx)
	return sc
}

func (sc *ScriptedController) AddSkill(idx int) *ScriptedController {
	sc.actions = append(sc.actions, ActionSkill)
	sc.skills = append(sc.skills, idx)
	return sc
}

func (sc *ScriptedController) AddPass(n int) *ScriptedController {
	for i := 0; i < n; i++ {
		sc.actions = append(sc.actions, ActionPass)
	}
	return sc
}

// ChooseAction plays the next scripted action. Once the script runs out it passes.
func (sc *ScriptedController) ChooseAction(ctx context.Context, prompt ActionPrompt) (ActionKind, error) {
	sc.ActionPrompts = append(sc.ActionPrompts, prompt)
	if sc.pos >= len(sc.actions) {
		return ActionPass, nil
	}
	kind := sc.actions[sc.pos]
	sc.pos++
	return kind, nil
}

func (sc *ScriptedController) ChooseTarget(ctx context.Context, prompt TargetPrompt) (int, error) {
	sc.TargetPrompts = append(sc.TargetPrompts, prompt)
	if sc.targetPos >= len(sc.targets) {
		return 0, nil
	}
	idx := sc.targets[sc.targetPos]
	sc.targetPos++
	return idx, nil
}

func (sc *ScriptedController) ChooseSkill(ctx context.Context, prompt SkillPrompt) (int, error) {
	sc.SkillPrompts = append(sc.SkillPrompts, prompt)
	if sc.skillPos >= len(sc.skills) {
		return Cancel, nil
	}
	idx := sc.skills[sc.skillPos]
	sc.skillPos++
	return idx, nil
}

func (sc *ScriptedController) Notify(ctx context.Context, event log.BattleEvent) error {
	sc.Notified++
	return nil
}

// --- Test unit helpers ---

func samurai(name string, hp, str, skl, spd int, skills ...*Skill) *Unit {
	return NewSamurai(name, NewStats(hp, 50, str, skl, 10, spd, 5), skills...)
}

func monster(name string, hp, str, spd int, skills ...*Skill) *Unit {
	return NewMonster(name, NewStats(hp, 30, str, 10, 10, spd, 5), skills...)
}

func skill(name string, cost int) *Skill {
	return &Skill{Name: name, Type: "Phys", Cost: cost, Power: 100, Target: "Single", Hits: 1}
}

// newTestBattle builds a battle without running it.
func newTestBattle(t *testing.T, team1, team2 *Team, p1, p2 *ScriptedController) (*Battle, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	b := NewBattle(Config{Team1: team1, Team2: team2, Logger: logger}, p1, p2)
	return b, logger
}

// runBattleToCompletion runs a battle and returns it with the logger for inspection.
func runBattleToCompletion(t *testing.T, cfg Config, p1, p2 *ScriptedController) (*Battle, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	cfg.Logger = logger
	if cfg.MaxRounds == 0 {
		cfg.MaxRounds = 50 // reasonable default for tests
	}

	b := NewBattle(cfg, p1, p2)

	winner, err := b.Run(context.Background())
	if err != nil {
		t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))
		t.Fatalf("Battle error: %v", err)
	}

	t.Logf("Battle result: winner=%d (%s)", winner, b.Result)
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	return b, logger
}
