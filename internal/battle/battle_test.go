package battle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peterkuimelis/smtx/internal/log"
)

// TestOneAttackWins: an overwhelming attacker ends a 1v1 with a single hit.
func TestOneAttackWins(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 100, 10, 5))
	team2 := NewTeam(samurai("Walter", 1, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddAttack(0)
	p2 := NewScriptedController(t, "P2")

	b, logger := runBattleToCompletion(t, Config{Team1: team1, Team2: team2}, p1, p2)

	if b.Winner != 0 {
		t.Fatalf("Expected P1 to win, got %d", b.Winner)
	}
	if n := len(logger.EventsOfType(log.EventAttack)); n != 1 {
		t.Errorf("Expected exactly one attack, got %d", n)
	}
	if len(p2.ActionPrompts) != 0 {
		t.Error("P2 must never act")
	}
	if b.Teams[1].AliveOnBoard() != 0 {
		t.Error("Expected P2 to have no living units")
	}
	if b.Teams[1].Board[0] == nil || b.Teams[1].Board[0].Stats.HP != 0 {
		t.Error("Expected fallen samurai to remain on the board")
	}

	dmg := logger.EventsOfType(log.EventDamage)
	if len(dmg) != 1 || dmg[0].Amount != 61 || dmg[0].Status.HP != 0 {
		t.Errorf("Unexpected damage events: %+v", dmg)
	}

	win := logger.LastEvent()
	if win.Type != log.EventWin || win.Player != 0 || win.Unit != "Flynn" {
		t.Errorf("Unexpected final event: %+v", win)
	}
	// The acting-player fallback must not be what decided this battle.
	if strings.Contains(win.Details, "acting player") {
		t.Error("Winner fell back to the acting player")
	}
}

// TestSurrenderEndsBattle: surrender defeats the whole team at no turn cost.
func TestSurrenderEndsBattle(t *testing.T) {
	team1 := NewTeam(
		samurai("Flynn", 100, 10, 10, 9),
		monster("Pixie", 40, 10, 3),
		monster("Slime", 40, 10, 2),
		monster("Imp", 40, 10, 1),
		monster("Reserve Kobold", 40, 10, 1),
	)
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddAction(ActionSurrender)
	p2 := NewScriptedController(t, "P2")

	b, logger := runBattleToCompletion(t, Config{Team1: team1, Team2: team2}, p1, p2)

	if b.Winner != 1 {
		t.Fatalf("Expected P2 to win, got %d", b.Winner)
	}
	if n := len(logger.EventsOfType(log.EventTurnsConsumed)); n != 0 {
		t.Errorf("Surrender must consume no turns, got %d consumption events", n)
	}
	for _, u := range b.Teams[0].Units() {
		if u.Stats.HP != 0 {
			t.Errorf("%s still has %d HP", u.Name, u.Stats.HP)
		}
	}
	s := logger.EventsOfType(log.EventSurrender)
	if len(s) != 1 || s[0].Unit != "Flynn" || s[0].Player != 0 {
		t.Errorf("Unexpected surrender events: %+v", s)
	}
	if strings.Contains(logger.LastEvent().Details, "acting player") {
		t.Error("Winner fell back to the acting player")
	}
}

// TestPassEarnsBlinkOnlyOnFull: pass chains alternate between full and blink.
func TestPassEarnsBlinkOnlyOnFull(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9), monster("Pixie", 40, 10, 3))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))

	p1 := NewScriptedController(t, "P1")
	p2 := NewScriptedController(t, "P2")

	logger := log.NewMemoryLogger()
	b := NewBattle(Config{Team1: team1, Team2: team2, Logger: logger, MaxRounds: 1}, p1, p2)
	_, err := b.Run(context.Background())
	if !errors.Is(err, ErrRoundLimit) {
		t.Fatalf("Expected ErrRoundLimit, got %v", err)
	}
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	var got []log.TurnCounters
	for _, e := range logger.EventsOfType(log.EventTurnsConsumed) {
		got = append(got, e.Turns)
	}
	want := []log.TurnCounters{
		{Full: 1, Gained: 1},
		{Blink: 1},
		{Full: 1, Gained: 1},
		{Blink: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d consumptions, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Consumption %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}

	// Actors alternate Flynn, Pixie, Flynn, Pixie
	var actors []string
	for _, p := range p1.ActionPrompts {
		actors = append(actors, p.Actor.Name)
	}
	if strings.Join(actors, ",") != "Flynn,Pixie,Flynn,Pixie" {
		t.Errorf("Unexpected actor sequence: %v", actors)
	}
}

// TestCancelReturnsToMenu: cancelled target and skill choices cost nothing.
func TestCancelReturnsToMenu(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9, skill("Megido", 999)))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").
		AddAction(ActionAttack).AddTarget(Cancel).
		AddAction(ActionSkill).
		AddAction(ActionPass)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	effect, err := b.resolveAction(0, 0)
	if err != nil {
		t.Fatalf("resolveAction: %v", err)
	}

	if effect != (ActionEffect{FullCost: 1, BlinkGain: 1, Kind: ActionPass}) {
		t.Errorf("Unexpected effect %+v", effect)
	}
	if len(p1.ActionPrompts) != 3 {
		t.Fatalf("Expected 3 menu prompts, got %d", len(p1.ActionPrompts))
	}
	for i, p := range p1.ActionPrompts {
		if p.Attempt != i {
			t.Errorf("Prompt %d has attempt %d", i, p.Attempt)
		}
	}
	if len(p1.SkillPrompts) != 1 || len(p1.SkillPrompts[0].Skills) != 0 {
		t.Errorf("Expected one empty skill prompt, got %+v", p1.SkillPrompts)
	}
	if n := len(logger.EventsOfType(log.EventAttack)); n != 0 {
		t.Errorf("Cancelled attack must not hit, got %d attacks", n)
	}
	if b.Teams[1].Board[0].Stats.HP != 100 {
		t.Error("Target took damage from a cancelled attack")
	}
}

// TestSkillUseCostsFullTurn: choosing an affordable skill costs one turn and no MP.
func TestSkillUseCostsFullTurn(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9, skill("Agi", 3), skill("Megido", 999), skill("Zio", 4)))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddSkill(7)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	effect, err := b.resolveAction(0, 0)
	if err != nil {
		t.Fatalf("resolveAction: %v", err)
	}
	if effect != (ActionEffect{FullCost: 1, Kind: ActionSkill}) {
		t.Errorf("Unexpected effect %+v", effect)
	}

	offered := p1.SkillPrompts[0].Skills
	if len(offered) != 2 || offered[0].Name != "Agi" || offered[1].Name != "Zio" {
		t.Errorf("Unexpected skill list %v", offered)
	}
	uses := logger.EventsOfType(log.EventSkillUse)
	if len(uses) != 1 || uses[0].Target != "Zio" {
		t.Errorf("Expected out-of-range index clamped to Zio, got %+v", uses)
	}
	if mp := b.Teams[0].Board[0].Stats.MP; mp != 50 {
		t.Errorf("Skill use must not spend MP, got %d", mp)
	}
}

// TestShootUsesRangedPower: Shoot is samurai-only and uses Skl.
func TestShootUsesRangedPower(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 50, 9), monster("Pixie", 40, 100, 3))
	team2 := NewTeam(samurai("Walter", 500, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddShoot(0).AddShoot(0)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)

	if _, err := b.resolveAction(0, 0); err != nil {
		t.Fatal(err)
	}
	// Pixie has no Shoot; the choice falls back to Attack
	effect, err := b.resolveAction(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if effect.Kind != ActionAttack {
		t.Errorf("Expected monster shoot to fall back to Attack, got %v", effect.Kind)
	}

	if n := len(logger.EventsOfType(log.EventShoot)); n != 1 {
		t.Errorf("Expected one shoot event, got %d", n)
	}
	dmg := logger.EventsOfType(log.EventDamage)
	if len(dmg) != 2 || dmg[0].Amount != 45 || dmg[1].Amount != 61 {
		t.Errorf("Unexpected damage events: %+v", dmg)
	}
	if hp := b.Teams[1].Board[0].Stats.HP; hp != 500-45-61 {
		t.Errorf("Expected Walter at %d HP, got %d", 500-45-61, hp)
	}
}

// TestOutOfRangeTargetPicksFirst: a bad target index selects the first target.
func TestOutOfRangeTargetPicksFirst(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5), monster("Pixie", 40, 10, 3))

	p1 := NewScriptedController(t, "P1").AddAttack(42)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	if _, err := b.resolveAction(0, 0); err != nil {
		t.Fatal(err)
	}
	attacks := logger.EventsOfType(log.EventAttack)
	if len(attacks) != 1 || attacks[0].Target != "Walter" {
		t.Errorf("Expected Walter to be hit, got %+v", attacks)
	}
}

// TestNoTargetsCancelsSilently: with no living target the menu is shown again.
func TestNoTargetsCancelsSilently(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))
	p1 := NewScriptedController(t, "P1").AddAction(ActionAttack, ActionSummon)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	b.Teams[1].Defeat()

	effect, err := b.resolveAction(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(p1.TargetPrompts) != 0 {
		t.Error("Target prompt must not be shown without targets")
	}
	if effect != (ActionEffect{Kind: ActionSummon}) {
		t.Errorf("Expected inert summon effect, got %+v", effect)
	}
	if n := len(logger.EventsOfType(log.EventSummon)); n != 1 {
		t.Errorf("Expected one summon event, got %d", n)
	}
}

// TestSummonDoesNotEndRound: summon is terminal for the turn but costs nothing.
func TestSummonDoesNotEndRound(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9), monster("Pixie", 40, 10, 3))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddAction(ActionSummon, ActionPass, ActionPass)
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	if err := b.playRound(0); err != nil {
		t.Fatal(err)
	}
	t.Logf("Event log:\n%s", log.FormatAll(logger.Events()))

	// Flynn summons (free), Pixie passes (full), Flynn passes (blink), Pixie
	// passes (full), Flynn passes (blink): five prompts in total.
	if len(p1.ActionPrompts) != 5 {
		t.Errorf("Expected 5 action prompts, got %d", len(p1.ActionPrompts))
	}
	if n := len(logger.EventsOfType(log.EventTurnsConsumed)); n != 4 {
		t.Errorf("Expected 4 consumption events, got %d", n)
	}
}

// TestEmptyOrderRound: a round with nothing alive reports zero turns and returns.
func TestEmptyOrderRound(t *testing.T) {
	team1 := NewTeam(NewSamurai("Ghost", NewStats(0, 0, 1, 1, 1, 1, 1)))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))
	p1 := NewScriptedController(t, "P1")
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	if err := b.playRound(0); err != nil {
		t.Fatal(err)
	}

	counters := logger.EventsOfType(log.EventTurnCounters)
	if len(counters) != 1 || counters[0].Turns != (log.TurnCounters{}) {
		t.Errorf("Expected a single zero counter event, got %+v", counters)
	}
	if n := len(logger.EventsOfType(log.EventTurnOrder)); n != 0 {
		t.Errorf("Expected no order listing, got %d", n)
	}
	if len(p1.ActionPrompts) != 0 {
		t.Error("No unit should have been asked to act")
	}
}

// TestAlreadyDecidedBattle: a side with nothing alive at the start loses immediately.
func TestAlreadyDecidedBattle(t *testing.T) {
	team1 := NewTeam(NewSamurai("Ghost", NewStats(0, 0, 1, 1, 1, 1, 1)))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))
	p1 := NewScriptedController(t, "P1")
	p2 := NewScriptedController(t, "P2")

	b, _ := runBattleToCompletion(t, Config{Team1: team1, Team2: team2}, p1, p2)
	if b.Winner != 1 || b.Round != 0 {
		t.Errorf("Expected P2 to win before any round, got winner=%d round=%d", b.Winner, b.Round)
	}
}

// TestWinnerFallbackIsDefensiveOnly: the acting-player rule only applies when
// the boards do not decide, which normal round termination never produces.
func TestWinnerFallbackIsDefensiveOnly(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 9))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))
	p1 := NewScriptedController(t, "P1")
	p2 := NewScriptedController(t, "P2")

	b, logger := newTestBattle(t, team1, team2, p1, p2)
	b.Teams[0].Defeat()
	b.Teams[1].Defeat()
	b.resolveWinner(1)

	if b.Winner != 1 {
		t.Errorf("Expected acting player to win the fallback, got %d", b.Winner)
	}
	if !strings.Contains(logger.LastEvent().Details, "acting player") {
		t.Errorf("Expected fallback reason, got %q", logger.LastEvent().Details)
	}
}

// TestBattleDoesNotMutateRoster: the orchestrator works on restored copies.
func TestBattleDoesNotMutateRoster(t *testing.T) {
	hero := samurai("Flynn", 100, 100, 10, 5)
	hero.Stats.HP = 30
	hero.Stats.MP = 2
	team1 := NewTeam(hero)
	team2 := NewTeam(samurai("Walter", 1, 10, 10, 5))

	p1 := NewScriptedController(t, "P1").AddAttack(0)
	p2 := NewScriptedController(t, "P2")

	b, _ := runBattleToCompletion(t, Config{Team1: team1, Team2: team2}, p1, p2)

	if hero.Stats.HP != 30 || hero.Stats.MP != 2 {
		t.Errorf("Roster unit changed: %v", hero.Stats)
	}
	if got := b.Teams[0].Board[0]; got == hero || got.Stats.HP != 100 || got.Stats.MP != 50 {
		t.Errorf("Battle copy not restored: %v", got.Stats)
	}
	if team2.Board[0].Stats.HP != 1 {
		t.Error("Opposing roster was mutated")
	}
}

// TestRoundsAlternate: P1 then P2 until someone wins.
func TestRoundsAlternate(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 5))
	team2 := NewTeam(samurai("Walter", 100, 300, 10, 5))

	p1 := NewScriptedController(t, "P1").AddPass(1)
	p2 := NewScriptedController(t, "P2").AddAttack(0)

	b, logger := runBattleToCompletion(t, Config{Team1: team1, Team2: team2}, p1, p2)

	// Walter: 300*54*114/10000 = 184 damage, Flynn dies in round 2
	if b.Winner != 1 || b.Round != 2 {
		t.Errorf("Expected P2 to win in round 2, got winner=%d round=%d", b.Winner, b.Round)
	}
	starts := logger.EventsOfType(log.EventRoundStart)
	if len(starts) != 2 || starts[0].Player != 0 || starts[1].Player != 1 {
		t.Errorf("Unexpected round starts: %+v", starts)
	}
}

// TestCancelledContext: Run stops when the context is done.
func TestCancelledContext(t *testing.T) {
	team1 := NewTeam(samurai("Flynn", 100, 10, 10, 5))
	team2 := NewTeam(samurai("Walter", 100, 10, 10, 5))
	p1 := NewScriptedController(t, "P1")
	p2 := NewScriptedController(t, "P2")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBattle(Config{Team1: team1, Team2: team2}, p1, p2)
	if _, err := b.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

// TestMissingController: Run refuses to start without both players.
func TestMissingController(t *testing.T) {
	team := NewTeam(samurai("Flynn", 100, 10, 10, 5))
	b := NewBattle(Config{Team1: team, Team2: team}, NewScriptedController(t, "P1"), nil)
	if _, err := b.Run(context.Background()); !errors.Is(err, ErrNoController) {
		t.Errorf("Expected ErrNoController, got %v", err)
	}
}

// TestActionMachine: transitions follow the menu, cancel and resolve flow.
func TestActionMachine(t *testing.T) {
	ctx := context.Background()
	team := NewTeam(samurai("Flynn", 100, 10, 10, 5))
	b := NewBattle(Config{Team1: team, Team2: team}, NewScriptedController(t, "P1"), NewScriptedController(t, "P2"))
	m := newActionMachine(b.slog, "Flynn")

	if m.State() != StateMenuShown {
		t.Fatalf("Expected initial state %s, got %s", StateMenuShown, m.State())
	}
	if err := m.fire(ctx, eventCancel); err == nil {
		t.Error("Cancel from the menu must be rejected")
	}
	for _, step := range []struct {
		event string
		want  string
	}{
		{eventChooseAttack, StateAttack},
		{eventCancel, StateMenuShown},
		{eventChooseSkill, StateSkill},
		{eventResolve, StateResolved},
	} {
		if err := m.fire(ctx, step.event); err != nil {
			t.Fatalf("%s: %v", step.event, err)
		}
		if m.State() != step.want {
			t.Errorf("After %s expected %s, got %s", step.event, step.want, m.State())
		}
	}
}
