package battle

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/looplab/fsm"
	"github.com/peterkuimelis/smtx/internal/log"
)

// Action resolver states.
const (
	StateMenuShown = "menu_shown"
	StateAttack    = "attack"
	StateSkill     = "skill"
	StateResolved  = "resolved"
)

// Action resolver transitions.
const (
	eventChooseAttack = "choose_attack"
	eventChooseSkill  = "choose_skill"
	eventCancel       = "cancel"
	eventResolve      = "resolve"
)

// actionMachine tracks one actor's turn from menu to resolution. Cancelling
// a target or skill choice returns it to the menu.
type actionMachine struct {
	fsm *fsm.FSM
}

func newActionMachine(logger *slog.Logger, actor string) *actionMachine {
	return &actionMachine{
		fsm: fsm.NewFSM(
			StateMenuShown,
			fsm.Events{
				{Name: eventChooseAttack, Src: []string{StateMenuShown}, Dst: StateAttack},
				{Name: eventChooseSkill, Src: []string{StateMenuShown}, Dst: StateSkill},
				{Name: eventCancel, Src: []string{StateAttack, StateSkill}, Dst: StateMenuShown},
				{Name: eventResolve, Src: []string{StateMenuShown, StateAttack, StateSkill}, Dst: StateResolved},
			},
			fsm.Callbacks{
				"enter_state": func(_ context.Context, e *fsm.Event) {
					logger.Debug("action state", "unit", actor, "event", e.Event, "from", e.Src, "to", e.Dst)
				},
			},
		),
	}
}

func (m *actionMachine) fire(ctx context.Context, event string) error {
	if err := m.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("action %s from %s: %w", event, m.fsm.Current(), err)
	}
	return nil
}

// State returns the current resolver state.
func (m *actionMachine) State() string {
	return m.fsm.Current()
}

// resolveAction runs the menu loop for the unit in slot until a terminal
// choice is made and returns its effect.
func (b *Battle) resolveAction(player, slot int) (ActionEffect, error) {
	actor := b.Teams[player].Unit(slot)
	ctrl := b.Controllers[player]
	machine := newActionMachine(b.slog, actor.Name)
	options := MenuOptions(actor)

	for attempt := 0; ; attempt++ {
		if err := b.ctx.Err(); err != nil {
			return ActionEffect{}, err
		}

		kind, err := ctrl.ChooseAction(b.ctx, ActionPrompt{
			Player:  player,
			Round:   b.Round,
			Actor:   actor.Snapshot(),
			Options: options,
			Attempt: attempt,
			Teams:   b.snapshot(),
		})
		if err != nil {
			return ActionEffect{}, fmt.Errorf("choose action: %w", err)
		}
		if !slices.Contains(options, kind) {
			kind = options[0]
		}

		effect, done, err := b.dispatch(machine, player, slot, kind)
		if err != nil {
			return ActionEffect{}, err
		}
		if done {
			b.metrics.actionResolved(b.ctx, kind)
			return effect, nil
		}
	}
}

// dispatch resolves one menu choice. done is false when the choice was
// cancelled and the menu must be shown again.
func (b *Battle) dispatch(m *actionMachine, player, slot int, kind ActionKind) (effect ActionEffect, done bool, err error) {
	switch kind {
	case ActionAttack, ActionShoot:
		if err := m.fire(b.ctx, eventChooseAttack); err != nil {
			return ActionEffect{}, false, err
		}
		hit, err := b.attack(player, slot, kind == ActionShoot)
		if err != nil {
			return ActionEffect{}, false, err
		}
		if !hit {
			return ActionEffect{}, false, m.fire(b.ctx, eventCancel)
		}
		effect = ActionEffect{FullCost: 1, Kind: kind}

	case ActionSkill:
		if err := m.fire(b.ctx, eventChooseSkill); err != nil {
			return ActionEffect{}, false, err
		}
		used, err := b.useSkill(player, slot)
		if err != nil {
			return ActionEffect{}, false, err
		}
		if !used {
			return ActionEffect{}, false, m.fire(b.ctx, eventCancel)
		}
		effect = ActionEffect{FullCost: 1, Kind: ActionSkill}

	case ActionPass:
		effect = ActionEffect{FullCost: 1, BlinkGain: 1, Kind: ActionPass}

	case ActionSurrender:
		b.surrender(player)
		effect = ActionEffect{Kind: ActionSurrender}

	case ActionSummon:
		b.log(log.NewSummonEvent(b.Round, player, b.Teams[player].Unit(slot).Name))
		effect = ActionEffect{Kind: ActionSummon}
	}

	if err := m.fire(b.ctx, eventResolve); err != nil {
		return ActionEffect{}, false, err
	}
	return effect, true, nil
}

// attack asks for a target among the opponent's living board units and hits
// it. Returns false when there is nothing to hit or the player cancelled.
func (b *Battle) attack(player, slot int, ranged bool) (bool, error) {
	actor := b.Teams[player].Unit(slot)
	opp := b.Teams[1-player]

	slots := opp.LivingSlots()
	if len(slots) == 0 {
		return false, nil
	}
	targets := make([]log.UnitSnapshot, len(slots))
	for i, s := range slots {
		targets[i] = opp.Unit(s).Snapshot()
	}

	idx, err := b.Controllers[player].ChooseTarget(b.ctx, TargetPrompt{
		Player:  player,
		Actor:   actor.Name,
		Targets: targets,
	})
	if err != nil {
		return false, fmt.Errorf("choose target: %w", err)
	}
	if idx == Cancel || idx == len(targets) {
		return false, nil
	}
	if idx < 0 || idx > len(targets) {
		idx = 0
	}

	targetSlot := slots[idx]
	target := opp.Unit(targetSlot)
	damage := ComputeBasicDamage(actor, ranged)
	removed := ApplyDamage(opp, targetSlot, damage)

	b.log(log.NewAttackEvent(b.Round, player, actor.Name, target.Name, ranged))
	b.log(log.NewDamageEvent(b.Round, player, target.Snapshot(), damage))
	if !target.Alive() {
		b.log(log.NewUnitDefeatedEvent(b.Round, 1-player, target.Name, removed))
	}
	b.metrics.damageDealt(b.ctx, damage, ranged)
	return true, nil
}

// useSkill asks which affordable skill to use. No MP is spent and no skill
// effect is applied.
func (b *Battle) useSkill(player, slot int) (bool, error) {
	actor := b.Teams[player].Unit(slot)
	usable := actor.AffordableSkills()

	idx, err := b.Controllers[player].ChooseSkill(b.ctx, SkillPrompt{
		Player: player,
		Actor:  actor.Name,
		Skills: usable,
	})
	if err != nil {
		return false, fmt.Errorf("choose skill: %w", err)
	}
	if len(usable) == 0 || idx == Cancel || idx == len(usable) {
		return false, nil
	}
	idx = max(0, min(idx, len(usable)-1))

	b.log(log.NewSkillUseEvent(b.Round, player, actor.Name, usable[idx].Name))
	return true, nil
}

// surrender knocks out the acting player's whole team.
func (b *Battle) surrender(player int) {
	team := b.Teams[player]
	leader := team.LeaderName()
	team.Defeat()
	b.log(log.NewSurrenderEvent(b.Round, player, leader))
}
