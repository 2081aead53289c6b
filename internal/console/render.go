package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterkuimelis/smtx/internal/battle"
	"github.com/peterkuimelis/smtx/internal/log"
)

// Separator is printed between every block of the transcript.
const Separator = "----------------------------------------"

var actionLabels = map[battle.ActionKind]string{
	battle.ActionAttack:    "Atacar",
	battle.ActionShoot:     "Disparar",
	battle.ActionSkill:     "Usar Habilidad",
	battle.ActionSummon:    "Invocar",
	battle.ActionPass:      "Pasar Turno",
	battle.ActionSurrender: "Rendirse",
}

// ActionLabel returns the menu text for an action.
func ActionLabel(k battle.ActionKind) string {
	if l, ok := actionLabels[k]; ok {
		return l
	}
	return k.String()
}

// EventLines renders one battle event as transcript lines. Events with no
// console form render as nothing.
func EventLines(e log.BattleEvent) []string {
	tag := log.PlayerTag(e.Player)
	switch e.Type {
	case log.EventRoundStart:
		return []string{Separator, fmt.Sprintf("Ronda de %s (%s)", e.Unit, tag), Separator}

	case log.EventBoards:
		var lines []string
		for i, t := range e.Teams {
			lines = append(lines, fmt.Sprintf("Equipo de %s (%s)", t.Leader, log.PlayerTag(i)))
			lines = append(lines, slotLines(t)...)
		}
		return append(lines, Separator)

	case log.EventTurnCounters:
		return []string{
			fmt.Sprintf("Full Turns: %d", e.Turns.Full),
			fmt.Sprintf("Blinking Turns: %d", e.Turns.Blink),
			Separator,
		}

	case log.EventTurnOrder:
		lines := []string{"Orden:"}
		for i, name := range e.Order {
			lines = append(lines, fmt.Sprintf("%d-%s", i+1, name))
		}
		return append(lines, Separator)

	case log.EventAttack:
		return []string{Separator, fmt.Sprintf("%s ataca a %s", e.Unit, e.Target)}

	case log.EventShoot:
		return []string{Separator, fmt.Sprintf("%s dispara a %s", e.Unit, e.Target)}

	case log.EventDamage:
		lines := []string{fmt.Sprintf("%s recibe %d de daño", e.Target, e.Amount)}
		if e.Status != nil {
			lines = append(lines, fmt.Sprintf("%s termina con HP:%d/%d", e.Target, e.Status.HP, e.Status.MaxHP))
		}
		return lines

	case log.EventSkillUse:
		return []string{fmt.Sprintf("%s usa %s", e.Unit, e.Target)}

	case log.EventSurrender:
		return []string{fmt.Sprintf("%s (%s) se rinde", e.Unit, tag)}

	case log.EventTurnsConsumed:
		var lines []string
		if e.Action != battle.ActionPass.String() && e.Turns.Gained == 0 {
			lines = append(lines, Separator)
		}
		return append(lines,
			fmt.Sprintf("Se han consumido %d Full Turn(s) y %d Blinking Turn(s)", e.Turns.Full, e.Turns.Blink),
			fmt.Sprintf("Se han obtenido %d Blinking Turn(s)", e.Turns.Gained),
		)

	case log.EventTurnEnd:
		return []string{Separator}

	case log.EventWin:
		return []string{Separator, fmt.Sprintf("Ganador: %s (%s)", e.Unit, tag)}
	}
	return nil
}

func slotLines(t log.TeamSnapshot) []string {
	lines := make([]string, 0, len(t.Slots))
	for i, u := range t.Slots {
		label := string(rune('A' + i))
		if u == nil {
			lines = append(lines, label+"-")
			continue
		}
		lines = append(lines, fmt.Sprintf("%s-%s HP:%d/%d MP:%d/%d", label, u.Name, u.HP, u.MaxHP, u.MP, u.MaxMP))
	}
	return lines
}

// ActionMenuLines renders the action menu shown before reading a choice.
func ActionMenuLines(p battle.ActionPrompt) []string {
	var lines []string
	if p.Attempt > 0 {
		lines = append(lines, Separator)
	}
	lines = append(lines, fmt.Sprintf("Seleccione una acción para %s", p.Actor.Name))
	for i, k := range p.Options {
		lines = append(lines, fmt.Sprintf("%d: %s", i+1, ActionLabel(k)))
	}
	return lines
}

// TargetMenuLines renders the numbered target list; the last entry cancels.
func TargetMenuLines(p battle.TargetPrompt) []string {
	lines := []string{fmt.Sprintf("Seleccione un objetivo para %s", p.Actor)}
	for i, t := range p.Targets {
		lines = append(lines, fmt.Sprintf("%d-%s HP:%d/%d MP:%d/%d", i+1, t.Name, t.HP, t.MaxHP, t.MP, t.MaxMP))
	}
	return append(lines, fmt.Sprintf("%d-Cancelar", len(p.Targets)+1))
}

// SkillMenuLines renders the affordable skills; the last entry cancels.
func SkillMenuLines(actor string, skills []SkillOption) []string {
	lines := []string{fmt.Sprintf("Seleccione una habilidad para que %s use", actor)}
	for i, s := range skills {
		lines = append(lines, fmt.Sprintf("%d-%s MP:%d", i+1, s.Name, s.Cost))
	}
	return append(lines, fmt.Sprintf("%d-Cancelar", len(skills)+1))
}

// SkillOption is the part of a skill the skill menu shows.
type SkillOption struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

// SkillOptions converts a skill prompt's list for SkillMenuLines.
func SkillOptions(skills []*battle.Skill) []SkillOption {
	out := make([]SkillOption, len(skills))
	for i, s := range skills {
		out[i] = SkillOption{Name: s.Name, Cost: s.Cost}
	}
	return out
}

// ParseChoice reads a 1-based menu choice in [1, limit]. Anything else,
// including blank or non-numeric input, selects 1.
func ParseChoice(input string, limit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > limit {
		return 1
	}
	return n
}

// ParseFileIndex reads a 0-based file selection: blank, non-numeric or
// negative selects 0, too large selects the last file.
func ParseFileIndex(input string, count int) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return 0
	}
	if n >= count {
		return count - 1
	}
	return n
}
