package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging battle events.
type EventLogger interface {
	Log(event BattleEvent)
	Events() []BattleEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []BattleEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event BattleEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []BattleEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]BattleEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []BattleEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []BattleEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() BattleEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return BattleEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event BattleEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// PlayerTag returns "J1" or "J2" for display.
func PlayerTag(p int) string {
	return fmt.Sprintf("J%d", p+1)
}

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e BattleEvent) string {
	kind := e.Type.String()
	for len(kind) < 14 {
		kind += " "
	}
	return fmt.Sprintf("R%-2d %s %s| %s", e.Round, PlayerTag(e.Player), kind, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []BattleEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewRoundStartEvent(round, player int, leader string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventRoundStart,
		Unit:    leader,
		Details: fmt.Sprintf("=== Round %d: %s (%s) ===", round, leader, PlayerTag(player)),
	}
}

func NewBoardsEvent(round, player int, p1, p2 TeamSnapshot) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventBoards,
		Teams:   []TeamSnapshot{p1, p2},
		Details: fmt.Sprintf("%s [%s] vs %s [%s]", p1.Leader, slotSummary(p1), p2.Leader, slotSummary(p2)),
	}
}

func slotSummary(t TeamSnapshot) string {
	parts := make([]string, 0, len(t.Slots))
	for _, u := range t.Slots {
		if u == nil {
			parts = append(parts, "-")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d/%d", u.Name, u.HP, u.MaxHP))
	}
	return strings.Join(parts, ", ")
}

func NewTurnCountersEvent(round, player, full, blink int) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventTurnCounters,
		Turns:   TurnCounters{Full: full, Blink: blink},
		Details: fmt.Sprintf("Full %d, Blink %d", full, blink),
	}
}

func NewTurnOrderEvent(round, player int, order []string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventTurnOrder,
		Order:   order,
		Details: "Order: " + strings.Join(order, " > "),
	}
}

func NewAttackEvent(round, player int, attacker, target string, ranged bool) BattleEvent {
	t := EventAttack
	verb := "attacks"
	if ranged {
		t = EventShoot
		verb = "shoots"
	}
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    t,
		Unit:    attacker,
		Target:  target,
		Details: fmt.Sprintf("%s %s %s", attacker, verb, target),
	}
}

func NewDamageEvent(round, player int, target UnitSnapshot, damage int) BattleEvent {
	status := target
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventDamage,
		Target:  target.Name,
		Amount:  damage,
		Status:  &status,
		Details: fmt.Sprintf("%s takes %d damage (HP %d/%d)", target.Name, damage, target.HP, target.MaxHP),
	}
}

func NewUnitDefeatedEvent(round, player int, name string, removed bool) BattleEvent {
	details := fmt.Sprintf("%s is defeated and leaves the board", name)
	if !removed {
		details = fmt.Sprintf("%s falls and stays on the board", name)
	}
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventUnitDefeated,
		Target:  name,
		Details: details,
	}
}

func NewSkillUseEvent(round, player int, unit, skill string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventSkillUse,
		Unit:    unit,
		Target:  skill,
		Details: fmt.Sprintf("%s uses %s", unit, skill),
	}
}

func NewSummonEvent(round, player int, unit string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventSummon,
		Unit:    unit,
		Details: fmt.Sprintf("%s attempts a summon (no effect)", unit),
	}
}

func NewSurrenderEvent(round, player int, leader string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventSurrender,
		Unit:    leader,
		Details: fmt.Sprintf("%s (%s) surrenders", leader, PlayerTag(player)),
	}
}

func NewTurnsConsumedEvent(round, player, fullUsed, blinkUsed, gained int, action string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventTurnsConsumed,
		Action:  action,
		Turns:   TurnCounters{Full: fullUsed, Blink: blinkUsed, Gained: gained},
		Details: fmt.Sprintf("%s consumed %d full, %d blink; gained %d blink", action, fullUsed, blinkUsed, gained),
	}
}

func NewTurnEndEvent(round, player int) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  player,
		Type:    EventTurnEnd,
		Details: "turn ends",
	}
}

func NewWinEvent(round, winner int, leader, reason string) BattleEvent {
	return BattleEvent{
		Round:   round,
		Player:  winner,
		Type:    EventWin,
		Unit:    leader,
		Details: fmt.Sprintf("%s (%s) wins! (%s)", leader, PlayerTag(winner), reason),
	}
}
