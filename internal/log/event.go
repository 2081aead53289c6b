package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventRoundStart EventType = iota
	EventBoards
	EventTurnCounters
	EventTurnOrder
	EventAttack
	EventShoot
	EventDamage
	EventUnitDefeated
	EventSkillUse
	EventSummon
	EventSurrender
	EventTurnsConsumed
	EventTurnEnd
	EventWin
)

func (e EventType) String() string {
	switch e {
	case EventRoundStart:
		return "RoundStart"
	case EventBoards:
		return "Boards"
	case EventTurnCounters:
		return "TurnCounters"
	case EventTurnOrder:
		return "TurnOrder"
	case EventAttack:
		return "Attack"
	case EventShoot:
		return "Shoot"
	case EventDamage:
		return "Damage"
	case EventUnitDefeated:
		return "UnitDefeated"
	case EventSkillUse:
		return "SkillUse"
	case EventSummon:
		return "Summon"
	case EventSurrender:
		return "Surrender"
	case EventTurnsConsumed:
		return "TurnsConsumed"
	case EventTurnEnd:
		return "TurnEnd"
	case EventWin:
		return "Win"
	default:
		return "Unknown"
	}
}

// UnitSnapshot is the visible state of one unit at the time of an event.
type UnitSnapshot struct {
	Name  string `json:"name"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"max_hp"`
	MP    int    `json:"mp"`
	MaxMP int    `json:"max_mp"`
}

// TeamSnapshot is one side of the board. A nil slot is empty.
type TeamSnapshot struct {
	Leader string           `json:"leader"`
	Slots  [4]*UnitSnapshot `json:"slots"`
}

// TurnCounters carries turn-economy numbers. For EventTurnCounters Full and
// Blink are the remaining pools; for EventTurnsConsumed they are the amounts
// spent and Gained is the blink reward.
type TurnCounters struct {
	Full   int `json:"full"`
	Blink  int `json:"blink"`
	Gained int `json:"gained,omitempty"`
}

// BattleEvent represents a single observable event in a battle.
type BattleEvent struct {
	Seq     int            // monotonic sequence number
	Round   int            // which round (1-based)
	Player  int            // acting player (0 or 1)
	Type    EventType      // event type
	Unit    string         // acting unit (or team leader)
	Target  string         // target unit, if any
	Amount  int            // damage dealt
	Action  string         // action kind for EventTurnsConsumed
	Details string         // human-readable detail string
	Teams   []TeamSnapshot // EventBoards: P1 then P2
	Turns   TurnCounters
	Order   []string      // EventTurnOrder: living units from the cursor
	Status  *UnitSnapshot // EventDamage: target after the hit
}
