package battle

import "github.com/peterkuimelis/smtx/internal/log"

const (
	BoardSize  = 4
	MaxReserve = 4
	MaxUnits   = BoardSize + MaxReserve
)

// Team is one side of a battle. Only Board units fight; an empty slot is nil.
type Team struct {
	Board   [BoardSize]*Unit
	Reserve []*Unit
}

// NewTeam places the first BoardSize units on the board and the rest in reserve.
func NewTeam(units ...*Unit) *Team {
	t := &Team{}
	for i, u := range units {
		if i < BoardSize {
			t.Board[i] = u
			continue
		}
		t.Reserve = append(t.Reserve, u)
	}
	return t
}

// Units returns every unit the team holds, board first, skipping empty slots.
func (t *Team) Units() []*Unit {
	out := make([]*Unit, 0, BoardSize+len(t.Reserve))
	for _, u := range t.Board {
		if u != nil {
			out = append(out, u)
		}
	}
	for _, u := range t.Reserve {
		if u != nil {
			out = append(out, u)
		}
	}
	return out
}

// Unit returns the unit in a board slot, or nil.
func (t *Team) Unit(slot int) *Unit {
	if slot < 0 || slot >= BoardSize {
		return nil
	}
	return t.Board[slot]
}

// AliveOnBoard counts living units in the board slots.
func (t *Team) AliveOnBoard() int {
	n := 0
	for _, u := range t.Board {
		if u.Alive() {
			n++
		}
	}
	return n
}

// Defeated reports whether the team has no living board unit.
func (t *Team) Defeated() bool {
	return t.AliveOnBoard() == 0
}

// LivingSlots returns the board slots holding living units, in slot order.
func (t *Team) LivingSlots() []int {
	var slots []int
	for i, u := range t.Board {
		if u.Alive() {
			slots = append(slots, i)
		}
	}
	return slots
}

// Leader returns the team's Samurai wherever it sits, or nil.
func (t *Team) Leader() *Unit {
	for _, u := range t.Units() {
		if u.IsSamurai() {
			return u
		}
	}
	return nil
}

// LeaderName is the Samurai's name, else the first unit's name, else "Jugador".
func (t *Team) LeaderName() string {
	if l := t.Leader(); l != nil {
		return l.Name
	}
	if units := t.Units(); len(units) > 0 {
		return units[0].Name
	}
	return "Jugador"
}

// Defeat drops every unit of the team to 0 HP.
func (t *Team) Defeat() {
	for _, u := range t.Units() {
		u.Stats.HP = 0
	}
}

// RemoveFromBoard empties a board slot.
func (t *Team) RemoveFromBoard(slot int) {
	if slot < 0 || slot >= BoardSize {
		return
	}
	t.Board[slot] = nil
}

// ResetToMax restores HP and MP of every unit.
func (t *Team) ResetToMax() {
	for _, u := range t.Units() {
		u.Stats.ResetToMax()
	}
}

// Clone deep-copies the team, keeping empty slots empty.
func (t *Team) Clone() *Team {
	c := &Team{}
	for i, u := range t.Board {
		c.Board[i] = u.Clone()
	}
	if len(t.Reserve) > 0 {
		c.Reserve = make([]*Unit, len(t.Reserve))
		for i, u := range t.Reserve {
			c.Reserve[i] = u.Clone()
		}
	}
	return c
}

// Snapshot returns the board as seen by players.
func (t *Team) Snapshot() log.TeamSnapshot {
	ts := log.TeamSnapshot{Leader: t.LeaderName()}
	for i, u := range t.Board {
		if u != nil {
			s := u.Snapshot()
			ts.Slots[i] = &s
		}
	}
	return ts
}
