package battle

import (
	"cmp"
	"slices"
)

// RoundOrder is the acting sequence for one round, as board slot indices.
type RoundOrder []int

// ComputeOrder returns the living board slots sorted by descending speed,
// ties broken by slot index.
func ComputeOrder(t *Team) RoundOrder {
	order := RoundOrder(t.LivingSlots())
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(t.Board[b].Stats.Spd, t.Board[a].Stats.Spd); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return order
}

// NextAlive walks the order from cursor, wrapping once, and returns the first
// slot still holding a living unit.
func (o RoundOrder) NextAlive(t *Team, cursor int) (int, bool) {
	for i := range o {
		slot := o[(cursor+i)%len(o)]
		if t.Unit(slot).Alive() {
			return slot, true
		}
	}
	return -1, false
}

// Advance moves the cursor one position forward.
func (o RoundOrder) Advance(cursor int) int {
	if len(o) == 0 {
		return 0
	}
	return (cursor + 1) % len(o)
}

// NamesFrom lists living units starting at the cursor.
func (o RoundOrder) NamesFrom(t *Team, cursor int) []string {
	names := make([]string, 0, len(o))
	for i := range o {
		u := t.Unit(o[(cursor+i)%len(o)])
		if u.Alive() {
			names = append(names, u.Name)
		}
	}
	return names
}
