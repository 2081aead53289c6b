package battle

const (
	physicalModifier = 54
	rangedModifier   = 80
	damageScale      = 114
	damageDivisor    = 10000
)

// ComputeBasicDamage evaluates the basic attack formula. Never below 1.
func ComputeBasicDamage(actor *Unit, ranged bool) int {
	stat, mod := actor.Stats.Str, physicalModifier
	if ranged {
		stat, mod = actor.Stats.Skl, rangedModifier
	}
	raw := int64(stat) * int64(mod) * damageScale / damageDivisor
	return max(1, int(raw))
}

// ApplyDamage hits the unit in slot. A non-Samurai that drops to 0 HP leaves
// the board; a fallen Samurai stays. Returns true when the slot was emptied.
func ApplyDamage(t *Team, slot, damage int) bool {
	u := t.Unit(slot)
	if u == nil {
		return false
	}
	u.Stats.Damage(damage)
	if u.Alive() || u.IsSamurai() {
		return false
	}
	t.RemoveFromBoard(slot)
	return true
}
