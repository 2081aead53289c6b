package battle

import (
	"fmt"

	"github.com/peterkuimelis/smtx/internal/log"
)

// UnitKind is the closed set of unit variants. The zero value is not a valid kind.
type UnitKind int

const (
	KindSamurai UnitKind = iota + 1
	KindMonster
)

func (k UnitKind) String() string {
	switch k {
	case KindSamurai:
		return "Samurai"
	case KindMonster:
		return "Monster"
	default:
		return "Unknown"
	}
}

// ActionKind identifies a menu choice.
type ActionKind int

const (
	ActionPass ActionKind = iota
	ActionAttack
	ActionShoot
	ActionSkill
	ActionSummon
	ActionSurrender
)

func (a ActionKind) String() string {
	switch a {
	case ActionPass:
		return "Pass"
	case ActionAttack:
		return "Attack"
	case ActionShoot:
		return "Shoot"
	case ActionSkill:
		return "Skill"
	case ActionSummon:
		return "Summon"
	case ActionSurrender:
		return "Surrender"
	default:
		return "Unknown"
	}
}

// ActionEffect is what a resolved action costs and earns in the turn economy.
type ActionEffect struct {
	FullCost       int
	BlinkGain      int
	BlinkExtraCost int
	Kind           ActionKind
}

// Stats holds a unit's numbers. HP and MP only change through the clamping
// methods below.
type Stats struct {
	HP    int
	MaxHP int
	MP    int
	MaxMP int
	Str   int // physical power
	Skl   int // ranged power
	Mag   int // magic power
	Spd   int // turn-order key
	Lck   int
}

// NewStats builds full-health stats from catalog numbers.
func NewStats(hp, mp, str, skl, mag, spd, lck int) Stats {
	return Stats{
		HP: hp, MaxHP: hp,
		MP: mp, MaxMP: mp,
		Str: str, Skl: skl, Mag: mag, Spd: spd, Lck: lck,
	}
}

// Damage lowers HP, never below zero.
func (s *Stats) Damage(amount int) {
	s.HP = max(0, s.HP-max(0, amount))
}

// Heal raises HP, never above MaxHP.
func (s *Stats) Heal(amount int) {
	s.HP = min(s.MaxHP, s.HP+max(0, amount))
}

// SpendMana lowers MP, never below zero.
func (s *Stats) SpendMana(amount int) {
	s.MP = max(0, s.MP-max(0, amount))
}

// RestoreMana raises MP, never above MaxMP.
func (s *Stats) RestoreMana(amount int) {
	s.MP = min(s.MaxMP, s.MP+max(0, amount))
}

// ResetToMax restores HP and MP to their maximums.
func (s *Stats) ResetToMax() {
	s.HP = s.MaxHP
	s.MP = s.MaxMP
}

func (s Stats) String() string {
	return fmt.Sprintf("HP:%d/%d MP:%d/%d STR:%d SKL:%d MAG:%d SPD:%d LCK:%d",
		s.HP, s.MaxHP, s.MP, s.MaxMP, s.Str, s.Skl, s.Mag, s.Spd, s.Lck)
}

// Skill is an immutable skill definition shared by every unit that knows it.
type Skill struct {
	Name   string
	Type   string
	Cost   int
	Power  int
	Target string
	Hits   int
	Effect string
}

// Unit is a single combatant.
type Unit struct {
	Name   string
	Kind   UnitKind
	Stats  Stats
	Skills []*Skill
}

// NewSamurai creates a team leader.
func NewSamurai(name string, stats Stats, skills ...*Skill) *Unit {
	return &Unit{Name: name, Kind: KindSamurai, Stats: stats, Skills: skills}
}

// NewMonster creates a regular unit.
func NewMonster(name string, stats Stats, skills ...*Skill) *Unit {
	return &Unit{Name: name, Kind: KindMonster, Stats: stats, Skills: skills}
}

// Alive reports whether the unit has HP left.
func (u *Unit) Alive() bool {
	return u != nil && u.Stats.HP > 0
}

// IsSamurai reports whether the unit is its team's leader.
func (u *Unit) IsSamurai() bool {
	return u != nil && u.Kind == KindSamurai
}

// HasExtendedActions reports whether the unit gets Shoot and Surrender.
func (u *Unit) HasExtendedActions() bool {
	return u.IsSamurai()
}

// AffordableSkills returns the skills whose cost fits in current MP, in order.
func (u *Unit) AffordableSkills() []*Skill {
	var out []*Skill
	for _, s := range u.Skills {
		if s != nil && s.Cost <= u.Stats.MP {
			out = append(out, s)
		}
	}
	return out
}

// Clone deep-copies the unit. Skills are shared; the slice is not.
// Panics on an unknown kind.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	skills := make([]*Skill, len(u.Skills))
	copy(skills, u.Skills)
	switch u.Kind {
	case KindSamurai:
		return NewSamurai(u.Name, u.Stats, skills...)
	case KindMonster:
		return NewMonster(u.Name, u.Stats, skills...)
	default:
		panic(fmt.Sprintf("clone: unit %q has unknown kind %d", u.Name, int(u.Kind)))
	}
}

// Snapshot returns the unit's visible numbers.
func (u *Unit) Snapshot() log.UnitSnapshot {
	return log.UnitSnapshot{
		Name:  u.Name,
		HP:    u.Stats.HP,
		MaxHP: u.Stats.MaxHP,
		MP:    u.Stats.MP,
		MaxMP: u.Stats.MaxMP,
	}
}

// MenuOptions returns the actions offered to the unit, in menu order.
func MenuOptions(u *Unit) []ActionKind {
	if u.HasExtendedActions() {
		return []ActionKind{ActionAttack, ActionShoot, ActionSkill, ActionSummon, ActionPass, ActionSurrender}
	}
	return []ActionKind{ActionAttack, ActionSkill, ActionSummon, ActionPass}
}
