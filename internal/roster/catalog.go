package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/peterkuimelis/smtx/internal/battle"
)

const (
	skillsFile   = "skills.json"
	samuraiFile  = "samurai.json"
	monstersFile = "monsters.json"

	// Unit catalogs are searched this many directories up from the start.
	catalogSearchDepth = 5
)

// UnitEntry is one catalog unit with its base stats.
type UnitEntry struct {
	Name    string       `json:"name"`
	Samurai bool         `json:"samurai"`
	Stats   battle.Stats `json:"stats"`
}

// Catalog resolves unit and skill names. Lookups ignore case.
type Catalog struct {
	skills   map[string]battle.Skill
	samurai  map[string]UnitEntry
	monsters map[string]UnitEntry
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		skills:   make(map[string]battle.Skill),
		samurai:  make(map[string]UnitEntry),
		monsters: make(map[string]UnitEntry),
	}
}

// LoadCatalog finds skills.json in dir, its parent or grandparent, and
// samurai.json and monsters.json by walking up from dir, checking both X
// and data/X at each level. Missing files leave that part of the catalog
// empty.
func LoadCatalog(dir string) (*Catalog, error) {
	c := NewCatalog()

	if path := firstExisting(skillCandidates(dir)); path != "" {
		if err := c.loadSkills(path); err != nil {
			return nil, err
		}
	}
	if path := firstExisting(unitCandidates(dir, samuraiFile)); path != "" {
		if err := c.loadUnits(path, true); err != nil {
			return nil, err
		}
	}
	if path := firstExisting(unitCandidates(dir, monstersFile)); path != "" {
		if err := c.loadUnits(path, false); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func skillCandidates(dir string) []string {
	return []string{
		filepath.Join(dir, skillsFile),
		filepath.Join(dir, "..", skillsFile),
		filepath.Join(dir, "..", "..", skillsFile),
	}
}

func unitCandidates(dir, name string) []string {
	var out []string
	cur := filepath.Clean(dir)
	for i := 0; i < catalogSearchDepth; i++ {
		out = append(out, filepath.Join(cur, name), filepath.Join(cur, "data", name))
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}
	return out
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// flexInt decodes a JSON number or a numeric string. Anything else is 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		n, _ = strconv.Atoi(strings.TrimSpace(s))
	}
	*f = flexInt(n)
	return nil
}

type skillJSON struct {
	Name   string  `json:"name"`
	Type   string  `json:"type"`
	Cost   flexInt `json:"cost"`
	Power  flexInt `json:"power"`
	Target string  `json:"target"`
	Hits   flexInt `json:"hits"`
	Effect string  `json:"effect"`
}

type unitJSON struct {
	Name  string `json:"name"`
	Stats *struct {
		HP  flexInt `json:"HP"`
		MP  flexInt `json:"MP"`
		Str flexInt `json:"Str"`
		Skl flexInt `json:"Skl"`
		Mag flexInt `json:"Mag"`
		Spd flexInt `json:"Spd"`
		Lck flexInt `json:"Lck"`
	} `json:"stats"`
}

func (c *Catalog) loadSkills(path string) error {
	var items []*skillJSON
	if err := readJSON(path, &items); err != nil {
		return err
	}
	for _, it := range items {
		if it == nil || strings.TrimSpace(it.Name) == "" {
			continue
		}
		c.AddSkill(battle.Skill{
			Name:   it.Name,
			Type:   it.Type,
			Cost:   int(it.Cost),
			Power:  int(it.Power),
			Target: it.Target,
			Hits:   int(it.Hits),
			Effect: it.Effect,
		})
	}
	return nil
}

func (c *Catalog) loadUnits(path string, samurai bool) error {
	var items []*unitJSON
	if err := readJSON(path, &items); err != nil {
		return err
	}
	for _, it := range items {
		if it == nil || it.Stats == nil || strings.TrimSpace(it.Name) == "" {
			continue
		}
		s := it.Stats
		c.AddUnit(UnitEntry{
			Name:    NormalizeName(it.Name),
			Samurai: samurai,
			Stats: battle.NewStats(int(s.HP), int(s.MP), int(s.Str), int(s.Skl),
				int(s.Mag), int(s.Spd), int(s.Lck)),
		})
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func key(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// AddSkill registers or replaces a skill.
func (c *Catalog) AddSkill(s battle.Skill) {
	c.skills[key(s.Name)] = s
}

// AddUnit registers or replaces a unit in the samurai or monster table.
func (c *Catalog) AddUnit(u UnitEntry) {
	if u.Samurai {
		c.samurai[key(u.Name)] = u
		return
	}
	c.monsters[key(u.Name)] = u
}

// Skill looks up a skill by name.
func (c *Catalog) Skill(name string) (battle.Skill, bool) {
	s, ok := c.skills[key(name)]
	return s, ok
}

// Samurai looks up samurai stats by name.
func (c *Catalog) Samurai(name string) (UnitEntry, bool) {
	u, ok := c.samurai[key(name)]
	return u, ok
}

// Monster looks up monster stats by name.
func (c *Catalog) Monster(name string) (UnitEntry, bool) {
	u, ok := c.monsters[key(name)]
	return u, ok
}

// Skills returns every skill sorted by name.
func (c *Catalog) Skills() []battle.Skill {
	out := make([]battle.Skill, 0, len(c.skills))
	for _, s := range c.skills {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b battle.Skill) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Units returns every samurai then every monster, each group sorted by name.
func (c *Catalog) Units() []UnitEntry {
	sorted := func(m map[string]UnitEntry) []UnitEntry {
		out := make([]UnitEntry, 0, len(m))
		for _, u := range m {
			out = append(out, u)
		}
		slices.SortFunc(out, func(a, b UnitEntry) int { return strings.Compare(a.Name, b.Name) })
		return out
	}
	return append(sorted(c.samurai), sorted(c.monsters)...)
}

// ResolveSkill returns the catalog skill, or an "Unknown" placeholder that
// costs nothing.
func (c *Catalog) ResolveSkill(name string) *battle.Skill {
	if s, ok := c.Skill(name); ok {
		return &s
	}
	return &battle.Skill{Name: name, Type: "Unknown", Target: "Single", Hits: 1}
}

// NewUnit builds a battle unit from a spec. The name must be in the
// samurai or monster catalog matching the spec's kind.
func (c *Catalog) NewUnit(spec UnitSpec) (*battle.Unit, error) {
	skills := make([]*battle.Skill, 0, len(spec.Skills))
	for _, name := range spec.Skills {
		skills = append(skills, c.ResolveSkill(name))
	}

	if spec.Samurai {
		e, ok := c.Samurai(spec.Name)
		if !ok {
			return nil, fmt.Errorf("%w: samurai %q", ErrUnknownUnit, spec.Name)
		}
		return battle.NewSamurai(spec.Name, e.Stats, skills...), nil
	}
	e, ok := c.Monster(spec.Name)
	if !ok {
		return nil, fmt.Errorf("%w: monster %q", ErrUnknownUnit, spec.Name)
	}
	return battle.NewMonster(spec.Name, e.Stats, skills...), nil
}
