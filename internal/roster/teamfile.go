// Package roster loads teams from team files, YAML roster files and the
// JSON unit and skill catalogs.
package roster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterkuimelis/smtx/internal/battle"
)

var (
	ErrInvalidFormat = errors.New("roster: invalid team file format")
	ErrUnknownUnit   = errors.New("roster: unknown unit")
)

const (
	player1Header = "Player 1 Team"
	player2Header = "Player 2 Team"
	samuraiTag    = "[Samurai]"
)

// UnitSpec is one unit as written in a team or roster file.
type UnitSpec struct {
	Name    string   `yaml:"name" json:"name"`
	Samurai bool     `yaml:"samurai,omitempty" json:"samurai,omitempty"`
	Skills  []string `yaml:"skills,omitempty" json:"skills,omitempty"`
}

// TeamFile is a parsed text team file.
type TeamFile struct {
	Player1 []UnitSpec
	Player2 []UnitSpec
}

// Teams is a loaded, validated pair of teams ready for battle.
type Teams struct {
	Player1 *battle.Team
	Player2 *battle.Team
	Source  string
}

// ListTeamFiles returns the *.txt files directly inside dir, sorted by name.
func ListTeamFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list team files: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Slice(files, func(i, j int) bool {
		return filepath.Base(files[i]) < filepath.Base(files[j])
	})
	return files, nil
}

// ParseTeamFile reads the two team sections. Both headers must be present
// and the Player 1 section must come first.
func ParseTeamFile(r io.Reader) (*TeamFile, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read team file: %w", err)
	}

	h1 := findHeader(lines, player1Header)
	h2 := findHeader(lines, player2Header)
	if h1 < 0 || h2 < 0 || h2 <= h1 {
		return nil, ErrInvalidFormat
	}

	tf := &TeamFile{}
	for _, line := range lines[h1+1 : h2] {
		tf.Player1 = append(tf.Player1, parseUnitLine(line))
	}
	for _, line := range lines[h2+1:] {
		tf.Player2 = append(tf.Player2, parseUnitLine(line))
	}
	return tf, nil
}

func findHeader(lines []string, title string) int {
	for i, l := range lines {
		if strings.EqualFold(l, title) {
			return i
		}
	}
	return -1
}

// parseUnitLine handles "[Samurai] Name (A, B)", "Name" and "Name (A, B)".
func parseUnitLine(line string) UnitSpec {
	var spec UnitSpec
	rest := line
	if len(line) >= len(samuraiTag) && strings.EqualFold(line[:len(samuraiTag)], samuraiTag) {
		spec.Samurai = true
		rest = strings.TrimSpace(line[len(samuraiTag):])
	}
	if i := strings.IndexByte(rest, '('); i >= 0 {
		rest = rest[:i]
	}
	spec.Name = NormalizeName(rest)
	spec.Skills = skillNames(line)
	return spec
}

// skillNames returns the comma-separated names inside the first parentheses.
func skillNames(line string) []string {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		return nil
	}
	end := strings.IndexByte(line[open+1:], ')')
	if end <= 0 {
		return nil
	}
	var names []string
	for _, part := range strings.Split(line[open+1:open+1+end], ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return names
}

// NormalizeName trims a unit name and drops one trailing dot.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, ".") {
		name = strings.TrimSpace(name[:len(name)-1])
	}
	return name
}

// LoadTeams reads a team file, finds the catalogs next to it, validates both
// teams and builds them.
func LoadTeams(path string) (*Teams, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open team file: %w", err)
	}
	defer f.Close()

	tf, err := ParseTeamFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	cat, err := LoadCatalog(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return tf.Build(cat, path)
}

// Build validates and assembles both teams against cat.
func (tf *TeamFile) Build(cat *Catalog, source string) (*Teams, error) {
	t1, err1 := BuildTeam(cat, tf.Player1)
	t2, err2 := BuildTeam(cat, tf.Player2)
	if err := errors.Join(prefix("player 1", err1), prefix("player 2", err2)); err != nil {
		return nil, err
	}
	return &Teams{Player1: t1, Player2: t2, Source: source}, nil
}

// BuildTeam validates specs and resolves every unit and skill in cat.
// Unknown skills become placeholders; unknown units are errors.
func BuildTeam(cat *Catalog, specs []UnitSpec) (*battle.Team, error) {
	if err := Validate(specs); err != nil {
		return nil, err
	}

	var units []*battle.Unit
	var errs []error
	for _, s := range specs {
		u, err := cat.NewUnit(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		units = append(units, u)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return battle.NewTeam(units...), nil
}

func prefix(label string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", label, err)
}
