package roster

import (
	"fmt"
	"os"

	"github.com/peterkuimelis/smtx/internal/battle"
	"gopkg.in/yaml.v3"
)

// RosterFile represents the top-level YAML structure.
type RosterFile struct {
	Rosters []RosterEntry `yaml:"rosters"`
}

// RosterEntry represents a single named team in the YAML file.
type RosterEntry struct {
	Name  string     `yaml:"name"`
	Units []UnitSpec `yaml:"units"`
}

// ParseRosters decodes YAML roster data.
func ParseRosters(data []byte) (*RosterFile, error) {
	var rf RosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster YAML: %w", err)
	}
	for i := range rf.Rosters {
		for j := range rf.Rosters[i].Units {
			u := &rf.Rosters[i].Units[j]
			u.Name = NormalizeName(u.Name)
		}
	}
	return &rf, nil
}

// ParseRosterFile reads and decodes a YAML roster file.
func ParseRosterFile(path string) (*RosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRosters(data)
}

// RosterByNumber builds the Nth roster (1-indexed) from the file against cat.
func RosterByNumber(path string, n int, cat *Catalog) (string, *battle.Team, error) {
	rf, err := ParseRosterFile(path)
	if err != nil {
		return "", nil, err
	}
	if n < 1 || n > len(rf.Rosters) {
		return "", nil, fmt.Errorf("roster %d not found (have %d rosters)", n, len(rf.Rosters))
	}

	entry := rf.Rosters[n-1]
	team, err := BuildTeam(cat, entry.Units)
	if err != nil {
		return "", nil, fmt.Errorf("roster %q: %w", entry.Name, err)
	}
	return entry.Name, team, nil
}
