package web

import (
	"github.com/peterkuimelis/smtx/internal/roster"
)

// RosterInfo is the JSON representation of a roster for the /api/rosters endpoint.
type RosterInfo struct {
	Number  int      `json:"number"`
	Name    string   `json:"name"`
	Samurai string   `json:"samurai,omitempty"`
	Units   []string `json:"units"`
}

func rosterInfos(data []byte) ([]RosterInfo, error) {
	rf, err := roster.ParseRosters(data)
	if err != nil {
		return nil, err
	}
	infos := make([]RosterInfo, 0, len(rf.Rosters))
	for i, r := range rf.Rosters {
		ri := RosterInfo{Number: i + 1, Name: r.Name, Units: []string{}}
		for _, u := range r.Units {
			if u.Samurai && ri.Samurai == "" {
				ri.Samurai = u.Name
			}
			ri.Units = append(ri.Units, u.Name)
		}
		infos = append(infos, ri)
	}
	return infos, nil
}
