// Package roster reads player/team membership records and indexes them by
// team. The index is the only view of the roster the generators use.
package roster

import (
	"fmt"
	"log/slog"
)

// Row is one (player, team) membership record.
type Row struct {
	Player string
	Team   string
}

// Conflict is a player name claimed by more than one team. Players are keyed
// by name alone in the graph, so every team listed here shares one node.
type Conflict struct {
	Player string
	Teams  []string
}

// Index maps teams to their distinct players. Iteration follows first
// appearance in the input rows.
type Index struct {
	teams     []string
	players   map[string][]string
	seen      map[string]map[string]struct{}
	playerTms map[string][]string
}

// NewIndex builds an Index from roster rows. Repeated rows collapse.
func NewIndex(rows []Row) *Index {
	idx := &Index{
		players:   make(map[string][]string),
		seen:      make(map[string]map[string]struct{}),
		playerTms: make(map[string][]string),
	}
	for _, r := range rows {
		idx.add(r)
	}
	return idx
}

func (idx *Index) add(r Row) {
	members, ok := idx.seen[r.Team]
	if !ok {
		members = make(map[string]struct{})
		idx.seen[r.Team] = members
		idx.teams = append(idx.teams, r.Team)
	}
	if _, dup := members[r.Player]; dup {
		return
	}
	members[r.Player] = struct{}{}
	idx.players[r.Team] = append(idx.players[r.Team], r.Player)
	idx.playerTms[r.Player] = append(idx.playerTms[r.Player], r.Team)
}

// Teams returns the distinct team names.
func (idx *Index) Teams() []string {
	out := make([]string, len(idx.teams))
	copy(out, idx.teams)
	return out
}

// Players returns the distinct players of team, or nil for an unknown team.
func (idx *Index) Players(team string) []string {
	ps := idx.players[team]
	if ps == nil {
		return nil
	}
	out := make([]string, len(ps))
	copy(out, ps)
	return out
}

// Size returns the number of distinct players on team.
func (idx *Index) Size(team string) int {
	return len(idx.players[team])
}

// PlayerCount returns the number of distinct player names across all teams.
func (idx *Index) PlayerCount() int {
	return len(idx.playerTms)
}

// Conflicts lists player names that appear under more than one team, in
// first-appearance order.
func (idx *Index) Conflicts() []Conflict {
	var out []Conflict
	reported := make(map[string]bool)
	for _, team := range idx.teams {
		for _, p := range idx.players[team] {
			tms := idx.playerTms[p]
			if len(tms) < 2 || reported[p] {
				continue
			}
			reported[p] = true
			out = append(out, Conflict{Player: p, Teams: append([]string(nil), tms...)})
		}
	}
	return out
}

// LogConflicts reports shared player names at warn level.
func (idx *Index) LogConflicts(logger *slog.Logger) {
	for _, c := range idx.Conflicts() {
		logger.Warn("Player name shared across teams; merged into one node",
			"player", c.Player, "teams", fmt.Sprint(c.Teams))
	}
}
