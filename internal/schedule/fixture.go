// Package schedule pairs teams into numbered fixtures under a per-team game
// cap without repeating a pairing.
package schedule

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	DefaultTargetGames     = 6
	DefaultMaxGamesPerTeam = 2
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Fixture is one scheduled game between two teams. Number starts at 1.
type Fixture struct {
	TeamA  string
	TeamB  string
	Number int
}

func (f Fixture) String() string {
	return fmt.Sprintf("game %d: %s vs %s", f.Number, f.TeamA, f.TeamB)
}

// Options bounds the schedule. Zero values take the defaults.
type Options struct {
	TargetGames     int
	MaxGamesPerTeam int
}

func (o Options) withDefaults() Options {
	if o.TargetGames <= 0 {
		o.TargetGames = DefaultTargetGames
	}
	if o.MaxGamesPerTeam <= 0 {
		o.MaxGamesPerTeam = DefaultMaxGamesPerTeam
	}
	return o
}

// StopReason says why a generator stopped producing fixtures.
type StopReason int

const (
	// StopNone means the generator can still produce fixtures.
	StopNone StopReason = iota
	StopTargetReached
	// StopTooFewTeams means fewer than two teams remain below the cap.
	StopTooFewTeams
	// StopPairsExhausted means at least two teams remain below the cap but
	// every pairing among them has already been played.
	StopPairsExhausted
)

func (r StopReason) String() string {
	switch r {
	case StopNone:
		return "none"
	case StopTargetReached:
		return "target_reached"
	case StopTooFewTeams:
		return "too_few_teams"
	case StopPairsExhausted:
		return "pairs_exhausted"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// Starved reports whether the schedule ended before reaching its target.
func (r StopReason) Starved() bool {
	return r == StopTooFewTeams || r == StopPairsExhausted
}

// Result is a complete schedule.
type Result struct {
	Fixtures []Fixture
	Target   int
	Stop     StopReason
}

// Starved reports whether fewer than Target fixtures were produced.
func (r *Result) Starved() bool {
	return r.Stop.Starved()
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	parts := make([]string, len(r.Fixtures))
	for i, f := range r.Fixtures {
		parts[i] = fmt.Sprintf("%d:%s-%s", f.Number, f.TeamA, f.TeamB)
	}
	return fmt.Sprintf("games=%d target=%d stop=%s fixtures=[%s]",
		len(r.Fixtures), r.Target, r.Stop, strings.Join(parts, " "))
}
