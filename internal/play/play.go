// Package play generates the possessions ("plays") each team makes in a
// game: a chain of three passes, extended by a fourth pass and a goal when
// the play ends in a score.
package play

import "fmt"

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// PlayersPerPlay is the number of distinct players a play draws on. The
	// last one only touches the ball when the play ends in a goal.
	PlayersPerPlay = 4

	DefaultMaxPlays        = 3
	DefaultGoalProbability = 0.5
	DefaultIDSpace         = 1_000_000
)

// Result is the outcome of a play.
type Result string

const (
	Goal   Result = "Goal"
	NoGoal Result = "NoGoal"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Pass is one player's touch in a play. Order is 1-based.
type Pass struct {
	Player string
	Order  int
}

// Play is a single possession by Team in game Game.
type Play struct {
	ID     string
	Game   int
	Team   string
	Result Result
	Passes []Pass
	// Scorer is set only when Result is Goal; it is always the passer with
	// order 4.
	Scorer string
}

// IsGoal reports whether the play ended in a goal.
func (p Play) IsGoal() bool {
	return p.Result == Goal
}

// Validate checks the pass/goal shape: passes 1..3 always, pass 4 and a
// scorer exactly when the result is Goal, and no player passing twice.
func (p Play) Validate() error {
	want := 3
	if p.IsGoal() {
		want = 4
	}
	if len(p.Passes) != want {
		return fmt.Errorf("play %s: %s result needs %d passes, has %d", p.ID, p.Result, want, len(p.Passes))
	}
	seen := make(map[string]bool, len(p.Passes))
	for i, ps := range p.Passes {
		if ps.Order != i+1 {
			return fmt.Errorf("play %s: pass %d has order %d", p.ID, i+1, ps.Order)
		}
		if seen[ps.Player] {
			return fmt.Errorf("play %s: player %q passes twice", p.ID, ps.Player)
		}
		seen[ps.Player] = true
	}
	switch {
	case p.IsGoal() && p.Scorer != p.Passes[3].Player:
		return fmt.Errorf("play %s: scorer %q is not the fourth passer", p.ID, p.Scorer)
	case !p.IsGoal() && p.Scorer != "":
		return fmt.Errorf("play %s: scorer set on a %s play", p.ID, p.Result)
	}
	return nil
}

// TeamPlays holds one team's plays in a game. Skipped is set when the team
// had too few players for any play.
type TeamPlays struct {
	Team    string
	Plays   []Play
	Skipped bool
}

// GamePlays holds both teams' plays for one fixture.
type GamePlays struct {
	Game  int
	Teams [2]TeamPlays
}

// All returns both teams' plays, first team first.
func (g GamePlays) All() []Play {
	out := make([]Play, 0, len(g.Teams[0].Plays)+len(g.Teams[1].Plays))
	out = append(out, g.Teams[0].Plays...)
	return append(out, g.Teams[1].Plays...)
}

// Validate checks every play of both teams and that each belongs to this
// game and its team.
func (g GamePlays) Validate() error {
	for _, t := range g.Teams {
		for _, p := range t.Plays {
			if p.Game != g.Game || p.Team != t.Team {
				return fmt.Errorf("play %s: recorded for game %d team %q, expected game %d team %q",
					p.ID, p.Game, p.Team, g.Game, t.Team)
			}
			if err := p.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Goals counts goal plays across both teams.
func (g GamePlays) Goals() int {
	n := 0
	for _, t := range g.Teams {
		for _, p := range t.Plays {
			if p.IsGoal() {
				n++
			}
		}
	}
	return n
}
