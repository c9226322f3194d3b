package play

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

// Roster supplies the distinct players of a team.
type Roster interface {
	Players(team string) []string
}

// Generator builds plays from a team's roster. Every random choice comes
// from rng, so a seeded generator reproduces the same plays.
type Generator struct {
	// MaxPlays caps the plays per team per game.
	MaxPlays int
	// GoalProbability is the chance a play ends in a goal.
	GoalProbability float64
	// IDSpace bounds the random suffix of play IDs.
	IDSpace int

	rng *rand.Rand
}

// NewGenerator returns a generator with the default caps.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{
		MaxPlays:        DefaultMaxPlays,
		GoalProbability: DefaultGoalProbability,
		IDSpace:         DefaultIDSpace,
		rng:             rng,
	}
}

// ForFixture builds both teams' plays for a fixture. The teams are handled
// independently: a short roster on one side does not affect the other.
func (g *Generator) ForFixture(f schedule.Fixture, roster Roster) GamePlays {
	gp := GamePlays{Game: f.Number}
	for i, team := range [2]string{f.TeamA, f.TeamB} {
		players := roster.Players(team)
		gp.Teams[i] = TeamPlays{
			Team:    team,
			Plays:   g.ForTeam(f.Number, team, players),
			Skipped: len(players) < PlayersPerPlay,
		}
	}
	return gp
}

// ForTeam builds up to MaxPlays plays for team. Each play draws an ordered
// selection of four distinct players; no selection is used twice in the
// same game. Teams with fewer than four players get no plays.
func (g *Generator) ForTeam(game int, team string, players []string) []Play {
	n := len(players)
	if n < PlayersPerPlay || g.MaxPlays <= 0 {
		return nil
	}

	space := permutations(n, PlayersPerPlay)
	k := int64(g.MaxPlays)
	if k > space {
		k = space
	}

	picks := sampleIndices(g.rng, space, int(k))
	plays := make([]Play, 0, len(picks))
	for _, idx := range picks {
		sel := decodeSelection(players, idx, PlayersPerPlay)
		plays = append(plays, g.build(game, team, sel))
	}
	return plays
}

func (g *Generator) build(game int, team string, sel []string) Play {
	result := NoGoal
	if g.rng.Float64() < g.GoalProbability {
		result = Goal
	}

	idSpace := g.IDSpace
	if idSpace <= 0 {
		idSpace = DefaultIDSpace
	}

	p := Play{
		ID:     fmt.Sprintf("%d-%s-%d", game, team, g.rng.IntN(idSpace)),
		Game:   game,
		Team:   team,
		Result: result,
	}

	passers := PlayersPerPlay - 1
	if result == Goal {
		passers = PlayersPerPlay
		p.Scorer = sel[PlayersPerPlay-1]
	}
	p.Passes = make([]Pass, passers)
	for i := 0; i < passers; i++ {
		p.Passes[i] = Pass{Player: sel[i], Order: i + 1}
	}
	return p
}

// --------------------------------------------------------------------------
// Selection helpers
// --------------------------------------------------------------------------

// permutations returns n!/(n-k)!, saturating at math.MaxInt64.
func permutations(n, k int) int64 {
	total := int64(1)
	for i := 0; i < k; i++ {
		f := int64(n - i)
		if f <= 0 {
			return 0
		}
		if total > math.MaxInt64/f {
			return math.MaxInt64
		}
		total *= f
	}
	return total
}

// sampleIndices draws k distinct integers from [0, n) using Floyd's
// algorithm: exactly k draws, no rejection.
func sampleIndices(rng *rand.Rand, n int64, k int) []int64 {
	out := make([]int64, 0, k)
	chosen := make(map[int64]bool, k)
	for j := n - int64(k); j < n; j++ {
		t := rng.Int64N(j + 1)
		if chosen[t] {
			t = j
		}
		chosen[t] = true
		out = append(out, t)
	}
	return out
}

// decodeSelection maps idx in [0, n!/(n-k)!) to an ordered selection of k
// distinct players. The mapping is a bijection, so distinct indices give
// distinct selections.
func decodeSelection(players []string, idx int64, k int) []string {
	pool := make([]string, len(players))
	copy(pool, players)
	sel := make([]string, 0, k)
	for i := 0; i < k; i++ {
		r := int64(len(pool))
		d := idx % r
		idx /= r
		sel = append(sel, pool[d])
		pool = append(pool[:d], pool[d+1:]...)
	}
	return sel
}
