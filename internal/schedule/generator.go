package schedule

import "math/rand/v2"

type pair struct{ a, b string }

func newPair(x, y string) pair {
	if x > y {
		x, y = y, x
	}
	return pair{x, y}
}

// Generator draws fixtures one at a time so the caller can persist each game
// before the next is scheduled. It is not safe for concurrent use.
type Generator struct {
	teams  []string
	opts   Options
	rng    *rand.Rand
	counts map[string]int
	played map[pair]bool
	next   int
	stop   StopReason
}

// NewGenerator returns a generator over the given teams. Duplicate team
// names are ignored.
func NewGenerator(teams []string, opts Options, rng *rand.Rand) *Generator {
	g := &Generator{
		opts:   opts.withDefaults(),
		rng:    rng,
		counts: make(map[string]int, len(teams)),
		played: make(map[pair]bool),
		next:   1,
	}
	for _, t := range teams {
		if _, ok := g.counts[t]; ok {
			continue
		}
		g.counts[t] = 0
		g.teams = append(g.teams, t)
	}
	return g
}

// Next returns the next fixture. ok is false once the target is reached or no
// legal pairing remains; Stop then says which.
func (g *Generator) Next() (f Fixture, ok bool) {
	if g.stop != StopNone {
		return Fixture{}, false
	}
	if g.next > g.opts.TargetGames {
		g.stop = StopTargetReached
		return Fixture{}, false
	}

	var available []string
	for _, t := range g.teams {
		if g.counts[t] < g.opts.MaxGamesPerTeam {
			available = append(available, t)
		}
	}
	if len(available) < 2 {
		g.stop = StopTooFewTeams
		return Fixture{}, false
	}

	// Enumerate every unplayed pairing among the available teams and pick one,
	// so a draw can never be rejected.
	var legal [][2]string
	for i := 0; i < len(available); i++ {
		for j := i + 1; j < len(available); j++ {
			if !g.played[newPair(available[i], available[j])] {
				legal = append(legal, [2]string{available[i], available[j]})
			}
		}
	}
	if len(legal) == 0 {
		g.stop = StopPairsExhausted
		return Fixture{}, false
	}

	pick := legal[g.rng.IntN(len(legal))]
	a, b := pick[0], pick[1]
	if g.rng.IntN(2) == 1 {
		a, b = b, a
	}

	g.played[newPair(a, b)] = true
	g.counts[a]++
	g.counts[b]++
	f = Fixture{TeamA: a, TeamB: b, Number: g.next}
	g.next++
	return f, true
}

// Stop returns why the generator stopped, or StopNone while it can continue.
func (g *Generator) Stop() StopReason {
	return g.stop
}

// Games returns the number of games scheduled for team so far.
func (g *Generator) Games(team string) int {
	return g.counts[team]
}

// Generate runs a generator to completion.
func Generate(teams []string, opts Options, rng *rand.Rand) Result {
	g := NewGenerator(teams, opts, rng)
	res := Result{Target: g.opts.TargetGames}
	for {
		f, ok := g.Next()
		if !ok {
			break
		}
		res.Fixtures = append(res.Fixtures, f)
	}
	res.Stop = g.Stop()
	return res
}
