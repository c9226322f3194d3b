package play

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/roster"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func testRoster() *roster.Index {
	return roster.NewIndex([]roster.Row{
		{Player: "A", Team: "T1"}, {Player: "B", Team: "T1"},
		{Player: "C", Team: "T1"}, {Player: "D", Team: "T1"},
		{Player: "E", Team: "T2"}, {Player: "F", Team: "T2"},
		{Player: "G", Team: "T2"}, {Player: "H", Team: "T2"},
		{Player: "X", Team: "T3"}, {Player: "Y", Team: "T3"},
		{Player: "Z", Team: "T3"},
	})
}

func selectionKey(p Play) string {
	names := make([]string, 0, len(p.Passes))
	for _, ps := range p.Passes {
		names = append(names, ps.Player)
	}
	return strings.Join(names, ",")
}

func TestForFixtureFourPlayerTeams(t *testing.T) {
	idx := testRoster()
	for seed := uint64(0); seed < 100; seed++ {
		g := NewGenerator(newRand(seed))
		gp := g.ForFixture(schedule.Fixture{TeamA: "T1", TeamB: "T2", Number: 1}, idx)

		assert.Equal(t, 1, gp.Game)
		for i, team := range []string{"T1", "T2"} {
			tp := gp.Teams[i]
			assert.Equal(t, team, tp.Team)
			assert.False(t, tp.Skipped)
			require.Len(t, tp.Plays, DefaultMaxPlays)

			members := map[string]bool{}
			for _, p := range idx.Players(team) {
				members[p] = true
			}
			for _, p := range tp.Plays {
				require.NoError(t, p.Validate())
				assert.Equal(t, team, p.Team)
				assert.Equal(t, 1, p.Game)
				assert.True(t, strings.HasPrefix(p.ID, "1-"+team+"-"), p.ID)
				for _, ps := range p.Passes {
					assert.True(t, members[ps.Player], "%s is not on %s", ps.Player, team)
				}
			}
		}
		assert.Len(t, gp.All(), 2*DefaultMaxPlays)
	}
}

func TestForFixtureShortRosterSkipsOnlyThatTeam(t *testing.T) {
	g := NewGenerator(newRand(7))
	gp := g.ForFixture(schedule.Fixture{TeamA: "T3", TeamB: "T1", Number: 4}, testRoster())

	assert.True(t, gp.Teams[0].Skipped)
	assert.Empty(t, gp.Teams[0].Plays)
	assert.False(t, gp.Teams[1].Skipped)
	assert.Len(t, gp.Teams[1].Plays, DefaultMaxPlays)
	assert.Len(t, gp.All(), DefaultMaxPlays)
}

func TestForTeamUnknownTeam(t *testing.T) {
	g := NewGenerator(newRand(1))
	assert.Empty(t, g.ForTeam(1, "nobody", nil))
}

func TestForTeamPassShape(t *testing.T) {
	players := []string{"A", "B", "C", "D", "E", "F"}
	var goals, misses int
	for seed := uint64(0); seed < 300; seed++ {
		g := NewGenerator(newRand(seed))
		for _, p := range g.ForTeam(2, "T", players) {
			require.NoError(t, p.Validate())
			orders := make([]int, len(p.Passes))
			for i, ps := range p.Passes {
				orders[i] = ps.Order
			}
			if p.IsGoal() {
				goals++
				assert.Equal(t, []int{1, 2, 3, 4}, orders)
				assert.Equal(t, p.Passes[3].Player, p.Scorer)
			} else {
				misses++
				assert.Equal(t, []int{1, 2, 3}, orders)
				assert.Empty(t, p.Scorer)
			}
		}
	}
	// 900 fair draws; both outcomes must show up in force.
	assert.Greater(t, goals, 300)
	assert.Greater(t, misses, 300)
}

func TestForTeamGoalProbabilityBounds(t *testing.T) {
	players := []string{"A", "B", "C", "D"}

	g := NewGenerator(newRand(3))
	g.GoalProbability = 1
	for _, p := range g.ForTeam(1, "T", players) {
		assert.Equal(t, Goal, p.Result)
	}

	g.GoalProbability = 0
	for _, p := range g.ForTeam(1, "T", players) {
		assert.Equal(t, NoGoal, p.Result)
	}
}

func TestForTeamSelectionsAreDistinct(t *testing.T) {
	players := []string{"A", "B", "C", "D"}
	for seed := uint64(0); seed < 200; seed++ {
		g := NewGenerator(newRand(seed))
		g.GoalProbability = 1
		seen := map[string]bool{}
		for _, p := range g.ForTeam(1, "T", players) {
			key := selectionKey(p)
			assert.False(t, seen[key], "selection %s reused", key)
			seen[key] = true
		}
	}
}

func TestForTeamMaxPlays(t *testing.T) {
	players := []string{"A", "B", "C", "D"}

	g := NewGenerator(newRand(5))
	g.MaxPlays = 0
	assert.Empty(t, g.ForTeam(1, "T", players))

	// Four players give 24 ordered selections; the cap never exceeds that.
	g.MaxPlays = 100
	assert.Len(t, g.ForTeam(1, "T", players), 24)
}

func TestForTeamIDSuffixRange(t *testing.T) {
	g := NewGenerator(newRand(8))
	g.IDSpace = 10
	for _, p := range g.ForTeam(3, "Rayo", []string{"A", "B", "C", "D", "E"}) {
		suffix := strings.TrimPrefix(p.ID, "3-Rayo-")
		require.Len(t, suffix, 1, p.ID)
	}
}

func TestDecodeSelectionIsBijective(t *testing.T) {
	players := []string{"A", "B", "C", "D", "E"}
	space := permutations(len(players), 4)
	require.Equal(t, int64(120), space)

	seen := map[string]bool{}
	for i := int64(0); i < space; i++ {
		sel := decodeSelection(players, i, 4)
		require.Len(t, sel, 4)
		uniq := map[string]bool{}
		for _, s := range sel {
			uniq[s] = true
		}
		require.Len(t, uniq, 4, "selection %v repeats a player", sel)
		key := strings.Join(sel, "")
		require.False(t, seen[key])
		seen[key] = true
	}
	// decodeSelection must not reorder the caller's slice.
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, players)
}

func TestSampleIndicesDistinct(t *testing.T) {
	rng := newRand(12)
	for k := 0; k <= 24; k++ {
		got := sampleIndices(rng, 24, k)
		require.Len(t, got, k)
		uniq := map[int64]bool{}
		for _, v := range got {
			assert.GreaterOrEqual(t, v, int64(0))
			assert.Less(t, v, int64(24))
			uniq[v] = true
		}
		assert.Len(t, uniq, k)
	}
}

func TestPermutationsSaturates(t *testing.T) {
	assert.Equal(t, int64(24), permutations(4, 4))
	assert.Equal(t, int64(0), permutations(3, 4))
	assert.Greater(t, permutations(1<<20, 4), int64(0))
}

func TestValidateRejectsBadShapes(t *testing.T) {
	base := Play{ID: "1-T-1", Result: NoGoal, Passes: []Pass{{"A", 1}, {"B", 2}, {"C", 3}}}
	require.NoError(t, base.Validate())

	goalWithoutFourth := base
	goalWithoutFourth.Result = Goal
	assert.Error(t, goalWithoutFourth.Validate())

	scorerOnMiss := base
	scorerOnMiss.Scorer = "A"
	assert.Error(t, scorerOnMiss.Validate())

	repeated := Play{ID: "x", Result: NoGoal, Passes: []Pass{{"A", 1}, {"A", 2}, {"C", 3}}}
	assert.Error(t, repeated.Validate())

	wrongScorer := Play{ID: "x", Result: Goal, Scorer: "A",
		Passes: []Pass{{"A", 1}, {"B", 2}, {"C", 3}, {"D", 4}}}
	assert.Error(t, wrongScorer.Validate())
}

func TestGamePlaysValidate(t *testing.T) {
	f := schedule.Fixture{TeamA: "T1", TeamB: "T2", Number: 4}
	gp := NewGenerator(newRand(8)).ForFixture(f, testRoster())
	require.NoError(t, gp.Validate())

	misfiled := gp
	misfiled.Teams[1].Plays = append([]Play(nil), gp.Teams[0].Plays...)
	assert.ErrorContains(t, misfiled.Validate(), `expected game 4 team "T2"`)

	broken := gp
	bad := gp.Teams[0].Plays[0]
	bad.Passes = bad.Passes[:2]
	broken.Teams[0].Plays = []Play{bad}
	assert.Error(t, broken.Validate())
}
