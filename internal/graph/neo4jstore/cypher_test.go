package neo4jstore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/play"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

func TestMembershipParams(t *testing.T) {
	got := membershipParams(graph.NewMembership("Ana", "Rayo"))
	assert.Equal(t, map[string]any{"league": "Mini Liga", "team": "Rayo", "player": "Ana"}, got)
}

func TestGameParams(t *testing.T) {
	got := gameParams(graph.CreateGame{Fixture: schedule.Fixture{TeamA: "A", TeamB: "B", Number: 3}})
	assert.Equal(t, map[string]any{"teamA": "A", "teamB": "B", "number": int64(3)}, got)
}

func TestPlayParamsFlagsOnlyTheScorer(t *testing.T) {
	p := play.Play{
		ID: "3-A-11", Game: 3, Team: "A", Result: play.Goal, Scorer: "D",
		Passes: []play.Pass{{Player: "A1", Order: 1}, {Player: "B", Order: 2}, {Player: "C", Order: 3}, {Player: "D", Order: 4}},
	}

	got := playParams(3, p)
	assert.Equal(t, int64(3), got["game"])
	assert.Equal(t, "3-A-11", got["id"])
	assert.Equal(t, "Goal", got["result"])

	passes := got["passes"].([]any)
	assert.Len(t, passes, 4)
	for i, raw := range passes {
		pass := raw.(map[string]any)
		assert.Equal(t, int64(i+1), pass["order"])
		assert.Equal(t, i == 3, pass["scores"], "pass %d", i+1)
	}
}

func TestPlayParamsNoGoal(t *testing.T) {
	p := play.Play{
		ID: "1-A-2", Team: "A", Result: play.NoGoal,
		Passes: []play.Pass{{Player: "A1", Order: 1}, {Player: "B", Order: 2}, {Player: "C", Order: 3}},
	}
	for _, raw := range playParams(1, p)["passes"].([]any) {
		assert.Equal(t, false, raw.(map[string]any)["scores"])
	}
}
