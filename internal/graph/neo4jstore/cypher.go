package neo4jstore

import (
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/play"
)

// --------------------------------------------------------------------------
// Statements
// --------------------------------------------------------------------------

const mergeMembershipCypher = `
MERGE (l:League {name: $league})
MERGE (t:Team {name: $team})
MERGE (p:Player {name: $player})
MERGE (t)-[:PARTICIPATES_IN]->(l)
MERGE (p)-[:BELONGS_TO]->(t)`

// mergeGameCypher returns no row when either team is missing, which the
// caller turns into an error so the transaction rolls back.
const mergeGameCypher = `
MATCH (t1:Team {name: $teamA})
MATCH (t2:Team {name: $teamB})
MERGE (g:Game {number: $number})
MERGE (t1)-[:PLAYS_IN]->(g)
MERGE (t2)-[:PLAYS_IN]->(g)
RETURN g.number AS number`

// createPlayCypher creates one play and its passes. The passer flagged with
// scores also gets the SCORES_GOAL relationship. The returned count equals
// the number of passes written.
const createPlayCypher = `
MATCH (g:Game {number: $game})
MATCH (t:Team {name: $team})
CREATE (play:Play {number: $id, team: $team, result: $result})
MERGE (play)-[:BELONGS_TO_GAME]->(g)
MERGE (play)-[:MADE_BY]->(t)
WITH play
UNWIND $passes AS pass
MATCH (p:Player {name: pass.player})
CREATE (p)-[:MAKES_PASS {order: pass.order}]->(play)
FOREACH (_ IN CASE WHEN pass.scores THEN [1] ELSE [] END |
  CREATE (p)-[:SCORES_GOAL]->(play))
RETURN count(*) AS passes`

// --------------------------------------------------------------------------
// Parameters
// --------------------------------------------------------------------------

func membershipParams(m graph.MergeMembership) map[string]any {
	return map[string]any{
		"league": m.League,
		"team":   m.Team,
		"player": m.Player,
	}
}

func gameParams(m graph.CreateGame) map[string]any {
	return map[string]any{
		"teamA":  m.Fixture.TeamA,
		"teamB":  m.Fixture.TeamB,
		"number": int64(m.Fixture.Number),
	}
}

func playParams(game int, p play.Play) map[string]any {
	passes := make([]any, len(p.Passes))
	for i, ps := range p.Passes {
		passes[i] = map[string]any{
			"player": ps.Player,
			"order":  int64(ps.Order),
			"scores": p.Scorer != "" && ps.Player == p.Scorer,
		}
	}
	return map[string]any{
		"game":   int64(game),
		"team":   p.Team,
		"id":     p.ID,
		"result": string(p.Result),
		"passes": passes,
	}
}
