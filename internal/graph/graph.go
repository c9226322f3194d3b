// Package graph defines the property-graph writes the generators produce and
// the Writer interface the storage backends implement.
//
// Node labels, relationship types and key properties are shared by every
// backend so the same dataset looks identical regardless of where it lands.
package graph

import (
	"context"
	"fmt"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/play"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

// LeagueName is the single league every team participates in.
const LeagueName = "Mini Liga"

// Node labels.
const (
	LabelLeague = "League"
	LabelTeam   = "Team"
	LabelPlayer = "Player"
	LabelGame   = "Game"
	LabelPlay   = "Play"
)

// Relationship types.
const (
	RelParticipatesIn = "PARTICIPATES_IN" // Team -> League
	RelBelongsTo      = "BELONGS_TO"      // Player -> Team
	RelPlaysIn        = "PLAYS_IN"        // Team -> Game
	RelBelongsToGame  = "BELONGS_TO_GAME" // Play -> Game
	RelMadeBy         = "MADE_BY"         // Play -> Team
	RelMakesPass      = "MAKES_PASS"      // Player -> Play {order}
	RelScoresGoal     = "SCORES_GOAL"     // Player -> Play
)

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// Mutation is one atomic unit of work against the graph.
type Mutation interface {
	Kind() string
}

// MergeMembership upserts the league, team and player and links them.
// Applying it twice leaves the graph unchanged.
type MergeMembership struct {
	League string
	Team   string
	Player string
}

func (MergeMembership) Kind() string { return "merge_membership" }

// CreateGame upserts the game node and both PLAYS_IN links, then creates
// every play with its pass and goal relationships. The play half is not
// idempotent: applying the same mutation twice creates a second set of plays.
type CreateGame struct {
	Fixture schedule.Fixture
	Plays   []play.Play
}

func (CreateGame) Kind() string { return "create_game" }

// NewMembership returns the membership mutation for one roster row.
func NewMembership(player, team string) MergeMembership {
	return MergeMembership{League: LeagueName, Team: team, Player: player}
}

// NewGame returns the mutation writing a fixture and its plays.
func NewGame(f schedule.Fixture, gp play.GamePlays) CreateGame {
	return CreateGame{Fixture: f, Plays: gp.All()}
}

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

// Writer applies mutations, each as a single all-or-nothing transaction.
type Writer interface {
	Apply(ctx context.Context, m Mutation) error
	Close(ctx context.Context) error
}

// WriteError wraps any backend failure. It is never retried by callers.
type WriteError struct {
	Backend string
	Kind    string
	Err     error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s write %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WrapError returns err as a *WriteError, or nil when err is nil.
func WrapError(backend string, m Mutation, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Backend: backend, Kind: m.Kind(), Err: err}
}

// UnsupportedMutation is returned by backends for mutation types they do not
// know.
func UnsupportedMutation(m Mutation) error {
	return fmt.Errorf("unsupported mutation %T", m)
}
