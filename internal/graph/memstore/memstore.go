// Package memstore is an in-process graph.Writer. It keeps the same merge and
// create semantics as the database backends and is used for dry runs and
// tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
)

const backendName = "memory"

// ErrClosed is returned by Apply after Close.
var ErrClosed = errors.New("store closed")

// Node is a stored node. Key is the identifying property (name, game number
// or play id); ID is assigned by the store.
type Node struct {
	ID    int
	Label string
	Key   string
	Props map[string]any
}

// Edge is a stored relationship between two node IDs.
type Edge struct {
	Type  string
	From  int
	To    int
	Props map[string]any
}

type nodeRef struct{ label, key string }

type edgeRef struct {
	typ      string
	from, to int
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	nodes   []Node
	byKey   map[nodeRef]int
	edges   []Edge
	merged  map[edgeRef]bool
	writes  int
	closed  bool
	failure func(graph.Mutation) error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		byKey:  make(map[nodeRef]int),
		merged: make(map[edgeRef]bool),
	}
}

// FailWith makes Apply return the error fn produces for a mutation, without
// touching the graph. A nil fn clears it.
func (s *Store) FailWith(fn func(graph.Mutation) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = fn
}

// Apply implements graph.Writer.
func (s *Store) Apply(ctx context.Context, m graph.Mutation) error {
	if err := ctx.Err(); err != nil {
		return graph.WrapError(backendName, m, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return graph.WrapError(backendName, m, ErrClosed)
	}
	if s.failure != nil {
		if err := s.failure(m); err != nil {
			return graph.WrapError(backendName, m, err)
		}
	}

	var err error
	switch mut := m.(type) {
	case graph.MergeMembership:
		s.applyMembership(mut)
	case graph.CreateGame:
		err = s.applyGame(mut)
	default:
		err = graph.UnsupportedMutation(m)
	}
	if err != nil {
		return graph.WrapError(backendName, m, err)
	}
	s.writes++
	return nil
}

// Close implements graph.Writer.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) applyMembership(m graph.MergeMembership) {
	league := s.mergeNode(graph.LabelLeague, m.League, map[string]any{"name": m.League})
	team := s.mergeNode(graph.LabelTeam, m.Team, map[string]any{"name": m.Team})
	player := s.mergeNode(graph.LabelPlayer, m.Player, map[string]any{"name": m.Player})
	s.mergeEdge(graph.RelParticipatesIn, team, league)
	s.mergeEdge(graph.RelBelongsTo, player, team)
}

func (s *Store) applyGame(m graph.CreateGame) error {
	// Resolve every referenced node first so a bad mutation changes nothing.
	teamA, ok := s.byKey[nodeRef{graph.LabelTeam, m.Fixture.TeamA}]
	if !ok {
		return fmt.Errorf("team %q not found", m.Fixture.TeamA)
	}
	teamB, ok := s.byKey[nodeRef{graph.LabelTeam, m.Fixture.TeamB}]
	if !ok {
		return fmt.Errorf("team %q not found", m.Fixture.TeamB)
	}
	for _, p := range m.Plays {
		if _, ok := s.byKey[nodeRef{graph.LabelTeam, p.Team}]; !ok {
			return fmt.Errorf("play %s: team %q not found", p.ID, p.Team)
		}
		for _, ps := range p.Passes {
			if _, ok := s.byKey[nodeRef{graph.LabelPlayer, ps.Player}]; !ok {
				return fmt.Errorf("play %s: player %q not found", p.ID, ps.Player)
			}
		}
		if p.Scorer != "" {
			if _, ok := s.byKey[nodeRef{graph.LabelPlayer, p.Scorer}]; !ok {
				return fmt.Errorf("play %s: scorer %q not found", p.ID, p.Scorer)
			}
		}
	}

	num := m.Fixture.Number
	game := s.mergeNode(graph.LabelGame, strconv.Itoa(num), map[string]any{"number": num})
	s.mergeEdge(graph.RelPlaysIn, teamA, game)
	s.mergeEdge(graph.RelPlaysIn, teamB, game)

	for _, p := range m.Plays {
		team := s.byKey[nodeRef{graph.LabelTeam, p.Team}]
		pl := s.createNode(graph.LabelPlay, p.ID, map[string]any{
			"number": p.ID,
			"team":   p.Team,
			"result": string(p.Result),
		})
		s.mergeEdge(graph.RelBelongsToGame, pl, game)
		s.mergeEdge(graph.RelMadeBy, pl, team)
		for _, ps := range p.Passes {
			passer := s.byKey[nodeRef{graph.LabelPlayer, ps.Player}]
			s.createEdge(graph.RelMakesPass, passer, pl, map[string]any{"order": ps.Order})
		}
		if p.Scorer != "" {
			scorer := s.byKey[nodeRef{graph.LabelPlayer, p.Scorer}]
			s.createEdge(graph.RelScoresGoal, scorer, pl, nil)
		}
	}
	return nil
}

func (s *Store) mergeNode(label, key string, props map[string]any) int {
	ref := nodeRef{label, key}
	if id, ok := s.byKey[ref]; ok {
		return id
	}
	id := s.createNode(label, key, props)
	s.byKey[ref] = id
	return id
}

// createNode always adds a node. Created nodes are not indexed by key, so a
// repeated play id yields two nodes, as a Cypher CREATE would.
func (s *Store) createNode(label, key string, props map[string]any) int {
	id := len(s.nodes)
	s.nodes = append(s.nodes, Node{ID: id, Label: label, Key: key, Props: props})
	return id
}

func (s *Store) mergeEdge(typ string, from, to int) {
	ref := edgeRef{typ, from, to}
	if s.merged[ref] {
		return
	}
	s.merged[ref] = true
	s.createEdge(typ, from, to, nil)
}

func (s *Store) createEdge(typ string, from, to int, props map[string]any) {
	s.edges = append(s.edges, Edge{Type: typ, From: from, To: to, Props: props})
}
