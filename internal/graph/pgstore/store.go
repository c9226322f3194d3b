// Package pgstore stores the dataset as a property graph in two Postgres
// tables (see schema.sql). Each mutation runs in one pgx transaction.
package pgstore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/config"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/db"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
)

const backendName = "postgres"

//go:embed schema.sql
var schemaSQL string

// querier is the subset of pgx.Tx the writes need.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a graph.Writer over a pgx pool.
type Store struct {
	pool   *db.Pool
	logger *slog.Logger
}

// schemaDB is what setup needs from the pool.
type schemaDB interface {
	querier
	HealthCheck(ctx context.Context) error
}

// New checks the database, creates the graph tables if needed, and returns a
// Store that owns pool.
func New(ctx context.Context, pool *db.Pool, logger *slog.Logger) (*Store, error) {
	if err := setup(ctx, pool); err != nil {
		return nil, err
	}
	logger.Info("Postgres graph tables ready", "nodes", config.NodesTable, "edges", config.EdgesTable)
	return &Store{pool: pool, logger: logger}, nil
}

func setup(ctx context.Context, d schemaDB) error {
	if err := d.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}
	return EnsureSchema(ctx, d)
}

// EnsureSchema creates the node and edge tables when they do not exist.
func EnsureSchema(ctx context.Context, q querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create graph schema: %w", err)
	}
	return nil
}

// Apply implements graph.Writer.
func (s *Store) Apply(ctx context.Context, m graph.Mutation) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return apply(ctx, tx, m)
	})
	return graph.WrapError(backendName, m, err)
}

// Close closes the pool.
func (s *Store) Close(context.Context) error {
	s.logger.Debug("Closing Postgres pool")
	s.pool.Close()
	return nil
}

func apply(ctx context.Context, q querier, m graph.Mutation) error {
	switch mut := m.(type) {
	case graph.MergeMembership:
		return applyMembership(ctx, q, mut)
	case graph.CreateGame:
		return applyGame(ctx, q, mut)
	default:
		return graph.UnsupportedMutation(m)
	}
}

func applyMembership(ctx context.Context, q querier, m graph.MergeMembership) error {
	league, err := mergeNode(ctx, q, graph.LabelLeague, m.League, map[string]any{"name": m.League})
	if err != nil {
		return err
	}
	team, err := mergeNode(ctx, q, graph.LabelTeam, m.Team, map[string]any{"name": m.Team})
	if err != nil {
		return err
	}
	player, err := mergeNode(ctx, q, graph.LabelPlayer, m.Player, map[string]any{"name": m.Player})
	if err != nil {
		return err
	}
	if err := mergeEdge(ctx, q, graph.RelParticipatesIn, team, league); err != nil {
		return err
	}
	return mergeEdge(ctx, q, graph.RelBelongsTo, player, team)
}

func applyGame(ctx context.Context, q querier, m graph.CreateGame) error {
	teamA, err := lookupNode(ctx, q, graph.LabelTeam, m.Fixture.TeamA)
	if err != nil {
		return err
	}
	teamB, err := lookupNode(ctx, q, graph.LabelTeam, m.Fixture.TeamB)
	if err != nil {
		return err
	}

	num := m.Fixture.Number
	game, err := mergeNode(ctx, q, graph.LabelGame, strconv.Itoa(num), map[string]any{"number": num})
	if err != nil {
		return err
	}
	if err := mergeEdge(ctx, q, graph.RelPlaysIn, teamA, game); err != nil {
		return err
	}
	if err := mergeEdge(ctx, q, graph.RelPlaysIn, teamB, game); err != nil {
		return err
	}

	teams := map[string]int64{m.Fixture.TeamA: teamA, m.Fixture.TeamB: teamB}
	players := make(map[string]int64)
	for _, p := range m.Plays {
		team, ok := teams[p.Team]
		if !ok {
			if team, err = lookupNode(ctx, q, graph.LabelTeam, p.Team); err != nil {
				return err
			}
			teams[p.Team] = team
		}

		node, err := createNode(ctx, q, graph.LabelPlay, p.ID, map[string]any{
			"number": p.ID,
			"team":   p.Team,
			"result": string(p.Result),
		})
		if err != nil {
			return fmt.Errorf("play %s: %w", p.ID, err)
		}
		if err := mergeEdge(ctx, q, graph.RelBelongsToGame, node, game); err != nil {
			return err
		}
		if err := mergeEdge(ctx, q, graph.RelMadeBy, node, team); err != nil {
			return err
		}

		for _, ps := range p.Passes {
			passer, ok := players[ps.Player]
			if !ok {
				if passer, err = lookupNode(ctx, q, graph.LabelPlayer, ps.Player); err != nil {
					return fmt.Errorf("play %s: %w", p.ID, err)
				}
				players[ps.Player] = passer
			}
			if err := createEdge(ctx, q, graph.RelMakesPass, passer, node, map[string]any{"order": ps.Order}); err != nil {
				return err
			}
			if ps.Player == p.Scorer {
				if err := createEdge(ctx, q, graph.RelScoresGoal, passer, node, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Statements
// --------------------------------------------------------------------------

func mergeNode(ctx context.Context, q querier, label, key string, props map[string]any) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO `+config.NodesTable+` (label, key, props, merged)
		VALUES ($1, $2, $3, true)
		ON CONFLICT (label, key) WHERE merged DO UPDATE SET
			props = `+config.NodesTable+`.props
		RETURNING id`,
		label, key, marshalProps(props),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("merge %s %q: %w", label, key, err)
	}
	return id, nil
}

func createNode(ctx context.Context, q querier, label, key string, props map[string]any) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		INSERT INTO `+config.NodesTable+` (label, key, props, merged)
		VALUES ($1, $2, $3, false)
		RETURNING id`,
		label, key, marshalProps(props),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create %s %q: %w", label, key, err)
	}
	return id, nil
}

func lookupNode(ctx context.Context, q querier, label, key string) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, `
		SELECT id FROM `+config.NodesTable+`
		WHERE label = $1 AND key = $2 AND merged`,
		label, key,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%s %q not found", label, key)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup %s %q: %w", label, key, err)
	}
	return id, nil
}

func mergeEdge(ctx context.Context, q querier, typ string, from, to int64) error {
	_, err := q.Exec(ctx, `
		INSERT INTO `+config.EdgesTable+` (type, from_id, to_id, props, merged)
		VALUES ($1, $2, $3, '{}', true)
		ON CONFLICT (type, from_id, to_id) WHERE merged DO NOTHING`,
		typ, from, to,
	)
	if err != nil {
		return fmt.Errorf("merge %s %d->%d: %w", typ, from, to, err)
	}
	return nil
}

func createEdge(ctx context.Context, q querier, typ string, from, to int64, props map[string]any) error {
	_, err := q.Exec(ctx, `
		INSERT INTO `+config.EdgesTable+` (type, from_id, to_id, props, merged)
		VALUES ($1, $2, $3, $4, false)`,
		typ, from, to, marshalProps(props),
	)
	if err != nil {
		return fmt.Errorf("create %s %d->%d: %w", typ, from, to, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// marshalProps encodes props for a JSONB column; nil becomes {}.
func marshalProps(props map[string]any) []byte {
	if props == nil {
		return []byte("{}")
	}
	b, _ := json.Marshal(props)
	return b
}
