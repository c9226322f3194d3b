// Package neo4jstore writes the dataset to Neo4j. Each mutation runs inside
// one managed write transaction.
package neo4jstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
)

const backendName = "neo4j"

// Config holds the connection settings.
type Config struct {
	URI      string
	Username string
	Password string
	Database string // empty = server default
}

// Store is a graph.Writer backed by a single Neo4j session. It is meant for
// the sequential seeding run and is not safe for concurrent use.
type Store struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
	logger  *slog.Logger
}

// New connects to Neo4j and verifies connectivity.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: cfg.Database,
	})
	logger.Info("Connected to Neo4j", "uri", cfg.URI, "database", cfg.Database)
	return &Store{driver: driver, session: session, logger: logger}, nil
}

// Apply implements graph.Writer.
func (s *Store) Apply(ctx context.Context, m graph.Mutation) error {
	var work neo4j.ManagedTransactionWork
	switch mut := m.(type) {
	case graph.MergeMembership:
		work = func(tx neo4j.ManagedTransaction) (any, error) {
			return runConsume(ctx, tx, mergeMembershipCypher, membershipParams(mut))
		}
	case graph.CreateGame:
		work = func(tx neo4j.ManagedTransaction) (any, error) {
			return nil, createGame(ctx, tx, mut)
		}
	default:
		return graph.WrapError(backendName, m, graph.UnsupportedMutation(m))
	}

	_, err := s.session.ExecuteWrite(ctx, work)
	return graph.WrapError(backendName, m, err)
}

// Close releases the session and the driver.
func (s *Store) Close(ctx context.Context) error {
	sessErr := s.session.Close(ctx)
	s.logger.Debug("Closing Neo4j driver")
	if err := s.driver.Close(ctx); err != nil {
		return fmt.Errorf("close neo4j driver: %w", err)
	}
	if sessErr != nil {
		return fmt.Errorf("close neo4j session: %w", sessErr)
	}
	return nil
}

func createGame(ctx context.Context, tx neo4j.ManagedTransaction, m graph.CreateGame) error {
	res, err := tx.Run(ctx, mergeGameCypher, gameParams(m))
	if err != nil {
		return err
	}
	if _, err := res.Single(ctx); err != nil {
		return fmt.Errorf("game %d: teams %q/%q not found: %w",
			m.Fixture.Number, m.Fixture.TeamA, m.Fixture.TeamB, err)
	}

	for _, p := range m.Plays {
		res, err := tx.Run(ctx, createPlayCypher, playParams(m.Fixture.Number, p))
		if err != nil {
			return fmt.Errorf("play %s: %w", p.ID, err)
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return fmt.Errorf("play %s: %w", p.ID, err)
		}
		written, _, err := neo4j.GetRecordValue[int64](rec, "passes")
		if err != nil {
			return fmt.Errorf("play %s: %w", p.ID, err)
		}
		if int(written) != len(p.Passes) {
			return fmt.Errorf("play %s: wrote %d of %d passes; unknown player", p.ID, written, len(p.Passes))
		}
	}
	return nil
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) (any, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Consume(ctx)
}
