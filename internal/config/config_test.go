package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
neo4j:
  uri: bolt://localhost:7687
  username: neo4j
  password: secret
roster:
  path: jugadoras.csv
generation:
  seed: 42
  target_games: 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendNeo4j, cfg.Backend)
	assert.Equal(t, "bolt://localhost:7687", cfg.Neo4j.URI)
	assert.Equal(t, "neo4j", cfg.Neo4j.Username)
	assert.Equal(t, "secret", cfg.Neo4j.Password)
	assert.Equal(t, "jugadoras.csv", cfg.Roster.Path)
	assert.Equal(t, "latin1", cfg.Roster.Encoding)
	assert.Equal(t, "Squad", cfg.Roster.TeamColumn)
	assert.Equal(t, uint64(42), cfg.Generation.Seed)
	assert.Equal(t, 4, cfg.Generation.TargetGames)
	assert.Equal(t, 2, cfg.Generation.MaxGamesPerTeam)
	assert.Equal(t, 3, cfg.Generation.PlaysPerTeam)
	assert.InDelta(t, 0.5, cfg.Generation.GoalProbability, 1e-9)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
neo4j:
  uri: bolt://localhost:7687
  username: neo4j
  password: from-file
`)
	t.Setenv("MINILIGA_NEO4J_PASSWORD", "from-env")
	t.Setenv("MINILIGA_BACKEND", "Memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Neo4j.Password)
	assert.Equal(t, BackendMemory, cfg.Backend)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateMissingConnectionFields(t *testing.T) {
	path := writeConfig(t, `
neo4j:
  uri: bolt://localhost:7687
  username: neo4j
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "neo4j.password", fe.Key)
}

func TestValidateBackends(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		key     string
		missing bool
	}{
		{name: "memory needs nothing", cfg: Config{Backend: BackendMemory}},
		{name: "postgres url", cfg: Config{Backend: BackendPostgres}, key: "postgres.url", missing: true},
		{name: "postgres ok", cfg: Config{Backend: BackendPostgres, Postgres: Postgres{URL: "postgres://x"}}},
		{name: "unknown backend", cfg: Config{Backend: "mongo"}, key: "backend"},
		{name: "bad probability", cfg: Config{Backend: BackendMemory, Generation: Generation{GoalProbability: 1.5}}, key: "generation.goal_probability"},
		{name: "negative games", cfg: Config{Backend: BackendMemory, Generation: Generation{TargetGames: -1}}, key: "generation.target_games"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.key, fe.Key)
			assert.Equal(t, tt.missing, errors.Is(err, ErrMissingField))
		})
	}
}

func TestValidateRoster(t *testing.T) {
	cfg := Config{}
	assert.ErrorIs(t, cfg.ValidateRoster(), ErrMissingField)
	cfg.Roster.Path = "roster.csv"
	assert.NoError(t, cfg.ValidateRoster())
}
