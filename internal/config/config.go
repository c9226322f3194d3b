// Package config provides centralized configuration loaded from a YAML
// document with environment variable overrides. Shared by every command in
// cmd/minileague.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --------------------------------------------------------------------------
// Backends
// --------------------------------------------------------------------------

const (
	BackendNeo4j    = "neo4j"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// --------------------------------------------------------------------------
// Table names: single source of truth for the Postgres graph backend
// --------------------------------------------------------------------------

const (
	NodesTable = "graph_nodes"
	EdgesTable = "graph_edges"
)

// EnvPrefix prefixes every environment override, e.g. MINILIGA_NEO4J_URI.
const EnvPrefix = "MINILIGA"

// --------------------------------------------------------------------------
// Config struct
// --------------------------------------------------------------------------

type Neo4j struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type Postgres struct {
	URL                string `mapstructure:"url"`
	MinConns           int    `mapstructure:"min_conns"`
	MaxConns           int    `mapstructure:"max_conns"`
	MaxConnLifeMinutes int    `mapstructure:"max_conn_life_minutes"`
}

// MaxConnLife returns the pool connection lifetime.
func (p Postgres) MaxConnLife() time.Duration {
	return time.Duration(p.MaxConnLifeMinutes) * time.Minute
}

type Roster struct {
	Path         string `mapstructure:"path"`
	Encoding     string `mapstructure:"encoding"`
	PlayerColumn string `mapstructure:"player_column"`
	TeamColumn   string `mapstructure:"team_column"`
}

type Generation struct {
	TargetGames     int     `mapstructure:"target_games"`
	MaxGamesPerTeam int     `mapstructure:"max_games_per_team"`
	PlaysPerTeam    int     `mapstructure:"plays_per_team"`
	GoalProbability float64 `mapstructure:"goal_probability"`
	// Seed fixes the random generator; 0 picks a time-based seed.
	Seed uint64 `mapstructure:"seed"`
}

type Writes struct {
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

type Config struct {
	Backend    string     `mapstructure:"backend"`
	Neo4j      Neo4j      `mapstructure:"neo4j"`
	Postgres   Postgres   `mapstructure:"postgres"`
	Roster     Roster     `mapstructure:"roster"`
	Generation Generation `mapstructure:"generation"`
	Writes     Writes     `mapstructure:"writes"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrMissingField marks configuration that lacks a required value.
var ErrMissingField = errors.New("missing required configuration")

// FieldError names the missing or invalid key.
type FieldError struct {
	Key string
	Msg string
}

func (e *FieldError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("config: %s is required", e.Key)
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

// Is reports missing-value errors as ErrMissingField.
func (e *FieldError) Is(target error) bool {
	return target == ErrMissingField && e.Msg == ""
}

// --------------------------------------------------------------------------
// Loading
// --------------------------------------------------------------------------

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendNeo4j)
	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "")
	v.SetDefault("postgres.url", "")
	v.SetDefault("postgres.min_conns", 1)
	v.SetDefault("postgres.max_conns", 4)
	v.SetDefault("postgres.max_conn_life_minutes", 30)
	v.SetDefault("roster.path", "")
	v.SetDefault("roster.encoding", "latin1")
	v.SetDefault("roster.player_column", "Player")
	v.SetDefault("roster.team_column", "Squad")
	v.SetDefault("generation.target_games", 6)
	v.SetDefault("generation.max_games_per_team", 2)
	v.SetDefault("generation.plays_per_team", 3)
	v.SetDefault("generation.goal_probability", 0.5)
	v.SetDefault("generation.seed", 0)
	v.SetDefault("writes.rate_per_second", 0)
	v.SetDefault("writes.burst", 1)
}

// Load reads the YAML document at path. An empty path loads defaults and
// environment overrides only. A .env file in the working directory is
// applied first when present.
func Load(path string) (*Config, error) {
	// Load .env if present
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	return &cfg, nil
}

// Validate checks the fields the selected backend and the run need.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendNeo4j:
		for _, f := range []struct{ key, val string }{
			{"neo4j.uri", c.Neo4j.URI},
			{"neo4j.username", c.Neo4j.Username},
			{"neo4j.password", c.Neo4j.Password},
		} {
			if f.val == "" {
				return &FieldError{Key: f.key}
			}
		}
	case BackendPostgres:
		if c.Postgres.URL == "" {
			return &FieldError{Key: "postgres.url"}
		}
	case BackendMemory:
	default:
		return &FieldError{Key: "backend", Msg: fmt.Sprintf("unknown backend %q", c.Backend)}
	}

	g := c.Generation
	switch {
	case g.TargetGames < 0:
		return &FieldError{Key: "generation.target_games", Msg: "must not be negative"}
	case g.MaxGamesPerTeam < 0:
		return &FieldError{Key: "generation.max_games_per_team", Msg: "must not be negative"}
	case g.PlaysPerTeam < 0:
		return &FieldError{Key: "generation.plays_per_team", Msg: "must not be negative"}
	case g.GoalProbability < 0 || g.GoalProbability > 1:
		return &FieldError{Key: "generation.goal_probability", Msg: "must be within [0, 1]"}
	}
	return nil
}

// ValidateRoster checks that a roster source is configured.
func (c *Config) ValidateRoster() error {
	if c.Roster.Path == "" {
		return &FieldError{Key: "roster.path"}
	}
	return nil
}
