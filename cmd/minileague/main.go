// Command minileague generates the Mini Liga football dataset and writes it
// to a graph store.
//
// Usage:
//
//	minileague seed --config config.yaml
//	minileague seed --dry-run --seed 42
//	minileague roster --roster "Jugadoras y Equipos.csv"
//	minileague schedule --games 6 --max-per-team 2
//	minileague game --number 1 --team-a "Real Madrid" --team-b "Barcelona"
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/config"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/db"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph/memstore"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph/neo4jstore"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph/pgstore"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/play"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/roster"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/seed"
)

const defaultConfigPath = "config.yaml"

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
)

// globalFlags are shared by every subcommand and override the config file.
type globalFlags struct {
	configPath string
	backend    string
	rosterPath string
	seed       uint64
	games      int
	maxPerTeam int
	dryRun     bool
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("minileague failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "minileague",
		Short:         "Generate the Mini Liga graph dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.debug {
				logLevel.Set(slog.LevelDebug)
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", defaultConfigPath, "YAML configuration file")
	pf.StringVar(&flags.backend, "backend", "", "Graph backend (neo4j, postgres, memory)")
	pf.StringVar(&flags.rosterPath, "roster", "", "Roster CSV file")
	pf.Uint64Var(&flags.seed, "seed", 0, "Random seed; 0 = time based")
	pf.IntVar(&flags.games, "games", 0, "Target number of games")
	pf.IntVar(&flags.maxPerTeam, "max-per-team", 0, "Maximum games per team")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Write to an in-memory graph instead of a database")
	pf.BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	root.AddCommand(seedCmd(flags))
	root.AddCommand(rosterCmd(flags))
	root.AddCommand(scheduleCmd(flags))
	root.AddCommand(gameCmd(flags))
	return root
}

// --------------------------------------------------------------------------
// seed command
// --------------------------------------------------------------------------

func seedCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Ingest the roster, then schedule games and generate plays",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, flags, func(ctx context.Context, env *runEnv) error {
				start := time.Now()
				result, err := seed.Run(ctx, env.writer, env.rows, env.options(), logger)
				logger.Info("Seed finished",
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				for _, f := range result.Fixtures {
					logger.Debug("Fixture", "game", f.Number, "team_a", f.TeamA, "team_b", f.TeamB)
				}
				return err
			})
		},
	}
}

// --------------------------------------------------------------------------
// roster command
// --------------------------------------------------------------------------

func rosterCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Ingest the roster only (league, teams, players)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, flags, func(ctx context.Context, env *runEnv) error {
				_, result, err := seed.SeedRoster(ctx, env.writer, env.rows, logger)
				logger.Info("Roster finished", "summary", result.Summary())
				return err
			})
		},
	}
}

// --------------------------------------------------------------------------
// schedule command
// --------------------------------------------------------------------------

func scheduleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Print a schedule for the roster's teams without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			rows, err := readRoster(cfg)
			if err != nil {
				return err
			}
			idx := roster.NewIndex(rows)
			idx.LogConflicts(logger)

			res := schedule.Generate(idx.Teams(), scheduleOptions(cfg), newRand(cfg))
			for _, f := range res.Fixtures {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			if res.Starved() {
				logger.Warn("Schedule stopped before target",
					"games", len(res.Fixtures), "target", res.Target, "reason", res.Stop.String())
			}
			logger.Info("Schedule finished", "summary", res.Summary())
			return nil
		},
	}
}

// --------------------------------------------------------------------------
// game command
// --------------------------------------------------------------------------

func gameCmd(flags *globalFlags) *cobra.Command {
	var f schedule.Fixture
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Generate plays for one fixture (adds plays if the game already has some)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.Number < 1 || f.TeamA == "" || f.TeamB == "" || f.TeamA == f.TeamB {
				return errors.New("--number (>= 1) and two distinct --team-a/--team-b are required")
			}
			return runSeed(cmd, flags, func(ctx context.Context, env *runEnv) error {
				idx := roster.NewIndex(env.rows)
				if env.cfg.Backend == config.BackendMemory {
					// A fresh in-memory graph has no teams to attach the game to.
					if _, _, err := seed.SeedRoster(ctx, env.writer, env.rows, logger); err != nil {
						return err
					}
				}
				gp, err := seed.WriteGame(ctx, env.writer, f, idx, env.plays, logger)
				if err != nil {
					return err
				}
				logger.Info("Game finished", "game", f.Number, "plays", len(gp.All()), "goals", gp.Goals())
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&f.Number, "number", 0, "Game number")
	cmd.Flags().StringVar(&f.TeamA, "team-a", "", "First team")
	cmd.Flags().StringVar(&f.TeamB, "team-b", "", "Second team")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runEnv is what every writing command receives.
type runEnv struct {
	cfg    *config.Config
	rows   []roster.Row
	writer graph.Writer
	rng    *rand.Rand
	plays  *play.Generator
}

func (e *runEnv) options() seed.Options {
	return seed.Options{
		Schedule: scheduleOptions(e.cfg),
		Rand:     e.rng,
		Plays:    e.plays,
	}
}

// runSeed handles config loading, roster reading, the graph connection, and
// context cancellation. The roster is read before connecting so a bad file
// fails the run before any write.
func runSeed(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, env *runEnv) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rows, err := readRoster(cfg)
	if err != nil {
		return err
	}

	w, err := openWriter(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(context.Background()); err != nil {
			logger.Warn("Close graph writer", "error", err)
		}
	}()

	rng := newRand(cfg)
	plays := play.NewGenerator(rng)
	plays.MaxPlays = cfg.Generation.PlaysPerTeam
	plays.GoalProbability = cfg.Generation.GoalProbability

	return fn(ctx, &runEnv{cfg: cfg, rows: rows, writer: w, rng: rng, plays: plays})
}

// loadConfig reads the config file and applies explicitly set flags. The
// default config path is optional; an explicit one must exist.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	path := flags.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("backend") {
		cfg.Backend = flags.backend
	}
	if flags.dryRun {
		cfg.Backend = config.BackendMemory
	}
	if changed("roster") {
		cfg.Roster.Path = flags.rosterPath
	}
	if changed("seed") {
		cfg.Generation.Seed = flags.seed
	}
	if changed("games") {
		cfg.Generation.TargetGames = flags.games
	}
	if changed("max-per-team") {
		cfg.Generation.MaxGamesPerTeam = flags.maxPerTeam
	}
	return cfg, nil
}

func openWriter(ctx context.Context, cfg *config.Config) (graph.Writer, error) {
	var w graph.Writer
	switch cfg.Backend {
	case config.BackendNeo4j:
		store, err := neo4jstore.New(ctx, neo4jstore.Config{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to neo4j: %w", err)
		}
		w = store
	case config.BackendPostgres:
		pool, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		store, err := pgstore.New(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		w = store
	default:
		logger.Info("Using in-memory graph; nothing is persisted")
		w = memstore.New()
	}

	if limiter := graph.NewLimiter(cfg.Writes.RatePerSecond, cfg.Writes.Burst); limiter != nil {
		logger.Info("Throttling writes", "per_second", cfg.Writes.RatePerSecond, "burst", cfg.Writes.Burst)
		w = graph.Throttle(w, limiter)
	}
	return w, nil
}

func readRoster(cfg *config.Config) ([]roster.Row, error) {
	if err := cfg.ValidateRoster(); err != nil {
		return nil, err
	}
	rows, err := roster.ReadFile(cfg.Roster.Path, roster.ReadOptions{
		Encoding:     cfg.Roster.Encoding,
		PlayerColumn: cfg.Roster.PlayerColumn,
		TeamColumn:   cfg.Roster.TeamColumn,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Roster loaded", "path", cfg.Roster.Path, "rows", len(rows))
	return rows, nil
}

func scheduleOptions(cfg *config.Config) schedule.Options {
	return schedule.Options{
		TargetGames:     cfg.Generation.TargetGames,
		MaxGamesPerTeam: cfg.Generation.MaxGamesPerTeam,
	}
}

// newRand seeds the run's generator. The seed is logged so a run can be
// repeated with --seed.
func newRand(cfg *config.Config) *rand.Rand {
	s := cfg.Generation.Seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	logger.Info("Random seed", "seed", s)
	return rand.New(rand.NewPCG(s, s))
}
