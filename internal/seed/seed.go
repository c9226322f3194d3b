package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/graph"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/play"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/roster"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

// Options configures game generation. Rand drives both the schedule and the
// plays; a nil Rand is replaced by a time-seeded one. Plays defaults to
// play.NewGenerator(Rand).
type Options struct {
	Schedule schedule.Options
	Rand     *rand.Rand
	Plays    *play.Generator
}

func (o Options) playGenerator() *play.Generator {
	if o.Plays != nil {
		return o.Plays
	}
	return play.NewGenerator(o.Rand)
}

// Run seeds the roster and then the games. Any write failure stops the run;
// writes that already succeeded stay in place.
func Run(ctx context.Context, w graph.Writer, rows []roster.Row, opts Options, logger *slog.Logger) (SeedResult, error) {
	logger.Info("Phase 1/2: Seeding roster...", "rows", len(rows))
	idx, result, err := SeedRoster(ctx, w, rows, logger)
	if err != nil {
		return result, err
	}

	logger.Info("Phase 2/2: Scheduling games and plays...")
	games, err := SeedGames(ctx, w, idx, opts, logger)
	result.Add(games)
	if err != nil {
		return result, err
	}

	logger.Info("Seed complete", "summary", result.Summary())
	return result, nil
}

// SeedRoster writes one membership mutation per row, in input order, and
// returns the index built from the same rows.
func SeedRoster(ctx context.Context, w graph.Writer, rows []roster.Row, logger *slog.Logger) (*roster.Index, SeedResult, error) {
	var result SeedResult
	idx := roster.NewIndex(rows)

	for i, r := range rows {
		if err := w.Apply(ctx, graph.NewMembership(r.Player, r.Team)); err != nil {
			return idx, result, fmt.Errorf("roster row %d (%s, %s): %w", i+1, r.Player, r.Team, err)
		}
		result.RowsWritten++
		if result.RowsWritten%100 == 0 {
			logger.Info("Roster progress", "rows", result.RowsWritten)
		}
	}

	result.Teams = len(idx.Teams())
	result.Players = idx.PlayerCount()
	for _, c := range idx.Conflicts() {
		result.AddWarningf("player %q listed for teams %v", c.Player, c.Teams)
	}
	idx.LogConflicts(logger)

	logger.Info("Roster done",
		"rows", result.RowsWritten, "teams", result.Teams, "players", result.Players)
	return idx, result, nil
}

// SeedGames schedules fixtures from the indexed teams and writes each game
// with both teams' plays before drawing the next fixture.
func SeedGames(ctx context.Context, w graph.Writer, idx *roster.Index, opts Options, logger *slog.Logger) (SeedResult, error) {
	var result SeedResult
	if opts.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		logger.Info("No random source given; seeding from time", "seed", seed)
		opts.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	plays := opts.playGenerator()
	gen := schedule.NewGenerator(idx.Teams(), opts.Schedule, opts.Rand)

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		f, ok := gen.Next()
		if !ok {
			break
		}
		gp, err := WriteGame(ctx, w, f, idx, plays, logger)
		if err != nil {
			return result, err
		}
		result.record(f, gp)
	}

	result.Stop = gen.Stop()
	if result.Starved() {
		target := opts.Schedule.TargetGames
		if target <= 0 {
			target = schedule.DefaultTargetGames
		}
		result.AddWarningf("scheduled %d of %d games: %s", result.Games, target, result.Stop)
		logger.Warn("Schedule stopped before target",
			"games", result.Games, "target", target, "reason", result.Stop.String())
	}

	logger.Info("Games done",
		"games", result.Games, "plays", result.Plays, "goals", result.Goals,
		"skipped_teams", result.SkippedTeams)
	return result, nil
}

// WriteGame generates both teams' plays for f, validates them, and applies
// them with the game in one write. Calling it again for the same fixture adds a new set of plays
// to the existing game.
func WriteGame(
	ctx context.Context,
	w graph.Writer,
	f schedule.Fixture,
	idx play.Roster,
	plays *play.Generator,
	logger *slog.Logger,
) (play.GamePlays, error) {
	gp := plays.ForFixture(f, idx)
	for _, tp := range gp.Teams {
		if tp.Skipped {
			logger.Warn("Team has fewer than 4 players; no plays generated",
				"game", f.Number, "team", tp.Team)
		}
	}

	if err := gp.Validate(); err != nil {
		return gp, fmt.Errorf("game %d (%s vs %s): %w", f.Number, f.TeamA, f.TeamB, err)
	}
	if err := w.Apply(ctx, graph.NewGame(f, gp)); err != nil {
		return gp, fmt.Errorf("game %d (%s vs %s): %w", f.Number, f.TeamA, f.TeamB, err)
	}

	logger.Info("Game written",
		"game", f.Number, "team_a", f.TeamA, "team_b", f.TeamB,
		"plays", len(gp.All()), "goals", gp.Goals())
	return gp, nil
}

func (r *SeedResult) record(f schedule.Fixture, gp play.GamePlays) {
	r.Games++
	r.Fixtures = append(r.Fixtures, f)
	r.Plays += len(gp.All())
	r.Goals += gp.Goals()
	for _, tp := range gp.Teams {
		if tp.Skipped {
			r.SkippedTeams++
		}
	}
}
