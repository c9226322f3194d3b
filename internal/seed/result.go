// Package seed drives roster ingestion and game generation against a
// graph.Writer.
package seed

import (
	"fmt"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/schedule"
)

// SeedResult tracks counts from a seeding run.
type SeedResult struct {
	RowsWritten  int
	Teams        int
	Players      int
	Games        int
	Plays        int
	Goals        int
	SkippedTeams int // team-game pairs with fewer than four players
	Stop         schedule.StopReason
	Fixtures     []schedule.Fixture
	Warnings     []string
}

// Add merges another SeedResult into this one. Stop is taken from other when
// it is set.
func (r *SeedResult) Add(other SeedResult) {
	r.RowsWritten += other.RowsWritten
	if other.Teams > 0 {
		r.Teams = other.Teams
	}
	if other.Players > 0 {
		r.Players = other.Players
	}
	r.Games += other.Games
	r.Plays += other.Plays
	r.Goals += other.Goals
	r.SkippedTeams += other.SkippedTeams
	if other.Stop != schedule.StopNone {
		r.Stop = other.Stop
	}
	r.Fixtures = append(r.Fixtures, other.Fixtures...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// AddWarningf records a formatted warning message.
func (r *SeedResult) AddWarningf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Starved reports whether scheduling stopped short of its target.
func (r *SeedResult) Starved() bool {
	return r.Stop.Starved()
}

// Summary returns a human-readable summary of the seed operation.
func (r *SeedResult) Summary() string {
	return fmt.Sprintf(
		"rows=%d teams=%d players=%d games=%d plays=%d goals=%d skipped_teams=%d stop=%s warnings=%d",
		r.RowsWritten, r.Teams, r.Players,
		r.Games, r.Plays, r.Goals, r.SkippedTeams,
		r.Stop, len(r.Warnings),
	)
}
