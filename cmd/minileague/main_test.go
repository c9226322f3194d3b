package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/config"
	"github.com/Sevillanojr3/actividadBDNOSQL-ATBD/internal/roster"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const fourTeams = `Player,Squad
A1,Rayo
A2,Rayo
A3,Rayo
A4,Rayo
B1,Betis
B2,Betis
B3,Betis
B4,Betis
C1,Sevilla
C2,Sevilla
C3,Sevilla
C4,Sevilla
D1,Eibar
D2,Eibar
D3,Eibar
D4,Eibar
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSeedDryRun(t *testing.T) {
	path := writeFile(t, "roster.csv", fourTeams)
	_, err := execute(t, "seed", "--dry-run", "--roster", path, "--seed", "7")
	require.NoError(t, err)
}

func TestScheduleCommandPrintsFixtures(t *testing.T) {
	path := writeFile(t, "roster.csv", fourTeams)
	out, err := execute(t, "schedule", "--roster", path, "--seed", "11", "--games", "3")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, "game "+string(rune('1'+i))+": "), line)
	}
}

func TestGameCommandDryRun(t *testing.T) {
	path := writeFile(t, "roster.csv", fourTeams)
	_, err := execute(t, "game", "--dry-run", "--roster", path,
		"--number", "1", "--team-a", "Rayo", "--team-b", "Betis")
	require.NoError(t, err)
}

func TestGameCommandRequiresFixture(t *testing.T) {
	_, err := execute(t, "game", "--dry-run", "--team-a", "Rayo", "--team-b", "Rayo", "--number", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "two distinct")
}

func TestSeedRejectsBadRoster(t *testing.T) {
	path := writeFile(t, "roster.csv", "Name,Team\nA,B\n")
	_, err := execute(t, "seed", "--dry-run", "--roster", path)

	var fe *roster.FormatError
	require.True(t, errors.As(err, &fe), "got %v", err)
}

func TestSeedRequiresConnectionConfig(t *testing.T) {
	cfgPath := writeFile(t, "config.yaml", "backend: neo4j\nneo4j:\n  uri: bolt://localhost:7687\n")
	rosterPath := writeFile(t, "roster.csv", fourTeams)

	_, err := execute(t, "seed", "--config", cfgPath, "--roster", rosterPath)
	assert.ErrorIs(t, err, config.ErrMissingField)
}

func TestSeedRequiresRosterPath(t *testing.T) {
	_, err := execute(t, "seed", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "roster.path")
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "schedule", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
