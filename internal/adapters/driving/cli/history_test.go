package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapxml/internal/core/domain"
)

func TestHistoryCmd_HasLimitFlag(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag, "limit flag should exist")
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "20", flag.DefValue)
}

func TestHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "No conversions recorded.")
}

func TestHistoryCmd_ListsRuns(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.runs = []domain.ConversionRun{
		{
			ID: "r2", Mapping: "m.csv", Input: "b.json", Output: "b.xml",
			Status: domain.RunFailed, Error: "input parse: at offset 4: unexpected EOF",
			StartedAt: time.Now().Add(-time.Minute),
		},
		{
			ID: "r1", Mapping: "m.csv", Input: "a.json", Output: "a.xml",
			Status: domain.RunSucceeded, Warnings: 1, BytesWritten: 1500,
			StartedAt: time.Now().Add(-time.Hour), Duration: 12 * time.Millisecond,
		},
	}

	out, err := execute(t, "history", "-n", "5")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.history.limit)
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "m.csv + b.json -> b.xml")
	assert.Contains(t, out, "unexpected EOF")
	assert.Contains(t, out, "m.csv + a.json -> a.xml")
	assert.Contains(t, out, "1.5 kB, 1 warning, 12ms")
}

func TestHistoryCmd_Failure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.history.err = errors.New("database is locked")

	_, err := execute(t, "history")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list history")
}

func TestHistoryClearCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "history", "clear")

	require.NoError(t, err)
	assert.True(t, ts.history.cleared)
	assert.Contains(t, out, "History cleared.")
}
