package archive

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	arch, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "weaver.db"))
	require.NoError(t, err)
	defer arch.Close()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))
	require.NoError(t, arch.Record(ctx, summaryFixture("run-2", "L01", 62)))
	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L02", 40)))

	got, err := arch.Query(ctx, "L01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	require.Equal(t, "run-2", got[0].RunID)
	require.Equal(t, "run-1", got[1].RunID)
}

func TestSQLiteArchiveHistorySurvives(t *testing.T) {
	ctx := context.Background()
	arch, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "weaver.db"))
	require.NoError(t, err)
	defer arch.Close()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))

	got, err := arch.Query(ctx, "L01")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].History, 1)
	require.Equal(t, 55.0, got[0].History[0].Pillars["security"])
	require.Equal(t, "L01", got[0].Best.LineageID)
}

func TestSQLiteArchiveQueryEmpty(t *testing.T) {
	ctx := context.Background()
	arch, err := NewSQLiteArchive(filepath.Join(t.TempDir(), "weaver.db"))
	require.NoError(t, err)
	defer arch.Close()

	got, err := arch.Query(ctx, "L01")
	require.NoError(t, err)
	require.Empty(t, got)
}
