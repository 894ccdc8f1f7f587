package archive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/loom-forge/weaver/core"
)

func summaryFixture(runID, lineageID string, composite float64) core.RunSummary {
	best := core.ScoreRecord{
		PatternID:  runID + "-" + lineageID,
		LineageID:  lineageID,
		Generation: 2,
		Origin:     core.OriginMutation,
		Pillars:    map[string]float64{"security": composite},
		Composite:  composite,
	}
	return core.RunSummary{
		RunID:     runID,
		LineageID: lineageID,
		Intent:    "secure ecommerce backend",
		Best:      best,
		History:   []core.ScoreRecord{best},
	}
}

func TestMemoryArchiveRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	arch := NewMemoryArchive()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))
	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L02", 40)))
	require.NoError(t, arch.Record(ctx, summaryFixture("run-2", "L01", 62)))

	got, err := arch.Query(ctx, "L01")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// newest first
	require.Equal(t, "run-2", got[0].RunID)
	require.Equal(t, "run-1", got[1].RunID)
	require.Equal(t, 62.0, got[0].Best.Composite)
}

func TestMemoryArchiveQueryAll(t *testing.T) {
	ctx := context.Background()
	arch := NewMemoryArchive()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))
	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L02", 40)))

	got, err := arch.Query(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestMemoryArchiveQueryMissingLineage(t *testing.T) {
	ctx := context.Background()
	arch := NewMemoryArchive()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))

	got, err := arch.Query(ctx, "L99")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryArchiveStampsCreatedAt(t *testing.T) {
	ctx := context.Background()
	arch := NewMemoryArchive()

	require.NoError(t, arch.Record(ctx, summaryFixture("run-1", "L01", 55)))
	got, err := arch.Query(ctx, "L01")
	require.NoError(t, err)
	require.False(t, got[0].CreatedAt.IsZero())
	require.WithinDuration(t, time.Now().UTC(), got[0].CreatedAt, time.Minute)
}

func TestMemoryArchiveClose(t *testing.T) {
	arch := NewMemoryArchive()
	require.NoError(t, arch.Close())
}
