package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRecorder(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "history.db"))
	require.NoError(t, err)
	defer r.Close()

	ctx := context.Background()
	start := time.Date(2026, 10, 14, 7, 0, 0, 0, time.UTC)

	require.NoError(t, r.RecordJob(ctx, &JobRecord{
		JobID: "a", Title: "Morning", TargetDate: "2026-10-14", Category: "all",
		Status: StatusSuccess, OutputPath: "output/x.mp4", RecordCount: 37, DurationSeconds: 20,
		StartedAt: start, FinishedAt: start.Add(time.Minute),
	}))
	require.NoError(t, r.RecordJob(ctx, &JobRecord{
		JobID: "b", Title: "Evening", TargetDate: "2026-10-14", Category: "fruit",
		Status: StatusFailed, Kind: "NoDataError", Stage: "fetch", Message: "no price records",
		StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour + time.Second),
	}))

	recent, err := r.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, "b", recent[0].JobID)
	assert.Equal(t, StatusFailed, recent[0].Status)
	assert.Equal(t, "fetch", recent[0].Stage)
	assert.Equal(t, "a", recent[1].JobID)
	assert.Equal(t, 37, recent[1].RecordCount)
	assert.True(t, recent[1].StartedAt.Equal(start))

	one, err := r.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, one, 1)
}

func TestNoopRecorder(t *testing.T) {
	r := NewNoopRecorder()
	assert.NoError(t, r.RecordJob(context.Background(), &JobRecord{}))
	recent, err := r.Recent(context.Background(), 5)
	assert.NoError(t, err)
	assert.Empty(t, recent)
	assert.NoError(t, r.Close())
}
