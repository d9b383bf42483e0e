package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prioq/internal/sched"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleRun(source string) Run {
	results := sched.New().Schedule([]*sched.Task{
		sched.NewTask("T1", 10, 0, sched.WithExecutionTime(5)),
		sched.NewTask("T2", 30, 0, sched.WithExecutionTime(3), sched.WithDeadline(1)),
		sched.NewTask("T3", 20, 0, sched.WithExecutionTime(4)),
	})
	return Run{Source: source, Results: results, Statistics: sched.Summarize(results)}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	saved, err := db.SaveRun(ctx, sampleRun("w.yaml"))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestSaveRun_GetRun(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	run := sampleRun("w.yaml")

	saved, err := db.SaveRun(ctx, run)
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := db.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "w.yaml", got.Source)
	assert.Equal(t, run.Statistics, got.Statistics)
	assert.Equal(t, run.Results, got.Results)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
}

func TestSaveRun_Empty(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	saved, err := db.SaveRun(ctx, Run{ID: "empty"})
	require.NoError(t, err)

	got, err := db.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Results)
	assert.Equal(t, sched.Statistics{}, got.Statistics)
}

func TestSaveRun_DuplicateID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.SaveRun(ctx, Run{ID: "dup"})
	require.NoError(t, err)
	_, err = db.SaveRun(ctx, Run{ID: "dup"})
	assert.Error(t, err)
}

func TestGetRun_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := db.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, src := range []string{"first", "second", "third"} {
		run := sampleRun(src)
		run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		_, err := db.SaveRun(ctx, run)
		require.NoError(t, err)
	}

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].Source)
	assert.Equal(t, "first", runs[2].Source)
	assert.Nil(t, runs[0].Results)
	assert.Equal(t, 3, runs[0].Statistics.TotalTasks)

	runs, err = db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
