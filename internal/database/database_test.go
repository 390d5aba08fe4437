package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"WooFeedSync/internal/database/model/syncrun"
)

func TestStopFlag(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "db.db"))
	require.NoError(t, err)
	defer db.Close()

	f := NewStopFlag(db)
	set, err := f.IsSet()
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, f.Set())
	require.NoError(t, f.Set())
	set, err = f.IsSet()
	require.NoError(t, err)
	assert.True(t, set)

	require.NoError(t, f.Clear())
	set, err = f.IsSet()
	require.NoError(t, err)
	assert.False(t, set)
}

func TestSyncRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, Exists(path))

	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r, err := syncrun.Start(db, "feed", start)
	require.NoError(t, err)
	assert.Len(t, r.ID, 36)

	r.State, r.Processed, r.Created, r.Errors = "Completed", 3, 2, 1
	require.NoError(t, r.Finish(db, start.Add(time.Minute)))

	runs, err := syncrun.SelectLast(db, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Completed", runs[0].State)
	assert.Equal(t, 2, runs[0].Created)
	assert.Equal(t, "2024-01-02 03:05:05", runs[0].Finished.String)
}
