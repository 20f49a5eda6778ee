package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meur/dattebayo/internal/models"
	"github.com/meur/dattebayo/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, dbPath string) {
	t.Helper()
	s, err := storage.New(dbPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.SavePreferences(context.Background(), "stale", models.DefaultPreferences()))
}

func TestRunDeletesOldEntries(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prune.db")
	seed(t, dbPath)

	n, err := run(context.Background(), dbPath, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.NoFileExists(t, dbPath+"-wal")

	n, err = run(context.Background(), dbPath, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunClosesStoreOnFailure(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prune.db")
	seed(t, dbPath)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := run(ctx, dbPath, time.Now())
	assert.ErrorIs(t, err, context.Canceled)
	// Closing the last connection checkpoints and removes the WAL file.
	assert.NoFileExists(t, dbPath+"-wal")

	n, err := run(context.Background(), dbPath, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRunBadPath(t *testing.T) {
	_, err := run(context.Background(), filepath.Join(t.TempDir(), "missing", "prune.db"), time.Now())
	assert.Error(t, err)
}
