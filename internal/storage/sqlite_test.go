package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/meur/dattebayo/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStore opens a fresh database in a temp directory.
func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadPreferencesDefaults(t *testing.T) {
	s := setupStore(t)

	p, err := s.LoadPreferences(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), p)
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	want := models.Preferences{SearchQuery: "uchiha", SortOption: models.SortNameDesc}
	require.NoError(t, s.SavePreferences(ctx, "session-a", want))

	got, err := s.LoadPreferences(ctx, "session-a")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := s.LoadPreferences(ctx, "session-b")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), other)
}

func TestPreferencesOverwrite(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePreferences(ctx, "s", models.Preferences{SearchQuery: "a", SortOption: models.SortNameAsc}))
	require.NoError(t, s.SavePreferences(ctx, "s", models.Preferences{SearchQuery: "", SortOption: models.SortLoaded}))

	got, err := s.LoadPreferences(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, models.Preferences{SortOption: models.SortLoaded}, got)
}

func TestPreferencesStoredUnderNamespacedKey(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SavePreferences(ctx, "s", models.Preferences{SearchQuery: "kara", SortOption: models.SortNameAsc}))

	raw, ok, err := s.Get(ctx, "s", PreferencesKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"search":{"searchQuery":"kara","sortOption":"nameAsc"}}`, raw)
}

func TestPreferencesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SavePreferences(ctx, "s", models.Preferences{SearchQuery: "hyuga", SortOption: models.SortLoaded}))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LoadPreferences(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "hyuga", got.SearchQuery)
}

func TestLoadPreferencesCorrupt(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "s", PreferencesKey, "{not json"))

	_, err := s.LoadPreferences(ctx, "s")
	assert.ErrorContains(t, err, "decode preferences")
}

func TestDeleteBefore(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "old", PreferencesKey, "{}"))

	n, err := s.DeleteBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, ok, err := s.Get(ctx, "old", PreferencesKey)
	require.NoError(t, err)
	assert.False(t, ok)
}
