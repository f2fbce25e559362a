package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/docchat/internal/domain"
)

func newTestCache(t *testing.T) *CacheRepository {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCacheRepository(db)
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	_, ok, err := cache.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put("k", "v1"))
	value, ok, err := cache.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v1", value)

	// Put replaces, never appends.
	require.NoError(t, cache.Put("k", "v2"))
	value, _, err = cache.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	loaded, err := cache.LoadSessions()
	require.NoError(t, err)
	assert.Nil(t, loaded)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		{
			ID:        "session_b",
			Title:     "Second",
			CreatedAt: created.Add(time.Hour),
			Messages: []domain.Message{
				{ID: "m1", Role: domain.RoleUser, Content: "hi", Timestamp: created},
				{ID: "m2", Role: domain.RoleAssistant, Content: "hello", Timestamp: created,
					Documents: map[string][]string{"doc1": {"h1", "h2"}}},
			},
			Settings: domain.Settings{Model: "gpt-4o-mini", Temperature: 0.7},
		},
		{ID: "session_a", Title: "First", CreatedAt: created},
	}

	require.NoError(t, cache.SaveSessions(sessions))
	loaded, err = cache.LoadSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "session_b", loaded[0].ID, "stored order is preserved")
	assert.Equal(t, map[string][]string{"doc1": {"h1", "h2"}}, loaded[0].Messages[1].Documents)
}

func TestLoadUser(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.LoadUser()
	assert.ErrorIs(t, err, domain.ErrNoUser)

	require.NoError(t, cache.SaveUser(&domain.User{UserID: "u1", AccessToken: "tok"}))
	user, err := cache.LoadUser()
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "tok", user.AccessToken)

	require.NoError(t, cache.Put(KeyUser, `{"email":"x@y.z"}`))
	_, err = cache.LoadUser()
	assert.ErrorIs(t, err, domain.ErrMalformedPayload, "user record without user_id is rejected")
}

func TestClearRemovesEverything(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.SaveUser(&domain.User{UserID: "u1"}))
	require.NoError(t, cache.SaveSessions([]domain.Session{{ID: "s1"}}))
	require.NoError(t, cache.SavePreferences(domain.DefaultPreferences()))

	require.NoError(t, cache.Clear())

	_, err := cache.LoadUser()
	assert.ErrorIs(t, err, domain.ErrNoUser)
	sessions, err := cache.LoadSessions()
	require.NoError(t, err)
	assert.Nil(t, sessions)
	prefs, err := cache.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences(), prefs)
}
