package inmemcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkanmatematik/platform/core/session"
)

func TestSessionStore(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	ctx := context.Background()
	store := NewSessionStore()
	s := session.Session{UserID: "u1", Name: "Ayşe", TokenVersion: 2}

	_, err := store.GetSession(ctx, "u1")
	assert.Equal(t, session.ErrCacheMiss, err)

	require.NoError(t, store.SetSession(ctx, s, time.Minute))
	got, err := store.GetSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	t.Run("expired entries miss", func(t *testing.T) {
		now = now.Add(time.Minute)
		_, err := store.GetSession(ctx, "u1")
		assert.Equal(t, session.ErrCacheMiss, err)
	})

	t.Run("zero ttl never expires", func(t *testing.T) {
		require.NoError(t, store.SetSession(ctx, s, 0))
		now = now.Add(24 * time.Hour)
		_, err := store.GetSession(ctx, "u1")
		assert.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteSession(ctx, "u1"))
		_, err := store.GetSession(ctx, "u1")
		assert.Equal(t, session.ErrCacheMiss, err)
		assert.NoError(t, store.DeleteSession(ctx, "unknown"))
	})
}
