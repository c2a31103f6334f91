package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "7",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return s
}

func TestTokenValid(t *testing.T) {
	now := time.Now()
	assert.False(t, TokenValid("", now))
	assert.True(t, TokenValid("opaque-token", now))
	assert.True(t, TokenValid(signed(t, now.Add(time.Hour)), now))
	assert.False(t, TokenValid(signed(t, now.Add(-time.Minute)), now))
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "k", "one"))
	require.NoError(t, store.Put(ctx, "k", "two"))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	require.NoError(t, store.Delete(ctx, "k"))
	_, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Delete(ctx, "k"), "deleting twice is fine")
}

func TestFileStore(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, store)

	require.NoError(t, store.Put(context.Background(), "auth_token:../x", "t"))
	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotContains(t, entries[0].Name(), "/")
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, 0))

	store := NewRedisStore(client, time.Minute)
	require.NoError(t, store.Put(context.Background(), "ttl", "tok"))
	mr.FastForward(2 * time.Minute)
	_, err = store.Get(context.Background(), "ttl")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	store, err := NewPostgresStore(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := New(store, "")
	assert.Equal(t, DefaultKey, s.Key())
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.IsAuthenticated())

	tok := signed(t, time.Now().Add(time.Hour))
	require.NoError(t, s.SetToken(ctx, tok))
	assert.True(t, s.IsAuthenticated())

	// a fresh session over the same store picks the token up
	again := New(store, DefaultKey)
	require.NoError(t, again.Load(ctx))
	assert.Equal(t, tok, again.Token())

	require.NoError(t, again.Clear(ctx))
	assert.Empty(t, again.Token())
	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionDropsExpiredToken(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, DefaultKey, signed(t, time.Now().Add(-time.Hour))))

	s := New(store, DefaultKey)
	require.NoError(t, s.Load(ctx))
	assert.False(t, s.IsAuthenticated())
	_, err = store.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetToken(ctx, ""))
	assert.Empty(t, s.Token())
}
