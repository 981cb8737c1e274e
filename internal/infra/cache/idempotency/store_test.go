package idempotency

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewStore(client, ttl), mr
}

func TestStore_GetMissingKey(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SaveAndReplay(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	saved := &Response{
		Status:      http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(`{"id":"b-1"}`),
	}
	require.NoError(t, store.Save(ctx, "key-1", saved))

	got, err := store.Get(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"key-1"))

	mr.FastForward(time.Hour + time.Second)
	_, err = store.Get(ctx, "key-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_LockIsExclusive(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Lock(ctx, "key-1"))
	assert.ErrorIs(t, store.Lock(ctx, "key-1"), ErrInProgress)

	// другой ключ не блокируется
	assert.NoError(t, store.Lock(ctx, "key-2"))

	require.NoError(t, store.Unlock(ctx, "key-1"))
	assert.NoError(t, store.Lock(ctx, "key-1"))

	// зависшая блокировка снимается по lockTTL
	mr.FastForward(lockTTL + time.Second)
	assert.NoError(t, store.Lock(ctx, "key-2"))
}

func TestStore_CorruptedValue(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)

	require.NoError(t, mr.Set(keyPrefix+"key-1", "not json"))

	_, err := store.Get(context.Background(), "key-1")
	assert.ErrorIs(t, err, ErrStore)
}

func TestStore_RedisUnavailable(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	mr.Close()

	_, err := store.Get(context.Background(), "key-1")
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, store.Lock(context.Background(), "key-1"), ErrStore)
}
