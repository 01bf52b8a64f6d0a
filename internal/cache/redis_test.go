package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/affgate/affgate/pkg/logger"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedis(client, logger.NewNop()), mr
}

func TestRedis_SetGet(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	r.Set(ctx, "k1", []byte("v1"), time.Minute)

	data, found := r.Get(ctx, "k1")
	require.True(t, found)
	assert.Equal(t, []byte("v1"), data)

	_, found = r.Get(ctx, "absent")
	assert.False(t, found)
}

func TestRedis_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	r.Set(ctx, "k1", []byte("v1"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, found := r.Get(ctx, "k1")
	assert.False(t, found)
}

func TestRedis_ClearPrefix(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRedis(t)

	r.Set(ctx, "affgate:search:a", []byte("1"), time.Minute)
	r.Set(ctx, "affgate:search:b", []byte("2"), time.Minute)
	r.Set(ctx, "affgate:detail:c", []byte("3"), time.Minute)

	require.NoError(t, r.Clear(ctx, "affgate:search:"))

	_, found := r.Get(ctx, "affgate:search:a")
	assert.False(t, found)
	_, found = r.Get(ctx, "affgate:detail:c")
	assert.True(t, found)
}

func TestRedis_BackendDownDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	r, mr := newTestRedis(t)

	mr.Close()

	// Writes and reads against a dead backend must not panic or error the
	// caller.
	r.Set(ctx, "k1", []byte("v1"), time.Minute)
	_, found := r.Get(ctx, "k1")
	assert.False(t, found)
}

func TestConnect_UnreachableBackend(t *testing.T) {
	_, err := Connect(context.Background(), []string{"127.0.0.1:1"}, "", 0, logger.NewNop())
	assert.Error(t, err)
}
