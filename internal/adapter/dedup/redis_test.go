package dedup

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/storefront/internal/config"
	testhelpers "github.com/polkiloo/storefront/internal/test"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisDeduperMarksAndExpires(t *testing.T) {
	mr, client := setupRedis(t)
	d := NewRedisDeduper(client, time.Hour)
	ctx := context.Background()

	seen, err := d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, d.Mark(ctx, "evt_1"))
	assert.True(t, mr.Exists("dedup:payment:evt_1"))

	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = d.Seen(ctx, "evt_2")
	require.NoError(t, err)
	assert.False(t, seen)

	mr.FastForward(2 * time.Hour)
	seen, err = d.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen, "mark should expire after ttl")
}

func TestRedisDeduperIgnoresEmptyID(t *testing.T) {
	mr, client := setupRedis(t)
	d := NewRedisDeduper(client, time.Hour)

	require.NoError(t, d.Mark(context.Background(), ""))
	seen, err := d.Seen(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, seen)
	assert.Empty(t, mr.Keys())
}

func TestRedisDeduperReportsConnectionErrors(t *testing.T) {
	mr, client := setupRedis(t)
	d := NewRedisDeduper(client, time.Hour)
	mr.Close()

	_, err := d.Seen(context.Background(), "evt_1")
	assert.Error(t, err)
	assert.Error(t, d.Mark(context.Background(), "evt_1"))
}

func TestNopDeduper(t *testing.T) {
	var d NopDeduper
	require.NoError(t, d.Mark(context.Background(), "evt_1"))
	seen, err := d.Seen(context.Background(), "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewDeduperSelectsBackend(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	lc := &testhelpers.LifecycleRecorder{}
	d := newDeduper(deduperParams{Lifecycle: lc, Config: &config.Config{}, Logger: logger})
	assert.IsType(t, NopDeduper{}, d)
	assert.Empty(t, lc.Hooks)

	mr := miniredis.RunT(t)
	lc = &testhelpers.LifecycleRecorder{}
	d = newDeduper(deduperParams{
		Lifecycle: lc,
		Config:    &config.Config{RedisAddress: mr.Addr(), NotificationDedupTTL: time.Minute},
		Logger:    logger,
	})
	rd, ok := d.(*RedisDeduper)
	require.True(t, ok)
	assert.Equal(t, time.Minute, rd.ttl)
	require.Len(t, lc.Hooks, 1)
	require.NoError(t, lc.Stop(context.Background()))
}
