package pnl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheVersionAndBump(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ver)

	key, err := cache.BuildKey(ctx, "reports", "pnl")
	require.NoError(t, err)
	assert.Equal(t, "reports:pnl:1", key)

	ver, err = cache.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)
}

func TestCacheListenForInvalidation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cache.ListenForInvalidation(ctx, ""))

	require.NoError(t, client.Publish(ctx, BumpChannel, "7").Err())
	assert.Eventually(t, func() bool {
		ver, err := cache.Version(ctx)
		return err == nil && ver == 7
	}, time.Second, 10*time.Millisecond)
}

type failingVersionReadHook struct {
	failing chan struct{}
}

func (h failingVersionReadHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h failingVersionReadHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "get" && len(cmd.Args()) > 1 && cmd.Args()[1] == cacheVersionKey {
			select {
			case <-h.failing:
				err := errors.New("i/o timeout")
				cmd.SetErr(err)
				return err
			default:
			}
		}
		return next(ctx, cmd)
	}
}

func (h failingVersionReadHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestCacheListenerKeepsVersionOnReadError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	hook := failingVersionReadHook{failing: make(chan struct{})}
	client.AddHook(hook)
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, mr.Set(cacheVersionKey, "9"))
	require.NoError(t, cache.ListenForInvalidation(ctx, ""))

	close(hook.failing)
	require.NoError(t, client.Publish(ctx, BumpChannel, "7").Err())
	require.NoError(t, client.Publish(ctx, BumpChannel, "flush").Err())
	assert.Eventually(t, func() bool {
		v, err := mr.Get(cacheVersionKey)
		return err == nil && v == "10"
	}, time.Second, 10*time.Millisecond)
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var cache *Cache
	var out map[string]int
	hit, err := cache.FetchJSON(context.Background(), "k", &out, func(context.Context) (any, error) {
		return map[string]int{"a": 1}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, out["a"])

	key, err := cache.BuildKey(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)
}

func TestKeyReportIsStable(t *testing.T) {
	f := quarterlyFilters()
	f.Dimensions = map[string][]string{"b": {"1"}, "a": {"2"}}
	k1, err := keyReport(f)
	require.NoError(t, err)
	k2, err := keyReport(f)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	f.Periodicity = "Monthly"
	k3, err := keyReport(f)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}
