package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/authkeeper/internal/infra/repository/cache"
	"github.com/stretchr/testify/require"
)

func TestSetGet(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	_, err := m.Get(ctx, "missing")
	require.ErrorIs(t, err, cache.ErrKeyNotFound)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestExpiration(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := m.Get(ctx, "k")
	require.ErrorIs(t, err, cache.ErrKeyNotFound)

	exists, err := m.Exists(ctx, "k")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSetNX(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	ok, err := m.SetNX(ctx, "k", "first", 0)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.SetNX(ctx, "k", "second", 0)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "first", got)
}

func TestIncrWithExpire(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	n, err := m.Incr(ctx, "counter")
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	ok, err := m.Expire(ctx, "counter", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	n, err = m.Incr(ctx, "counter")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	//Incr不可清掉既有的ttl
	ttl, err := m.TTL(ctx, "counter")
	require.NoError(t, err)
	require.Greater(t, ttl, 30*time.Second)
}

func TestCompareAndSwap(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	//key不存在視為不成功
	ok, err := m.CompareAndSwap(ctx, "k", "old", "new", 0)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "old", 0))

	ok, err = m.CompareAndSwap(ctx, "k", "wrong", "new", 0)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = m.CompareAndSwap(ctx, "k", "old", "new", 0)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "new", got)
}

func TestCompareAndSwapSingleWinner(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "current", 0))

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := m.CompareAndSwap(ctx, "k", "current", "next", 0)
			require.NoError(t, err)
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	for ok := range results {
		if ok {
			winners++
		}
	}
	require.Equal(t, 1, winners)
}

func TestFailAll(t *testing.T) {
	m := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	m.FailAll = true

	_, err := m.Get(ctx, "k")
	require.Error(t, err)
	require.NotErrorIs(t, err, cache.ErrKeyNotFound)

	_, err = m.CompareAndSwap(ctx, "k", "v", "w", 0)
	require.Error(t, err)
}
