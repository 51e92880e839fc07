package querycache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/require"

	"github.com/example/notehub/internal/querycache"
)

type clockStub struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clockStub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clockStub) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(t *testing.T, opts querycache.Options) (*querycache.Cache, *clockStub) {
	t.Helper()

	clk := &clockStub{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	if opts.Now == nil {
		opts.Now = clk.Now
	}
	if opts.BackOff == nil {
		opts.BackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	}

	c, err := querycache.New(opts)
	require.NoError(t, err)
	return c, clk
}

func counting(calls *atomic.Int32, value string) querycache.Fetcher {
	return func(ctx context.Context) (any, error) {
		calls.Add(1)
		return value, nil
	}
}

func TestKeyHasPrefix(t *testing.T) {
	key := querycache.Key{"notes", "", "1", "9", "all"}

	require.True(t, key.HasPrefix(querycache.Key{"notes"}))
	require.True(t, key.HasPrefix(querycache.Key{}))
	require.False(t, key.HasPrefix(querycache.Key{"note"}))
	require.False(t, querycache.Key{"notes"}.HasPrefix(key))
	require.NotEqual(t, querycache.Key{"a", "b"}.String(), querycache.Key{"a,b"}.String())
}

func TestGetOrFetch_FreshHit(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	var calls atomic.Int32
	key := querycache.Key{"notes", "", "1"}

	v, err := c.GetOrFetch(context.Background(), key, counting(&calls, "first"))
	require.NoError(t, err)
	require.Equal(t, "first", v)

	v, err = c.GetOrFetch(context.Background(), key, counting(&calls, "second"))
	require.NoError(t, err)
	require.Equal(t, "first", v)
	require.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_RefetchesAfterStaleTime(t *testing.T) {
	c, clk := newTestCache(t, querycache.Options{StaleTime: time.Minute})
	var calls atomic.Int32
	key := querycache.Key{"note", "n1"}

	_, err := c.GetOrFetch(context.Background(), key, counting(&calls, "v1"))
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	_, _, stale := c.Peek(key)
	require.True(t, stale)

	v, err := c.GetOrFetch(context.Background(), key, counting(&calls, "v2"))
	require.NoError(t, err)
	require.Equal(t, "v2", v)
	require.Equal(t, int32(2), calls.Load())
}

func TestGetOrFetch_SharesConcurrentFetch(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	var calls atomic.Int32
	release := make(chan struct{})
	key := querycache.Key{"notes", "q", "1"}

	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrFetch(context.Background(), key, fetch)
			require.NoError(t, err)
			results[i] = v
		}(i)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		require.Equal(t, "shared", v)
	}
}

func TestGetOrFetch_RetriesTransientErrors(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{Retries: 2})
	var calls atomic.Int32

	v, err := c.GetOrFetch(context.Background(), querycache.Key{"k"}, func(ctx context.Context) (any, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("temporary")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", v)
	require.Equal(t, int32(3), calls.Load())
}

func TestGetOrFetch_ReportsPersistentFailure(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{Retries: 2})
	var calls atomic.Int32
	boom := errors.New("down")

	_, err := c.GetOrFetch(context.Background(), querycache.Key{"k"}, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, int32(3), calls.Load())

	_, ok, _ := c.Peek(querycache.Key{"k"})
	require.False(t, ok, "failures must not be cached")
}

func TestGetOrFetch_PermanentErrorsAreNotRetried(t *testing.T) {
	notFound := errors.New("not found")
	c, _ := newTestCache(t, querycache.Options{
		Retries:     3,
		ShouldRetry: func(err error) bool { return !errors.Is(err, notFound) },
	})
	var calls atomic.Int32

	_, err := c.GetOrFetch(context.Background(), querycache.Key{"note", "x"}, func(ctx context.Context) (any, error) {
		calls.Add(1)
		return nil, notFound
	})

	require.Equal(t, notFound, err)
	require.Equal(t, int32(1), calls.Load())
}

func TestGetOrFetch_CallerContextCancels(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	release := make(chan struct{})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetOrFetch(ctx, querycache.Key{"slow"}, func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestInvalidate_MarksPrefixStale(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	var calls atomic.Int32
	ctx := context.Background()

	page1 := querycache.Key{"notes", "", "1", "9", "all"}
	page2 := querycache.Key{"notes", "x", "2", "9", "Work"}
	single := querycache.Key{"note", "n1"}

	for _, key := range []querycache.Key{page1, page2, single} {
		_, err := c.GetOrFetch(ctx, key, counting(&calls, "v"))
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), calls.Load())

	require.Equal(t, 2, c.Invalidate(querycache.Key{"notes"}))

	v, ok, stale := c.Peek(page1)
	require.True(t, ok)
	require.True(t, stale)
	require.Equal(t, "v", v)

	_, _, stale = c.Peek(single)
	require.False(t, stale, "single-note entries are not under the list prefix")

	_, err := c.GetOrFetch(ctx, page2, counting(&calls, "v2"))
	require.NoError(t, err)
	require.Equal(t, int32(4), calls.Load())

	_, err = c.GetOrFetch(ctx, single, counting(&calls, "unused"))
	require.NoError(t, err)
	require.Equal(t, int32(4), calls.Load())
}

func TestInvalidate_InFlightResultStoredAsStale(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	key := querycache.Key{"notes", "", "1"}
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.GetOrFetch(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "before-mutation", nil
		})
		require.NoError(t, err)
	}()

	<-started
	c.Invalidate(querycache.Key{"notes"})
	close(release)
	<-done

	v, ok, stale := c.Peek(key)
	require.True(t, ok)
	require.True(t, stale)
	require.Equal(t, "before-mutation", v)
}

func TestSet_SupersedesOlderFetch(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	key := querycache.Key{"note", "n1"}
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.GetOrFetch(context.Background(), key, func(ctx context.Context) (any, error) {
			close(started)
			<-release
			return "old", nil
		})
	}()

	<-started
	c.Set(key, "new")
	close(release)
	<-done

	v, ok, stale := c.Peek(key)
	require.True(t, ok)
	require.False(t, stale)
	require.Equal(t, "new", v)
}

func TestRemoveAndClear(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	c.Set(querycache.Key{"note", "n1"}, "a")
	c.Set(querycache.Key{"note", "n2"}, "b")
	c.Set(querycache.Key{"notes", "", "1"}, "list")

	require.Equal(t, 1, c.Remove(querycache.Key{"note", "n1"}))
	_, ok, _ := c.Peek(querycache.Key{"note", "n1"})
	require.False(t, ok)
	require.Equal(t, 2, c.Len())

	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestSizeBoundsEntries(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{Size: 2})
	c.Set(querycache.Key{"a"}, 1)
	c.Set(querycache.Key{"b"}, 2)
	c.Set(querycache.Key{"c"}, 3)

	require.Equal(t, 2, c.Len())
	_, ok, _ := c.Peek(querycache.Key{"a"})
	require.False(t, ok)
}

func TestTypedHelpers(t *testing.T) {
	c, _ := newTestCache(t, querycache.Options{})
	key := querycache.Key{"count"}

	n, err := querycache.Fetch(context.Background(), c, key, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	require.Equal(t, 42, n)

	got, ok, _ := querycache.PeekAs[int](c, key)
	require.True(t, ok)
	require.Equal(t, 42, got)

	_, ok, _ = querycache.PeekAs[string](c, key)
	require.False(t, ok)
}
