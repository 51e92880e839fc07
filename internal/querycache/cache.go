// Package querycache caches read results by composite key. Concurrent
// reads of one key share a single fetch, transient failures are retried
// with exponential backoff, and invalidated entries stay readable as
// placeholders until the next fetch replaces them.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultStaleTime = time.Minute
	DefaultSize      = 128
	DefaultRetries   = 3
)

// Fetcher loads the value for one key.
type Fetcher func(ctx context.Context) (any, error)

// Options configures a Cache.
type Options struct {
	// StaleTime is how long a stored value is served without refetching.
	StaleTime time.Duration
	// Size bounds the number of stored entries.
	Size int
	// Retries is the number of extra attempts after a failed fetch.
	// Negative disables retries.
	Retries int
	// BackOff builds the delay policy for one fetch.
	BackOff func() backoff.BackOff
	// ShouldRetry decides whether an error is transient.
	ShouldRetry func(error) bool
	Logger      *zap.Logger
	Now         func() time.Time
}

type entry struct {
	key       Key
	value     any
	updatedAt time.Time
	stale     bool
	seq       uint64
}

type flight struct {
	key         Key
	seq         uint64
	invalidated bool
	dropped     bool
}

// Cache is a session-scoped query cache. The zero value is not usable; call New.
type Cache struct {
	opts Options

	mu       sync.Mutex
	entries  *lru.Cache[string, *entry]
	inflight map[string]*flight
	seq      uint64

	group singleflight.Group
}

// New creates a Cache, filling unset options with defaults.
func New(opts Options) (*Cache, error) {
	if opts.StaleTime <= 0 {
		opts.StaleTime = DefaultStaleTime
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Retries == 0 {
		opts.Retries = DefaultRetries
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.BackOff == nil {
		opts.BackOff = defaultBackOff
	}
	if opts.ShouldRetry == nil {
		opts.ShouldRetry = defaultShouldRetry
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	entries, err := lru.New[string, *entry](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	return &Cache{
		opts:     opts,
		entries:  entries,
		inflight: make(map[string]*flight),
	}, nil
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.Multiplier = 2
	b.MaxInterval = 30 * time.Second
	return b
}

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// GetOrFetch returns the fresh cached value for key, or fetches it.
// Concurrent callers with the same key share one fetch; each caller stops
// waiting when its own ctx is done.
func (c *Cache) GetOrFetch(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	k := key.String()

	c.mu.Lock()
	if e, ok := c.entries.Get(k); ok && c.freshLocked(e) {
		c.mu.Unlock()
		c.opts.Logger.Debug("cache hit", zap.String("key", k))
		return e.value, nil
	}
	c.mu.Unlock()

	c.opts.Logger.Debug("cache miss", zap.String("key", k))

	ch := c.group.DoChan(k, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), key, fetch)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	k := key.String()

	c.mu.Lock()
	c.seq++
	f := &flight{key: key, seq: c.seq}
	c.inflight[k] = f
	c.mu.Unlock()

	value, err := backoff.Retry(ctx, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil && !c.opts.ShouldRetry(err) {
			return nil, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(c.opts.BackOff()),
		backoff.WithMaxTries(uint(c.opts.Retries+1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.opts.Logger.Debug("retrying fetch",
				zap.String("key", k), zap.Duration("in", next), zap.Error(err))
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Unwrap()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inflight[k] == f {
		delete(c.inflight, k)
	}
	if err != nil {
		c.opts.Logger.Warn("fetch failed", zap.String("key", k), zap.Error(err))
		return nil, err
	}
	if f.dropped {
		return value, nil
	}
	if existing, ok := c.entries.Peek(k); ok && existing.seq > f.seq {
		return value, nil
	}
	c.entries.Add(k, &entry{
		key:       key,
		value:     value,
		updatedAt: c.opts.Now(),
		stale:     f.invalidated,
		seq:       f.seq,
	})
	return value, nil
}

func (c *Cache) freshLocked(e *entry) bool {
	return !e.stale && c.opts.Now().Sub(e.updatedAt) < c.opts.StaleTime
}

// Peek returns the stored value for key without fetching.
// stale is true when the value would be refetched on the next read.
func (c *Cache) Peek(key Key) (value any, ok bool, stale bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Peek(key.String())
	if !ok {
		return nil, false, false
	}
	return e.value, true, !c.freshLocked(e)
}

// Set stores value as fresh, superseding any fetch already in flight for key.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	c.entries.Add(key.String(), &entry{
		key:       key,
		value:     value,
		updatedAt: c.opts.Now(),
		seq:       c.seq,
	})
}

// Invalidate marks every entry under prefix as stale. Stale entries stay
// readable through Peek. Fetches already in flight under prefix store
// their result as stale and are no longer shared with new readers.
func (c *Cache) Invalidate(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if ok && e.key.HasPrefix(prefix) {
			e.stale = true
			n++
		}
	}
	c.forEachFlightLocked(prefix, func(k string, f *flight) {
		f.invalidated = true
		c.group.Forget(k)
	})

	c.opts.Logger.Debug("cache invalidated", zap.Strings("prefix", prefix), zap.Int("entries", n))
	return n
}

// Remove deletes every entry under prefix. Fetches in flight under prefix
// will not be stored.
func (c *Cache) Remove(prefix Key) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, k := range c.entries.Keys() {
		e, ok := c.entries.Peek(k)
		if ok && e.key.HasPrefix(prefix) {
			c.entries.Remove(k)
			n++
		}
	}
	c.forEachFlightLocked(prefix, func(k string, f *flight) {
		f.dropped = true
		c.group.Forget(k)
	})
	return n
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.Remove(Key{})
}

// Len returns the number of stored entries.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) forEachFlightLocked(prefix Key, fn func(k string, f *flight)) {
	for k, f := range c.inflight {
		if f.key.HasPrefix(prefix) {
			fn(k, f)
		}
	}
}

// Fetch is GetOrFetch with a typed fetcher and result.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cached value for %s has type %T", key.String(), v)
	}
	return typed, nil
}

// PeekAs is Peek with a typed result. ok is false on a type mismatch.
func PeekAs[T any](c *Cache, key Key) (value T, ok bool, stale bool) {
	v, found, stale := c.Peek(key)
	if !found {
		return value, false, false
	}
	typed, ok := v.(T)
	if !ok {
		return value, false, false
	}
	return typed, true, stale
}
