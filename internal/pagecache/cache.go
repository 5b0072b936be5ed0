package pagecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Status tells how a lookup was served. It is sent as the X-Cache header.
type Status string

const (
	StatusHit      Status = "HIT"
	StatusStale    Status = "STALE"
	StatusMiss     Status = "MISS"
	StatusFallback Status = "FALLBACK"
)

// GenerateFunc produces a page's props as JSON.
type GenerateFunc func(ctx context.Context) ([]byte, error)

const defaultGenerateTimeout = 30 * time.Second

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithGenerateTimeout bounds every generation, foreground or background.
func WithGenerateTimeout(d time.Duration) Option {
	return func(c *Cache) { c.timeout = d }
}

// Cache serves page props with stale-while-revalidate semantics. At most
// one generation per key runs at a time.
type Cache struct {
	store   Store
	group   singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a cache over store.
func New(store Store, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		logger:  logger,
		now:     time.Now,
		timeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the props for key. An entry younger than window is a hit. An
// older one is returned as stale and regenerated in the background; if that
// regeneration fails the stale entry stays. A miss is generated before
// returning and a failed generation is not stored.
func (c *Cache) Get(ctx context.Context, key string, window time.Duration, gen GenerateFunc) ([]byte, Status, error) {
	if props, status, ok := c.Lookup(ctx, key, window, gen); ok {
		return props, status, nil
	}

	lookupsTotal.WithLabelValues(page(key), "miss").Inc()
	props, err := c.generate(ctx, key, "miss", gen)
	if err != nil {
		return nil, StatusMiss, err
	}
	return props, StatusMiss, nil
}

// Lookup is Get without the synchronous generation: on a miss it reports
// ok == false and leaves the store alone.
func (c *Cache) Lookup(ctx context.Context, key string, window time.Duration, gen GenerateFunc) ([]byte, Status, bool) {
	e := c.lookup(ctx, key)
	if e == nil {
		return nil, "", false
	}
	if c.now().Sub(e.GeneratedAt) < window {
		lookupsTotal.WithLabelValues(page(key), "hit").Inc()
		return e.Props, StatusHit, true
	}
	lookupsTotal.WithLabelValues(page(key), "stale").Inc()
	c.Background(ctx, key, "revalidate", gen)
	return e.Props, StatusStale, true
}

// Peek returns the stored entry for key without generating anything.
func (c *Cache) Peek(ctx context.Context, key string) (*Entry, bool) {
	e := c.lookup(ctx, key)
	return e, e != nil
}

// Prime generates key synchronously and stores the result, replacing any
// existing entry.
func (c *Cache) Prime(ctx context.Context, key string, gen GenerateFunc) error {
	_, err := c.generate(ctx, key, "prebuild", gen)
	return err
}

// Background schedules a generation of key unless one is already running.
// Failures are logged and leave the store untouched.
func (c *Cache) Background(ctx context.Context, key, trigger string, gen GenerateFunc) {
	ch := c.group.DoChan(key, func() (any, error) {
		return c.regenerate(ctx, key, trigger, gen)
	})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		res := <-ch
		if res.Err != nil {
			c.logger.WarnContext(ctx, "page regeneration failed, keeping previous entry",
				slog.String("key", key),
				slog.String("trigger", trigger),
				slog.String("error", res.Err.Error()),
			)
		}
	}()
}

// Invalidate drops key so the next request generates it.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// Wait blocks until all background generations have finished.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) lookup(ctx context.Context, key string) *Entry {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.WarnContext(ctx, "page cache read failed, treating as miss",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return e
}

func (c *Cache) generate(ctx context.Context, key, trigger string, gen GenerateFunc) ([]byte, error) {
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.regenerate(ctx, key, trigger, gen)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// regenerate runs detached from the caller's cancellation: other requests
// may be waiting on the same flight.
func (c *Cache) regenerate(ctx context.Context, key, trigger string, gen GenerateFunc) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	start := time.Now()
	props, err := gen(ctx)
	generationDuration.WithLabelValues(page(key)).Observe(time.Since(start).Seconds())
	if err != nil {
		regenerationsTotal.WithLabelValues(page(key), trigger, "error").Inc()
		return nil, err
	}
	if !json.Valid(props) {
		regenerationsTotal.WithLabelValues(page(key), trigger, "error").Inc()
		return nil, fmt.Errorf("page %s generated invalid JSON", key)
	}

	if err := c.store.Set(ctx, key, &Entry{Props: props, GeneratedAt: c.now()}); err != nil {
		c.logger.WarnContext(ctx, "page cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	regenerationsTotal.WithLabelValues(page(key), trigger, "ok").Inc()
	c.logger.DebugContext(ctx, "page generated",
		slog.String("key", key),
		slog.String("trigger", trigger),
		slog.Duration("took", time.Since(start)),
	)
	return props, nil
}

// page keeps metric cardinality bounded: "product:prod_1" -> "product".
func page(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}
