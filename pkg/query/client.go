package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/logging"
	"github.com/Sternrassler/nasa-explorer-client/pkg/notify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	queryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nasa_query_lookups_total",
		Help: "Query lookups by source (fresh, store, network)",
	}, []string{"source"})

	querySharedFlights = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nasa_query_shared_total",
		Help: "Query calls that joined an in-flight request for the same key",
	})
)

const (
	// DefaultStaleTime is how long a successful result is reused.
	DefaultStaleTime = 5 * time.Minute

	// DefaultGCTime is how long an unused entry is kept.
	DefaultGCTime = 10 * time.Minute
)

// Config holds the query client configuration.
type Config struct {
	// StaleTime is how long a successful result is reused without a request
	StaleTime time.Duration

	// GCTime is how long an entry may go unused before Prune drops it
	GCTime time.Duration

	// Store optionally persists successful payloads (e.g. cache.Manager).
	// Entries written there expire after StaleTime.
	Store cache.Store

	// Notifier receives user-facing failure notices (default: discard)
	Notifier notify.Notifier

	// Logger for query events (default: component logger "query")
	Logger *zerolog.Logger

	// Timeout bounds a shared request once it no longer follows the
	// context of the caller that started it (default: client.DefaultTimeout)
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		StaleTime: DefaultStaleTime,
		GCTime:    DefaultGCTime,
		Timeout:   client.DefaultTimeout,
	}
}

// Client owns the query cache shared by every accessor built from it.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry

	group   singleflight.Group
	store   cache.Store
	handler *ErrorHandler
	logger  zerolog.Logger

	staleTime time.Duration
	gcTime    time.Duration
	timeout   time.Duration
}

// entry is the cached state of one key. value holds the decoded payload of
// the last success, raw its bytes.
type entry struct {
	status     Status
	value      any
	raw        []byte
	err        error
	updatedAt  time.Time
	lastAccess time.Time
	invalid    bool
}

// NewClient creates a query client.
func NewClient(cfg Config) *Client {
	logger := logging.NewLogger("query")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.StaleTime < 0 {
		cfg.StaleTime = 0
	}
	if cfg.GCTime <= 0 {
		cfg.GCTime = DefaultGCTime
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = client.DefaultTimeout
	}

	return &Client{
		entries:   make(map[string]*entry),
		store:     cfg.Store,
		handler:   NewErrorHandler(cfg.Notifier, logger),
		logger:    logger,
		staleTime: cfg.StaleTime,
		gcTime:    cfg.GCTime,
		timeout:   cfg.Timeout,
	}
}

// ErrorHandler returns the shared failure handler.
func (c *Client) ErrorHandler() *ErrorHandler {
	return c.handler
}

type (
	fetchFunc  func(ctx context.Context) (*client.Response, error)
	decodeFunc func(raw []byte) (any, error)
)

// cached is a success as held by the client. value may have been decoded
// into another type by a different accessor sharing the key; raw is kept
// for that case.
type cached struct {
	value any
	raw   []byte
	at    time.Time
}

// flight is the outcome of one shared request. Every caller that joined
// it receives the same outcome; a failure is reported to the user once,
// and only if at least one joined caller was not silent.
type flight struct {
	hit      cached
	err      error
	reported sync.Once
}

// lookup returns the payload for key, fetching it when no fresh success is
// cached. Concurrent lookups of one key share a single request. The shared
// request is detached from the callers' contexts and bounded by the client
// timeout instead, so a caller that gives up only stops waiting.
func (c *Client) lookup(ctx context.Context, key cache.Key, o options, fetch fetchFunc, decode decodeFunc) (cached, error) {
	ks := key.String()
	staleTime := c.staleTime
	if o.staleTime >= 0 {
		staleTime = o.staleTime
	}

	if hit, ok := c.fresh(ks, staleTime); ok {
		queryLookups.WithLabelValues("fresh").Inc()
		c.logger.Debug().Str("key", ks).Msg("Query served from memory")
		return hit, nil
	}

	if hit, ok := c.fromStore(ctx, key, decode); ok {
		queryLookups.WithLabelValues("store").Inc()
		return hit, nil
	}

	c.markPending(ks)

	ch := c.group.DoChan(ks, func() (any, error) {
		queryLookups.WithLabelValues("network").Inc()

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.run(fctx, key, staleTime, fetch, decode), nil
	})

	select {
	case <-ctx.Done():
		c.logger.Debug().Str("key", ks).Msg("Caller stopped waiting for query")
		return cached{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			querySharedFlights.Inc()
		}
		f := r.Val.(*flight)
		if f.err != nil {
			if !o.silent {
				f.reported.Do(func() { c.handler.notify(f.err) })
			}
			return cached{}, f.err
		}
		return f.hit, nil
	}
}

// run performs the request for key and records the outcome. Failures are
// classified here but reported by the callers.
func (c *Client) run(ctx context.Context, key cache.Key, staleTime time.Duration, fetch fetchFunc, decode decodeFunc) *flight {
	ks := key.String()

	resp, err := fetch(ctx)
	raw, err := c.handler.Unwrap(resp, err, Silent())
	if err != nil {
		return c.failFlight(ks, err)
	}

	v, err := decode(raw)
	if err != nil {
		return c.failFlight(ks, c.handler.Handle(err, Silent()))
	}

	at := c.succeed(ks, v, raw)
	if c.store != nil && staleTime > 0 {
		if err := c.store.Set(ctx, key, cache.NewEntry(raw, resp.StatusCode, staleTime)); err != nil {
			c.logger.Warn().Err(err).Str("key", ks).Msg("Failed to persist query result")
		}
	}
	return &flight{hit: cached{value: v, raw: raw, at: at}}
}

func (c *Client) failFlight(ks string, err error) *flight {
	if errors.Is(err, context.Canceled) {
		c.forget(ks)
	} else {
		c.fail(ks, err)
	}
	return &flight{err: err}
}

func withSilent(silent bool) []Option {
	if silent {
		return []Option{Silent()}
	}
	return nil
}

func (c *Client) fresh(ks string, staleTime time.Duration) (cached, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ks]
	if !ok {
		return cached{}, false
	}
	e.lastAccess = time.Now()

	if e.status != StatusSuccess || e.invalid || time.Since(e.updatedAt) >= staleTime {
		return cached{}, false
	}
	return cached{value: e.value, raw: e.raw, at: e.updatedAt}, true
}

func (c *Client) fromStore(ctx context.Context, key cache.Key, decode decodeFunc) (cached, bool) {
	if c.store == nil {
		return cached{}, false
	}

	stored, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Query store lookup failed")
		}
		return cached{}, false
	}

	v, err := decode(stored.Data)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Discarding undecodable stored entry")
		return cached{}, false
	}

	c.mu.Lock()
	now := time.Now()
	c.entries[key.String()] = &entry{
		status:     StatusSuccess,
		value:      v,
		raw:        stored.Data,
		updatedAt:  stored.CachedAt,
		lastAccess: now,
	}
	c.mu.Unlock()

	return cached{value: v, raw: stored.Data, at: stored.CachedAt}, true
}

func (c *Client) markPending(ks string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ks]
	if !ok {
		c.entries[ks] = &entry{status: StatusPending, lastAccess: time.Now()}
		return
	}
	// A stale success keeps serving its data while it is refetched.
	if e.status != StatusSuccess {
		e.status = StatusPending
		e.err = nil
	}
}

func (c *Client) succeed(ks string, v any, raw []byte) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[ks] = &entry{
		status:     StatusSuccess,
		value:      v,
		raw:        raw,
		updatedAt:  now,
		lastAccess: now,
	}
	return now
}

// fail records err for ks. The last successful value is dropped so a
// failure is never served as data.
func (c *Client) fail(ks string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	c.entries[ks] = &entry{
		status:     StatusError,
		err:        err,
		updatedAt:  now,
		lastAccess: now,
	}
}

// forget drops a pending entry whose request was cancelled, leaving any
// earlier success or failure in place.
func (c *Client) forget(ks string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[ks]; ok && e.status == StatusPending {
		delete(c.entries, ks)
	}
}

// peek returns the current state for ks without fetching.
func (c *Client) peek(ks string) (Status, cached, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[ks]
	if !ok {
		return StatusPending, cached{}, nil
	}
	switch e.status {
	case StatusSuccess:
		return StatusSuccess, cached{value: e.value, raw: e.raw, at: e.updatedAt}, nil
	case StatusError:
		return StatusError, cached{at: e.updatedAt}, e.err
	default:
		return StatusPending, cached{}, nil
	}
}

func (c *Client) invalidate(ctx context.Context, key cache.Key) {
	ks := key.String()

	c.mu.Lock()
	if e, ok := c.entries[ks]; ok {
		e.invalid = true
	}
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", ks).Msg("Failed to delete stored query result")
		}
	}
}

// InvalidateKey marks the entry for key stale so the next Get refetches.
func (c *Client) InvalidateKey(ctx context.Context, key cache.Key) {
	c.invalidate(ctx, key)
}

// Prune drops entries that have not been accessed within the gc time and
// are not loading. It returns the number of dropped entries.
func (c *Client) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	for ks, e := range c.entries {
		if e.status == StatusPending {
			continue
		}
		if time.Since(e.lastAccess) > c.gcTime {
			delete(c.entries, ks)
			dropped++
		}
	}

	if dropped > 0 {
		c.logger.Debug().Int("dropped", dropped).Msg("Pruned query entries")
	}
	return dropped
}

// PruneEvery runs Prune on every tick of interval until ctx is done.
// A non-positive interval uses the gc time.
func (c *Client) PruneEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.gcTime
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Prune()
		}
	}
}

// Len returns the number of cached entries.
func (c *Client) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
