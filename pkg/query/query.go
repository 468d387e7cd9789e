package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
)

// KeyFunc derives the cache key of a parameter bag.
type KeyFunc[P any] func(params P) cache.Key

// FetchFunc performs the backend call for a parameter bag.
type FetchFunc[P any] func(ctx context.Context, params P) (*client.Response, error)

// Query is a keyed, cached, deduplicated accessor.
type Query[P, T any] struct {
	client *Client
	key    KeyFunc[P]
	fetch  FetchFunc[P]
}

// BuildQuery creates a query accessor from a key derivation and a fetch.
func BuildQuery[P, T any](c *Client, key KeyFunc[P], fetch FetchFunc[P]) *Query[P, T] {
	return &Query[P, T]{
		client: c,
		key:    key,
		fetch:  fetch,
	}
}

// Key returns the key the accessor uses for params. A WithKey option
// takes precedence over the derived key.
func (q *Query[P, T]) Key(params P, opts ...Option) cache.Key {
	o := newOptions(opts)
	if o.key != nil {
		return *o.key
	}
	return q.key(params)
}

// Get returns the result for params. A fresh cached success is returned
// without a request; otherwise the call is made, sharing any in-flight
// request for the same key.
func (q *Query[P, T]) Get(ctx context.Context, params P, opts ...Option) Result[T] {
	o := newOptions(opts)
	key := q.Key(params, opts...)

	hit, err := q.client.lookup(ctx, key, o,
		func(ctx context.Context) (*client.Response, error) {
			return q.fetch(ctx, params)
		},
		func(raw []byte) (any, error) {
			return decode[T](raw)
		},
	)
	if err != nil {
		return Result[T]{Err: err, Status: StatusError}
	}

	data, err := typed[T](hit)
	if err != nil {
		return Result[T]{Err: q.client.handler.Handle(err, withSilent(o.silent)...), Status: StatusError}
	}
	return Result[T]{Data: data, Status: StatusSuccess, UpdatedAt: hit.at}
}

// Fetch is Get returning the data and error directly.
func (q *Query[P, T]) Fetch(ctx context.Context, params P, opts ...Option) (T, error) {
	res := q.Get(ctx, params, opts...)
	return res.Data, res.Err
}

// Peek returns the current state for params without making a request.
// A key that was never requested reports StatusPending.
func (q *Query[P, T]) Peek(params P, opts ...Option) Result[T] {
	status, hit, err := q.client.peek(q.Key(params, opts...).String())

	switch status {
	case StatusSuccess:
		data, derr := typed[T](hit)
		if derr != nil {
			return Result[T]{Status: StatusPending}
		}
		return Result[T]{Data: data, Status: StatusSuccess, UpdatedAt: hit.at}
	case StatusError:
		return Result[T]{Err: err, Status: StatusError, UpdatedAt: hit.at}
	default:
		return Result[T]{Status: StatusPending}
	}
}

// Invalidate marks the entry for params stale so the next Get refetches.
func (q *Query[P, T]) Invalidate(ctx context.Context, params P, opts ...Option) {
	q.client.invalidate(ctx, q.Key(params, opts...))
}

// StaticQuery is a query without parameters under a fixed key.
type StaticQuery[T any] struct {
	q *Query[struct{}, T]
}

// BuildQueryNoParams creates an accessor for a parameterless call.
func BuildQueryNoParams[T any](c *Client, key cache.Key, fetch func(ctx context.Context) (*client.Response, error)) *StaticQuery[T] {
	return &StaticQuery[T]{
		q: BuildQuery[struct{}, T](c,
			func(struct{}) cache.Key { return key },
			func(ctx context.Context, _ struct{}) (*client.Response, error) { return fetch(ctx) },
		),
	}
}

// Key returns the fixed key, or the WithKey override.
func (s *StaticQuery[T]) Key(opts ...Option) cache.Key {
	return s.q.Key(struct{}{}, opts...)
}

// Get returns the result, fetching it when no fresh success is cached.
func (s *StaticQuery[T]) Get(ctx context.Context, opts ...Option) Result[T] {
	return s.q.Get(ctx, struct{}{}, opts...)
}

// Fetch is Get returning the data and error directly.
func (s *StaticQuery[T]) Fetch(ctx context.Context, opts ...Option) (T, error) {
	return s.q.Fetch(ctx, struct{}{}, opts...)
}

// Peek returns the current state without making a request.
func (s *StaticQuery[T]) Peek(opts ...Option) Result[T] {
	return s.q.Peek(struct{}{}, opts...)
}

// Invalidate marks the entry stale.
func (s *StaticQuery[T]) Invalidate(ctx context.Context, opts ...Option) {
	s.q.Invalidate(ctx, struct{}{}, opts...)
}

func decode[T any](raw []byte) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode payload: %w", err)
	}
	return v, nil
}

// typed returns the cached value as T, decoding the raw payload when the
// entry was filled by an accessor with another payload type.
func typed[T any](hit cached) (T, error) {
	if v, ok := hit.value.(T); ok {
		return v, nil
	}
	return decode[T](hit.raw)
}
