package query

import (
	"context"
	"sync"
	"time"
)

// MutationOptions are the caller callbacks of a mutation.
type MutationOptions[P, T any] struct {
	// OnSuccess runs after every successful invocation.
	OnSuccess func(data T, params P)

	// OnError replaces the default failure notification when set.
	OnError func(err error, params P)

	// OnSettled runs after every invocation.
	OnSettled func(data T, err error, params P)
}

// Mutation is an uncached, non-deduplicated accessor. Every invocation
// issues a request.
type Mutation[P, T any] struct {
	client *Client
	fetch  FetchFunc[P]
	opts   MutationOptions[P, T]

	mu    sync.Mutex
	state Result[T]
	gen   uint64

	wg sync.WaitGroup
}

// BuildMutation returns a constructor for mutation accessors. mapOptions,
// when non-nil, adjusts the caller options before they are applied.
func BuildMutation[P, T any](c *Client, fetch FetchFunc[P], mapOptions func(*MutationOptions[P, T]) *MutationOptions[P, T]) func(*MutationOptions[P, T]) *Mutation[P, T] {
	return func(opts *MutationOptions[P, T]) *Mutation[P, T] {
		if mapOptions != nil {
			opts = mapOptions(opts)
		}

		m := &Mutation[P, T]{
			client: c,
			fetch:  fetch,
			state:  Result[T]{Status: StatusIdle},
		}
		if opts != nil {
			m.opts = *opts
		}
		return m
	}
}

// Do runs the mutation and waits for the result.
func (m *Mutation[P, T]) Do(ctx context.Context, params P) (T, error) {
	gen := m.begin()

	data, err := m.run(ctx, params)

	m.settle(gen, data, err)

	if err != nil {
		if m.opts.OnError != nil {
			m.opts.OnError(err, params)
		}
	} else if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(data, params)
	}
	if m.opts.OnSettled != nil {
		m.opts.OnSettled(data, err, params)
	}

	return data, err
}

// Mutate runs the mutation in the background. Observe the outcome through
// State, Wait or the callbacks.
func (m *Mutation[P, T]) Mutate(ctx context.Context, params P) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.Do(ctx, params)
	}()
}

// Wait blocks until every invocation started with Mutate has settled.
func (m *Mutation[P, T]) Wait() {
	m.wg.Wait()
}

// State returns the result of the most recent invocation.
func (m *Mutation[P, T]) State() Result[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to idle.
func (m *Mutation[P, T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = Result[T]{Status: StatusIdle}
}

func (m *Mutation[P, T]) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.state = Result[T]{Status: StatusPending}
	return m.gen
}

// settle records the outcome unless a later invocation has started.
func (m *Mutation[P, T]) settle(gen uint64, data T, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return
	}
	if err != nil {
		m.state = Result[T]{Err: err, Status: StatusError, UpdatedAt: time.Now()}
		return
	}
	m.state = Result[T]{Data: data, Status: StatusSuccess, UpdatedAt: time.Now()}
}

func (m *Mutation[P, T]) run(ctx context.Context, params P) (T, error) {
	var zero T

	// A caller OnError takes over failure reporting entirely.
	opts := withSilent(m.opts.OnError != nil)

	resp, err := m.fetch(ctx, params)
	raw, err := m.client.handler.Unwrap(resp, err, opts...)
	if err != nil {
		return zero, err
	}

	data, err := decode[T](raw)
	if err != nil {
		return zero, m.client.handler.Handle(err, opts...)
	}
	return data, nil
}
