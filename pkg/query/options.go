package query

import (
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
)

// Option configures a single query call or error handling step.
type Option func(*options)

type options struct {
	key       *cache.Key
	staleTime time.Duration
	silent    bool
}

func newOptions(opts []Option) options {
	o := options{staleTime: -1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithKey overrides the key derived from the parameters.
func WithKey(key cache.Key) Option {
	return func(o *options) {
		o.key = &key
	}
}

// WithStaleTime overrides how long a successful result is reused.
// Zero forces a request on every call.
func WithStaleTime(d time.Duration) Option {
	return func(o *options) {
		o.staleTime = d
	}
}

// Silent suppresses the user notification for failures.
func Silent() Option {
	return func(o *options) {
		o.silent = true
	}
}
