package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key string.
const KeyPrefix = "nasa"

// Key identifies a cached response: the endpoint name and the parameter
// bag the request was made with.
type Key struct {
	// Name is the logical endpoint name (e.g., "apod", "mars-photos")
	Name string

	// Params are the request parameters (e.g., {"date": "2024-01-01"})
	Params url.Values
}

// NewKey builds a key from an endpoint name and its parameters.
func NewKey(name string, params url.Values) Key {
	return Key{Name: name, Params: params}
}

// String generates a deterministic cache key string.
// Format: nasa:name:param1=val1:param2=val2a,val2b
//
// Parameter names are sorted. Names and values are query-escaped, so
// separators inside values cannot make two different bags render equal.
//
// Example:
//
//	nasa:apod:date=2024-01-01
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if name := strings.Trim(k.Name, "/"); name != "" {
		parts = append(parts, url.QueryEscape(name))
	}

	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := k.Params[name]
			escaped := make([]string, len(values))
			for i, v := range values {
				escaped[i] = url.QueryEscape(v)
			}
			parts = append(parts, url.QueryEscape(name)+"="+strings.Join(escaped, ","))
		}
	}

	return strings.Join(parts, ":")
}

// Equal reports whether two keys render to the same string.
func (k Key) Equal(other Key) bool {
	return k.String() == other.String()
}
