// Package cache provides response caching for the NASA explorer client.
//
// A Key is derived from an endpoint name and its parameter bag. Two bags
// that are equal by value always render the same key string; bags that
// differ in any parameter render different strings.
//
// # Basic Usage
//
// Manager implements Store on Redis so that several processes share
// fetched bodies:
//
//	store := cache.NewManager(redis.NewClient(&redis.Options{Addr: "localhost:6379"}))
//
//	key := cache.NewKey("apod", url.Values{"date": []string{"2024-01-01"}})
//
//	entry, err := store.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the backend, then
//		_ = store.Set(ctx, key, cache.NewEntry(body, 200, 10*time.Minute))
//	}
//
// Within a process the query client keeps decoded results itself; a Store
// is only consulted when that in-memory entry is missing or stale.
//
// # Metrics
//
//   - nasa_cache_hits_total{layer="redis"} - Cache hits
//   - nasa_cache_misses_total - Cache misses
//   - nasa_cache_errors_total{operation} - Cache operation errors
package cache
