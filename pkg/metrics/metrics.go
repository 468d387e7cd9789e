// Package metrics exposes the Prometheus registry of the explorer client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, query) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the explorer client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer paired with Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - nasa_requests_total{endpoint, status} (Counter): Requests by endpoint and HTTP status
//     (status is "transport_error" or "rate_limited" when no response was received)
//   - nasa_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - nasa_errors_total{class} (Counter): Failures by class (transport, server, rate_limit)
//
// Query Metrics (pkg/query):
//   - nasa_query_lookups_total{source} (Counter): Lookups served fresh, from the store, or by network
//   - nasa_query_shared_total (Counter): Calls that joined an in-flight request
//
// Cache Metrics (pkg/cache):
//   - nasa_cache_hits_total{layer} (Counter): Store hits by layer (redis)
//   - nasa_cache_misses_total (Counter): Store misses
//   - nasa_cache_errors_total{operation} (Counter): Store operation errors
//
// Quota Metrics (pkg/ratelimit):
//   - nasa_ratelimit_remaining (Gauge): Requests remaining in the gateway quota window
//   - nasa_ratelimit_blocks_total (Counter): Requests blocked because the quota was exhausted
//
// Example Prometheus Queries:
//
//   # Query reuse rate
//   sum(rate(nasa_query_lookups_total{source!="network"}[5m])) /
//   sum(rate(nasa_query_lookups_total[5m]))
//
//   # Quota status
//   nasa_ratelimit_remaining < 100
//
//   # Request error rate by class
//   sum by (class) (rate(nasa_errors_total[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(nasa_request_duration_seconds_bucket[5m]))
