// Package query turns parameterized backend calls into cached, keyed,
// deduplicated accessors (queries) and uncached one-shot accessors
// (mutations).
//
// A query is identified by a cache.Key derived from its parameters. Equal
// parameter bags share one cache entry and at most one in-flight request;
// a successful result is reused without a new request until it goes stale.
// Failures are never cached as values.
//
// Usage:
//
//	qc := query.NewClient(query.DefaultConfig())
//	apod := query.BuildQuery[nasa.APODParams, nasa.APODResponse](qc,
//		func(p nasa.APODParams) cache.Key { return cache.NewKey("apod", p.Values()) },
//		api.APOD)
//	res := apod.Get(ctx, nasa.APODParams{Date: "2024-01-01"})
//	if res.Status == query.StatusError {
//		// res.Err is a *client.APIError; the user was already notified
//	}
//
// Every failure passes through the shared ErrorHandler, which classifies it,
// notifies the user unless Silent() is given, and returns it.
package query
