// Package pagination fetches near-earth-object feeds for date ranges longer
// than the backend accepts in one request.
//
// The feed endpoint rejects windows longer than 7 days. WindowFetcher splits
// a range into consecutive windows and fetches them with a worker pool:
//
//	fetcher := pagination.NewWindowFetcher(source, pagination.DefaultConfig())
//	feed, err := fetcher.FetchRange(ctx, neo.DateRange{Start: from, End: to})
//
// The fetcher:
//   - Splits the range into windows of at most 7 days
//   - Spawns a worker pool (default 4 workers)
//   - Merges the per-date results of every window
//   - Stops on the first failure and returns the partial data with the error
//
// No window is retried.
package pagination
