package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
	"github.com/Sternrassler/nasa-explorer-client/pkg/neo"
	"github.com/rs/zerolog/log"
)

// Config holds window fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int
	// Timeout per window fetch
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
	}
}

// WindowSource fetches the feed for a single window of at most
// neo.MaxSpanDays days.
type WindowSource interface {
	FetchWindow(ctx context.Context, params nasa.NEOParams) (map[string][]nasa.NEOObject, error)
}

// WindowSourceFunc adapts a function to WindowSource.
type WindowSourceFunc func(ctx context.Context, params nasa.NEOParams) (map[string][]nasa.NEOObject, error)

// FetchWindow calls f.
func (f WindowSourceFunc) FetchWindow(ctx context.Context, params nasa.NEOParams) (map[string][]nasa.NEOObject, error) {
	return f(ctx, params)
}

// WindowResult represents the result of fetching a single window
type WindowResult struct {
	Index  int
	Window neo.DateRange
	Feed   map[string][]nasa.NEOObject
	Error  error
}

// WindowFetcher fetches a long date range as consecutive windows in parallel
type WindowFetcher struct {
	source WindowSource
	config Config
}

// NewWindowFetcher creates a new window fetcher
func NewWindowFetcher(source WindowSource, config Config) *WindowFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &WindowFetcher{
		source: source,
		config: config,
	}
}

// Windows splits r into consecutive, non-overlapping windows whose span
// does not exceed neo.MaxSpanDays. An inverted range yields no windows.
func Windows(r neo.DateRange) []neo.DateRange {
	if r.Start.After(r.End) {
		return nil
	}

	var windows []neo.DateRange
	for start := r.Start; !start.After(r.End); start = start.AddDate(0, 0, neo.MaxSpanDays+1) {
		end := start.AddDate(0, 0, neo.MaxSpanDays)
		if end.After(r.End) {
			end = r.End
		}
		windows = append(windows, neo.DateRange{Start: start, End: end})
	}
	return windows
}

// FetchRange fetches every window of r and merges the per-date feeds.
// On failure the windows fetched so far are returned together with the
// first error.
func (wf *WindowFetcher) FetchRange(ctx context.Context, r neo.DateRange) (map[string][]nasa.NEOObject, error) {
	start := time.Now()
	windows := Windows(r)
	if len(windows) == 0 {
		return nil, fmt.Errorf("invalid date range %s..%s", nasa.FormatDate(r.Start), nasa.FormatDate(r.End))
	}

	log.Info().
		Str("start_date", nasa.FormatDate(r.Start)).
		Str("end_date", nasa.FormatDate(r.End)).
		Int("windows", len(windows)).
		Msg("Starting windowed feed fetch")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan int, len(windows))
	for i := range windows {
		queue <- i
	}
	close(queue)

	results := make(chan WindowResult, len(windows))

	workers := wf.config.MaxConcurrency
	if workers > len(windows) {
		workers = len(windows)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wf.worker(ctx, windows, queue, results, &wg, i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	merged := make(map[string][]nasa.NEOObject)
	var firstErr error
	fetched := 0
	for result := range results {
		if result.Error != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("window %s..%s: %w",
					nasa.FormatDate(result.Window.Start), nasa.FormatDate(result.Window.End), result.Error)
				cancel()
			}
			continue
		}

		for date, objects := range result.Feed {
			merged[date] = append(merged[date], objects...)
		}
		fetched++
	}

	if firstErr != nil {
		log.Warn().
			Err(firstErr).
			Int("fetched_windows", fetched).
			Int("total_windows", len(windows)).
			Msg("Window fetch failed - returning partial results")
		return merged, fmt.Errorf("partial data (%d/%d windows): %w", fetched, len(windows), firstErr)
	}

	log.Info().
		Int("windows", fetched).
		Int("dates", len(merged)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return merged, nil
}

// worker processes windows from the queue
func (wf *WindowFetcher) worker(ctx context.Context, windows []neo.DateRange, queue <-chan int, results chan<- WindowResult, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for idx := range queue {
		select {
		case <-ctx.Done():
			log.Debug().
				Int("worker_id", workerID).
				Int("windows_processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		window := windows[idx]
		windowCtx, cancel := context.WithTimeout(ctx, wf.config.Timeout)
		feed, err := wf.source.FetchWindow(windowCtx, window.Params())
		cancel()

		results <- WindowResult{
			Index:  idx,
			Window: window,
			Feed:   feed,
			Error:  err,
		}
		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("start_date", window.Params().StartDate).
				Msg("Window fetch failed")
			return
		}
		processed++
	}

	if processed > 0 {
		log.Debug().
			Int("worker_id", workerID).
			Int("windows_processed", processed).
			Msg("Worker completed")
	}
}
