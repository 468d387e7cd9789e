// Package explorer provides the pre-built accessors of the NASA explorer:
// cached queries for every read endpoint, the search mutation, and the
// asteroid summary built on the near-earth-object feed.
package explorer

import (
	"context"
	"errors"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
	"github.com/Sternrassler/nasa-explorer-client/pkg/neo"
	"github.com/Sternrassler/nasa-explorer-client/pkg/pagination"
	"github.com/Sternrassler/nasa-explorer-client/pkg/query"
)

// Query key names.
const (
	KeyStats      = "stats"
	KeyNews       = "news"
	KeyMarsRovers = "mars-rovers"
	KeyHealth     = "health"
	KeyAPOD       = "apod"
	KeyMarsPhotos = "mars-photos"
	KeyNEO        = "neo"
	KeyEPIC       = "epic"
)

// ErrInvalidRange is returned for a feed range that fails validation.
var ErrInvalidRange = errors.New("invalid date range")

// SearchOptions are the callbacks of a search mutation.
type SearchOptions = query.MutationOptions[nasa.SearchParams, nasa.SearchResponse]

// Search is a search mutation.
type Search = query.Mutation[nasa.SearchParams, nasa.SearchResponse]

// Explorer bundles the accessors over one backend client and query cache.
type Explorer struct {
	api     *client.Client
	queries *query.Client
	windows *pagination.WindowFetcher
	memo    neo.Memo

	stats  *query.StaticQuery[nasa.StatsResponse]
	news   *query.StaticQuery[nasa.NewsResponse]
	rovers *query.StaticQuery[nasa.MarsRoversResponse]
	health *query.StaticQuery[nasa.HealthResponse]

	apod *query.Query[nasa.APODParams, nasa.APODResponse]
	mars *query.Query[nasa.MarsPhotosParams, nasa.MarsPhotosResponse]
	neos *query.Query[nasa.NEOParams, nasa.NEOResponse]
	epic *query.Query[nasa.EPICParams, nasa.EPICResponse]

	newSearch func(*SearchOptions) *Search
}

// New creates the accessors.
func New(api *client.Client, queries *query.Client) *Explorer {
	e := &Explorer{
		api:     api,
		queries: queries,

		stats:  query.BuildQueryNoParams[nasa.StatsResponse](queries, cache.NewKey(KeyStats, nil), api.Stats),
		news:   query.BuildQueryNoParams[nasa.NewsResponse](queries, cache.NewKey(KeyNews, nil), api.News),
		rovers: query.BuildQueryNoParams[nasa.MarsRoversResponse](queries, cache.NewKey(KeyMarsRovers, nil), api.MarsRovers),
		health: query.BuildQueryNoParams[nasa.HealthResponse](queries, cache.NewKey(KeyHealth, nil), api.Health),

		apod: query.BuildQuery[nasa.APODParams, nasa.APODResponse](queries,
			func(p nasa.APODParams) cache.Key { return cache.NewKey(KeyAPOD, p.Values()) },
			api.APOD),
		mars: query.BuildQuery[nasa.MarsPhotosParams, nasa.MarsPhotosResponse](queries,
			func(p nasa.MarsPhotosParams) cache.Key { return cache.NewKey(KeyMarsPhotos, p.Values()) },
			api.MarsPhotos),
		neos: query.BuildQuery[nasa.NEOParams, nasa.NEOResponse](queries,
			func(p nasa.NEOParams) cache.Key { return cache.NewKey(KeyNEO, p.Values()) },
			api.NEO),
		epic: query.BuildQuery[nasa.EPICParams, nasa.EPICResponse](queries,
			func(p nasa.EPICParams) cache.Key { return cache.NewKey(KeyEPIC, p.Values()) },
			api.EPIC),

		newSearch: query.BuildMutation[nasa.SearchParams, nasa.SearchResponse](queries, api.Search, nil),
	}

	e.windows = pagination.NewWindowFetcher(pagination.WindowSourceFunc(e.fetchWindow), pagination.DefaultConfig())
	return e
}

// Stats returns the aggregate statistics.
func (e *Explorer) Stats(ctx context.Context, opts ...query.Option) query.Result[nasa.StatsResponse] {
	return e.stats.Get(ctx, opts...)
}

// News returns recent NASA news.
func (e *Explorer) News(ctx context.Context, opts ...query.Option) query.Result[nasa.NewsResponse] {
	return e.news.Get(ctx, opts...)
}

// MarsRovers returns the rover missions.
func (e *Explorer) MarsRovers(ctx context.Context, opts ...query.Option) query.Result[nasa.MarsRoversResponse] {
	return e.rovers.Get(ctx, opts...)
}

// Health returns backend liveness.
func (e *Explorer) Health(ctx context.Context, opts ...query.Option) query.Result[nasa.HealthResponse] {
	return e.health.Get(ctx, opts...)
}

// APOD returns Astronomy Picture of the Day entries.
func (e *Explorer) APOD(ctx context.Context, params nasa.APODParams, opts ...query.Option) query.Result[nasa.APODResponse] {
	return e.apod.Get(ctx, params, opts...)
}

// MarsPhotos returns rover photographs.
func (e *Explorer) MarsPhotos(ctx context.Context, params nasa.MarsPhotosParams, opts ...query.Option) query.Result[nasa.MarsPhotosResponse] {
	return e.mars.Get(ctx, params, opts...)
}

// NEOs returns the near-earth-object feed for a window of at most 7 days.
func (e *Explorer) NEOs(ctx context.Context, params nasa.NEOParams, opts ...query.Option) query.Result[nasa.NEOResponse] {
	return e.neos.Get(ctx, params, opts...)
}

// EPIC returns EPIC frames.
func (e *Explorer) EPIC(ctx context.Context, params nasa.EPICParams, opts ...query.Option) query.Result[nasa.EPICResponse] {
	return e.epic.Get(ctx, params, opts...)
}

// NewSearch returns a search mutation. Searches are never cached.
func (e *Explorer) NewSearch(opts *SearchOptions) *Search {
	return e.newSearch(opts)
}

// Queries returns the underlying query client.
func (e *Explorer) Queries() *query.Client {
	return e.queries
}
