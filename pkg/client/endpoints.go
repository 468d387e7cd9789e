package client

import (
	"context"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
)

// Backend endpoint paths.
const (
	EndpointHealth     = "/api/health"
	EndpointAPOD       = "/api/apod"
	EndpointMarsPhotos = "/api/mars-photos"
	EndpointMarsRovers = "/api/mars-rovers"
	EndpointNEO        = "/api/neo"
	EndpointSearch     = "/api/search"
	EndpointEPIC       = "/api/epic"
	EndpointStats      = "/api/stats"
	EndpointNews       = "/api/search/news"
)

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*Response, error) {
	return c.Get(ctx, EndpointHealth, nil)
}

// APOD fetches Astronomy Picture of the Day entries.
func (c *Client) APOD(ctx context.Context, params nasa.APODParams) (*Response, error) {
	return c.Get(ctx, EndpointAPOD, params.Values())
}

// MarsPhotos fetches rover photographs.
func (c *Client) MarsPhotos(ctx context.Context, params nasa.MarsPhotosParams) (*Response, error) {
	return c.Get(ctx, EndpointMarsPhotos, params.Values())
}

// MarsRovers fetches rover mission information.
func (c *Client) MarsRovers(ctx context.Context) (*Response, error) {
	return c.Get(ctx, EndpointMarsRovers, nil)
}

// NEO fetches the near-earth-object feed for a window of at most 7 days.
func (c *Client) NEO(ctx context.Context, params nasa.NEOParams) (*Response, error) {
	return c.Get(ctx, EndpointNEO, params.Values())
}

// Search queries the NASA Image and Video Library.
func (c *Client) Search(ctx context.Context, params nasa.SearchParams) (*Response, error) {
	return c.Get(ctx, EndpointSearch, params.Values())
}

// EPIC fetches Earth Polychromatic Imaging Camera frames.
func (c *Client) EPIC(ctx context.Context, params nasa.EPICParams) (*Response, error) {
	return c.Get(ctx, EndpointEPIC, params.Values())
}

// Stats fetches aggregate statistics for the home page.
func (c *Client) Stats(ctx context.Context) (*Response, error) {
	return c.Get(ctx, EndpointStats, nil)
}

// News fetches recent NASA news.
func (c *Client) News(ctx context.Context) (*Response, error) {
	return c.Get(ctx, EndpointNews, nil)
}
