package explorer

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
	"github.com/Sternrassler/nasa-explorer-client/pkg/neo"
	"github.com/Sternrassler/nasa-explorer-client/pkg/query"
)

// NEOSummary fetches the feed for rng and aggregates it. A range that fails
// validation is reported as an error without a request. The summary is
// recomputed only when the feed itself changes.
func (e *Explorer) NEOSummary(ctx context.Context, rng neo.DateRange, opts ...query.Option) query.Result[neo.Summary] {
	if w := rng.Warning(); w != "" {
		return query.Result[neo.Summary]{
			Err:    fmt.Errorf("%w: %s", ErrInvalidRange, w),
			Status: query.StatusError,
		}
	}

	res := e.neos.Get(ctx, rng.Params(), opts...)
	if !res.IsSuccess() {
		return query.Result[neo.Summary]{Err: res.Err, Status: res.Status, UpdatedAt: res.UpdatedAt}
	}

	return query.Result[neo.Summary]{
		Data:      e.memo.Summarize(res.Data.NearEarthObjects),
		Status:    query.StatusSuccess,
		UpdatedAt: res.UpdatedAt,
	}
}

// NEORange fetches the feed for an arbitrary range as consecutive 7-day
// windows. Each window goes through the feed query, so windows already
// cached are not requested again. On failure the partial feed is returned
// with the error.
func (e *Explorer) NEORange(ctx context.Context, start, end time.Time) (map[string][]nasa.NEOObject, error) {
	return e.windows.FetchRange(ctx, neo.DateRange{Start: neo.Day(start), End: neo.Day(end)})
}

func (e *Explorer) fetchWindow(ctx context.Context, params nasa.NEOParams) (map[string][]nasa.NEOObject, error) {
	resp, err := e.neos.Fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	return resp.NearEarthObjects, nil
}
