package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/config"
	"github.com/Sternrassler/nasa-explorer-client/pkg/explorer"
	"github.com/Sternrassler/nasa-explorer-client/pkg/metrics"
	"github.com/Sternrassler/nasa-explorer-client/pkg/nasa"
	"github.com/Sternrassler/nasa-explorer-client/pkg/neo"
	"github.com/Sternrassler/nasa-explorer-client/pkg/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached explorer data over HTTP",
		Long: `serve exposes the explorer queries as a JSON gateway. Every route goes
through the query cache, so concurrent and repeated requests for the same
data share one backend call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.app.serve(ctx)
		},
	}

	cmd.Flags().String(config.KeyListenAddr, "", "listen address (default: :8080)")
	c.v.BindPFlag(config.KeyListenAddr, cmd.Flags().Lookup(config.KeyListenAddr))
	return cmd
}

// serve runs the gateway until ctx is done, then drains open requests.
func (a *app) serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.ListenAddr,
		Handler:           newRouter(a.explorer, a.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go a.explorer.Queries().PruneEvery(ctx, a.cfg.CacheTTL)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", srv.Addr).Msg("Gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info().Msg("Shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	a.logger.Info().Msg("Gateway stopped")
	return nil
}

func newRouter(e *explorer.Explorer, logger zerolog.Logger) chi.Router {
	h := &handlers{explorer: e}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", h.health)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/stats", h.stats)
	r.Get("/news", h.news)
	r.Get("/rovers", h.rovers)
	r.Get("/apod", h.apod)
	r.Get("/mars-photos", h.marsPhotos)
	r.Get("/epic", h.epic)
	r.Get("/search", h.search)
	r.Route("/neo", func(r chi.Router) {
		r.Get("/", h.neoFeed)
		r.Get("/summary", h.neoSummary)
	})

	return r
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("Handled request")
		})
	}
}

type handlers struct {
	explorer *explorer.Explorer
}

type healthStatus struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Message string `json:"message,omitempty"`
}

// health reports the gateway as up and the backend as reachable or not.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	res := h.explorer.Health(r.Context(), query.Silent())
	if res.Err != nil {
		writeJSON(w, http.StatusServiceUnavailable, healthStatus{
			Status:  "degraded",
			Backend: "unavailable",
			Message: errorMessage(res.Err),
		})
		return
	}
	writeJSON(w, http.StatusOK, healthStatus{Status: "ok", Backend: res.Data.Status})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.explorer.Stats(r.Context()))
}

func (h *handlers) news(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.explorer.News(r.Context()))
}

func (h *handlers) rovers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.explorer.MarsRovers(r.Context()))
}

func (h *handlers) apod(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := nasa.APODParams{
		Date:      q.Get("date"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Thumbs:    q.Get("thumbs") == "true",
	}
	var err error
	if p.Count, err = intParam(q.Get("count")); err != nil {
		writeError(w, http.StatusBadRequest, "count must be a number")
		return
	}
	writeResult(w, h.explorer.APOD(r.Context(), p))
}

func (h *handlers) marsPhotos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := nasa.MarsPhotosParams{
		Rover:     q.Get("rover"),
		EarthDate: q.Get("earth_date"),
		Camera:    q.Get("camera"),
	}
	if p.Rover == "" {
		p.Rover = "curiosity"
	}
	if raw := q.Get("sol"); raw != "" {
		sol, err := strconv.Atoi(raw)
		if err != nil || sol < 0 {
			writeError(w, http.StatusBadRequest, "sol must be a non-negative number")
			return
		}
		p.Sol = nasa.Sol(sol)
	}
	var err error
	if p.Page, err = intParam(q.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, "page must be a number")
		return
	}
	writeResult(w, h.explorer.MarsPhotos(r.Context(), p))
}

func (h *handlers) epic(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.explorer.EPIC(r.Context(), nasa.EPICParams{Date: r.URL.Query().Get("date")}))
}

// search runs the search mutation. Searches are never cached.
func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := nasa.SearchParams{
		Q:         q.Get("q"),
		MediaType: q.Get("media_type"),
		YearStart: q.Get("year_start"),
		YearEnd:   q.Get("year_end"),
	}
	if p.Q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	var err error
	if p.Page, err = intParam(q.Get("page")); err != nil {
		writeError(w, http.StatusBadRequest, "page must be a number")
		return
	}

	data, err := h.explorer.NewSearch(&explorer.SearchOptions{
		OnError: func(error, nasa.SearchParams) {},
	}).Do(r.Context(), p)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// neoFeed returns the raw feed. Ranges longer than 7 days are fetched in
// windows.
func (h *handlers) neoFeed(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}

	feed, err := h.explorer.NEORange(r.Context(), rng.Start, rng.End)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	count := 0
	for _, objs := range feed {
		count += len(objs)
	}
	writeJSON(w, http.StatusOK, nasa.NEOResponse{ElementCount: count, NearEarthObjects: feed})
}

func (h *handlers) neoSummary(w http.ResponseWriter, r *http.Request) {
	rng, ok := parseRange(w, r)
	if !ok {
		return
	}
	writeResult(w, h.explorer.NEOSummary(r.Context(), rng))
}

// parseRange reads start_date and end_date, defaulting to the last 7 days.
func parseRange(w http.ResponseWriter, r *http.Request) (neo.DateRange, bool) {
	q := r.URL.Query()
	rng, err := neoRange(q.Get("start_date"), q.Get("end_date"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return rng, false
	}
	return rng, true
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func writeResult[T any](w http.ResponseWriter, res query.Result[T]) {
	if res.Err != nil {
		writeAPIError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res.Data)
}

// writeAPIError maps err to a gateway status. Client errors of the backend
// are passed through; everything else is a bad gateway.
func writeAPIError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, explorer.ErrInvalidRange):
		status = http.StatusBadRequest
	case errors.Is(err, client.ErrRateLimited):
		status = http.StatusTooManyRequests
	default:
		if apiErr, ok := client.AsAPIError(err); ok && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			status = apiErr.StatusCode
		}
	}
	writeError(w, status, errorMessage(err))
}

func errorMessage(err error) string {
	if apiErr, ok := client.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
