package query

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/notify"
	"github.com/rs/zerolog"
)

type apodParams struct {
	Date string
}

type apod struct {
	Title string `json:"title"`
}

func apodKey(p apodParams) cache.Key {
	return cache.NewKey("apod", url.Values{"date": {p.Date}})
}

func jsonResponse(status int, body string) *client.Response {
	return &client.Response{Endpoint: "/api/apod", StatusCode: status, Body: []byte(body)}
}

// mapStore is a minimal cache.Store standing in for Redis.
type mapStore struct {
	mu      sync.Mutex
	entries map[string]*cache.Entry
}

func newMapStore() *mapStore {
	return &mapStore{entries: make(map[string]*cache.Entry)}
}

func (s *mapStore) Get(_ context.Context, key cache.Key) (*cache.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok || e.IsExpired() {
		return nil, cache.ErrCacheMiss
	}
	return e, nil
}

func (s *mapStore) Set(_ context.Context, key cache.Key, entry *cache.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = entry
	return nil
}

func (s *mapStore) Delete(_ context.Context, key cache.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key.String())
	return nil
}

func (s *mapStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newTestClient(t *testing.T, rec *notify.Recorder) *Client {
	t.Helper()

	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.Logger = &logger
	if rec != nil {
		cfg.Notifier = rec
	}
	return NewClient(cfg)
}

func TestQuery_DeduplicatesConcurrentRequests(t *testing.T) {
	qc := newTestClient(t, nil)

	var calls atomic.Int32
	release := make(chan struct{})
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		calls.Add(1)
		<-release
		return jsonResponse(http.StatusOK, `{"title":"Orion"}`), nil
	})

	const n = 10
	var wg sync.WaitGroup
	results := make([]Result[apod], n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = q.Get(context.Background(), apodParams{Date: "2024-01-01"})
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	for i, res := range results {
		if !res.IsSuccess() || res.Data.Title != "Orion" {
			t.Errorf("result %d = %+v, want success Orion", i, res)
		}
	}
}

func TestQuery_ReusesFreshResult(t *testing.T) {
	qc := newTestClient(t, nil)

	var calls atomic.Int32
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"title":"`+p.Date+`"}`), nil
	})

	ctx := context.Background()
	q.Get(ctx, apodParams{Date: "2024-01-01"})
	q.Get(ctx, apodParams{Date: "2024-01-01"})
	if got := calls.Load(); got != 1 {
		t.Errorf("equal params: fetch called %d times, want 1", got)
	}

	res := q.Get(ctx, apodParams{Date: "2024-01-02"})
	if got := calls.Load(); got != 2 {
		t.Errorf("distinct params: fetch called %d times, want 2", got)
	}
	if res.Data.Title != "2024-01-02" {
		t.Errorf("Title = %q, want 2024-01-02", res.Data.Title)
	}

	q.Get(ctx, apodParams{Date: "2024-01-01"}, WithStaleTime(0))
	if got := calls.Load(); got != 3 {
		t.Errorf("zero stale time: fetch called %d times, want 3", got)
	}
}

func TestQuery_KeyOverride(t *testing.T) {
	qc := newTestClient(t, nil)

	var calls atomic.Int32
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"title":"x"}`), nil
	})

	override := cache.NewKey("apod-today", nil)
	ctx := context.Background()
	q.Get(ctx, apodParams{Date: "2024-01-01"}, WithKey(override))
	q.Get(ctx, apodParams{Date: "2024-01-02"}, WithKey(override))

	if got := calls.Load(); got != 1 {
		t.Errorf("fetch called %d times, want 1", got)
	}
	if !q.Key(apodParams{Date: "a"}, WithKey(override)).Equal(override) {
		t.Error("WithKey should take precedence over the derived key")
	}
	if res := q.Peek(apodParams{Date: "2024-01-01"}); !res.IsPending() {
		t.Errorf("derived key should be untouched, got %q", res.Status)
	}
}

func TestQuery_ErrorsAreNotCached(t *testing.T) {
	rec := &notify.Recorder{}
	qc := newTestClient(t, rec)

	var calls atomic.Int32
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		if calls.Add(1) == 1 {
			return jsonResponse(http.StatusInternalServerError, `{"message":"boom"}`),
				&client.APIError{Class: client.ErrorClassServer, StatusCode: 500, Message: "boom"}
		}
		return jsonResponse(http.StatusOK, `{"title":"ok"}`), nil
	})

	ctx := context.Background()
	params := apodParams{Date: "2024-01-01"}

	res := q.Get(ctx, params)
	if !res.IsError() {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	apiErr, ok := client.AsAPIError(res.Err)
	if !ok || apiErr.Message != "boom" {
		t.Errorf("Err = %v, want *APIError with message boom", res.Err)
	}
	if peek := q.Peek(params); !peek.IsError() {
		t.Errorf("Peek status = %q, want error", peek.Status)
	}
	if rec.Len() != 1 || rec.Notices()[0].Message != "boom" {
		t.Errorf("Notices = %+v, want one with message boom", rec.Notices())
	}

	res = q.Get(ctx, params)
	if !res.IsSuccess() || res.Data.Title != "ok" {
		t.Errorf("second Get = %+v, want success", res)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2", got)
	}
}

func TestQuery_SilentSuppressesNotice(t *testing.T) {
	rec := &notify.Recorder{}
	qc := newTestClient(t, rec)

	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	res := q.Get(context.Background(), apodParams{}, Silent())
	if !res.IsError() {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if rec.Len() != 0 {
		t.Errorf("Notices = %d, want 0", rec.Len())
	}
}

func TestQuery_UndecodablePayload(t *testing.T) {
	qc := newTestClient(t, nil)

	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return jsonResponse(http.StatusOK, `[1,2,3]`), nil
	})

	res := q.Get(context.Background(), apodParams{})
	if !res.IsError() {
		t.Fatalf("Status = %q, want error", res.Status)
	}
	if apiErr, ok := client.AsAPIError(res.Err); !ok || apiErr.Class != client.ErrorClassUnknown {
		t.Errorf("Err = %v, want unknown class", res.Err)
	}
}

func TestQuery_PeekAndInvalidate(t *testing.T) {
	qc := newTestClient(t, nil)

	var calls atomic.Int32
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"title":"x"}`), nil
	})

	ctx := context.Background()
	params := apodParams{Date: "2024-01-01"}

	if res := q.Peek(params); !res.IsPending() {
		t.Errorf("Peek before Get = %q, want pending", res.Status)
	}

	q.Get(ctx, params)
	if res := q.Peek(params); !res.IsSuccess() || res.UpdatedAt.IsZero() {
		t.Errorf("Peek after Get = %+v, want success", res)
	}

	q.Invalidate(ctx, params)
	q.Get(ctx, params)
	if got := calls.Load(); got != 2 {
		t.Errorf("fetch called %d times, want 2", got)
	}
}

func TestStaticQuery(t *testing.T) {
	qc := newTestClient(t, nil)

	var calls atomic.Int32
	stats := BuildQueryNoParams[map[string]int](qc, cache.NewKey("stats", nil), func(ctx context.Context) (*client.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"neo_count":12}`), nil
	})

	ctx := context.Background()
	first := stats.Get(ctx)
	second := stats.Get(ctx)

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
	if first.Data["neo_count"] != 12 || second.Data["neo_count"] != 12 {
		t.Errorf("Data = %v / %v, want neo_count 12", first.Data, second.Data)
	}
	if stats.Key().String() != "nasa:stats" {
		t.Errorf("Key() = %q, want nasa:stats", stats.Key().String())
	}
}

func TestClient_Prune(t *testing.T) {
	logger := zerolog.Nop()
	qc := NewClient(Config{StaleTime: time.Minute, GCTime: time.Millisecond, Logger: &logger})

	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return jsonResponse(http.StatusOK, `{"title":"x"}`), nil
	})
	q.Get(context.Background(), apodParams{Date: "2024-01-01"})

	time.Sleep(5 * time.Millisecond)

	if dropped := qc.Prune(); dropped != 1 {
		t.Errorf("Prune() = %d, want 1", dropped)
	}
	if qc.Len() != 0 {
		t.Errorf("Len() = %d, want 0", qc.Len())
	}
}

func TestClient_BackingStore(t *testing.T) {
	store := newMapStore()
	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.Store = store
	cfg.Logger = &logger

	var calls atomic.Int32
	fetch := func(ctx context.Context, p apodParams) (*client.Response, error) {
		calls.Add(1)
		return jsonResponse(http.StatusOK, `{"title":"stored"}`), nil
	}

	ctx := context.Background()
	first := BuildQuery[apodParams, apod](NewClient(cfg), apodKey, fetch)
	first.Get(ctx, apodParams{Date: "2024-01-01"})

	if store.Len() != 1 {
		t.Fatalf("store.Len() = %d, want 1", store.Len())
	}

	second := BuildQuery[apodParams, apod](NewClient(cfg), apodKey, fetch)
	res := second.Get(ctx, apodParams{Date: "2024-01-01"})

	if !res.IsSuccess() || res.Data.Title != "stored" {
		t.Errorf("Get = %+v, want stored success", res)
	}
	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
}

func TestQuery_ThroughHTTPClient(t *testing.T) {
	var hits atomic.Int32
	server := newAPODServer(t, &hits)

	api, err := client.New(client.DefaultConfig(server.URL))
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}

	qc := newTestClient(t, nil)
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return api.Get(ctx, client.EndpointAPOD, url.Values{"date": {p.Date}})
	})

	ctx := context.Background()
	res := q.Get(ctx, apodParams{Date: "2024-01-01"})
	if !res.IsSuccess() || res.Data.Title != "Orion" {
		t.Fatalf("Get = %+v, want Orion", res)
	}
	q.Get(ctx, apodParams{Date: "2024-01-01"})

	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestClient_PruneEvery(t *testing.T) {
	logger := zerolog.Nop()
	qc := NewClient(Config{StaleTime: time.Minute, GCTime: time.Millisecond, Logger: &logger})

	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return jsonResponse(http.StatusOK, `{"title":"x"}`), nil
	})
	q.Get(context.Background(), apodParams{Date: "2024-01-01"})
	q.Get(context.Background(), apodParams{Date: "2024-01-02"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		qc.PruneEvery(ctx, 2*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for qc.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if qc.Len() != 0 {
		t.Errorf("Len() = %d after pruning, want 0", qc.Len())
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PruneEvery did not stop after cancel")
	}
}

func TestQuery_CallerCancelKeepsSharedRequest(t *testing.T) {
	rec := &notify.Recorder{}
	qc := newTestClient(t, rec)

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return jsonResponse(http.StatusOK, `{"title":"Orion"}`), nil
	})
	params := apodParams{Date: "2024-01-01"}

	ctxA, cancelA := context.WithCancel(context.Background())
	resA := make(chan Result[apod], 1)
	go func() { resA <- q.Get(ctxA, params) }()
	<-started

	resB := make(chan Result[apod], 1)
	go func() { resB <- q.Get(context.Background(), params) }()
	time.Sleep(20 * time.Millisecond) // let B join the request

	cancelA()
	a := <-resA
	if !errors.Is(a.Err, context.Canceled) {
		t.Errorf("cancelled caller err = %v, want context.Canceled", a.Err)
	}

	close(release)
	b := <-resB
	if !b.IsSuccess() || b.Data.Title != "Orion" {
		t.Fatalf("live caller = %+v, want success", b)
	}

	if calls.Load() != 1 {
		t.Errorf("fetch called %d times, want 1", calls.Load())
	}
	if rec.Len() != 0 {
		t.Errorf("notices = %d, want 0", rec.Len())
	}
	if peek := q.Peek(params); !peek.IsSuccess() {
		t.Errorf("Peek = %+v, want success", peek)
	}
}

func TestQuery_CancelledFetchIsNotRecorded(t *testing.T) {
	rec := &notify.Recorder{}
	qc := newTestClient(t, rec)

	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		return nil, context.Canceled
	})
	params := apodParams{Date: "2024-01-01"}

	res := q.Get(context.Background(), params)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", res.Err)
	}
	if rec.Len() != 0 {
		t.Errorf("notices = %d, want 0", rec.Len())
	}
	if peek := q.Peek(params); peek.IsError() {
		t.Errorf("Peek = %+v, a cancellation must not be recorded as an error", peek)
	}
}

func TestQuery_JoinedCallerIsNotified(t *testing.T) {
	rec := &notify.Recorder{}
	qc := newTestClient(t, rec)

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	q := BuildQuery[apodParams, apod](qc, apodKey, func(ctx context.Context, p apodParams) (*client.Response, error) {
		once.Do(func() { close(started) })
		<-release
		return jsonResponse(http.StatusInternalServerError, `{"error":"down"}`), nil
	})
	params := apodParams{Date: "2024-01-01"}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		q.Get(context.Background(), params, Silent())
	}()
	<-started
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			q.Get(context.Background(), params)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if rec.Len() != 1 {
		t.Fatalf("notices = %d, want exactly 1", rec.Len())
	}
	if got := rec.Notices()[0].Message; got != "down" {
		t.Errorf("notice = %q, want down", got)
	}
}
