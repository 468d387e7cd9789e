// Package testutil provides testing utilities for the NASA explorer client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockNASA is a configurable mock of the explorer backend.
//
// Every endpoint answers with a small fixture by default. /api/neo builds a
// feed for the requested window and rejects windows longer than 7 days the
// way the real backend does.
type MockNASA struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	requestCount int
	pathCounts   map[string]int
	lastQuery    map[string]string
	lastHeader   http.Header
}

// NewMockNASA creates and starts a mock backend.
func NewMockNASA() *MockNASA {
	mock := &MockNASA{
		handlers:   make(map[string]http.HandlerFunc),
		pathCounts: make(map[string]int),
		lastQuery:  make(map[string]string),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[r.URL.Path]++
		mock.lastQuery[r.URL.Path] = r.URL.RawQuery
		mock.lastHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockNASA) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockNASA) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockNASA) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastQuery = make(map[string]string)
	m.lastHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockNASA) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockNASA) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockNASA) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// PathCount returns the number of requests made to path.
func (m *MockNASA) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastQuery returns the raw query string of the last request to path.
func (m *MockNASA) LastQuery(path string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery[path]
}

// LastHeader returns the headers of the last request.
func (m *MockNASA) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// defaultHandler serves the fixtures.
func (m *MockNASA) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-RateLimit-Limit", "1000")
	w.Header().Set("X-RateLimit-Remaining", "999")

	switch r.URL.Path {
	case "/api/health":
		writeJSON(w, http.StatusOK, map[string]any{"status": "OK", "message": "NASA Explorer API is running"})
	case "/api/apod":
		writeAPOD(w, r)
	case "/api/mars-photos":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(MarsPhotosFixture))
	case "/api/mars-rovers":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(MarsRoversFixture))
	case "/api/neo":
		writeNEOFeed(w, r)
	case "/api/search":
		if r.URL.Query().Get("q") == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Search query is required"})
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(SearchFixture))
	case "/api/epic":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(EPICFixture))
	case "/api/stats":
		writeJSON(w, http.StatusOK, map[string]int{"apod_count": 1, "neo_count": 42, "mars_photos_count": 3})
	case "/api/search/news":
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(NewsFixture))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Route not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeAPOD(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	item := func(date string) map[string]string {
		return map[string]string{
			"date":        date,
			"title":       "Orion Nebula " + date,
			"explanation": "A stellar nursery.",
			"media_type":  "image",
			"url":         "https://apod.nasa.gov/apod/image/orion.jpg",
		}
	}

	if q.Get("start_date") != "" {
		writeJSON(w, http.StatusOK, []map[string]string{item(q.Get("start_date")), item(q.Get("end_date"))})
		return
	}

	date := q.Get("date")
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, item(date))
}

// writeNEOFeed returns two objects per day of the requested window: a small
// safe one and a large hazardous one.
func writeNEOFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := time.Parse("2006-01-02", q.Get("start_date"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid start_date"})
		return
	}
	end, err := time.Parse("2006-01-02", q.Get("end_date"))
	if err != nil {
		end = start.AddDate(0, 0, 7)
	}
	if end.Sub(start) > 7*24*time.Hour || end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Date Format Exception - Expected format (yyyy-mm-dd) - The Feed date limit is only 7 Days",
		})
		return
	}

	feed := make(map[string][]map[string]any)
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := d.Format("2006-01-02")
		feed[date] = []map[string]any{
			neoObject(date+"-1", false, 10, 30),
			neoObject(date+"-2", true, 300, 500),
		}
		count += 2
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"element_count":      count,
		"near_earth_objects": feed,
	})
}

func neoObject(id string, hazardous bool, min, max float64) map[string]any {
	return map[string]any{
		"id":                                id,
		"name":                              fmt.Sprintf("(%s)", id),
		"is_potentially_hazardous_asteroid": hazardous,
		"estimated_diameter": map[string]any{
			"meters": map[string]float64{
				"estimated_diameter_min": min,
				"estimated_diameter_max": max,
			},
		},
	}
}

// NewOKResponse creates a 200 OK JSON response.
func NewOKResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 response with an exhausted quota.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": {"code": "OVER_RATE_LIMIT", "message": "You have exceeded your rate limit."}}`,
		Headers: map[string]string{
			"X-RateLimit-Limit":     "1000",
			"X-RateLimit-Remaining": "0",
			"Content-Type":          "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 response with an "error" field.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMessageErrorResponse creates an error response with a "message" field.
func NewMessageErrorResponse(status int, message string) MockResponse {
	body, _ := json.Marshal(map[string]string{"message": message})
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
