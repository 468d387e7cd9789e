// Package client provides the HTTP client for the NASA explorer backend
// with request logging, quota tracking and centralized error surfacing.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nasa_requests_total",
		Help: "Total NASA API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nasa_request_duration_seconds",
		Help:    "NASA API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nasa_errors_total",
		Help: "Total NASA API errors by class",
	}, []string{"class"})
)

// DefaultTimeout is applied to every call.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the client to the backend.
const DefaultUserAgent = "nasa-explorer-client/0.1.0"

// Client is the single point of egress to the backend.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the backend origin, e.g. "http://localhost:5000"
	BaseURL string

	// Timeout bounds every call
	Timeout time.Duration

	// UserAgent header sent with every request
	UserAgent string

	// LogRequests enables the diagnostic pre-request log line.
	// Enabled in development, disabled in production.
	LogRequests bool

	// RateLimit gates requests on the gateway quota (optional)
	RateLimit *ratelimit.Tracker
}

// DefaultConfig returns the default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Response is a completed call with its body fully read.
type Response struct {
	Endpoint   string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: cfg.RateLimit,
		config:      cfg,
		logger:      log.With().Str("component", "nasa-client").Logger(),
	}, nil
}

// Call performs a request against endpoint with params as query string.
// Non-2xx statuses and transport failures are returned as *APIError.
func (c *Client) Call(ctx context.Context, method, endpoint string, params url.Values) (*Response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Rate limit check failed")
		} else if !allowed {
			requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
			apiErr := &APIError{
				Endpoint: endpoint,
				Class:    ErrorClassRateLimit,
				Message:  ErrRateLimited.Error(),
				Err:      ErrRateLimited,
			}
			c.afterResponse(nil, apiErr)
			return nil, apiErr
		}
	}

	target := c.baseURL + endpoint
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.beforeRequest(req, endpoint)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		apiErr := &APIError{
			Endpoint: endpoint,
			Class:    ErrorClassTransport,
			Message:  ExtractMessage(nil, err),
			Err:      err,
		}
		c.afterResponse(nil, apiErr)
		return nil, apiErr
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		apiErr := &APIError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Class:      ErrorClassTransport,
			Message:    ExtractMessage(nil, err),
			Err:        fmt.Errorf("read response body: %w", err),
		}
		c.afterResponse(nil, apiErr)
		return nil, apiErr
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.UpdateFromHeaders(ctx, httpResp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(httpResp.StatusCode)).Inc()

	resp := &Response{
		Endpoint:   endpoint,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header.Clone(),
		Body:       body,
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		cause := fmt.Errorf("request failed with status code %d", httpResp.StatusCode)
		apiErr := &APIError{
			Endpoint:   endpoint,
			StatusCode: httpResp.StatusCode,
			Class:      ErrorClassServer,
			Message:    ExtractMessage(body, cause),
			Body:       body,
			Err:        cause,
		}
		c.afterResponse(resp, apiErr)
		return resp, apiErr
	}

	c.afterResponse(resp, nil)
	return resp, nil
}

// beforeRequest is the diagnostic pre-request hook.
func (c *Client) beforeRequest(req *http.Request, endpoint string) {
	if !c.config.LogRequests {
		return
	}
	c.logger.Debug().
		Str("method", req.Method).
		Str("endpoint", endpoint).
		Str("query", req.URL.RawQuery).
		Msgf("Making %s request to %s", req.Method, endpoint)
}

// afterResponse is the post-response hook. Failures are counted and their
// message is written to the error log.
func (c *Client) afterResponse(resp *Response, err *APIError) {
	if err == nil {
		c.logger.Debug().
			Str("endpoint", resp.Endpoint).
			Int("status_code", resp.StatusCode).
			Int("bytes", len(resp.Body)).
			Msg("API response")
		return
	}

	errorsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Error().
		Str("endpoint", err.Endpoint).
		Int("status_code", err.StatusCode).
		Str("error_class", string(err.Class)).
		Msgf("API error: %s", err.Message)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	return c.Call(ctx, http.MethodGet, endpoint, params)
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// isEmptyPayload reports whether body carries no usable data.
func isEmptyPayload(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// HasPayload reports whether the response body carries data.
func (r *Response) HasPayload() bool {
	return r != nil && !isEmptyPayload(r.Body)
}
