package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	quotaRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nasa_ratelimit_remaining",
		Help: "Requests remaining in the current NASA API quota window",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nasa_ratelimit_blocks_total",
		Help: "Total number of requests blocked because the quota was exhausted",
	})
)

// Tracker records the gateway quota and gates requests.
// State is shared through Redis when a client is given, otherwise it is
// kept in process memory.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger

	mu    sync.RWMutex
	state *State
}

// NewTracker creates a tracker. redisClient may be nil.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
		state:  unknownState(),
	}
}

// GetState returns the current quota state.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	if t.redis == nil {
		t.mu.RLock()
		defer t.mu.RUnlock()
		copied := *t.state
		return &copied, nil
	}

	data, err := t.redis.Get(ctx, RedisKeyState).Bytes()
	if err != nil {
		if err == redis.Nil {
			return unknownState(), nil
		}
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse rate limit state: %w", err)
	}
	return &state, nil
}

// UpdateFromHeaders records the quota reported on a response. Responses
// without quota headers leave the state untouched.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	remainStr := headers.Get(HeaderRemaining)
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	limit := -1
	if limitStr := headers.Get(HeaderLimit); limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil {
			return fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
	}

	now := time.Now()
	state := &State{
		Limit:      limit,
		Remaining:  remain,
		ResetAt:    now.Add(Window),
		LastUpdate: now,
	}

	if t.redis == nil {
		t.mu.Lock()
		t.state = state
		t.mu.Unlock()
	} else {
		data, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("marshal rate limit state: %w", err)
		}
		if err := t.redis.Set(ctx, RedisKeyState, data, Window).Err(); err != nil {
			return fmt.Errorf("store rate limit state in redis: %w", err)
		}
	}

	quotaRemaining.Set(float64(remain))

	switch {
	case remain <= 0:
		t.logger.Error().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("NASA API quota exhausted - requests will be blocked")
	case state.Low():
		t.logger.Warn().
			Int("remaining", remain).
			Int("limit", limit).
			Msg("NASA API quota low")
	default:
		t.logger.Debug().
			Int("remaining", remain).
			Int("limit", limit).
			Msg("NASA API quota updated")
	}

	return nil
}

// ShouldAllowRequest reports whether a request may be sent. It returns false
// while the quota is exhausted and the window has not reset.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}

	if state.Exhausted() {
		t.logger.Warn().
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("NASA API quota exhausted - blocking request")
		quotaBlocksTotal.Inc()
		return false, nil
	}

	return true, nil
}
