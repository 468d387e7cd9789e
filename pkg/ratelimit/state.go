// Package ratelimit tracks the request quota reported by the NASA API
// gateway through the X-RateLimit-Limit and X-RateLimit-Remaining headers
// and gates requests once the quota is spent.
package ratelimit

import (
	"time"
)

// Response headers carrying the quota.
const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
)

// RedisKeyState is where the shared quota state is stored.
const RedisKeyState = "nasa:rate_limit:state"

// Window is the length of the gateway's rolling quota window.
const Window = time.Hour

// LowQuotaRatio marks the quota as low when less than this share remains.
const LowQuotaRatio = 0.1

// State is the last quota reported by the gateway.
type State struct {
	// Limit is the number of requests allowed per window (X-RateLimit-Limit).
	Limit int `json:"limit"`

	// Remaining is the number of requests left in the window (X-RateLimit-Remaining).
	Remaining int `json:"remaining"`

	// ResetAt is the latest time the window can still be exhausted.
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the headers were last observed.
	LastUpdate time.Time `json:"last_update"`
}

// unknownState is assumed until the gateway reports a quota.
func unknownState() *State {
	now := time.Now()
	return &State{
		Limit:      -1,
		Remaining:  -1,
		ResetAt:    now,
		LastUpdate: now,
	}
}

// Known reports whether the gateway has reported a quota yet.
func (s *State) Known() bool {
	return s.Remaining >= 0
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Exhausted reports whether the quota is spent and the window has not reset.
func (s *State) Exhausted() bool {
	return s.Known() && s.Remaining <= 0 && time.Now().Before(s.ResetAt)
}

// Low reports whether less than LowQuotaRatio of the limit remains.
func (s *State) Low() bool {
	if !s.Known() || s.Limit <= 0 {
		return false
	}
	return float64(s.Remaining) < float64(s.Limit)*LowQuotaRatio
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
