package ratelimit

import (
	"context"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
)

func TestTracker_InitialStateAllows(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Known() {
		t.Error("Initial state should be unknown")
	}

	allowed, err := tracker.ShouldAllowRequest(context.Background())
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if !allowed {
		t.Error("Unknown quota should allow requests")
	}
}

func TestTracker_UpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       map[string]string
		wantErr       bool
		wantRemaining int
		wantLimit     int
		wantAllowed   bool
	}{
		{
			name:          "healthy quota",
			headers:       map[string]string{HeaderLimit: "1000", HeaderRemaining: "998"},
			wantRemaining: 998,
			wantLimit:     1000,
			wantAllowed:   true,
		},
		{
			name:          "remaining without limit",
			headers:       map[string]string{HeaderRemaining: "40"},
			wantRemaining: 40,
			wantLimit:     -1,
			wantAllowed:   true,
		},
		{
			name:          "exhausted quota",
			headers:       map[string]string{HeaderLimit: "1000", HeaderRemaining: "0"},
			wantRemaining: 0,
			wantLimit:     1000,
			wantAllowed:   false,
		},
		{
			name:          "no headers leaves state unknown",
			headers:       map[string]string{},
			wantRemaining: -1,
			wantLimit:     -1,
			wantAllowed:   true,
		},
		{
			name:    "invalid remaining",
			headers: map[string]string{HeaderRemaining: "many"},
			wantErr: true,
		},
		{
			name:    "invalid limit",
			headers: map[string]string{HeaderLimit: "x", HeaderRemaining: "5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(nil, zerolog.Nop())
			ctx := context.Background()

			headers := http.Header{}
			for k, v := range tt.headers {
				headers.Set(k, v)
			}

			err := tracker.UpdateFromHeaders(ctx, headers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateFromHeaders failed: %v", err)
			}

			state, err := tracker.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState failed: %v", err)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemaining)
			}
			if state.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", state.Limit, tt.wantLimit)
			}

			allowed, err := tracker.ShouldAllowRequest(ctx)
			if err != nil {
				t.Fatalf("ShouldAllowRequest failed: %v", err)
			}
			if allowed != tt.wantAllowed {
				t.Errorf("ShouldAllowRequest() = %v, want %v", allowed, tt.wantAllowed)
			}
		})
	}
}

func TestTracker_GetStateReturnsCopy(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	headers := http.Header{}
	headers.Set(HeaderRemaining, "10")
	if err := tracker.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	state, _ := tracker.GetState(ctx)
	state.Remaining = 0

	again, _ := tracker.GetState(ctx)
	if again.Remaining != 10 {
		t.Errorf("tracker state mutated through copy: Remaining = %d", again.Remaining)
	}
}

func TestTracker_Metrics(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop())
	ctx := context.Background()

	headers := http.Header{}
	headers.Set(HeaderLimit, "1000")
	headers.Set(HeaderRemaining, "0")
	if err := tracker.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}
	if got := testutil.ToFloat64(quotaRemaining); got != 0 {
		t.Errorf("nasa_ratelimit_remaining = %v, want 0", got)
	}

	before := testutil.ToFloat64(quotaBlocksTotal)
	if allowed, _ := tracker.ShouldAllowRequest(ctx); allowed {
		t.Fatal("Expected exhausted quota to block")
	}
	if got := testutil.ToFloat64(quotaBlocksTotal); got != before+1 {
		t.Errorf("nasa_ratelimit_blocks_total = %v, want %v", got, before+1)
	}
}
