package notify

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"with message", "Invalid date", "Invalid date"},
		{"empty message", "", DefaultMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Error(tt.message)
			if n.Message != tt.want {
				t.Errorf("Message = %q, want %q", n.Message, tt.want)
			}
			if n.Level != LevelError {
				t.Errorf("Level = %q, want %q", n.Level, LevelError)
			}
			if n.Time.IsZero() {
				t.Error("Time should be set")
			}
		})
	}
}

func TestRecorder_Concurrent(t *testing.T) {
	var r Recorder
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Notify(Error("x"))
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("Len() = %d, want 50", r.Len())
	}

	r.Reset()
	if len(r.Notices()) != 0 {
		t.Error("Reset should drop all notices")
	}
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf))

	n.Notify(Error("Upstream unavailable"))

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("Expected error level in %s", out)
	}
	if !strings.Contains(out, "Upstream unavailable") {
		t.Errorf("Expected message in %s", out)
	}
}

func TestNotifierFunc(t *testing.T) {
	var got Notice
	var n Notifier = NotifierFunc(func(notice Notice) { got = notice })

	n.Notify(Notice{Level: LevelWarning, Message: "low quota"})
	if got.Message != "low quota" {
		t.Errorf("Message = %q, want %q", got.Message, "low quota")
	}

	Discard.Notify(Error("ignored"))
}
