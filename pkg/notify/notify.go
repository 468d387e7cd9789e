// Package notify delivers user-facing error notices.
//
// Components that surface failures to a user take a Notifier at
// construction instead of writing to a global toast channel.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMessage is shown when a failure carries no usable message.
const DefaultMessage = "A problem occurred. Please try again later."

// Level is the severity of a notice.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notice is a single user-facing message.
type Notice struct {
	Level   Level
	Message string
	Time    time.Time
}

// Notifier receives notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// Error builds an error notice, substituting DefaultMessage for an empty message.
func Error(message string) Notice {
	if message == "" {
		message = DefaultMessage
	}
	return Notice{
		Level:   LevelError,
		Message: message,
		Time:    time.Now(),
	}
}

// LogNotifier writes notices to a zerolog logger.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that logs through logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(n Notice) {
	var event *zerolog.Event
	switch n.Level {
	case LevelWarning:
		event = l.logger.Warn()
	case LevelInfo:
		event = l.logger.Info()
	default:
		event = l.logger.Error()
	}
	event.Time("notice_time", n.Time).Msg(n.Message)
}

// Recorder keeps every notice it receives. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Len returns the number of recorded notices.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notices)
}

// Reset drops all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
