// Package notify defines the toast/log collaborator used by the preview
// and export pipelines to surface user-visible events.
package notify

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Handle identifies a live notification for cancellation.
type Handle int64

// Notification carries one user-visible message.
type Notification struct {
	Level    Level
	Message  string
	Actions  []string
	Duration time.Duration // 0 means sticky
}

// Option customizes a notification.
type Option func(*Notification)

// WithActions attaches action labels (e.g. "View Log").
func WithActions(actions ...string) Option {
	return func(n *Notification) { n.Actions = actions }
}

// WithDuration makes the notification auto-dismiss.
func WithDuration(d time.Duration) Option {
	return func(n *Notification) { n.Duration = d }
}

// Notifier surfaces notifications and log lines to the user.
type Notifier interface {
	Notify(level Level, message string, opts ...Option) Handle
	Cancel(handle Handle)
	AppendLog(message string)
}

// LogNotifier routes notifications to the structured logger. It is the
// default collaborator for the CLI and for the shell until a toast layer
// takes over.
type LogNotifier struct {
	log  *zap.Logger
	next atomic.Int64
}

// NewLogNotifier wraps a zap logger as a Notifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Notify logs the notification at the matching level.
func (n *LogNotifier) Notify(level Level, message string, opts ...Option) Handle {
	note := Notification{Level: level, Message: message}
	for _, opt := range opts {
		opt(&note)
	}

	fields := []zap.Field{}
	if len(note.Actions) > 0 {
		fields = append(fields, zap.Strings("actions", note.Actions))
	}

	switch level {
	case LevelError:
		n.log.Error(message, fields...)
	case LevelWarn:
		n.log.Warn(message, fields...)
	default:
		n.log.Info(message, fields...)
	}

	return Handle(n.next.Add(1))
}

// Cancel is a no-op for the log sink; log lines cannot be withdrawn.
func (n *LogNotifier) Cancel(Handle) {}

// AppendLog writes a plain line to the log.
func (n *LogNotifier) AppendLog(message string) {
	n.log.Info(message)
}
