// Package logging holds the process-wide structured logger. Nothing is
// logged until SetLogger is called; the default handler drops every record
// without formatting it.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for every package of medannot. Passing nil restores
// the silent default. Safe for concurrent use.
//
// Levels in use:
//   - [slog.LevelDebug]: pointer transitions, committed shapes, history moves
//   - [slog.LevelInfo]: lifecycle events (server start, image opened, saved)
//   - [slog.LevelWarn]: recoverable failures (bad client message, save error)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. It never returns nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// ParseLevel maps a config or flag value onto a slog level. Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
