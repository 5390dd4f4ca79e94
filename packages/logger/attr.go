// Package logger holds slog attribute helpers shared by smm-asset packages
// and the constructor used by the CLI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// Attribute helpers return the empty Attr for missing values, so callers can
// write log.Debug("msg", logger.Error(err)) without nil checks.

// Error creates an attribute for a single error under the key "error".
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RequestID creates an attribute correlating the attempts of one fetch.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Host(host string) slog.Attr {
	return slog.String("host", host)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Redirect creates an attribute for a redirect target; empty targets are dropped.
func Redirect(target string) slog.Attr {
	if target == "" {
		return slog.Attr{}
	}
	return slog.String("redirect", target)
}

// State accepts anything printable, typically a session.State.
func State(s fmt.Stringer) slog.Attr {
	return slog.String("state", s.String())
}

func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a level name to slog.Level. Unknown names are an error.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New builds a logger writing to w in "text" or "json" format.
func New(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
