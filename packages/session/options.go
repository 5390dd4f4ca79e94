package session

import (
	"log/slog"
	"time"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
)

// Option configures a Session.
type Option func(*Session)

// Observer is told about every completed Fetch.
type Observer interface {
	ObserveFetch(path string, attempts int, duration time.Duration, err error)
}

// WithLogger sets the logger used for request tracing. The default drops
// everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTransport sets the factory for the session's transport. It is called
// lazily, once, on the first request.
func WithTransport(factory func() Transport) Option {
	return func(s *Session) {
		if factory != nil {
			s.newTransport = factory
		}
	}
}

// WithClientOptions configures the default transport.
func WithClientOptions(opts ...smmhttp.ClientOption) Option {
	return func(s *Session) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// WithObserver registers an observer for completed fetches.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// WithFormEncoding percent-encodes the login form. Without it the token and
// credentials are interpolated as they are, which breaks on credentials
// containing '&' or '='.
func WithFormEncoding() Option {
	return func(s *Session) {
		s.formEncoding = true
	}
}

// WithHostValidation makes Connect check the host URL first. An invalid
// host leaves the session in StateHostInvalid and no login is attempted.
func WithHostValidation() Option {
	return func(s *Session) {
		s.validateHost = true
	}
}
