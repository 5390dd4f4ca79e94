package session

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
	"github.com/canterburyairpatrol/smm-asset/packages/logger"
)

// ErrClosed is returned by requests on a closed Session.
var ErrClosed = errors.New("session closed")

// Transport executes one physical request. *smmhttp.Client implements it.
type Transport interface {
	Execute(req *smmhttp.Request, sink io.Writer) (*smmhttp.Response, error)
	CloseIdleConnections()
}

// Session is one authenticated relationship with an SMM host.
type Session struct {
	mu sync.Mutex

	host     string
	username string
	password string
	state    State
	token    *string
	closed   bool
	inLogin  bool

	transport    Transport
	newTransport func() Transport
	clientOpts   []smmhttp.ClientOption

	logger       *slog.Logger
	observer     Observer
	formEncoding bool
	validateHost bool
}

// New creates a Session without contacting the host. A trailing slash on
// host is dropped since request paths start with one.
func New(host, username, password string, opts ...Option) *Session {
	s := &Session{
		host:     strings.TrimSuffix(host, "/"),
		username: username,
		password: password,
		state:    StateUnknown,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newTransport == nil {
		clientOpts := s.clientOpts
		s.newTransport = func() Transport {
			return smmhttp.NewClient(clientOpts...)
		}
	}
	return s
}

// Connect creates a Session and makes an initial login attempt. The
// returned Session is never nil; check State for the outcome.
func Connect(host, username, password string, opts ...Option) *Session {
	s := New(host, username, password, opts...)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.validateHost {
		if err := smmhttp.ValidateURL(host); err != nil {
			s.logger.Warn("invalid host", logger.Host(host), logger.Error(err))
			s.state = StateHostInvalid
			return s
		}
	}

	s.loginLocked(newRequestID())
	return s
}

// Login runs the login procedure explicitly and reports whether the server
// accepted the credentials.
func (s *Session) Login() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.loginLocked(newRequestID())
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Host returns the current base URL, which changes after a scheme upgrade.
func (s *Session) Host() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// Username returns the user the session authenticates as.
func (s *Session) Username() string {
	return s.username
}

// Close releases the transport and discards the cached token. The Session
// cannot be used afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.transport != nil {
		s.transport.CloseIdleConnections()
		s.transport = nil
	}
	s.token = nil
	s.closed = true
	return nil
}

func (s *Session) transportLocked() Transport {
	if s.transport == nil {
		s.logger.Debug("creating transport", logger.Host(s.host))
		s.transport = s.newTransport()
	}
	return s.transport
}
