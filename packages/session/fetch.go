package session

import (
	"bytes"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
	"github.com/canterburyairpatrol/smm-asset/packages/logger"
)

// RequestIDHeader carries the id shared by every attempt of one fetch.
const RequestIDHeader = "X-Request-ID"

// MaxAttempts bounds the physical requests issued for one Fetch, counting
// the first one.
const MaxAttempts = 3

const (
	secureScheme   = "https://"
	insecureScheme = "http://"
	loginSegment   = "accounts/login"
)

// Request is one logical request against the session host. Path is
// appended to the host as is; Body is only sent for POST.
type Request struct {
	Method string
	Path   string
	Body   string
}

// FetchResult is the outcome of the last physical attempt of a Fetch.
type FetchResult struct {
	smmhttp.Response
	Attempts  int
	RequestID string
}

// Get fetches path. The body of the final response is written to sink.
func (s *Session) Get(path string, sink io.Writer) (*FetchResult, error) {
	return s.Fetch(Request{Method: smmhttp.MethodGet, Path: path}, sink)
}

// Post submits body as a form to path.
func (s *Session) Post(path, body string, sink io.Writer) (*FetchResult, error) {
	return s.Fetch(Request{Method: smmhttp.MethodPost, Path: path, Body: body}, sink)
}

// Fetch performs req, following scheme upgrades and re-authenticating as
// needed, in at most MaxAttempts attempts. The result is never nil. A
// non-nil error means the transport failed to produce a response; the
// result then has Succeeded unset and Err set.
func (s *Session) Fetch(req Request, sink io.Writer) (*FetchResult, error) {
	if req.Method == "" {
		req.Method = smmhttp.MethodGet
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return &FetchResult{Response: smmhttp.Response{Err: ErrClosed}}, ErrClosed
	}

	start := time.Now()
	reqID := newRequestID()
	res, err := s.fetchLocked(reqID, req, sink)
	elapsed := time.Since(start)
	s.logger.Debug("fetch complete",
		logger.RequestID(reqID),
		logger.Path(req.Path),
		logger.StatusCode(res.StatusCode),
		logger.Attempt(res.Attempts),
		logger.Duration(elapsed),
		logger.Error(err))
	if s.observer != nil {
		s.observer.ObserveFetch(req.Path, res.Attempts, elapsed, err)
	}
	return res, err
}

// fetchLocked runs the attempt/evaluate/retry loop. Each attempt buffers its
// own body so only the final attempt reaches sink. Callers hold s.mu.
func (s *Session) fetchLocked(reqID string, req Request, sink io.Writer) (*FetchResult, error) {
	log := s.logger.With(logger.RequestID(reqID), logger.Method(req.Method), logger.Path(req.Path))

	var (
		res  *FetchResult
		body bytes.Buffer
	)
	for attempt := 1; ; attempt++ {
		body.Reset()
		var err error
		res, err = s.attempt(reqID, req, &body)
		res.Attempts = attempt
		res.RequestID = reqID
		if err != nil {
			log.Debug("transport failed", logger.Attempt(attempt), logger.Error(err))
			return res, err
		}
		log.Debug("attempt complete", logger.Attempt(attempt), logger.StatusCode(res.StatusCode))

		retry := false
		if target, ok := res.Redirect(); ok && res.Succeeded {
			retry = s.evaluateRedirect(log, reqID, target)
		}
		if !retry || attempt >= MaxAttempts {
			break
		}
	}

	if sink != nil && body.Len() > 0 {
		if _, err := body.WriteTo(sink); err != nil {
			res.Succeeded = false
			res.Err = err
		}
	}
	return res, nil
}

// attempt issues one physical request against the current host.
func (s *Session) attempt(reqID string, req Request, sink io.Writer) (*FetchResult, error) {
	r := smmhttp.NewRequest(req.Method, s.host+req.Path).SetHeader(RequestIDHeader, reqID)
	if req.Method == smmhttp.MethodPost {
		r.SetBody(req.Body)
	}

	resp, err := s.transportLocked().Execute(r, sink)
	if err != nil {
		return &FetchResult{Response: smmhttp.Response{Err: err}}, err
	}
	return &FetchResult{Response: *resp}, nil
}

// evaluateRedirect decides whether a redirect is one the session resolves
// itself, and performs the resolution. It reports whether to retry.
func (s *Session) evaluateRedirect(log *slog.Logger, reqID, target string) bool {
	if !hasScheme(s.host, secureScheme) && hasScheme(target, secureScheme) {
		upgraded := upgradeHost(s.host)
		log.Info("upgrading host to https", logger.Host(upgraded), logger.Redirect(target))
		s.host = upgraded
		return true
	}

	if !s.inLogin && isLoginTarget(target) {
		log.Debug("session expired, logging in", logger.Redirect(target))
		return s.loginLocked(reqID)
	}

	log.Debug("redirect returned to caller", logger.Redirect(target))
	return false
}

func hasScheme(u, scheme string) bool {
	return len(u) >= len(scheme) && strings.EqualFold(u[:len(scheme)], scheme)
}

// upgradeHost swaps an http:// prefix for https://, or adds https:// to a
// host without a scheme.
func upgradeHost(host string) string {
	if hasScheme(host, insecureScheme) {
		host = host[len(insecureScheme):]
	}
	return secureScheme + host
}

func isLoginTarget(target string) bool {
	if u, err := url.Parse(target); err == nil {
		return strings.Contains(u.Path, loginSegment)
	}
	return strings.Contains(target, loginSegment)
}

func newRequestID() string {
	return uuid.NewString()
}
