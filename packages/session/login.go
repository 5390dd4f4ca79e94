package session

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/canterburyairpatrol/smm-asset/packages/csrf"
	smmhttp "github.com/canterburyairpatrol/smm-asset/packages/http"
	"github.com/canterburyairpatrol/smm-asset/packages/logger"
)

// LoginPath serves the login form and accepts its submission.
const LoginPath = "/accounts/login/"

// loginLocked fetches the login form, extracts the token and submits the
// credentials. Callers hold s.mu.
func (s *Session) loginLocked(reqID string) bool {
	s.inLogin = true
	defer func() { s.inLogin = false }()

	log := s.logger.With(logger.RequestID(reqID))
	s.token = nil

	var page bytes.Buffer
	res, err := s.fetchLocked(reqID, Request{Method: smmhttp.MethodGet, Path: LoginPath}, &page)
	if err != nil {
		log.Warn("login page unreachable", logger.Host(s.host), logger.Error(err))
		s.state = StateNoHostConnection
		return false
	}
	if res.Err != nil {
		log.Warn("login page incomplete", logger.Error(res.Err))
		s.state = StateGeneralFailure
		return false
	}
	if !res.IsOK() {
		log.Debug("login page not served", logger.StatusCode(res.StatusCode))
		return false
	}

	token, ok, err := csrf.FromReader(&page)
	if err != nil {
		log.Warn("login page unreadable", logger.Error(err))
		s.state = StateGeneralFailure
		return false
	}
	if !ok {
		// State is left as it was: the server answered, but not with a form.
		log.Warn("login page has no csrf token")
		return false
	}
	s.token = &token

	res, err = s.fetchLocked(reqID, Request{
		Method: smmhttp.MethodPost,
		Path:   LoginPath,
		Body:   s.loginForm(token),
	}, nil)
	if err == nil && res.Succeeded && res.StatusCode == http.StatusFound {
		s.state = StateConnected
		log.Debug("logged in", logger.Host(s.host), slog.String("username", s.username), logger.State(s.state))
		return true
	}

	s.state = StateAuthenticationFailure
	if err != nil {
		log.Warn("login submission failed", logger.State(s.state), logger.Error(err))
	} else {
		log.Warn("login rejected", slog.String("username", s.username), logger.State(s.state), logger.StatusCode(res.StatusCode))
	}
	return false
}

func (s *Session) loginForm(token string) string {
	if s.formEncoding {
		form := url.Values{}
		form.Set(csrf.FieldName, token)
		form.Set("username", s.username)
		form.Set("password", s.password)
		return form.Encode()
	}
	return fmt.Sprintf("%s=%s&username=%s&password=%s", csrf.FieldName, token, s.username, s.password)
}
