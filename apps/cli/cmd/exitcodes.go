package cmd

import (
	"errors"
	"fmt"

	"github.com/canterburyairpatrol/smm-asset/packages/session"
)

// Exit codes for smm-asset CLI
const (
	// ExitSuccess indicates the command completed
	ExitSuccess = 0

	// ExitFailure indicates a request failed after login
	ExitFailure = 1

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates the server could not be reached
	ExitNetworkError = 4

	// ExitAuthError indicates the server rejected the credentials
	ExitAuthError = 5

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitFailure
}

func stateExitCode(state session.State) int {
	switch state {
	case session.StateConnected:
		return ExitSuccess
	case session.StateHostInvalid:
		return ExitConfigError
	case session.StateNoHostConnection:
		return ExitNetworkError
	case session.StateAuthenticationFailure:
		return ExitAuthError
	default:
		return ExitFailure
	}
}

func stateError(host string, state session.State) error {
	return withExitCode(stateExitCode(state), fmt.Errorf("%s: %s", host, state))
}
