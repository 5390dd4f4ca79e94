package session

// State describes where a Session stands with its host.
type State int

const (
	// StateUnknown is the state before any login attempt.
	StateUnknown State = iota
	// StateConnected means the last login was accepted by the server.
	StateConnected
	// StateHostInvalid means the host is not an http(s) URL.
	StateHostInvalid
	// StateNoHostConnection means the host could not be reached at all.
	StateNoHostConnection
	// StateAuthenticationFailure means the server rejected the credentials.
	StateAuthenticationFailure
	// StateGeneralFailure covers communication failures not classified above.
	StateGeneralFailure
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateConnected:
		return "connected"
	case StateHostInvalid:
		return "host invalid"
	case StateNoHostConnection:
		return "no host connection"
	case StateAuthenticationFailure:
		return "authentication failure"
	case StateGeneralFailure:
		return "general failure"
	default:
		return "invalid"
	}
}
