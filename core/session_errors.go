package core

import "fmt"

// SessionErrorKind classifies session failures for user-facing hints.
type SessionErrorKind string

const (
	// SessionErrorUnknown is an uncategorized session failure.
	SessionErrorUnknown SessionErrorKind = "unknown"
	// SessionErrorSpawn indicates the interpreter process failed to start.
	SessionErrorSpawn SessionErrorKind = "spawn"
	// SessionErrorTransmit indicates writing to the interpreter failed.
	SessionErrorTransmit SessionErrorKind = "transmit"
	// SessionErrorWorkdir indicates working-directory resolution failed.
	SessionErrorWorkdir SessionErrorKind = "workdir"
	// SessionErrorKill indicates terminating the process failed.
	SessionErrorKill SessionErrorKind = "kill"
)

// SessionError wraps session failures with a stable classification.
type SessionError struct {
	Kind    SessionErrorKind
	Op      string
	Message string
	Err     error
}

// NewSessionError constructs a classified session error.
func NewSessionError(kind SessionErrorKind, op string, err error) *SessionError {
	return &SessionError{Kind: kind, Op: op, Err: err}
}

func (e *SessionError) Error() string {
	if e == nil {
		return "session error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("session %s failed", e.Op)
	}
	return "session error"
}

func (e *SessionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
