package schema

import "errors"

var (
	// ErrInvalidRequest indicates a malformed request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrConfiguration indicates an invalid working-directory mode or an
	// unresolvable interpreter binary.
	ErrConfiguration = errors.New("configuration error")
	// ErrNavigation indicates a boundary scan made no progress.
	ErrNavigation = errors.New("block navigation failed")
	// ErrMalformedBlock indicates inconsistent indentation across a fragment.
	ErrMalformedBlock = errors.New("malformed block")
	// ErrNoActiveBlock indicates the cursor is outside any requested unit.
	ErrNoActiveBlock = errors.New("no active block")
	// ErrUnknownUnit indicates an unrecognized block unit name.
	ErrUnknownUnit = errors.New("unknown block unit")
	// ErrEmptyBlock indicates the located block contains no code.
	ErrEmptyBlock = errors.New("empty block")
	// ErrSessionBusy indicates a capture is already live on the session.
	ErrSessionBusy = errors.New("session is busy")
	// ErrSessionNotFound indicates no session exists for the target.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionKilled indicates the session was terminated.
	ErrSessionKilled = errors.New("session killed")
)
