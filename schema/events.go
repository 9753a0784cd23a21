package schema

// OutputEvent carries transcript lines appended for a target.
type OutputEvent struct {
	Target TargetID
	Lines  []string
}

// ResultEvent carries the exactly-once capture result of a send.
type ResultEvent struct {
	Target TargetID
	SendID SendID
	Result CaptureResult
}

// SessionEventType identifies session lifecycle transitions.
type SessionEventType string

const (
	// SessionEventStarted indicates a session process was spawned.
	SessionEventStarted SessionEventType = "started"
	// SessionEventReady indicates the first prompt was observed.
	SessionEventReady SessionEventType = "ready"
	// SessionEventKilled indicates the session was terminated.
	SessionEventKilled SessionEventType = "killed"
)

// SessionEvent carries a session lifecycle transition.
type SessionEvent struct {
	Type    SessionEventType
	Session SessionSnapshot
}
