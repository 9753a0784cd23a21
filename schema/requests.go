package schema

// Block location.

// LocateBlockRequest asks for the block of the given unit kind around a
// cursor line in source text.
type LocateBlockRequest struct {
	Source string
	Line   int
	Unit   BlockKind
}

// LocateBlockResponse reports the located block and its text.
type LocateBlockResponse struct {
	Block Block
	Text  string
}

// Session lifecycle.

// EnsureSessionRequest asks for a live session for the source identity.
type EnsureSessionRequest struct {
	SourcePath string
	Dedicated  bool
}

// EnsureSessionResponse reports the session and whether the first prompt
// was observed within the readiness window.
type EnsureSessionResponse struct {
	Session SessionSnapshot
	Ready   bool
}

// KillSessionRequest terminates one session.
type KillSessionRequest struct {
	Target            TargetID
	DestroyTranscript bool
}

// KillSessionResponse reports the killed session snapshot.
type KillSessionResponse struct {
	Session SessionSnapshot
}

// KillAllSessionsRequest terminates every known live session.
type KillAllSessionsRequest struct {
	DestroyTranscripts bool
	ConfirmEach        bool
}

// KillAllSessionsResponse reports which targets were killed or skipped.
type KillAllSessionsResponse struct {
	Killed  []TargetID
	Skipped []TargetID
}

// ListSessionsRequest lists known sessions.
type ListSessionsRequest struct{}

// ListSessionsResponse reports session snapshots.
type ListSessionsResponse struct {
	Sessions []SessionSnapshot
}

// Sending.

// SendRequest transmits a fragment of source text to a session.
type SendRequest struct {
	Target       TargetID // empty: derived from SourcePath and Dedicated
	SourcePath   string
	Text         string
	Dedicated    bool
	DisableEcho  bool
	AddToHistory bool
}

// SendResponse reports the accepted send.
type SendResponse struct {
	SendID  SendID
	Session SessionSnapshot
}

// SendFileRequest transmits a whole file via the interpreter-side
// bootstrap command.
type SendFileRequest struct {
	Path      string
	Dedicated bool
	// RunMainGuard keeps the conventional only-run-as-main guard instead
	// of stripping it.
	RunMainGuard bool
}

// SendFileResponse reports the accepted send.
type SendFileResponse struct {
	SendID  SendID
	Session SessionSnapshot
}

// Transcript and history.

// GetTranscriptRequest reads the tail of a session transcript.
type GetTranscriptRequest struct {
	Target TargetID
	Limit  int
}

// GetTranscriptResponse reports transcript lines.
type GetTranscriptResponse struct {
	Lines      []string
	TotalLines int
}

// GetHistoryRequest reads the send history for a session.
type GetHistoryRequest struct {
	Target TargetID
}

// GetHistoryResponse reports history entries, oldest first.
type GetHistoryResponse struct {
	Entries []string
}
