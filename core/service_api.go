package core

import (
	"context"

	"pkt.systems/repline/schema"
)

// Service is the transport-agnostic API for locating source blocks and
// driving interactive interpreter sessions.
type Service interface {
	LocateBlock(ctx context.Context, req schema.LocateBlockRequest) (schema.LocateBlockResponse, error)
	EnsureSession(ctx context.Context, req schema.EnsureSessionRequest) (schema.EnsureSessionResponse, error)
	Send(ctx context.Context, req schema.SendRequest) (schema.SendResponse, error)
	SendFile(ctx context.Context, req schema.SendFileRequest) (schema.SendFileResponse, error)
	KillSession(ctx context.Context, req schema.KillSessionRequest) (schema.KillSessionResponse, error)
	KillAllSessions(ctx context.Context, req schema.KillAllSessionsRequest) (schema.KillAllSessionsResponse, error)
	ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error)
	GetTranscript(ctx context.Context, req schema.GetTranscriptRequest) (schema.GetTranscriptResponse, error)
	GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error)
}

// Interpreter spawns interactive interpreter processes.
type Interpreter interface {
	Start(ctx context.Context, req StartRequest) (ProcessHandle, error)
}

// StartRequest describes one interpreter process invocation. Binary and
// Args carry the service-configured invocation; an implementation falls
// back to its own defaults when they are empty.
type StartRequest struct {
	WorkingDir string
	Binary     string
	Args       []string
	Env        []string
}

// ProcessHandle exposes the stdin/output streams and lifecycle controls of
// a live interpreter process.
type ProcessHandle interface {
	Pid() int
	Send(text string) error
	Output() OutputStream
	Signal(ctx context.Context, sig ProcessSignal) error
	Wait(ctx context.Context) (RunResult, error)
	Close() error
}

// OutputStream yields raw output chunks from the interpreter. Chunks have
// arbitrary boundaries and may split mid-line; consumers must accumulate.
type OutputStream interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// RunResult describes the process outcome.
type RunResult struct {
	ExitCode int
}

// ProcessSignal indicates which signal to send to the process.
type ProcessSignal string

const (
	// ProcessSignalHUP requests a hangup signal.
	ProcessSignalHUP ProcessSignal = "HUP"
	// ProcessSignalTERM requests a termination signal.
	ProcessSignalTERM ProcessSignal = "TERM"
	// ProcessSignalKILL requests an immediate kill signal.
	ProcessSignalKILL ProcessSignal = "KILL"
)

// WorkdirResolver resolves a session working directory from the source
// identity. Project-root discovery policy lives outside this module.
type WorkdirResolver interface {
	Resolve(sourcePath string) (string, error)
}

// ConfirmFunc decides whether a session may be killed during a bulk kill.
type ConfirmFunc func(target schema.TargetID) bool

// EventSink receives output, result, and session events from the service.
type EventSink interface {
	OnOutput(event schema.OutputEvent)
	OnResult(event schema.ResultEvent)
	OnSessionEvent(event schema.SessionEvent)
}
