package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"
	"pkt.systems/repline/internal/logx"
	"pkt.systems/repline/internal/persist"
	"pkt.systems/repline/internal/pyscan"
	"pkt.systems/repline/internal/sendprefs"
	"pkt.systems/repline/internal/transform"
	"pkt.systems/repline/schema"
)

// pollSleep is a test seam for the readiness poll.
var pollSleep = time.Sleep

type service struct {
	cfg      schema.ServiceConfig
	interp   Interpreter
	workdirs WorkdirResolver
	sink     EventSink
	confirm  ConfirmFunc
	store    *persist.Store
	log      pslog.Logger

	promptRe        *regexp.Regexp
	capturePromptRe *regexp.Regexp
	cellBoundaryRe  *regexp.Regexp
	cellBeginningRe *regexp.Regexp

	mu       sync.Mutex
	sessions map[schema.TargetID]*session
}

// NewService constructs the core service from a normalized config and its
// dependencies. Missing optional deps get functional defaults.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	cfg, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.NewWithOptions(os.Stderr, pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.WarnLevel})
	}
	store, err := persist.NewStoreWithLogger(cfg.StateDir, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: state dir: %v", schema.ErrConfiguration, err)
	}
	interp := deps.Interpreter
	if interp == nil {
		return nil, fmt.Errorf("%w: interpreter dependency is required", schema.ErrConfiguration)
	}
	workdirs := deps.Workdirs
	if workdirs == nil {
		workdirs = workdirResolver{cfg: cfg}
	}
	sink := deps.EventSink
	if sink == nil {
		sink = noopSink{}
	}
	return &service{
		cfg:             cfg,
		interp:          interp,
		workdirs:        workdirs,
		sink:            sink,
		confirm:         deps.Confirm,
		store:           store,
		log:             logger,
		promptRe:        regexp.MustCompile(cfg.PromptPattern),
		capturePromptRe: regexp.MustCompile(cfg.CapturePromptPattern),
		cellBoundaryRe:  regexp.MustCompile(cfg.CellBoundaryPattern),
		cellBeginningRe: regexp.MustCompile(cfg.CellBeginningPattern),
		sessions:        make(map[schema.TargetID]*session),
	}, nil
}

type noopSink struct{}

func (noopSink) OnOutput(schema.OutputEvent)        {}
func (noopSink) OnResult(schema.ResultEvent)        {}
func (noopSink) OnSessionEvent(schema.SessionEvent) {}

// workdirResolver applies the configured working-directory mode.
type workdirResolver struct {
	cfg schema.ServiceConfig
}

func (r workdirResolver) Resolve(sourcePath string) (string, error) {
	switch r.cfg.WorkdirMode {
	case schema.WorkdirFixed:
		return r.cfg.WorkDir, nil
	case schema.WorkdirCwd:
		return os.Getwd()
	default:
		if sourcePath == "" {
			return os.Getwd()
		}
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return "", err
		}
		return filepath.Dir(abs), nil
	}
}

func (s *service) LocateBlock(ctx context.Context, req schema.LocateBlockRequest) (schema.LocateBlockResponse, error) {
	src := pyscan.NewSource(req.Source)
	if req.Line < 0 || req.Line >= src.Len() {
		return schema.LocateBlockResponse{}, fmt.Errorf("%w: line %d out of range [0, %d)", schema.ErrInvalidRequest, req.Line, src.Len())
	}
	var (
		block schema.Block
		err   error
	)
	switch req.Unit {
	case schema.BlockStatement:
		block, err = src.LocateStatement(req.Line)
	case schema.BlockTopStatement:
		block, err = src.LocateTopStatement(req.Line)
	case schema.BlockDefun:
		block, err = src.LocateDefinition(req.Line, pyscan.IsDefHeader)
	case schema.BlockDefclass:
		block, err = src.LocateDefinition(req.Line, pyscan.IsClassHeader)
	case schema.BlockGroup:
		block, err = src.LocateGroup(req.Line)
	case schema.BlockCell:
		block, err = src.LocateCell(req.Line, s.cellBoundaryRe, s.cellBeginningRe)
	default:
		return schema.LocateBlockResponse{}, fmt.Errorf("%w: %q", schema.ErrUnknownUnit, req.Unit)
	}
	if err != nil {
		return schema.LocateBlockResponse{}, err
	}
	return schema.LocateBlockResponse{Block: block, Text: src.Text(block)}, nil
}

func (s *service) EnsureSession(ctx context.Context, req schema.EnsureSessionRequest) (schema.EnsureSessionResponse, error) {
	dedicated := req.Dedicated || s.cfg.DedicatedSessions
	target := schema.TargetFor(req.SourcePath, dedicated)
	log := logx.WithTarget(ctx, target)
	sess, created, err := s.getOrCreate(ctx, target, req.SourcePath, dedicated)
	if err != nil {
		return schema.EnsureSessionResponse{}, err
	}
	ready := s.pollReady(sess)
	if created && !ready {
		// Non-fatal: a slow interpreter start still yields a usable session.
		log.Warn("session not ready within timeout", "timeout", s.cfg.ReadyTimeout)
	}
	if created && ready {
		s.sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventReady, Session: sess.snapshot()})
	}
	return schema.EnsureSessionResponse{Session: sess.snapshot(), Ready: ready}, nil
}

// getOrCreate returns the live session for target, spawning one if needed.
// Reports whether the session was created by this call.
func (s *service) getOrCreate(ctx context.Context, target schema.TargetID, sourcePath string, dedicated bool) (*session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.sessions[target]; sess != nil && !sess.killed() {
		return sess, false, nil
	}
	log := logx.WithTarget(ctx, target)

	workdir, err := s.workdirs.Resolve(sourcePath)
	if err != nil {
		return nil, false, NewSessionError(SessionErrorWorkdir, "resolve workdir", err)
	}
	if _, err := exec.LookPath(s.cfg.InterpreterPath); err != nil {
		return nil, false, fmt.Errorf("%w: interpreter %q not found in PATH", schema.ErrConfiguration, s.cfg.InterpreterPath)
	}
	handle, err := s.interp.Start(ctx, StartRequest{
		WorkingDir: workdir,
		Binary:     s.cfg.InterpreterPath,
		Args:       s.cfg.InterpreterArgs,
		Env:        s.cfg.Env,
	})
	if err != nil {
		return nil, false, NewSessionError(SessionErrorSpawn, "spawn interpreter", err)
	}

	transcriptBuf := newTranscript(s.cfg.TranscriptMaxLines)
	history := newHistory(s.cfg.HistoryMax)
	if snap, ok, _ := s.store.Load(target); ok {
		// A stale pending prompt from the previous run becomes a complete
		// line so the new process starts from a clean tail.
		lines := snap.Lines
		if snap.Pending != "" {
			lines = append(append([]string(nil), lines...), snap.Pending)
		}
		transcriptBuf = newTranscriptFromPersisted(persistedTranscript{Lines: lines}, s.cfg.TranscriptMaxLines)
		history = newHistoryFromPersisted(snap.History, s.cfg.HistoryMax)
	}

	sess := &session{
		target:     target,
		source:     sourcePath,
		dedicated:  dedicated,
		workdir:    workdir,
		sink:       s.sink,
		log:        log,
		state:      schema.SessionStarting,
		handle:     handle,
		transcript: transcriptBuf,
		history:    history,
		promptRe:   s.promptRe,
	}
	sess.persist = func() { s.persistOrDestroy(sess, false) }
	sess.start()
	s.sessions[target] = sess
	log.Info("interpreter started", "pid", handle.Pid(), "workdir", workdir)
	s.sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventStarted, Session: sess.snapshot()})
	return sess, true, nil
}

// pollReady waits for the prompt boundary, bounded by the configured
// readiness window.
func (s *service) pollReady(sess *session) bool {
	deadline := time.Now().Add(s.cfg.ReadyTimeout)
	for {
		if sess.ready() {
			return true
		}
		if sess.killed() || !time.Now().Before(deadline) {
			return sess.ready()
		}
		pollSleep(s.cfg.ReadyInterval)
	}
}

func (s *service) Send(ctx context.Context, req schema.SendRequest) (schema.SendResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return schema.SendResponse{}, schema.ErrEmptyBlock
	}
	dedicated := req.Dedicated || s.cfg.DedicatedSessions
	target := req.Target
	if target == "" {
		target = schema.TargetFor(req.SourcePath, dedicated)
	}
	sess, _, err := s.getOrCreate(ctx, target, req.SourcePath, dedicated)
	if err != nil {
		return schema.SendResponse{}, err
	}
	sendID := schema.SendID(uuid.NewString())
	log := logx.WithTargetSend(ctx, target, sendID)
	if !s.pollReady(sess) {
		log.Debug("session not at prompt, transmitting anyway")
	}

	prefs := sendprefs.FromContext(ctx)
	visible := prefs != nil && prefs.TranscriptVisible
	echoIn := echoActive(s.cfg.EchoInput, visible) && !req.DisableEcho
	echoOut := echoActive(s.cfg.EchoOutput, visible)
	if prefs != nil {
		echoIn = echoIn && !prefs.DisableEchoInput
		echoOut = echoOut && !prefs.DisableEchoOutput
	}
	// A compound statement transmitted raw draws a continuation prompt per
	// body line before anything executes. Multi-line fragments go through
	// the single-line bootstrap so the next prompt is the completion marker.
	payload := req.Text
	if strings.Contains(strings.TrimRight(req.Text, "\n"), "\n") {
		payload = transform.EvalStringCommand(req.Text)
	}
	if err := s.transmit(sess, sendID, req.Text, payload, echoIn, echoOut, req.AddToHistory); err != nil {
		return schema.SendResponse{}, err
	}
	log.Debug("send accepted", "bytes", len(req.Text))
	return schema.SendResponse{SendID: sendID, Session: sess.snapshot()}, nil
}

func (s *service) SendFile(ctx context.Context, req schema.SendFileRequest) (schema.SendFileResponse, error) {
	if req.Path == "" {
		return schema.SendFileResponse{}, fmt.Errorf("%w: file path is required", schema.ErrInvalidRequest)
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		return schema.SendFileResponse{}, fmt.Errorf("%w: %v", schema.ErrInvalidRequest, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return schema.SendFileResponse{}, fmt.Errorf("%w: %v", schema.ErrInvalidRequest, err)
	}
	_, encoding, err := transform.DecodeSource(data)
	if err != nil {
		return schema.SendFileResponse{}, fmt.Errorf("%w: %v", schema.ErrInvalidRequest, err)
	}
	command := transform.EvalFileCommand(abs, encoding, req.RunMainGuard)

	dedicated := req.Dedicated || s.cfg.DedicatedSessions
	target := schema.TargetFor(abs, dedicated)
	sess, _, err := s.getOrCreate(ctx, target, abs, dedicated)
	if err != nil {
		return schema.SendFileResponse{}, err
	}
	sendID := schema.SendID(uuid.NewString())
	log := logx.WithTargetSend(ctx, target, sendID)
	if !s.pollReady(sess) {
		log.Debug("session not at prompt, transmitting anyway")
	}

	prefs := sendprefs.FromContext(ctx)
	visible := prefs != nil && prefs.TranscriptVisible
	echoOut := echoActive(s.cfg.EchoOutput, visible)
	if prefs != nil {
		echoOut = echoOut && !prefs.DisableEchoOutput
	}
	// The bootstrap command strips to nothing for display, so input echo is
	// pointless here.
	if err := s.transmit(sess, sendID, command, command, false, echoOut, false); err != nil {
		return schema.SendFileResponse{}, err
	}
	log.Info("file dispatched", "path", abs, "encoding", encoding)
	return schema.SendFileResponse{SendID: sendID, Session: sess.snapshot()}, nil
}

// transmit performs one send: capture attach, optional input echo,
// history, then the write. Echo and history record text as the user wrote
// it; payload is what actually reaches the interpreter. Any failure before
// the write succeeds restores default transmission.
func (s *service) transmit(sess *session, sendID schema.SendID, text, payload string, echoIn, echoOut, addHistory bool) error {
	if sess.captureLive() {
		return schema.ErrSessionBusy
	}
	var capture *captureBuffer
	sent := false
	if echoOut {
		capture = newCaptureBuffer(s.capturePromptRe, s.cfg.ContinuationPrompt, s.cfg.TracebackMarker)
		if err := sess.attachCapture(capture, sendID); err != nil {
			return err
		}
		defer func() {
			if !sent {
				sess.detachCapture(capture)
			}
		}()
	}
	if echoIn {
		display := echoDisplayText(text, s.cfg.TruncateHead, s.cfg.TruncateTail)
		if display != "" {
			sess.echoInput(display, s.cfg.ContinuationPrompt)
		}
	}
	if addHistory {
		sess.appendHistory(strings.TrimRight(text, "\n"))
	}
	if err := sess.transmit(normalizePayload(payload)); err != nil {
		if errors.Is(err, schema.ErrSessionKilled) {
			return err
		}
		return NewSessionError(SessionErrorTransmit, "transmit", err)
	}
	sent = true
	return nil
}

// normalizePayload guarantees a trailing newline and, for multi-line
// fragments, a closing blank line so the interpreter leaves any open
// indented block.
func normalizePayload(text string) string {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if strings.Contains(strings.TrimRight(text, "\n"), "\n") {
		text += "\n"
	}
	return text
}

func (s *service) KillSession(ctx context.Context, req schema.KillSessionRequest) (schema.KillSessionResponse, error) {
	target := req.Target
	if target == "" {
		target = schema.TargetDefault
	}
	s.mu.Lock()
	sess := s.sessions[target]
	if sess != nil {
		delete(s.sessions, target)
	}
	s.mu.Unlock()
	if sess == nil {
		return schema.KillSessionResponse{}, fmt.Errorf("%w: %q", schema.ErrSessionNotFound, target)
	}
	s.persistOrDestroy(sess, req.DestroyTranscript)
	if err := sess.kill(ctx); err != nil {
		return schema.KillSessionResponse{Session: sess.snapshot()}, err
	}
	logx.WithTarget(ctx, target).Info("session killed", "destroyed", req.DestroyTranscript)
	return schema.KillSessionResponse{Session: sess.snapshot()}, nil
}

func (s *service) KillAllSessions(ctx context.Context, req schema.KillAllSessionsRequest) (schema.KillAllSessionsResponse, error) {
	s.mu.Lock()
	targets := make([]schema.TargetID, 0, len(s.sessions))
	for target := range s.sessions {
		targets = append(targets, target)
	}
	s.mu.Unlock()
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	var resp schema.KillAllSessionsResponse
	for _, target := range targets {
		if req.ConfirmEach && s.confirm != nil && !s.confirm(target) {
			resp.Skipped = append(resp.Skipped, target)
			continue
		}
		if _, err := s.KillSession(ctx, schema.KillSessionRequest{Target: target, DestroyTranscript: req.DestroyTranscripts}); err != nil {
			logx.WithTarget(ctx, target).Warn("kill failed", "err", err)
			resp.Skipped = append(resp.Skipped, target)
			continue
		}
		resp.Killed = append(resp.Killed, target)
	}
	return resp, nil
}

func (s *service) ListSessions(ctx context.Context, req schema.ListSessionsRequest) (schema.ListSessionsResponse, error) {
	s.mu.Lock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	resp := schema.ListSessionsResponse{Sessions: make([]schema.SessionSnapshot, 0, len(sessions))}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, sess.snapshot())
	}
	sort.Slice(resp.Sessions, func(i, j int) bool { return resp.Sessions[i].Target < resp.Sessions[j].Target })
	return resp, nil
}

func (s *service) GetTranscript(ctx context.Context, req schema.GetTranscriptRequest) (schema.GetTranscriptResponse, error) {
	target := req.Target
	if target == "" {
		target = schema.TargetDefault
	}
	s.mu.Lock()
	sess := s.sessions[target]
	s.mu.Unlock()
	if sess != nil {
		lines, total := sess.transcriptSnapshot(req.Limit)
		return schema.GetTranscriptResponse{Lines: lines, TotalLines: total}, nil
	}
	if snap, ok, err := s.store.Load(target); err == nil && ok {
		t := newTranscriptFromPersisted(persistedTranscript{Lines: snap.Lines, Pending: snap.Pending}, s.cfg.TranscriptMaxLines)
		lines, total := t.Snapshot(req.Limit)
		return schema.GetTranscriptResponse{Lines: lines, TotalLines: total}, nil
	}
	return schema.GetTranscriptResponse{}, fmt.Errorf("%w: %q", schema.ErrSessionNotFound, target)
}

func (s *service) GetHistory(ctx context.Context, req schema.GetHistoryRequest) (schema.GetHistoryResponse, error) {
	target := req.Target
	if target == "" {
		target = schema.TargetDefault
	}
	s.mu.Lock()
	sess := s.sessions[target]
	s.mu.Unlock()
	if sess != nil {
		return schema.GetHistoryResponse{Entries: sess.historyEntries()}, nil
	}
	if snap, ok, err := s.store.Load(target); err == nil && ok {
		return schema.GetHistoryResponse{Entries: append([]string(nil), snap.History...)}, nil
	}
	return schema.GetHistoryResponse{}, fmt.Errorf("%w: %q", schema.ErrSessionNotFound, target)
}

// persistOrDestroy saves the session transcript and history, or removes
// the stored snapshot when the caller asked for destruction.
func (s *service) persistOrDestroy(sess *session, destroy bool) {
	if destroy {
		_ = s.store.Delete(sess.target)
		return
	}
	transcriptState, history := sess.exportState()
	_ = s.store.Save(sess.target, persist.SessionSnapshot{
		Target:    sess.target,
		Source:    sess.source,
		Dedicated: sess.dedicated,
		Lines:     transcriptState.Lines,
		Pending:   transcriptState.Pending,
		History:   history,
	})
}
