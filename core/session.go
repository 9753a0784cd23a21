package core

import (
	"context"
	"regexp"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/repline/schema"
)

// session owns one interpreter process: its transcript, history, capture
// state, and the pump goroutine draining the output stream.
type session struct {
	target    schema.TargetID
	source    string
	dedicated bool
	workdir   string

	sink EventSink
	log  pslog.Logger

	// persist saves the transcript and history snapshot; called after each
	// flushed result and when the process goes away, so state survives the
	// short-lived processes that drive one send and exit.
	persist func()

	mu         sync.Mutex
	state      schema.SessionState
	handle     ProcessHandle
	transcript *transcript
	history    *historyBuffer
	capture    *captureBuffer
	sendID     schema.SendID
	promptRe   *regexp.Regexp

	pumpCancel context.CancelFunc
	pumpDone   chan struct{}
}

// start launches the pump goroutine. The pump context is detached from
// request contexts so the session outlives the call that spawned it.
func (s *session) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.pumpCancel = cancel
	s.pumpDone = make(chan struct{})
	go s.pump(ctx)
}

func (s *session) pump(ctx context.Context) {
	defer close(s.pumpDone)
	stream := s.handle.Output()
	for {
		chunk, err := stream.Next(ctx)
		if len(chunk) > 0 {
			s.ingest(chunk)
		}
		if err != nil {
			s.markGone()
			return
		}
	}
}

// ingest feeds one raw chunk through the transcript and any live capture,
// then publishes the resulting events outside the lock.
func (s *session) ingest(chunk []byte) {
	s.mu.Lock()
	completed := s.transcript.AppendRaw(chunk)
	if s.state != schema.SessionKilled {
		if s.promptRe.MatchString(s.transcript.Tail()) {
			s.state = schema.SessionReady
		} else {
			s.state = schema.SessionBusy
		}
	}
	var result schema.ResultEvent
	flushed := false
	if s.capture != nil {
		if res, ok := s.capture.Feed(chunk); ok {
			res.Target = s.target
			res.SendID = s.sendID
			result = schema.ResultEvent{Target: s.target, SendID: s.sendID, Result: res}
			flushed = true
			s.capture = nil
			s.sendID = ""
		}
	}
	sink := s.sink
	target := s.target
	s.mu.Unlock()

	if sink == nil {
		return
	}
	if len(completed) > 0 {
		sink.OnOutput(schema.OutputEvent{Target: target, Lines: completed})
	}
	if flushed {
		// Saved before the result is published, so a consumer that exits on
		// the result event never races the write.
		if s.persist != nil {
			s.persist()
		}
		sink.OnResult(result)
	}
}

// markGone records that the process output stream ended. A capture that
// never saw its prompt boundary is discarded without flushing.
func (s *session) markGone() {
	s.mu.Lock()
	alreadyKilled := s.state == schema.SessionKilled
	s.state = schema.SessionKilled
	s.capture = nil
	s.sendID = ""
	sink := s.sink
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if !alreadyKilled {
		if s.log != nil {
			s.log.Info("interpreter exited", "target", s.target)
		}
		if s.persist != nil {
			s.persist()
		}
		if sink != nil {
			sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventKilled, Session: snap})
		}
	}
}

// attachCapture registers the capture buffer for a send. A session with a
// live capture rejects further sends until the pending result flushes.
func (s *session) attachCapture(c *captureBuffer, sendID schema.SendID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == schema.SessionKilled {
		return schema.ErrSessionKilled
	}
	if s.capture != nil {
		return schema.ErrSessionBusy
	}
	s.capture = c
	s.sendID = sendID
	return nil
}

// detachCapture restores default transmission if the given capture is
// still live, for cleanup after a failed send.
func (s *session) detachCapture(c *captureBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == c {
		s.capture = nil
		s.sendID = ""
	}
}

func (s *session) captureLive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture != nil
}

func (s *session) ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == schema.SessionReady
}

func (s *session) killed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == schema.SessionKilled
}

// transmit writes the payload to the interpreter's stdin.
func (s *session) transmit(text string) error {
	s.mu.Lock()
	if s.state == schema.SessionKilled {
		s.mu.Unlock()
		return schema.ErrSessionKilled
	}
	handle := s.handle
	s.state = schema.SessionBusy
	s.mu.Unlock()
	return handle.Send(text)
}

// echoInput splices the echoed fragment into the transcript and publishes
// the resulting lines.
func (s *session) echoInput(display, continuationPrompt string) {
	s.mu.Lock()
	lines := s.transcript.AppendInput(display, continuationPrompt)
	sink := s.sink
	target := s.target
	s.mu.Unlock()
	if sink != nil && len(lines) > 0 {
		sink.OnOutput(schema.OutputEvent{Target: target, Lines: lines})
	}
}

func (s *session) appendHistory(entry string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Append(entry)
}

func (s *session) historyEntries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

func (s *session) transcriptSnapshot(limit int) ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Snapshot(limit)
}

// exportState returns transcript and history for persistence.
func (s *session) exportState() (persistedTranscript, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript.Export(), s.history.Entries()
}

// kill terminates the process. Any pending capture is discarded without
// flushing; the killed marker is published exactly once.
func (s *session) kill(ctx context.Context) error {
	s.mu.Lock()
	if s.state == schema.SessionKilled {
		s.mu.Unlock()
		return nil
	}
	s.state = schema.SessionKilled
	s.capture = nil
	s.sendID = ""
	handle := s.handle
	cancel := s.pumpCancel
	sink := s.sink
	snap := s.snapshotLocked()
	s.mu.Unlock()

	var err error
	if handle != nil {
		err = handle.Signal(ctx, ProcessSignalTERM)
		if closeErr := handle.Close(); err == nil {
			err = closeErr
		}
	}
	if cancel != nil {
		cancel()
	}
	if sink != nil {
		sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventKilled, Session: snap})
	}
	if err != nil {
		return NewSessionError(SessionErrorKill, "kill", err)
	}
	return nil
}

func (s *session) snapshot() schema.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *session) snapshotLocked() schema.SessionSnapshot {
	pid := 0
	if s.handle != nil {
		pid = s.handle.Pid()
	}
	return schema.SessionSnapshot{
		Target:    s.target,
		State:     s.state,
		Pid:       pid,
		WorkDir:   s.workdir,
		Source:    s.source,
		Dedicated: s.dedicated,
	}
}
