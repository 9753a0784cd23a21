package main

import (
	"pkt.systems/pslog"
	"pkt.systems/repline/schema"
)

// logSink mirrors service events onto the structured log so a CLI run
// leaves a trace of session lifecycle and results even when the bus
// consumer is only waiting for one send.
type logSink struct {
	log pslog.Logger
}

func (s logSink) OnOutput(event schema.OutputEvent) {
	s.log.Trace("session output", "target", event.Target, "lines", len(event.Lines))
}

func (s logSink) OnResult(event schema.ResultEvent) {
	s.log.Debug("send result",
		"target", event.Target,
		"send_id", event.SendID,
		"class", event.Result.Class)
}

func (s logSink) OnSessionEvent(event schema.SessionEvent) {
	s.log.Debug("session event",
		"target", event.Session.Target,
		"event", event.Type,
		"pid", event.Session.Pid)
}
