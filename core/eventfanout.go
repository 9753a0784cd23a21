package core

import "pkt.systems/repline/schema"

// FanoutSink returns an EventSink that forwards every event to all the
// given sinks. Nil sinks are skipped.
func FanoutSink(sinks ...EventSink) EventSink {
	return eventFanout{sinks: sinks}
}

type eventFanout struct {
	sinks []EventSink
}

func (f eventFanout) OnOutput(event schema.OutputEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnOutput(event)
	}
}

func (f eventFanout) OnResult(event schema.ResultEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnResult(event)
	}
}

func (f eventFanout) OnSessionEvent(event schema.SessionEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.OnSessionEvent(event)
	}
}
