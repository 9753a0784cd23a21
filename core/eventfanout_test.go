package core

import (
	"testing"

	"pkt.systems/repline/schema"
)

type countingSink struct {
	outputs  int
	results  int
	sessions int
}

func (c *countingSink) OnOutput(schema.OutputEvent) { c.outputs++ }
func (c *countingSink) OnResult(schema.ResultEvent) { c.results++ }
func (c *countingSink) OnSessionEvent(schema.SessionEvent) {
	c.sessions++
}

func TestFanoutSinkForwardsToAll(t *testing.T) {
	a := &countingSink{}
	b := &countingSink{}
	sink := FanoutSink(a, nil, b)

	sink.OnOutput(schema.OutputEvent{Target: schema.TargetDefault})
	sink.OnResult(schema.ResultEvent{Target: schema.TargetDefault})
	sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventStarted})
	sink.OnSessionEvent(schema.SessionEvent{Type: schema.SessionEventKilled})

	for _, c := range []*countingSink{a, b} {
		if c.outputs != 1 || c.results != 1 || c.sessions != 2 {
			t.Fatalf("sink saw %d/%d/%d events, want 1/1/2",
				c.outputs, c.results, c.sessions)
		}
	}
}
