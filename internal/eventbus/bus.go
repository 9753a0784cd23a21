package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/repline/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventOutput carries transcript lines for a target.
	EventOutput EventType = "output"
	// EventResult carries the capture result of a send.
	EventResult EventType = "result"
	// EventSession carries session lifecycle updates.
	EventSession EventType = "session"
)

// Event represents a consumer-facing event emitted by the core service.
type Event struct {
	Type    EventType
	Output  schema.OutputEvent
	Result  schema.ResultEvent
	Session schema.SessionEvent
}

// Bus fanouts events to per-target subscribers. It implements
// core.EventSink.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.TargetID]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.TargetID]map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber for the target and returns a channel +
// cancel.
func (b *Bus) Subscribe(target schema.TargetID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	targetSubs := b.subs[target]
	if targetSubs == nil {
		targetSubs = make(map[chan Event]struct{})
		b.subs[target] = targetSubs
	}
	targetSubs[ch] = struct{}{}
	count := len(targetSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("target", target).Debug("eventbus subscribe", "subs", count)
	}
	// Removal and close happen under the lock, as do publish sends, so a
	// publish can never land on a closed channel. Cancel is idempotent.
	return ch, func() {
		b.mu.Lock()
		closed := false
		if subs := b.subs[target]; subs != nil {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				close(ch)
				closed = true
			}
			if len(subs) == 0 {
				delete(b.subs, target)
			}
		}
		b.mu.Unlock()
		if closed && b.log != nil {
			b.log.With("target", target).Debug("eventbus unsubscribe")
		}
	}
}

// OnOutput publishes an output event.
func (b *Bus) OnOutput(event schema.OutputEvent) {
	b.publish(event.Target, Event{Type: EventOutput, Output: event})
}

// OnResult publishes a capture result event.
func (b *Bus) OnResult(event schema.ResultEvent) {
	b.publish(event.Target, Event{Type: EventResult, Result: event})
}

// OnSessionEvent publishes a session lifecycle event.
func (b *Bus) OnSessionEvent(event schema.SessionEvent) {
	b.publish(event.Session.Target, Event{Type: EventSession, Session: event})
}

// publish sends under the lock; the sends are non-blocking, and holding
// the lock keeps them mutually exclusive with a concurrent cancel's close.
func (b *Bus) publish(target schema.TargetID, event Event) {
	if b == nil {
		return
	}
	dropped := 0
	b.mu.Lock()
	for sub := range b.subs[target] {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("target", target).Trace("eventbus dropped", "count", dropped)
	}
}
