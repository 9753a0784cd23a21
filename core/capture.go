package core

import (
	"bytes"
	"regexp"
	"strings"

	"pkt.systems/repline/schema"
)

// captureBuffer accumulates one send's raw output and flushes exactly once
// when the top-level prompt appears. Continuation prompts never terminate
// a capture. Feeding is purely additive and makes no assumption about
// chunk boundaries.
type captureBuffer struct {
	promptRe           *regexp.Regexp
	continuationPrompt string
	tracebackMarker    string
	buf                bytes.Buffer
	done               bool
}

func newCaptureBuffer(promptRe *regexp.Regexp, continuationPrompt, tracebackMarker string) *captureBuffer {
	return &captureBuffer{promptRe: promptRe, continuationPrompt: continuationPrompt, tracebackMarker: tracebackMarker}
}

// Feed appends a chunk and tests the accumulated buffer against the prompt
// boundary. On the first match it returns the classified portion preceding
// the match and resets the buffer; every later call is a no-op.
func (c *captureBuffer) Feed(chunk []byte) (schema.CaptureResult, bool) {
	if c.done {
		return schema.CaptureResult{}, false
	}
	c.buf.Write(chunk)
	loc := c.promptRe.FindStringIndex(c.buf.String())
	if loc == nil {
		return schema.CaptureResult{}, false
	}
	out := c.buf.String()[:loc[0]]
	c.done = true
	c.buf.Reset()
	return c.classify(out), true
}

// Done reports whether the buffer already flushed.
func (c *captureBuffer) Done() bool {
	return c.done
}

func (c *captureBuffer) classify(out string) schema.CaptureResult {
	// Leading continuation prompts are input-echo noise, not output.
	if c.continuationPrompt != "" {
		for strings.HasPrefix(out, c.continuationPrompt) {
			out = out[len(c.continuationPrompt):]
		}
	}
	trimmed := strings.TrimSpace(out)
	switch {
	case c.tracebackMarker != "" && strings.Contains(out, c.tracebackMarker):
		return schema.CaptureResult{Class: schema.OutputException, Text: trimmed}
	case trimmed == "":
		return schema.CaptureResult{Class: schema.OutputEmpty}
	default:
		return schema.CaptureResult{Class: schema.OutputText, Text: trimmed}
	}
}
