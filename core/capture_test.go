package core

import (
	"regexp"
	"testing"

	"pkt.systems/repline/schema"
)

var testCapturePromptRe = regexp.MustCompile(schema.DefaultCapturePromptPattern)

func newTestCapture() *captureBuffer {
	return newCaptureBuffer(testCapturePromptRe, schema.DefaultContinuationPrompt, schema.DefaultTracebackMarker)
}

func TestCaptureFlushesOnceOnPrompt(t *testing.T) {
	c := newTestCapture()
	if _, ok := c.Feed([]byte("4\n")); ok {
		t.Fatalf("flushed before prompt")
	}
	result, ok := c.Feed([]byte(">>> "))
	if !ok {
		t.Fatalf("expected flush on prompt")
	}
	if result.Class != schema.OutputText || result.Text != "4" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if _, ok := c.Feed([]byte("more\n>>> ")); ok {
		t.Fatalf("second flush after done")
	}
	if !c.Done() {
		t.Fatalf("expected done")
	}
}

func TestCaptureChunkBoundaryInvariance(t *testing.T) {
	splits := [][][]byte{
		{[]byte("4\n>>> ")},
		{[]byte("4"), []byte("\n"), []byte(">>> ")},
		{[]byte("4\n>"), []byte(">> ")},
		{[]byte("4\n>>"), []byte("> "), []byte("")},
	}
	for i, chunks := range splits {
		c := newTestCapture()
		var result schema.CaptureResult
		flushes := 0
		for _, chunk := range chunks {
			if res, ok := c.Feed(chunk); ok {
				result = res
				flushes++
			}
		}
		if flushes != 1 {
			t.Fatalf("split %d: expected exactly one flush, got %d", i, flushes)
		}
		if result.Class != schema.OutputText || result.Text != "4" {
			t.Fatalf("split %d: unexpected result %+v", i, result)
		}
	}
}

func TestCaptureClassifiesException(t *testing.T) {
	c := newTestCapture()
	output := "Traceback (most recent call last):\n  File \"<stdin>\", line 1\nZeroDivisionError: division by zero\n>>> "
	result, ok := c.Feed([]byte(output))
	if !ok {
		t.Fatalf("expected flush")
	}
	if result.Class != schema.OutputException {
		t.Fatalf("expected exception class, got %+v", result)
	}
	if result.Text == "" {
		t.Fatalf("expected traceback text to be retained")
	}
}

func TestCaptureClassifiesEmpty(t *testing.T) {
	c := newTestCapture()
	result, ok := c.Feed([]byte("\n>>> "))
	if !ok {
		t.Fatalf("expected flush")
	}
	if result.Class != schema.OutputEmpty || result.Text != "" {
		t.Fatalf("expected empty class, got %+v", result)
	}
}

// A compound statement fed to the interpreter line by line draws one
// continuation prompt per body line before anything runs. Those prompts
// must not end the capture, and the output that follows them must survive
// the flush.
func TestCaptureIgnoresContinuationPrompts(t *testing.T) {
	c := newTestCapture()
	flushes := 0
	var result schema.CaptureResult
	for _, chunk := range [][]byte{[]byte("... "), []byte("... "), []byte("0\n1\n"), []byte(">>> ")} {
		if res, ok := c.Feed(chunk); ok {
			result = res
			flushes++
		}
	}
	if flushes != 1 {
		t.Fatalf("expected exactly one flush, got %d", flushes)
	}
	if result.Class != schema.OutputText || result.Text != "0\n1" {
		t.Fatalf("expected output to survive continuation prompts, got %+v", result)
	}
}

func TestCaptureContinuationOnlyIsEmpty(t *testing.T) {
	c := newTestCapture()
	if _, ok := c.Feed([]byte("... ... ")); ok {
		t.Fatalf("flushed on continuation prompts")
	}
	result, ok := c.Feed([]byte(">>> "))
	if !ok {
		t.Fatalf("expected flush on top-level prompt")
	}
	if result.Class != schema.OutputEmpty {
		t.Fatalf("expected empty class, got %+v", result)
	}
}
