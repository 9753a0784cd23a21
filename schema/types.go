package schema

// TargetID identifies a logical interpreter session target. The shared
// target is TargetDefault; dedicated targets are derived from the source
// identity (see DedicatedTarget).
type TargetID string

// TargetDefault is the shared session target used when dedicated sessions
// are disabled.
const TargetDefault TargetID = "default"

// SendID correlates one send through logs and events.
type SendID string

// LineKind classifies a single line of source text.
type LineKind int

const (
	// LineBlank is an empty or whitespace-only line.
	LineBlank LineKind = iota
	// LineComment is a line whose first non-blank character starts a comment.
	LineComment
	// LineDecorator is a decorator line.
	LineDecorator
	// LineDefHeader is a function definition header.
	LineDefHeader
	// LineClassHeader is a class definition header.
	LineClassHeader
	// LineElseElif is a continuation header that attaches to an earlier
	// statement (else, elif, except, finally).
	LineElseElif
	// LineCode is any other non-blank, non-comment line.
	LineCode
)

// String returns a stable name for the line kind.
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineComment:
		return "comment"
	case LineDecorator:
		return "decorator"
	case LineDefHeader:
		return "def"
	case LineClassHeader:
		return "class"
	case LineElseElif:
		return "else-elif"
	case LineCode:
		return "code"
	default:
		return "unknown"
	}
}

// BlockKind identifies the unit a block represents.
type BlockKind string

const (
	// BlockStatement is a single (possibly compound) statement.
	BlockStatement BlockKind = "statement"
	// BlockTopStatement is a statement whose first line has zero indentation.
	BlockTopStatement BlockKind = "top-statement"
	// BlockDefun is a function definition including its decorators.
	BlockDefun BlockKind = "defun"
	// BlockDefclass is a class definition including its decorators.
	BlockDefclass BlockKind = "defclass"
	// BlockGroup is a run of top statements with no blank separator.
	BlockGroup BlockKind = "group"
	// BlockCell is a region delimited by cell marker comments.
	BlockCell BlockKind = "cell"
)

// Block is a half-open line range [Start, End) within a source buffer.
// Boundaries always align to full lines.
type Block struct {
	Kind  BlockKind
	Start int
	End   int
}

// Lines returns the number of lines the block spans.
func (b Block) Lines() int {
	if b.End < b.Start {
		return 0
	}
	return b.End - b.Start
}

// SessionState tracks the lifecycle of an interpreter session.
type SessionState string

const (
	// SessionNotStarted means no process has been spawned yet.
	SessionNotStarted SessionState = "not-started"
	// SessionStarting means the process is spawned but no prompt was seen.
	SessionStarting SessionState = "starting"
	// SessionReady means the transcript tail matches the prompt boundary.
	SessionReady SessionState = "ready"
	// SessionBusy means the interpreter has pending work.
	SessionBusy SessionState = "busy"
	// SessionKilled is terminal.
	SessionKilled SessionState = "killed"
)

// OutputClass categorizes a flushed capture result.
type OutputClass string

const (
	// OutputText is ordinary trimmed literal output.
	OutputText OutputClass = "text"
	// OutputEmpty means the capture held nothing but whitespace.
	OutputEmpty OutputClass = "empty"
	// OutputException means the traceback marker appeared in the capture.
	OutputException OutputClass = "exception"
)

// CaptureResult is the exactly-once summary of one send's output.
type CaptureResult struct {
	Target TargetID
	SendID SendID
	Class  OutputClass
	Text   string
}

// SessionSnapshot is a transport-friendly view of a session.
type SessionSnapshot struct {
	Target    TargetID
	State     SessionState
	Pid       int
	WorkDir   string
	Source    string
	Dedicated bool
}
