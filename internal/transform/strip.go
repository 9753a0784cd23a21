package transform

import (
	"regexp"
	"strings"
)

// Bootstrap artifacts injected around transmitted text. StripBootstrap
// reverses them on the transcript copy used for echo display; the text
// actually transmitted is never altered.
var (
	fileLoadRe    = regexp.MustCompile(`__pyfile = open\('''[^']*'''\);exec\(compile\(__pyfile\.read\(\), '''[^']*''', 'exec'\)\);__pyfile\.close\(\)\n?`)
	compileExecRe = regexp.MustCompile(`exec\(compile\("(?:[^"\\]|\\.)*", '<repline>', 'exec'\)\)\n?`)
	codingRe      = regexp.MustCompile(`^[ \t]*#[^\n]*coding[:=][ \t]*[-\w.]+[^\n]*\n?`)
	regionGuardRe = regexp.MustCompile(`^if True:[ \t]*\n`)
)

// StripBootstrap removes interpreter-injected boilerplate from a transcript
// copy: file-load and compile/exec preambles, a leading encoding
// declaration, the always-true region guard, and leading blank lines.
// Re-applying to already-stripped text is a no-op.
func StripBootstrap(text string) string {
	text = fileLoadRe.ReplaceAllString(text, "")
	text = compileExecRe.ReplaceAllString(text, "")
	for {
		prev := text
		text = codingRe.ReplaceAllString(text, "")
		text = regionGuardRe.ReplaceAllString(text, "")
		text = strings.TrimLeft(text, "\n")
		if text == prev {
			return text
		}
	}
}
