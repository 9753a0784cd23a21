package core

import (
	"strings"

	"pkt.systems/repline/internal/transform"
	"pkt.systems/repline/schema"
)

// echoActive resolves an echo mode against the session's visibility.
// EchoAuto echoes only when the transcript is not already visible.
func echoActive(mode schema.EchoMode, visible bool) bool {
	switch mode {
	case schema.EchoAlways:
		return true
	case schema.EchoNever:
		return false
	default:
		return !visible
	}
}

// echoDisplayText prepares the transcript copy of transmitted text:
// bootstrap artifacts reversed, dedented, truncated. The transmitted text
// itself is never altered.
func echoDisplayText(text string, headLines, tailLines int) string {
	stripped := transform.StripBootstrap(text)
	dedented, err := transform.Dedent(stripped)
	if err != nil {
		// Display path only; the send path already validated the fragment.
		dedented = stripped
	}
	dedented = strings.TrimRight(dedented, "\n")
	return transform.TruncateForDisplay(dedented, headLines, tailLines)
}
