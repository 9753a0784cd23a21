package transform

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// codingDeclRe matches an encoding declaration comment. Only the first two
// lines of a file are consulted, per the interpreted language's convention.
var codingDeclRe = regexp.MustCompile(`^[ \t]*#.*?coding[:=][ \t]*([-\w.]+)`)

// pythonAliases maps common declared encoding names to IANA names.
var pythonAliases = map[string]string{
	"latin-1":    "ISO-8859-1",
	"latin1":     "ISO-8859-1",
	"iso8859-1":  "ISO-8859-1",
	"iso-8859-1": "ISO-8859-1",
	"cp1252":     "windows-1252",
	"utf8":       "utf-8",
}

// DetectEncoding returns the declared source encoding, defaulting to utf-8.
func DetectEncoding(data []byte) string {
	if bytes.HasPrefix(data, utf8BOM) {
		return "utf-8"
	}
	lines := bytes.SplitN(data, []byte("\n"), 3)
	for i := 0; i < len(lines) && i < 2; i++ {
		if m := codingDeclRe.FindSubmatch(lines[i]); m != nil {
			return strings.ToLower(string(m[1]))
		}
	}
	return "utf-8"
}

// DecodeSource decodes file bytes using their declared encoding and
// returns the text plus the declared encoding name.
func DecodeSource(data []byte) (string, string, error) {
	name := DetectEncoding(data)
	data = bytes.TrimPrefix(data, utf8BOM)
	if name == "utf-8" {
		return string(data), name, nil
	}
	enc, err := lookupEncoding(name)
	if err != nil {
		return "", name, err
	}
	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, fmt.Errorf("decode %s source: %w", name, err)
	}
	return string(decoded), name, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	if alias, ok := pythonAliases[name]; ok {
		name = alias
	}
	if strings.EqualFold(name, "ISO-8859-1") {
		return charmap.ISO8859_1, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported source encoding %q", name)
	}
	return enc, nil
}
