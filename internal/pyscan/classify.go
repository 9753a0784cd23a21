package pyscan

import (
	"regexp"

	"pkt.systems/repline/schema"
)

var (
	blankRe     = regexp.MustCompile(`^[ \t]*$`)
	commentRe   = regexp.MustCompile(`^[ \t]*#`)
	decoratorRe = regexp.MustCompile(`^[ \t]*@`)
	defRe       = regexp.MustCompile(`^[ \t]*(?:async[ \t]+)?def\b`)
	classRe     = regexp.MustCompile(`^[ \t]*class\b`)
	elseElifRe  = regexp.MustCompile(`^[ \t]*(?:elif|else|except|finally)\b`)
)

// Classify categorizes a single line of source text. Precedence:
// Decorator > DefHeader > ClassHeader > ElseElif, then comment, blank,
// code. A line containing only whitespace is Blank even when non-empty.
func Classify(line string) schema.LineKind {
	switch {
	case decoratorRe.MatchString(line):
		return schema.LineDecorator
	case defRe.MatchString(line):
		return schema.LineDefHeader
	case classRe.MatchString(line):
		return schema.LineClassHeader
	case elseElifRe.MatchString(line):
		return schema.LineElseElif
	case commentRe.MatchString(line):
		return schema.LineComment
	case blankRe.MatchString(line):
		return schema.LineBlank
	default:
		return schema.LineCode
	}
}

// IsDefHeader reports whether the line is a function definition header.
func IsDefHeader(line string) bool { return Classify(line) == schema.LineDefHeader }

// IsClassHeader reports whether the line is a class definition header.
func IsClassHeader(line string) bool { return Classify(line) == schema.LineClassHeader }
