package transform

import (
	"fmt"
	"strings"
)

// evalFileTemplate is shipped to the interpreter instead of parsing the
// file locally: the interpreter reads and decodes the file, parses it into
// top-level units, optionally drops the only-run-as-main guard, executes
// everything except a trailing bare expression, and evaluates that
// expression separately so its result is visible. Positional
// substitutions: file path, text encoding, file path again for the
// parse/compile context, and the keep-main-guard flag.
const evalFileTemplate = `import ast as _repline_ast, io as _repline_io
_repline_path = %s
_repline_src = _repline_io.open(_repline_path, encoding=%s).read()
_repline_body = _repline_ast.parse(_repline_src, %s).body
if not %s:
    _repline_body = [_n for _n in _repline_body if not (isinstance(_n, _repline_ast.If) and isinstance(_n.test, _repline_ast.Compare) and getattr(_n.test.left, 'id', '') == '__name__')]
_repline_last = _repline_body.pop() if _repline_body and isinstance(_repline_body[-1], _repline_ast.Expr) else None
exec(compile(_repline_ast.Module(body=_repline_body, type_ignores=[]), _repline_path, 'exec'), globals())
if _repline_last is not None:
    _repline_result = eval(compile(_repline_ast.Expression(body=_repline_last.value), _repline_path, 'eval'), globals())
    if _repline_result is not None:
        print(repr(_repline_result))
`

// evalStringTemplate is the in-memory counterpart of evalFileTemplate: the
// interpreter parses the fragment itself, executes everything except a
// trailing bare expression, and evaluates that expression separately so
// its result is visible. Positional substitution: the fragment source as a
// Python string literal.
const evalStringTemplate = `import ast as _repline_ast
_repline_src = %s
_repline_body = _repline_ast.parse(_repline_src, '<repline>').body
_repline_last = _repline_body.pop() if _repline_body and isinstance(_repline_body[-1], _repline_ast.Expr) else None
exec(compile(_repline_ast.Module(body=_repline_body, type_ignores=[]), '<repline>', 'exec'), globals())
if _repline_last is not None:
    _repline_result = eval(compile(_repline_ast.Expression(body=_repline_last.value), '<repline>', 'eval'), globals())
    if _repline_result is not None:
        print(repr(_repline_result))
`

// EvalStringCommand builds the single-line instruction that executes a
// multi-line fragment inside the interpreter. A compound statement fed to
// the interpreter raw would draw a continuation prompt per body line; the
// one-liner keeps the interpreter silent until execution finishes and the
// top-level prompt returns.
func EvalStringCommand(text string) string {
	src := fmt.Sprintf(evalStringTemplate, pyDoubleQuoted(text))
	return fmt.Sprintf("exec(compile(%s, '<repline>', 'exec'))\n", pyDoubleQuoted(src))
}

// EvalFileCommand builds the single-line bootstrap instruction that makes
// the interpreter load, parse, and execute a file on the driver's behalf.
// When runMainGuard is false the conventional only-run-as-main guard is
// stripped before execution.
func EvalFileCommand(path, encoding string, runMainGuard bool) string {
	keep := "False"
	if runMainGuard {
		keep = "True"
	}
	src := fmt.Sprintf(evalFileTemplate,
		pyStringLiteral(path),
		pyStringLiteral(encoding),
		pyStringLiteral(path),
		keep,
	)
	return fmt.Sprintf("exec(compile(%s, '<repline>', 'exec'))\n", pyDoubleQuoted(src))
}

// pyStringLiteral renders a single-quoted Python string literal.
func pyStringLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

// pyDoubleQuoted renders a double-quoted Python string literal with
// newlines escaped so the whole program fits on one instruction line.
func pyDoubleQuoted(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
