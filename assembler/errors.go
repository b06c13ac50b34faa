package assembler

import (
	"fmt"
	"strings"
)

// ErrorKind tells which stage rejected the source.
type ErrorKind int

const (
	// LexicalError is an unrecognised character or an unterminated literal.
	LexicalError ErrorKind = iota
	// SyntaxError is a token the grammar does not allow at that point.
	SyntaxError
	// SemanticError is well-formed source that cannot be assembled.
	SemanticError
)

func (k ErrorKind) String() string {
	switch k {
	case LexicalError:
		return "lexical"
	case SyntaxError:
		return "syntax"
	default:
		return "semantic"
	}
}

// Error is the single error type returned by every assembly stage.
type Error struct {
	Kind ErrorKind
	Line int
	// Construct is the offending token, symbol or command as written.
	Construct string
	// Expected names the token kind the parser wanted. Syntax errors only.
	Expected string
	Msg      string
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	fmt.Fprintf(&sb, "%s error", e.Kind)
	if e.Construct != "" {
		fmt.Fprintf(&sb, " at %s", e.Construct)
	}
	if e.Msg != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Msg)
	}
	if e.Expected != "" {
		fmt.Fprintf(&sb, " (expected %s)", e.Expected)
	}
	return sb.String()
}

func lexErr(line int, construct, format string, args ...any) *Error {
	return &Error{Kind: LexicalError, Line: line, Construct: construct, Msg: fmt.Sprintf(format, args...)}
}

func unexpected(t Token, expected string) *Error {
	return &Error{Kind: SyntaxError, Line: t.Line, Construct: t.String(), Expected: expected, Msg: "unexpected token"}
}

func syntaxErr(t Token, expected, format string, args ...any) *Error {
	return &Error{Kind: SyntaxError, Line: t.Line, Construct: t.String(), Expected: expected, Msg: fmt.Sprintf(format, args...)}
}

func semanticErr(line int, construct, format string, args ...any) *Error {
	return &Error{Kind: SemanticError, Line: line, Construct: construct, Msg: fmt.Sprintf(format, args...)}
}
