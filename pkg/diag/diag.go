package diag

import (
	"errors"
	"fmt"
)

type Kind int

// Every failure the toolchain can report. All of them are fatal: the
// first one aborts the run and is surfaced by the CLI.
const (
	Parse Kind = iota
	UnresolvedReference
	UnboundVariable
	DuplicateAllocation
	TypeMismatch
	IndexOutOfRange
)

// String returns a human-readable name for the error kind
func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse error"
	case UnresolvedReference:
		return "unresolved reference"
	case UnboundVariable:
		return "unbound variable"
	case DuplicateAllocation:
		return "duplicate allocation"
	case TypeMismatch:
		return "type mismatch"
	case IndexOutOfRange:
		return "index out of range"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the single structured error type shared by the lexer,
// parser and interpreter. Line is the 1-based source line, or 0 when
// no line is known (e.g. end-of-parse resolution failures).
type Error struct {
	Kind Kind
	Line int
	Msg  string
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s at line %d: %s", e.Kind, e.Line, e.Msg)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Errorf builds an Error with a formatted message
func Errorf(kind Kind, line int, format string, args ...any) *Error {
	return &Error{
		Kind: kind,
		Line: line,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the Kind from an error chain, reporting whether the
// chain contains a diag.Error at all
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}

	return 0, false
}
