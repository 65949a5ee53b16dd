package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures so callers can react without
// string matching.
type ErrorKind uint8

const (
	// KindInternal is the zero kind for unclassified failures.
	KindInternal ErrorKind = iota

	// KindOutOfMemory indicates storage could not be extended. The
	// operation aborted without partial mutation.
	KindOutOfMemory

	// KindIO indicates a file system failure; the document is left in
	// its prior state.
	KindIO

	// KindInvalidArgument indicates a rejected input; no state change.
	KindInvalidArgument

	// KindInvalidState indicates a misuse such as registering a
	// duplicate mark or supplying a position from another buffer.
	KindInvalidState

	// KindRegex indicates a pattern compile or execution failure. When
	// the pattern is a search pattern, the search state is marked invalid.
	KindRegex

	// KindShellCommand indicates a child process exited non-zero; the
	// message carries its stderr.
	KindShellCommand
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindOutOfMemory:
		return "out of memory"
	case KindIO:
		return "io"
	case KindInvalidArgument:
		return "invalid argument"
	case KindInvalidState:
		return "invalid state"
	case KindRegex:
		return "regex"
	case KindShellCommand:
		return "shell command"
	default:
		return "internal"
	}
}

// Error carries a kind and message, optionally wrapping an underlying
// cause.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates an engine error with no underlying cause.
func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// wrapError attaches a kind and message to an underlying error.
func wrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the ErrorKind from err, or KindInternal when err does
// not carry one.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
