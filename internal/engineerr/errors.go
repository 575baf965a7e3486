// Package engineerr provides the structured error values the engine's
// library boundaries return instead of raising exceptions or panicking
// (spec §7: "library boundaries return result values carrying the kind and
// a human-readable message; they never use exceptions as control flow").
//
// Modeled on the teacher's internal/claudecode/errors.StructuredError.
package engineerr

import "fmt"

// Kind is one of the literal error identifiers spec §7 names.
type Kind string

const (
	// Structural
	UnknownId          Kind = "UnknownId"
	DuplicateId        Kind = "DuplicateId"
	UnknownEndpoint    Kind = "UnknownEndpoint"
	SelfLoopForbidden  Kind = "SelfLoopForbidden"
	InvalidEnum        Kind = "InvalidEnum"
	InvalidTimeFormat  Kind = "InvalidTimeFormat"
	InvalidHashFormat  Kind = "InvalidHashFormat"

	// State
	NotInProgress          Kind = "NotInProgress"
	NotCompletable         Kind = "NotCompletable"
	TerminalNodeKindMismatch Kind = "TerminalNodeKindMismatch"

	// Pathing
	UnreachableTarget    Kind = "UnreachableTarget"
	UnavoidableTarget    Kind = "UnavoidableTarget"
	UnachievableSequence Kind = "UnachievableSequence"
	NoPath               Kind = "NoPath"

	// Template
	UnknownFilter   Kind = "UnknownFilter"
	UnclosedBlock   Kind = "UnclosedBlock"
	UnknownTemplate Kind = "UnknownTemplate"

	// Cache/loader
	Cleared     Kind = "Cleared"
	KeyNotFound Kind = "KeyNotFound"
)

// Error is the value every engine boundary returns on failure.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Cause   error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an underlying error with a kind.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// WithDetails attaches additional context and returns the receiver.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
