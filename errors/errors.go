package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error by whom it's caused by.
type Kind uint8

const (
	// Grammar errors are caused by malformed data received from the network.
	Grammar Kind = iota + 1
	// Usage errors are caused by wrong arguments passed to the engine by the caller.
	Usage
	// TransportKind errors are timeouts, resets and short reads or writes.
	TransportKind
	// Application errors are violations of the handler contract.
	Application
)

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "grammar"
	case Usage:
		return "usage"
	case TransportKind:
		return "transport"
	case Application:
		return "application"
	default:
		return "unknown"
	}
}

// Error is the only error type produced by the engine itself.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		if len(e.Message) == 0 {
			return e.cause.Error()
		}

		return e.Message + ": " + e.cause.Error()
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors of the same kind. A target with an empty message matches any error
// of its kind, otherwise messages must be equal, too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}

	return len(t.Message) == 0 || t.Message == e.Message
}

var (
	ErrGrammar     = &Error{Kind: Grammar}
	ErrUsage       = &Error{Kind: Usage}
	ErrTransport   = &Error{Kind: TransportKind}
	ErrApplication = &Error{Kind: Application}

	ErrEmptyPreamble    = &Error{Kind: TransportKind, Message: "connection closed cleanly before request"}
	ErrConnectionClosed = &Error{Kind: Usage, Message: "connection is closed"}
	ErrShutdown         = &Error{Kind: TransportKind, Message: "graceful shutdown"}
)

func Grammarf(format string, args ...any) error {
	return &Error{Kind: Grammar, Message: fmt.Sprintf(format, args...)}
}

func Usagef(format string, args ...any) error {
	return &Error{Kind: Usage, Message: fmt.Sprintf(format, args...)}
}

func Applicationf(format string, args ...any) error {
	return &Error{Kind: Application, Message: fmt.Sprintf(format, args...)}
}

// Transportf produces a transport error without an underlying cause.
func Transportf(format string, args ...any) error {
	return &Error{Kind: TransportKind, Message: fmt.Sprintf(format, args...)}
}

// Transport wraps an I/O error, keeping its stack. Errors that are already classified
// are returned as is.
func Transport(cause error, message string) error {
	if cause == nil {
		return nil
	}

	var e *Error
	if errors.As(cause, &e) {
		return cause
	}

	return &Error{Kind: TransportKind, Message: message, cause: pkgerrors.WithStack(cause)}
}

// KindOf returns the kind of the error, or 0 if it wasn't produced by the engine.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}
