package arrayd

import (
	"fmt"
	"strings"
)

// ErrorKind classifies client operation failures. The names mirror the
// exception names used by the protocol's reference implementation, so a
// remote failure carrying an exception name lands in the same taxonomy.
type ErrorKind string

const (
	// KindType: an operand is not an accepted handle kind, or two
	// operands have incompatible kinds or dtypes. Raised before any
	// remote call.
	KindType ErrorKind = "TypeError"
	// KindValue: input accepted at the type level but semantically
	// invalid (empty concatenation input, released handle, foreign
	// client).
	KindValue ErrorKind = "ValueError"
	// KindNotImplemented: a recognized kind with no implementation path.
	KindNotImplemented ErrorKind = "NotImplementedError"
	// KindRemote: the server rejected or failed the command. The message
	// is the server's, propagated unchanged; the command is not retried.
	KindRemote ErrorKind = "RuntimeError"
)

// Sentinels for errors.Is. Each matches any *Error of the same kind;
// ErrOperation matches any *Error.
var (
	ErrOperation      = &Error{}
	ErrTypeMismatch   = &Error{Kind: KindType}
	ErrValue          = &Error{Kind: KindValue}
	ErrNotImplemented = &Error{Kind: KindNotImplemented}
	ErrRemote         = &Error{Kind: KindRemote}
)

// Error is the error type returned by all arrayd operations.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is by matching any *Error target with an equal or
// empty kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == "" || t.Kind == e.Kind
}

func typeErrorf(format string, args ...any) error {
	return &Error{Kind: KindType, Message: fmt.Sprintf(format, args...)}
}

func valueErrorf(format string, args ...any) error {
	return &Error{Kind: KindValue, Message: fmt.Sprintf(format, args...)}
}

func notImplementedf(format string, args ...any) error {
	return &Error{Kind: KindNotImplemented, Message: fmt.Sprintf(format, args...)}
}

// remoteError wraps the body of an "Error: " reply. If the body itself
// starts with an exception name ("ValueError: no such thing"), the name
// is kept in the message so callers see exactly what the server said.
func remoteError(body string) error {
	return &Error{Kind: KindRemote, Message: strings.TrimSpace(body)}
}
