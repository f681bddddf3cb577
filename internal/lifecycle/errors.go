package lifecycle

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a rejected mutation. Every kind is deterministic for a
// given state; retrying without changing the state fails the same way.
type Kind string

const (
	KindNotReady              Kind = "not_ready"
	KindPublishBlocked        Kind = "publish_blocked"
	KindInvalidTransition     Kind = "invalid_transition"
	KindUnsupportedForGateway Kind = "unsupported_for_gateway"
	KindAdviceNotReceived     Kind = "advice_not_received"
	KindTimetableNotPublished Kind = "timetable_not_published"
	KindNotFound              Kind = "not_found"
	KindInvalidInput          Kind = "invalid_input"
)

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrNotReady              = &Error{Kind: KindNotReady}
	ErrPublishBlocked        = &Error{Kind: KindPublishBlocked}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
	ErrUnsupportedForGateway = &Error{Kind: KindUnsupportedForGateway}
	ErrAdviceNotReceived     = &Error{Kind: KindAdviceNotReceived}
	ErrTimetableNotPublished = &Error{Kind: KindTimetableNotPublished}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrInvalidInput          = &Error{Kind: KindInvalidInput}
)

// Error is a rejected lifecycle operation. Message is fit to show next to the
// blocked control.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return strings.ReplaceAll(string(e.Kind), "_", " ")
	}
	return e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, details map[string]any, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Details: details}
}

// NotFound reports a missing entity of the given kind.
func NotFound(entity, id string) *Error {
	return newError(KindNotFound, map[string]any{"entity": entity, "id": id}, "%s not found: %s", entity, id)
}

// InvalidInput reports a malformed argument such as an unknown enum value.
func InvalidInput(field, value string) *Error {
	return newError(KindInvalidInput, map[string]any{"field": field, "value": value}, "invalid %s: %q", field, value)
}

// KindOf returns the kind of err, or "" when err is not a lifecycle error.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}
