// Package errs holds the error taxonomy shared by the engine and the HTTP layer.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinels usable with errors.Is against any *Error of the matching kind.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict: resource already exists")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden")
	ErrInternal     = errors.New("internal server error")
)

type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindForbidden
	KindInternal
)

// InternalMessage is the only text a caller ever sees for KindInternal.
const InternalMessage = "Internal server error"

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindConflict:
		return "Conflict"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	default:
		return "Internal"
	}
}

// Status maps a kind to its HTTP status. Conflict is reported as 400.
func (k Kind) Status() int {
	switch k {
	case KindInvalidInput, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidInput:
		return ErrInvalidInput
	case KindConflict:
		return ErrConflict
	case KindUnauthorized:
		return ErrUnauthorized
	case KindForbidden:
		return ErrForbidden
	default:
		return ErrInternal
	}
}

// Error is a classified error. Messages are safe to return to clients;
// Err is the underlying cause and is never rendered.
type Error struct {
	Kind     Kind
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	msg := strings.Join(e.Messages, "; ")
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func (e *Error) Status() int {
	return e.Kind.Status()
}

func newError(kind Kind, messages []string) *Error {
	return &Error{Kind: kind, Messages: messages}
}

func InvalidInput(messages ...string) *Error {
	return newError(KindInvalidInput, messages)
}

func Conflict(messages ...string) *Error {
	return newError(KindConflict, messages)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, []string{message})
}

func Forbidden(message string) *Error {
	return newError(KindForbidden, []string{message})
}

// Internal hides err behind the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Messages: []string{InternalMessage}, Err: err}
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
