// Package apperr defines the error kinds surfaced at the request boundary.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindAuthorization
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	}

	return "unknown"
}

// Error carries a Kind and a user-visible message. Field is set for
// validation failures on a single input. Permanent marks a conflict that no
// retry can clear.
type Error struct {
	Kind      Kind
	Field     string
	Message   string
	Err       error
	Permanent bool
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func NotFound(what string) error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Conflict(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err}
}

// Protected is a conflict with rows that still reference the target, such as
// deleting a child that has invoices.
func Protected(msg string, err error) error {
	return &Error{Kind: KindConflict, Message: msg, Err: err, Permanent: true}
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool  { return KindOf(err) == KindAuthorization }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }

// IsRetryable reports whether resubmitting the operation may succeed.
func IsRetryable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	return e.Kind == KindConflict && !e.Permanent
}

// Message returns the user-visible part of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Field != "" {
			return e.Field + ": " + e.Message
		}

		return e.Message
	}

	return err.Error()
}
