package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies the category of a resolution failure.
type ErrorKind string

const (
	// Lookups
	KindNotFound        ErrorKind = "not_found"
	KindHeadUnavailable ErrorKind = "head_unavailable"

	// Transport and decoding
	KindFetch ErrorKind = "fetch_error"
	KindParse ErrorKind = "parse_error"

	// Version selection
	KindNoSatisfyingVersion ErrorKind = "no_satisfying_version"

	// Pre-resolution
	KindInvalidInput ErrorKind = "invalid_input"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNotFound            = &Error{Kind: KindNotFound}
	ErrHeadUnavailable     = &Error{Kind: KindHeadUnavailable}
	ErrFetch               = &Error{Kind: KindFetch}
	ErrParse               = &Error{Kind: KindParse}
	ErrNoSatisfyingVersion = &Error{Kind: KindNoSatisfyingVersion}
	ErrInvalidInput        = &Error{Kind: KindInvalidInput}
)

// Error is a terminal failure of a single resolution call.
type Error struct {
	Kind ErrorKind
	// Subject is the crate name or repository URL the failure is about.
	Subject string
	Message string
	// Requirement is set for KindNoSatisfyingVersion.
	Requirement string
	// Available lists the published versions for KindNoSatisfyingVersion.
	Available []string
	Err       error
}

// NewError creates an Error of the given kind.
func NewError(kind ErrorKind, subject, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates an Error of the given kind that wraps err.
func WrapError(kind ErrorKind, subject string, err error, format string, args ...any) *Error {
	e := NewError(kind, subject, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Message == "" {
		b.WriteString(string(e.Kind))
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&b, " (available versions: %s)", strings.Join(e.Available, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
