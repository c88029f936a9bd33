package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for callers and for HTTP mapping at the edge.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindNotFound
	KindForbidden
	KindToken
	KindUnavailable
)

// Error is a structured failure with a stable code, a human message and an
// optional detail string. All guarded operations fail with one of these;
// infrastructure errors are wrapped with fmt.Errorf instead.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Detail  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a structured failure.
func New(kind Kind, code, message, detail string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Detail: detail}
}

// WithDetail returns a copy of e with the detail string replaced.
func (e *Error) WithDetail(detail string) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// From extracts a structured failure from err, if it carries one.
func From(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is (or wraps) a structured failure of kind k.
func IsKind(err error, k Kind) bool {
	e, ok := From(err)
	return ok && e.Kind == k
}

// IsCode reports whether err is (or wraps) a structured failure with code.
func IsCode(err error, code string) bool {
	e, ok := From(err)
	return ok && e.Code == code
}
