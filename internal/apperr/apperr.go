// Package apperr defines the error taxonomy shared by the workflow engine, the
// HTTP layer and the API client.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// Codes refine a Kind. A sentinel with a code only matches errors carrying the
// same code; a sentinel without one matches every error of its kind.
const (
	CodeInvalidTransition  = "invalid_transition"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidCredentials = "invalid_credentials"
	CodeRateLimited        = "rate_limited"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Kind == t.Kind
}

var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrInvalidTransition  = &Error{Kind: KindValidation, Code: CodeInvalidTransition, Message: "invalid status transition"}
	ErrAuthorization      = &Error{Kind: KindAuthorization, Message: "not authorized"}
	ErrUnauthenticated    = &Error{Kind: KindAuthorization, Code: CodeUnauthenticated, Message: "authentication required"}
	ErrInvalidCredentials = &Error{Kind: KindAuthorization, Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict           = &Error{Kind: KindConflict, Message: "conflict"}
	ErrTransient          = &Error{Kind: KindTransient, Message: "temporarily unavailable"}
	ErrRateLimited        = &Error{Kind: KindTransient, Code: CodeRateLimited, Message: "too many requests, please try again later"}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(from, to string) error {
	return &Error{
		Kind:    KindValidation,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move request from %q to %q", from, to),
	}
}

func Authorization(format string, args ...any) error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindAuthorization, Code: CodeUnauthenticated, Message: msg}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Transient(err error, msg string) error {
	return &Error{Kind: KindTransient, Message: msg, Err: err}
}

// New builds an error of the given kind and code, used when decoding errors
// received over the wire.
func New(kind Kind, code, msg string) error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HTTPStatus maps err onto a response status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	}
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of HTTPStatus for errors decoded by a client.
func FromStatus(status int, code, msg string) error {
	kind := KindUnknown
	switch {
	case status == http.StatusBadRequest:
		kind = KindValidation
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = KindAuthorization
		if code == "" && status == http.StatusUnauthorized {
			code = CodeUnauthenticated
		}
	case status == http.StatusNotFound:
		kind = KindNotFound
	case status == http.StatusConflict:
		kind = KindConflict
	case status == http.StatusTooManyRequests:
		kind = KindTransient
		if code == "" {
			code = CodeRateLimited
		}
	case status >= 500 && status != http.StatusNotImplemented:
		kind = KindTransient
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &Error{Kind: kind, Code: code, Message: msg}
}
