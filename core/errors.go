package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// ErrorKind classifies domain errors so that transports can map them to their own status codes.
type ErrorKind int

const (
	KindNotFound     ErrorKind = iota + 1 // missing row
	KindAccessDenied                      // caller lacks the required course/enrollment relationship
	KindNotAllowed                        // business rule violation
	KindForbidden                         // duplicate unique key, bad credentials
)

type AppError struct {
	Kind    ErrorKind
	Message string
}

func (err AppError) Error() string { return err.Message }

func NewNotFoundError(msg string) error     { return &AppError{Kind: KindNotFound, Message: msg} }
func NewAccessDeniedError(msg string) error { return &AppError{Kind: KindAccessDenied, Message: msg} }
func NewNotAllowedError(msg string) error   { return &AppError{Kind: KindNotAllowed, Message: msg} }
func NewForbiddenError(msg string) error    { return &AppError{Kind: KindForbidden, Message: msg} }

// ErrAccessDenied is the generic authorization failure.
var ErrAccessDenied = NewAccessDeniedError("Access denied")

func isKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func IsNotFound(err error) bool     { return isKind(err, KindNotFound) }
func IsAccessDenied(err error) bool { return isKind(err, KindAccessDenied) }
func IsNotAllowed(err error) bool   { return isKind(err, KindNotAllowed) }
func IsForbidden(err error) bool    { return isKind(err, KindForbidden) }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
