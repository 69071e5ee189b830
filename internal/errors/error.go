package errors

import (
	"errors"
	"fmt"
)

// Category represents the kind of error.
type Category string

const (
	CategoryConfig   Category = "config"
	CategoryMount    Category = "mount"
	CategoryProtocol Category = "protocol"
	CategoryBackend  Category = "backend"
	CategoryCLI      Category = "cli"
)

// SputnikError is a structured error with an explanation and a fix hint.
type SputnikError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	Category Category

	// Message is a short description of the error.
	Message string

	// Detail explains this occurrence (which key, which selector).
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *SputnikError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *SputnikError) Unwrap() error {
	return e.Wrapped
}

// Is matches another *SputnikError with the same code, so callers can test
// errors.Is(err, errors.New("E201")).
func (e *SputnikError) Is(target error) bool {
	t, ok := target.(*SputnikError)
	return ok && t.Code != "" && t.Code == e.Code
}

// WithDetail sets the occurrence-specific explanation.
func (e *SputnikError) WithDetail(d string) *SputnikError {
	e.Detail = d
	return e
}

// WithDetailf sets a formatted detail.
func (e *SputnikError) WithDetailf(format string, args ...any) *SputnikError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion sets the fix hint.
func (e *SputnikError) WithSuggestion(s string) *SputnikError {
	e.Suggestion = s
	return e
}

// Wrap sets the underlying cause.
func (e *SputnikError) Wrap(err error) *SputnikError {
	e.Wrapped = err
	return e
}

// New creates an error from a registered code. Unknown codes produce an
// error with the message "Unknown error".
func New(code string) *SputnikError {
	tmpl, ok := GetTemplate(code)
	if !ok {
		return &SputnikError{Code: code, Message: "Unknown error"}
	}
	return &SputnikError{
		Code:       code,
		Category:   tmpl.Category,
		Message:    tmpl.Message,
		Suggestion: tmpl.Suggestion,
	}
}

// FromError returns err unchanged if it already is a *SputnikError anywhere
// in its chain, otherwise wraps it under code.
func FromError(err error, code string) *SputnikError {
	if err == nil {
		return nil
	}
	var se *SputnikError
	if errors.As(err, &se) {
		return se
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first *SputnikError in err's chain, or "".
func Code(err error) string {
	var se *SputnikError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
