// Package apperr defines the closed set of error kinds surfaced by the API.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindAITransport
	KindAISchema
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindAITransport:
		return "ai_transport"
	case KindAISchema:
		return "ai_schema"
	case KindStore:
		return "store"
	default:
		return "internal"
	}
}

// Error carries a kind, a user-facing message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports bad or missing input
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthorized reports a missing or invalid credential
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NotFound reports an absent resource
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// AITransport reports a failed or empty call to the generative model
func AITransport(message string, err error) *Error {
	return &Error{Kind: KindAITransport, Message: message, Err: err}
}

// AISchema reports a model reply that did not match the expected format
func AISchema(message string, err error) *Error {
	return &Error{Kind: KindAISchema, Message: message, Err: err}
}

// Store reports a persistence failure
func Store(message string, err error) *Error {
	return &Error{Kind: KindStore, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err, or fallback when err carries none
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// Is reports whether err is an *Error of the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
