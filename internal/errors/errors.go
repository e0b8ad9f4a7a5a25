// Package errors provides the board's error taxonomy and its mapping to HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an error, used for status mapping and metrics.
type ErrorType string

const (
	TypeUnauthorized ErrorType = "unauthorized"
	TypeForbidden    ErrorType = "forbidden"
	TypeValidation   ErrorType = "validation"
	TypeNotFound     ErrorType = "not_found"
	TypeInternal     ErrorType = "internal"
)

// Code identifies the specific failure inside a type.
type Code string

const (
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeInvalidRequest     Code = "invalid_request"
	CodeInvalidTarget      Code = "invalid_target"
	CodeInvalidVoteKind    Code = "invalid_vote_kind"
	CodeInvalidReaction    Code = "invalid_reaction"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePersistenceFailure Code = "persistence_failure"
)

// Sentinels for errors.Is. Constructors below return fresh values that match them by Code.
var (
	ErrUnauthorized       = &Error{Type: TypeUnauthorized, Code: CodeUnauthorized}
	ErrForbidden          = &Error{Type: TypeForbidden, Code: CodeForbidden}
	ErrInvalidRequest     = &Error{Type: TypeValidation, Code: CodeInvalidRequest}
	ErrInvalidTarget      = &Error{Type: TypeValidation, Code: CodeInvalidTarget}
	ErrInvalidVoteKind    = &Error{Type: TypeValidation, Code: CodeInvalidVoteKind}
	ErrInvalidReaction    = &Error{Type: TypeValidation, Code: CodeInvalidReaction}
	ErrNotFound           = &Error{Type: TypeNotFound, Code: CodeNotFound}
	ErrConflict           = &Error{Type: TypeValidation, Code: CodeConflict}
	ErrPersistenceFailure = &Error{Type: TypeInternal, Code: CodePersistenceFailure}
)

// Error represents a structured error with type, code, message, and context.
type Error struct {
	Type    ErrorType
	Code    Code
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeUnauthorized:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeValidation:
		if e.Code == CodeConflict {
			return http.StatusConflict
		}
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, code Code, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// Unauthorized means the caller has no valid identity and must re-authenticate.
func Unauthorized(message string) *Error {
	return newError(TypeUnauthorized, CodeUnauthorized, message, nil)
}

func Forbidden(message string) *Error {
	return newError(TypeForbidden, CodeForbidden, message, nil)
}

// InvalidRequest is a malformed body or parameter not covered by a more specific code.
func InvalidRequest(message string) *Error {
	return newError(TypeValidation, CodeInvalidRequest, message, nil)
}

func InvalidTarget(targetType string) *Error {
	return newError(TypeValidation, CodeInvalidTarget, "Invalid target type", nil).
		WithContext("targetType", targetType)
}

func InvalidVoteKind(voteType string) *Error {
	return newError(TypeValidation, CodeInvalidVoteKind, "Invalid vote type", nil).
		WithContext("voteType", voteType)
}

func InvalidReaction(emoji string) *Error {
	return newError(TypeValidation, CodeInvalidReaction, "Invalid reaction", nil).
		WithContext("emoji", emoji)
}

// NotFound reports a missing entity, e.g. NotFound("Subject").
func NotFound(what string) *Error {
	return newError(TypeNotFound, CodeNotFound, what+" not found", nil)
}

func Conflict(message string) *Error {
	return newError(TypeValidation, CodeConflict, message, nil)
}

// PersistenceFailure wraps a store error. The cause is logged, never sent to clients.
func PersistenceFailure(message string, cause error) *Error {
	return newError(TypeInternal, CodePersistenceFailure, message, cause)
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Code    Code           `json:"code"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse. Internal errors drop their context.
func (e *Error) ToResponse() ErrorResponse {
	resp := ErrorResponse{
		Error: e.Message,
		Type:  e.Type,
		Code:  e.Code,
	}
	if e.Type != TypeInternal && len(e.Context) > 0 {
		resp.Context = e.Context
	}
	return resp
}

// AsStructuredError converts any error into a structured Error.
// Unknown errors become persistence failures.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return PersistenceFailure("internal server error", err)
}

// CodeOf returns the Code of err, or "" when err is not structured.
func CodeOf(err error) Code {
	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr.Code
	}
	return ""
}
