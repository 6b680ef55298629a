// Package errs provides the unified error type used across relstore.
//
// Every subsystem (database, filestore, export, httpapi) wraps its native
// errors into *errs.Error before returning them. Callers branch on the Is*
// predicates instead of importing driver packages.
//
// Usage:
//
//	// In a dialect: wrap native errors.
//	return errs.Wrap(errs.ErrKindQueryFailed, "query execution failed", sqliteErr)
//
//	// In a caller: check the kind.
//	if errs.IsInvalidMode(err) {
//	    return usageError(err)
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing engine-specific codes.
type ErrKind int

const (
	ErrKindUnknown          ErrKind = iota
	ErrKindNotFound                 // no such table, no object, no bucket
	ErrKindConnectionFailed         // engine cannot be opened or reached
	ErrKindTimeout                  // context deadline / cancellation
	ErrKindQueryFailed              // prepare or execute rejected by the engine
	ErrKindInvalidInput             // bad arguments from the caller
	ErrKindPermissionDenied         // access denied / auth failure
	ErrKindInvalidMode              // Execute called with an unknown mode
	ErrKindInvalidAction            // ManageTable called with an unknown action
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindInvalidMode:
		return "invalid_mode"
	case ErrKindInvalidAction:
		return "invalid_action"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by relstore subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // underlying engine-level error, kept for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a format string.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a failure to open or reach the engine.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether the engine rejected a statement
// (syntax error, constraint violation, type mismatch, ...).
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsInvalidMode reports whether err came from an unrecognised Execute mode.
func IsInvalidMode(err error) bool {
	return KindOf(err) == ErrKindInvalidMode
}

// IsInvalidAction reports whether err came from an unrecognised table action.
func IsInvalidAction(err error) bool {
	return KindOf(err) == ErrKindInvalidAction
}

// KindOf extracts the ErrKind from any error in the chain.
// Errors that are not *Error report ErrKindUnknown.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
