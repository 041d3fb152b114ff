// Package apperr defines the typed error taxonomy shared across the
// conversion pipeline and query engine, and the troubleshooting hint table
// used to turn a raw error into a user-actionable message.
package apperr

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind identifies the category of failure, independent of the Go type
// carrying it. Composition sites branch on Kind, not on concrete types.
type Kind string

const (
	KindInput               Kind = "input"                // missing/too-large/malformed file, bad args
	KindSpecInvariant        Kind = "spec_invariant"        // spec violates an OpenAPI invariant
	KindUnresolvableReference Kind = "unresolvable_reference" // $ref target missing
	KindStorage              Kind = "storage"               // DB open/transaction/migration/integrity
	KindIndex                Kind = "index"                 // index build/open failure
	KindQuerySyntax           Kind = "query_syntax"          // internal only; degrades, doesn't abort
	KindNotFound              Kind = "not_found"             // MCP tool argument names an absent entity
	KindTimeout               Kind = "timeout"               // deadline exceeded
	KindOverloaded            Kind = "overloaded"            // too many in-flight requests
	KindInternal              Kind = "internal"              // anything else
)

// Error is the typed error every component boundary returns. CorrelationID
// is attached at the point the error is surfaced to a caller, not at the
// point it is created.
type Error struct {
	kind          Kind
	message       string
	correlationID string
	retryable     bool
	cause         error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the error's taxonomy kind.
func (e *Error) Kind() Kind { return e.kind }

// Retryable reports whether the caller may safely retry the operation.
func (e *Error) Retryable() bool { return e.retryable }

// CorrelationID returns the correlation id attached to this error, if any.
func (e *Error) CorrelationID() string { return e.correlationID }

// WithCorrelationID returns a copy of e tagged with the given correlation id.
func (e *Error) WithCorrelationID(id string) *Error {
	cp := *e
	cp.correlationID = id
	return &cp
}

// NewCorrelationID mints a short id to tag one user-visible failure,
// the same uuid.New().String() truncated-to-8 idiom the teacher uses for
// its own short-lived ids (campaign/session/atom ids).
func NewCorrelationID() string {
	return uuid.New().String()[:8]
}

func newf(kind Kind, retryable bool, cause error, format string, args ...interface{}) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...), retryable: retryable, cause: cause}
}

func Input(cause error, format string, args ...interface{}) *Error {
	return newf(KindInput, false, cause, format, args...)
}

func SpecInvariant(cause error, format string, args ...interface{}) *Error {
	return newf(KindSpecInvariant, false, cause, format, args...)
}

func UnresolvableReference(ref string) *Error {
	return newf(KindUnresolvableReference, false, nil, "unresolvable reference: %s", ref)
}

func Storage(cause error, format string, args ...interface{}) *Error {
	return newf(KindStorage, false, cause, format, args...)
}

func Index(cause error, format string, args ...interface{}) *Error {
	return newf(KindIndex, false, cause, format, args...)
}

func QuerySyntax(cause error, format string, args ...interface{}) *Error {
	return newf(KindQuerySyntax, false, cause, format, args...)
}

func NotFound(entityKind, name string) *Error {
	return newf(KindNotFound, false, nil, "%s not found: %s", entityKind, name)
}

func Timeout(format string, args ...interface{}) *Error {
	return newf(KindTimeout, true, nil, format, args...)
}

func Overloaded(format string, args ...interface{}) *Error {
	return newf(KindOverloaded, true, nil, format, args...)
}

func Internal(cause error, format string, args ...interface{}) *Error {
	return newf(KindInternal, false, cause, format, args...)
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error, defaulting to KindInternal otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindInternal
}

// IsRetryable reports whether err carries a retry-safe marker.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.retryable
	}
	return false
}
