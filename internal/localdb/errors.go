package localdb

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// Kind categorizes a failed operation.
type Kind string

const (
	// KindOpen indicates the database could not be opened or upgraded.
	KindOpen Kind = "OpenError"

	// KindConfiguration indicates an operation was used before the setup it
	// needs (Open not called, unknown key path, handle closed).
	KindConfiguration Kind = "ConfigurationError"

	// KindWrite indicates an insert or update was rejected.
	KindWrite Kind = "WriteError"

	// KindRead indicates a lookup or scan failed.
	KindRead Kind = "ReadError"

	// KindDelete indicates a delete failed.
	KindDelete Kind = "DeleteError"
)

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrOpen          = errors.New("open error")
	ErrConfiguration = errors.New("configuration error")
	ErrWrite         = errors.New("write error")
	ErrRead          = errors.New("read error")
	ErrDelete        = errors.New("delete error")
)

// ErrClosed is wrapped by operations submitted after Close.
var ErrClosed = errors.New("database closed")

// Engine codes carried by Error.Code.
const (
	CodeConstraint    = "ConstraintError"
	CodeQuotaExceeded = "QuotaExceededError"
	CodeBlocked       = "BlockedError"
	CodeCorrupt       = "CorruptError"
	CodeReadOnly      = "ReadOnlyError"
	CodeNotFound      = "NotFoundError"
	CodeVersion       = "VersionError"
	CodeData          = "DataError"
	CodeUnavailable   = "UnavailableError"
	CodeInvalidState  = "InvalidStateError"
	CodeUnknown       = "UnknownError"
)

// Error is returned by every DB operation.
type Error struct {
	// Kind identifies the failed operation class.
	Kind Kind

	// Op names the operation ("open", "push", "get", ...).
	Op string

	// Collection is the collection the operation targeted, if any.
	Collection string

	// Code is the engine-reported error code.
	Code string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Collection != "" {
		return fmt.Sprintf("%s [%s]: %s %q: %v", e.Kind, e.Code, e.Op, e.Collection, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %s: %v", e.Kind, e.Code, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrOpen:
		return e.Kind == KindOpen
	case ErrConfiguration:
		return e.Kind == KindConfiguration
	case ErrWrite:
		return e.Kind == KindWrite
	case ErrRead:
		return e.Kind == KindRead
	case ErrDelete:
		return e.Kind == KindDelete
	}
	return false
}

// CodeOf returns the engine code of err, or "" if err is not an *Error.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// codedError attaches an engine code to an internal failure before it is
// wrapped into an *Error by the public operation.
type codedError struct {
	code string
	err  error
}

func (c *codedError) Error() string { return c.err.Error() }
func (c *codedError) Unwrap() error { return c.err }

func withCode(code string, err error) error {
	return &codedError{code: code, err: err}
}

func codef(code, format string, args ...any) error {
	return withCode(code, fmt.Errorf(format, args...))
}

// wrap converts err into an *Error of the given kind, deriving the code
// from the error chain.
func wrap(kind Kind, op, collection string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Kind:       kind,
		Op:         op,
		Collection: collection,
		Code:       engineCode(err),
		Err:        err,
	}
}

// engineCode maps an error chain to an engine code.
func engineCode(err error) string {
	var ce *codedError
	if errors.As(err, &ce) {
		return ce.code
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code {
		case sqlite3.ErrConstraint:
			return CodeConstraint
		case sqlite3.ErrFull:
			return CodeQuotaExceeded
		case sqlite3.ErrBusy, sqlite3.ErrLocked:
			return CodeBlocked
		case sqlite3.ErrCorrupt, sqlite3.ErrNotADB:
			return CodeCorrupt
		case sqlite3.ErrReadonly:
			return CodeReadOnly
		default:
			return se.Code.Error()
		}
	}

	if errors.Is(err, ErrClosed) {
		return CodeInvalidState
	}
	return CodeUnknown
}
