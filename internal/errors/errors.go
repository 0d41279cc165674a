// Package errors defines the codelens error taxonomy: one typed error
// per kind, each wrapping an underlying cause, so adapters can map
// kind -> protocol code at the boundary instead of inside analyzers.
package errors

import (
	"fmt"
	"time"
)

// Kind is one of the taxonomy entries from the error handling design.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindNotFound         Kind = "not_found"
	KindValidationFailed Kind = "validation_failed"
	KindParseError       Kind = "parse_error"
	KindIoError          Kind = "io_error"
	KindTimeout          Kind = "timeout"
	KindCacheError       Kind = "cache_error"
	KindInternal         Kind = "internal"
)

// Retryable reports whether the policy in spec.md §7 allows one retry.
func (k Kind) Retryable() bool {
	return k == KindIoError
}

// CodelensError is the single error type every layer produces; adapters
// read Kind to pick an HTTP status, JSON-RPC code, or CLI exit code.
type CodelensError struct {
	Kind       Kind
	Op         string // operation that failed, e.g. "analyze_complexity"
	Path       string // file/resource path, when applicable
	Param      string // parameter path, for ValidationFailed
	Line       int
	Column     int
	Underlying error
	Timestamp  time.Time
	ErrorID    string // stable id for Internal errors, for log correlation
}

func newError(kind Kind, op string, err error) *CodelensError {
	return &CodelensError{
		Kind:       kind,
		Op:         op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func InvalidRequest(op string, err error) *CodelensError { return newError(KindInvalidRequest, op, err) }
func NotFound(op, path string) *CodelensError {
	e := newError(KindNotFound, op, fmt.Errorf("%s not found", path))
	e.Path = path
	return e
}
func ValidationFailed(op, param string, err error) *CodelensError {
	e := newError(KindValidationFailed, op, err)
	e.Param = param
	return e
}
func ParseError(op, path string, line, col int, err error) *CodelensError {
	e := newError(KindParseError, op, err)
	e.Path = path
	e.Line = line
	e.Column = col
	return e
}
func IoError(op string, err error) *CodelensError { return newError(KindIoError, op, err) }
func Timeout(op string, err error) *CodelensError { return newError(KindTimeout, op, err) }
func CacheError(op string, err error) *CodelensError { return newError(KindCacheError, op, err) }
func Internal(op, errorID string, err error) *CodelensError {
	e := newError(KindInternal, op, err)
	e.ErrorID = errorID
	return e
}

// Error implements the error interface with a one-line, actionable message.
func (e *CodelensError) Error() string {
	switch {
	case e.Param != "":
		return fmt.Sprintf("%s: %s failed for parameter %q: %v", e.Kind, e.Op, e.Param, e.Underlying)
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s: %s failed at %s:%d:%d: %v", e.Kind, e.Op, e.Path, e.Line, e.Column, e.Underlying)
	case e.Path != "":
		return fmt.Sprintf("%s: %s failed for %s: %v", e.Kind, e.Op, e.Path, e.Underlying)
	case e.ErrorID != "":
		return fmt.Sprintf("%s: %s failed (id=%s): %v", e.Kind, e.Op, e.ErrorID, e.Underlying)
	default:
		return fmt.Sprintf("%s: %s failed: %v", e.Kind, e.Op, e.Underlying)
	}
}

// Unwrap enables errors.Is/errors.As against the underlying cause.
func (e *CodelensError) Unwrap() error { return e.Underlying }

// MultiError aggregates independent failures, e.g. per-file parse errors
// gathered across a multi-file discovery run. It never hides a nil.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %v", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error { return e.Errors }

// As looks for the first error in a chain matching Kind k.
func As(err error, k Kind) (*CodelensError, bool) {
	for err != nil {
		if c, ok := err.(*CodelensError); ok && c.Kind == k {
			return c, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return nil, false
}
