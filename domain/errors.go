package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned when a filter, projection, sort, page or
	// change set is malformed. It is always raised before the store is
	// contacted.
	ErrInvalidSpec = errors.New("invalid query spec")
	// ErrInvalidPipeline is returned when an aggregation stage is malformed
	// or references a field no upstream stage produces.
	ErrInvalidPipeline = errors.New("invalid aggregation pipeline")
	// ErrStoreUnavailable matches every error produced by a round trip to
	// the underlying store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrCursorClosed is returned when using a closed [Cursor].
	ErrCursorClosed = errors.New("cursor is closed")
	// ErrScanBeforeNext is returned when calling [Cursor.Scan] before
	// [Cursor.Next].
	ErrScanBeforeNext = errors.New("called Scan before calling Next")
	// ErrTargetNil is returned when a nil target is given to be decoded
	// into.
	ErrTargetNil = errors.New("target interface is nil")
	// ErrNonPointer is returned when the decode target is not a pointer.
	ErrNonPointer = errors.New("target is not a pointer")
	// ErrConstraintViolated is returned when an insert or update would
	// break a unique index.
	ErrConstraintViolated = errors.New("unique constraint violated")
)

// ErrOperation attaches the facade operation to an error returned by the
// store. The store error itself is kept verbatim and can be reached with
// [errors.Is] and [errors.As].
type ErrOperation struct {
	Op  string
	Err error
}

func (e *ErrOperation) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

// Unwrap returns the store error.
func (e *ErrOperation) Unwrap() error { return e.Err }

// Is reports every operation error as [ErrStoreUnavailable].
func (e *ErrOperation) Is(target error) bool {
	return target == ErrStoreUnavailable
}

// ErrDecode is returned by [Decoder.Decode] to wrap third party decoding
// errors.
type ErrDecode struct {
	Source any
	Target any
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("cannot decode %T into %T", e.Source, e.Target)
}

// ErrCannotCompare is returned by [Comparer.Compare] for values it cannot
// order.
type ErrCannotCompare struct {
	A, B any
}

func (e ErrCannotCompare) Error() string {
	return fmt.Sprintf("cannot compare unexpected types %T and %T", e.A, e.B)
}
