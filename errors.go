package viewpager

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when a page token does not decode to a
	// PageCursor.
	ErrInvalidToken = errors.New("invalid page token")
	// ErrEmptyResult is returned when the view has no rows at the requested
	// position: the caller paged past the end or the data changed since the
	// token was issued.
	ErrEmptyResult = errors.New("empty view result")
	// ErrInvalidPageSize is returned for non-positive page sizes.
	ErrInvalidPageSize = errors.New("invalid page size")
)

// ExecutorError wraps a failure of the underlying ViewExecutor. The engine
// does not interpret it.
type ExecutorError struct {
	Err error
}

func (e *ExecutorError) Error() string {
	return fmt.Sprintf("view query failed: %v", e.Err)
}

func (e *ExecutorError) Unwrap() error {
	return e.Err
}
