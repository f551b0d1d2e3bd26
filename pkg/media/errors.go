package media

import (
	"errors"
	"fmt"
)

// Sentinel categories for backend failures. Concrete errors wrap one of
// these so callers can classify without knowing the backend.
var (
	// ErrUnavailable means the upstream could not be reached at all.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrProtocol means the upstream answered with something we could not
	// interpret.
	ErrProtocol = errors.New("backend protocol error")
	// ErrRequestFailed means the submission itself was rejected.
	ErrRequestFailed = errors.New("backend request failed")
)

// BackendError carries the context of a failed backend call. The raw detail
// is for logs only; user-facing text comes from the flow's sanitizer.
type BackendError struct {
	// Backend kind ("movie", "series").
	Kind string
	// Op is the failed operation ("search", "request", "connect").
	Op string
	// Status is the upstream HTTP status, 0 when the call never completed.
	Status int
	// Err is the underlying cause, wrapping one of the sentinels above.
	Err error
}

func (e *BackendError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Kind, e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
