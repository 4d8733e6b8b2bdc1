package paginate

import (
	"errors"
	"fmt"
)

// ErrWaitTimeout is returned by InputSource implementations when the deadline
// elapses before a qualifying input arrives.
var ErrWaitTimeout = errors.New("paginate: wait deadline exceeded")

// ErrJumpAborted is returned by AwaitText implementations when the actor
// cancels a page-jump prompt ("cancel" or "0").
var ErrJumpAborted = errors.New("paginate: jump aborted")

// ConfigurationError indicates the session cannot start with the provided
// configuration. It is returned synchronously from Run before any state
// machine is spun up.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "paginate: configuration: " + e.Reason
}

// OutOfRangeError reports a jump request outside [1, totalPages]. The page
// cursor is left unchanged.
type OutOfRangeError struct {
	Requested int
	Total     int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("paginate: page %d out of range [1, %d]", e.Requested, e.Total)
}

// ReservedKeyError reports an action registration that collides with a
// currently enabled navigation key.
type ReservedKeyError struct {
	Key string
	Nav Navigation
}

func (e *ReservedKeyError) Error() string {
	return fmt.Sprintf("paginate: key %q reserved by navigation trigger %s", e.Key, e.Nav)
}

// DuplicateKeyError reports a navigation rebind that collides with another
// currently enabled trigger.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("paginate: key %q already bound to an enabled trigger", e.Key)
}

// DispatchError wraps a failure (error or recovered panic) raised by a
// user-registered action callback. It is surfaced through the error event
// and does not stop the session.
type DispatchError struct {
	Key string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("paginate: action %q failed: %v", e.Key, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// PlatformError wraps a failure of the underlying chat platform (message
// deleted externally, permission revoked, transport down). It is fatal to
// the session.
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("paginate: platform %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error { return e.Err }
