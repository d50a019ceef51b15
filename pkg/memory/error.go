package memory

import "errors"

var (
	// ErrNotConfigured is returned when a surface that serves memory
	// operations is built without a memory manager.
	ErrNotConfigured = errors.New("memory not configured")

	// ErrInvalidAction is returned when a write request names an action
	// other than addFact, evolveProfile or recordInteraction.
	ErrInvalidAction = errors.New("unknown action")

	// ErrUnsupportedMethod is returned when a request uses a verb outside
	// the supported set.
	ErrUnsupportedMethod = errors.New("method not allowed")
)

// InternalError wraps any unexpected failure while processing an operation,
// including malformed payloads and storage errors. The operation made no
// change when an InternalError is returned.
type InternalError struct {
	// Op is the failed operation, e.g. "addFact".
	Op string

	// UserID is the record the operation targeted.
	UserID string

	Err error
}

func (e *InternalError) Error() string {
	return e.Op + " " + e.UserID + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// IsInternal reports whether err is, or wraps, an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
