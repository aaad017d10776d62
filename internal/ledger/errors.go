package ledger

import (
	"errors"
	"fmt"
)

// ErrClosed is wrapped by the ValidationError returned when a closed Model
// is mutated.
var ErrClosed = errors.New("model is closed")

var errNoStore = errors.New("model has no store")

// ValidationError reports a mutation rejected before any state changed.
type ValidationError struct {
	Op  string
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError reports an operation on an unknown account or transaction.
type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// StorageError reports a failure to load or save durable state.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
