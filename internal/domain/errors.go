package domain

import (
	"errors"
	"fmt"
)

// InputDiscoveryError reports that a date did not have exactly two input tiles.
type InputDiscoveryError struct {
	Pattern string
	Found   []string
}

func (e *InputDiscoveryError) Error() string {
	return fmt.Sprintf("expected 2 tiles matching %s, found %d", e.Pattern, len(e.Found))
}

// IOError reports an unreadable tile or an inaccessible path.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ShapeMismatchError reports arrays that cannot be combined.
type ShapeMismatchError struct {
	What string
	Want string
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape mismatch in %s: want %s, got %s", e.What, e.Want, e.Got)
}

// WriteError reports a serialization or I/O failure while persisting an artifact.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrorKind classifies err for log fields and metric labels.
func ErrorKind(err error) string {
	var (
		discovery *InputDiscoveryError
		ioErr     *IOError
		shape     *ShapeMismatchError
		write     *WriteError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &discovery):
		return "input_discovery"
	case errors.As(err, &shape):
		return "shape_mismatch"
	case errors.As(err, &write):
		return "write"
	case errors.As(err, &ioErr):
		return "io"
	default:
		return "unknown"
	}
}
