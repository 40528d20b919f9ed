package source

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned for blank inputs
	ErrEmptyInput = errors.New("empty input")
	// ErrUnsupported is returned for file types no extractor handles
	ErrUnsupported = errors.New("unsupported file type")
	// ErrTooLarge is returned when a file exceeds the configured size limit
	ErrTooLarge = errors.New("file too large")
)

// Error is a terminal failure for one source
type Error struct {
	Kind   Kind
	Source string
	Op     string
	Err    error
}

func (e *Error) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
