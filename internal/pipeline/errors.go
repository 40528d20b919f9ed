package pipeline

import "fmt"

// UnexpectedError is a failure after the source was read. The run emits no
// record.
type UnexpectedError struct {
	RunID string
	Stage string
	Err   error
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("%s failed (run %s): %v", e.Stage, e.RunID, e.Err)
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}
