package workflow

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when the caller presents an unknown or
// expired session id. It is a client error; the request is never retried.
var ErrSessionNotFound = errors.New("session not found or expired")

// ValidationError reports a response that cannot be applied to the current
// step: missing answer, answer outside the option set, or a file-upload step
// with no file. The session is left untouched and the same step is
// re-offered.
type ValidationError struct {
	Step    StepID
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response for step %s: %s", e.Step, e.Message)
}

// ExtractionError wraps an OCR or field-extraction failure on a file-upload
// step. The step is not advanced and the uploaded file is discarded; the
// caller should allow a re-upload.
type ExtractionError struct {
	Step StepID
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed at step %s: %v", e.Step, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// InvalidTransitionError reports a computed next step that is not registered.
// With a correctly built graph this never happens; it indicates a
// graph-construction bug, not a data problem, and is never swallowed.
type InvalidTransitionError struct {
	From StepID
	To   StepID
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s (step not registered)", e.From, e.To)
}
