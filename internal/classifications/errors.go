package classifications

import (
	"errors"
	"fmt"
)

// Causes of a ClassificationError.
var (
	ErrUnreachable  = errors.New("reasoning service unreachable")
	ErrTimeout      = errors.New("reasoning service timed out")
	ErrMalformed    = errors.New("malformed reasoning response")
	ErrInvalidLabel = errors.New("label outside the taxonomy")
	ErrInconsistent = errors.New("recommendation inconsistent with label")
	ErrCanceled     = errors.New("run canceled")
)

// Construction errors.
var (
	ErrNoReasoner  = errors.New("reasoning service not configured")
	ErrNoPolicy    = errors.New("policy not loaded")
	ErrPolicyRules = errors.New("invalid policy recommendation table")
)

// ClassificationError reports that a case could not be classified.
// Attempts is the number of reasoning calls made.
type ClassificationError struct {
	DocumentID string
	Attempts   int
	Cause      error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify %s after %d attempt(s): %v", e.DocumentID, e.Attempts, e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}
