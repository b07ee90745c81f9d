package timeline

import (
	"errors"
	"fmt"
)

// Causes of an ExtractionError.
var (
	ErrNoText     = errors.New("no extractable text")
	ErrEncoding   = errors.New("text is not valid UTF-8")
	ErrNoTimeline = errors.New("no recognizable timeline section")
	ErrUnreadable = errors.New("document unreadable")
)

// ExtractionError reports that a document could not be turned into a Case.
type ExtractionError struct {
	DocumentID string
	Cause      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.DocumentID, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

func extractionError(id string, cause error) error {
	return &ExtractionError{DocumentID: id, Cause: cause}
}

// Unreadable wraps a document source failure as an ExtractionError.
func Unreadable(id string, err error) error {
	return extractionError(id, fmt.Errorf("%w: %w", ErrUnreadable, err))
}
