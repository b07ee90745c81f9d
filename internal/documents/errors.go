package documents

import "errors"

// Domain errors for document operations.
var (
	ErrNotFound     = errors.New("document not found")
	ErrFileTooLarge = errors.New("file exceeds maximum document size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrUnsupported  = errors.New("unsupported document type")
	ErrNoDocuments  = errors.New("no documents found")
)
