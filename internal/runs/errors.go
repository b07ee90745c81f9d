package runs

import "errors"

// ErrNoDocuments indicates a run was requested with no document ids.
var ErrNoDocuments = errors.New("no documents to process")
