package report

import "errors"

// ErrUnknownFormat indicates a report format that has no renderer.
var ErrUnknownFormat = errors.New("unknown report format")
