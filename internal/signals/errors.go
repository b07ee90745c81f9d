package signals

import "errors"

var errEmptyMarker = errors.New("empty marker")
