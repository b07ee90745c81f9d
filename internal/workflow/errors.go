package workflow

import "errors"

// ErrIncompleteState indicates the graph finished without the values a
// node expected in the state bag.
var ErrIncompleteState = errors.New("incomplete workflow state")
