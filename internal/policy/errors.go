package policy

import "errors"

var (
	ErrUnreadable  = errors.New("policy document unreadable")
	ErrEmpty       = errors.New("policy document is empty")
	ErrFrontMatter = errors.New("invalid policy front matter")
)
