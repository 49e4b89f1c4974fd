package search

import "errors"

var (
	// ErrInvalidScore indicates a candidate score that is not a number.
	ErrInvalidScore = errors.New("score must be a number")
)
