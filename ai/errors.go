package ai

import "errors"

var (
	// ErrProvider indicates that embedding generation failed in the
	// underlying provider. The cause is wrapped alongside it.
	ErrProvider = errors.New("embedding provider failure")
)
