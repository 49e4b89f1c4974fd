package loader

import "errors"

var (
	// ErrSinkRequired is returned when a sink is not provided.
	ErrSinkRequired = errors.New("sink required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidMaxAttempts is returned when retry attempts is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than zero")
)
