package vector

import "errors"

var (
	// ErrNotFound is returned when a namespace or collection is not found.
	ErrNotFound = errors.New("not found in vector store")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store call fails.
	ErrConnection = errors.New("vector store connection failed")

	// ErrInvalidFilter is returned for filters a driver cannot honour.
	ErrInvalidFilter = errors.New("invalid vector filter")
)
