package emotion

import "errors"

var (
	// ErrUnknownLabel is returned when a name is not in the vocabulary.
	ErrUnknownLabel = errors.New("emotion: unknown label")

	// ErrNotClassified marks a region whose classification failed.
	ErrNotClassified = errors.New("emotion: region not classified")
)
