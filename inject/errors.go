package inject

import "errors"

var (
	// ErrMarkerNotFound is returned when the source has no injection marker line.
	ErrMarkerNotFound = errors.New("injection marker not found")

	// ErrSymbolCollision is returned when the random source keeps producing
	// names that were already issued.
	ErrSymbolCollision = errors.New("could not generate a unique symbol name")

	// ErrInvalidOptions is returned by New for unusable token settings.
	ErrInvalidOptions = errors.New("invalid injector options")
)
