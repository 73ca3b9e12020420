package repository

import "errors"

var (
	// ErrInvalidCanvasURL indicates a canvas reference that fails validation
	ErrInvalidCanvasURL = errors.New("invalid canvas URL")

	// ErrSourceUnavailable indicates no configured source can serve the reference
	ErrSourceUnavailable = errors.New("canvas source unavailable")
)
