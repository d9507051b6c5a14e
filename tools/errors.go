package tools

import "errors"

var (
	// ErrURLNotAllowed is returned when a fetch targets a host outside the run's allowlist.
	ErrURLNotAllowed = errors.New("url not allowed")
	// ErrInvalidRange is returned by random_int when min > max.
	ErrInvalidRange = errors.New("invalid range")
	// ErrValidation wraps tool input and output schema violations.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownTool is returned when a call names a tool outside the catalog.
	ErrUnknownTool = errors.New("unknown tool")
)
