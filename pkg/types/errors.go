package types

import "errors"

// Domain errors for type validation
var (
	ErrMissingPath      = errors.New("path is required")
	ErrInvalidLine      = errors.New("line must be >= 1")
	ErrInvalidLineRange = errors.New("line range must be 1-based and non-empty")
	ErrLineOutsideRange = errors.New("matched line must fall inside its range")
)
