package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrInsufficientCredit    = errors.New("insufficient credit")
	ErrExtractionFailed      = errors.New("match extraction failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
