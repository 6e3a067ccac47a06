package model

import "errors"

var (
	// ErrSourceUnavailable is returned when a corpus cannot be sized, opened or read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrInsertExhausted is returned when a probe sequence finds no slot for a new entry.
	ErrInsertExhausted = errors.New("insert exhausted probe sequence")
	// ErrArityMismatch is returned when an n-gram does not have exactly n words.
	ErrArityMismatch = errors.New("n-gram length does not match model order")
	ErrNotFound      = errors.New("n-gram not found")
	ErrUntrained     = errors.New("model is not trained")
	ErrInvalidOrder  = errors.New("model order must be at least 1")
)
