package portfolio

import "errors"

var (
	// ErrInvalidInput rejects non-positive quantities or prices at open.
	ErrInvalidInput = errors.New("invalid quantity or price")

	// ErrNotFound means the referenced position does not exist.
	ErrNotFound = errors.New("position not found")

	// ErrInsufficientCash rejects a buy that would drive cash negative.
	ErrInsufficientCash = errors.New("insufficient cash")
)
