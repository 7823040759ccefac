package types

import "errors"

// Domain errors for type validation
var (
	// Result errors
	ErrMissingSymbol     = errors.New("result symbol is required")
	ErrInvalidRank       = errors.New("rank must be >= 1")
	ErrInvalidConfidence = errors.New("confidence must be between 0 and 1")
)
