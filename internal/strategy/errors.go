package strategy

import "errors"

// MinBars is the shortest series eligible for scoring.
const MinBars = 60

var (
	// ErrInsufficientData reports a series shorter than MinBars.
	ErrInsufficientData = errors.New("not enough data")
	// ErrComputation reports a malformed series or a non-finite result.
	ErrComputation = errors.New("computation failed")
)
