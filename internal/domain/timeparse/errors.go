package timeparse

import "errors"

// Sentinel kinds for stage time parsing.
var (
	ErrInvalidDuration = errors.New("invalid stage time")
)
