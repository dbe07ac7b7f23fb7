package tabular

import "errors"

// Sentinel kinds for table access. ErrColumnNotFound and ErrArityMismatch
// mean the stored header no longer matches the schema the caller expects;
// they are faults, not user errors.
var (
	ErrColumnNotFound = errors.New("column not found in table header")
	ErrArityMismatch  = errors.New("row length does not match table header")
	ErrRowNotFound    = errors.New("no matching row in table")
)
