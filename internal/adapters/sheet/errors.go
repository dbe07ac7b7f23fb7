package sheet

import "errors"

// Sentinel kinds for document access.
var (
	ErrWorksheetNotFound = errors.New("worksheet not found")
	ErrWorksheetExists   = errors.New("worksheet already exists")
)
