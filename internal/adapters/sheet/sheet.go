// Package sheet defines the backing document service contract and its
// implementations. A Document is one spreadsheet holding named worksheets;
// each worksheet is a plain grid of strings. Nothing here understands headers
// or value semantics; that is the tabular store's job.
package sheet

import "context"

// Document is one spreadsheet: a set of named worksheets.
type Document interface {
	// Worksheet returns the worksheet with the given title.
	// Returns ErrWorksheetNotFound if no such worksheet exists.
	Worksheet(ctx context.Context, title string) (Worksheet, error)

	// CreateWorksheet creates a worksheet with title and writes header as
	// its first row. Returns ErrWorksheetExists if the title is taken.
	CreateWorksheet(ctx context.Context, title string, header []string) (Worksheet, error)

	// URL is the browser link to the backing document, empty when the
	// implementation has no address.
	URL() string
}

// Worksheet is one grid inside a document.
type Worksheet interface {
	Title() string

	// Values returns the full grid including the header row. Every call
	// round-trips to the backing service; nothing is cached.
	Values(ctx context.Context) ([][]string, error)

	// Append adds row after the last stored row.
	Append(ctx context.Context, row []string) error
}
