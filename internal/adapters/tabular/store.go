// Package tabular provides header-indexed table access over a backing
// document. A table is one worksheet whose first row is the header; the
// store offers create-if-absent, column lookup, constrained append and point
// lookup, and never interprets value semantics.
package tabular

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xlsrln/cat-bot/internal/adapters/sheet"
	"github.com/xlsrln/cat-bot/pkg/logger"
	"github.com/xlsrln/cat-bot/pkg/metrics"
)

// Store hands out tables of one backing document.
type Store struct {
	doc     sheet.Document
	log     logger.Logger
	metrics *metrics.Manager
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics enables round-trip observations on the given manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// New creates a Store over doc.
func New(doc sheet.Document, opts ...Option) *Store {
	s := &Store{
		doc: doc,
		log: logger.Get().Named("tabular"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// URL reports the backing document's browser address.
func (s *Store) URL() string { return s.doc.URL() }

// EnsureTable returns the table with the given name, creating it with
// exactly header as its first row when absent. An existing table is returned
// unchanged: its stored header stays authoritative even when it differs from
// the requested one, and no migration is attempted.
func (s *Store) EnsureTable(ctx context.Context, name string, header []string) (*Table, error) {
	start := time.Now()
	ws, err := s.doc.Worksheet(ctx, name)
	if err == nil {
		s.observe("ensure_table", start, nil)
		return &Table{store: s, ws: ws, name: name}, nil
	}
	if !errors.Is(err, sheet.ErrWorksheetNotFound) {
		s.observe("ensure_table", start, err)
		return nil, fmt.Errorf("ensure table %q: %w", name, err)
	}

	ws, err = s.doc.CreateWorksheet(ctx, name, header)
	s.observe("ensure_table", start, err)
	if err != nil {
		return nil, fmt.Errorf("ensure table %q: %w", name, err)
	}
	s.log.Info(ctx, "created table", logger.String("table", name), logger.Int("columns", len(header)))
	return &Table{store: s, ws: ws, name: name}, nil
}

func (s *Store) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveSheetCall(op, time.Since(start), err)
	}
}

// Table is one header-delimited table of the backing document. It holds no
// copy of the data: every operation re-reads the worksheet.
type Table struct {
	store *Store
	ws    sheet.Worksheet
	name  string
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Header returns the stored column names.
func (t *Table) Header(ctx context.Context) ([]string, error) {
	grid, err := t.grid(ctx, "header")
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, nil
	}
	return grid[0], nil
}

// ColumnValues returns all data-row values under the named column, in row
// order. Returns ErrColumnNotFound when the header lacks the column.
func (t *Table) ColumnValues(ctx context.Context, column string) ([]string, error) {
	grid, err := t.grid(ctx, "column_values")
	if err != nil {
		return nil, err
	}
	idx, err := t.columnIndex(grid, column)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}
	return values, nil
}

// AllRows returns all data rows in stored order, header excluded.
func (t *Table) AllRows(ctx context.Context) ([][]string, error) {
	grid, err := t.grid(ctx, "all_rows")
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, nil
	}
	rows := make([][]string, 0, len(grid)-1)
	for _, row := range grid[1:] {
		rows = append(rows, padRow(row, len(grid[0])))
	}
	return rows, nil
}

// AppendRow appends row as the new last row. Returns ErrArityMismatch when
// the row length differs from the stored header length; the row is never
// truncated or padded to fit. No uniqueness checking happens here.
func (t *Table) AppendRow(ctx context.Context, row []string) error {
	header, err := t.Header(ctx)
	if err != nil {
		return err
	}
	if len(row) != len(header) {
		return fmt.Errorf("%w: table %q has %d columns, row has %d values",
			ErrArityMismatch, t.name, len(header), len(row))
	}
	start := time.Now()
	err = t.ws.Append(ctx, row)
	t.store.observe("append_row", start, err)
	if err != nil {
		return fmt.Errorf("append to table %q: %w", t.name, err)
	}
	return nil
}

// FindRow returns the first data row whose value under column equals value,
// comparing canonical string forms exactly. Returns ErrRowNotFound when no
// row matches.
func (t *Table) FindRow(ctx context.Context, column, value string) ([]string, error) {
	grid, err := t.grid(ctx, "find_row")
	if err != nil {
		return nil, err
	}
	idx, err := t.columnIndex(grid, column)
	if err != nil {
		return nil, err
	}
	for _, row := range grid[1:] {
		cell := ""
		if idx < len(row) {
			cell = row[idx]
		}
		if cell == value {
			return padRow(row, len(grid[0])), nil
		}
	}
	return nil, fmt.Errorf("%w: table %q has no row with %s = %q", ErrRowNotFound, t.name, column, value)
}

func (t *Table) grid(ctx context.Context, op string) ([][]string, error) {
	start := time.Now()
	grid, err := t.ws.Values(ctx)
	t.store.observe(op, start, err)
	if err != nil {
		return nil, fmt.Errorf("read table %q: %w", t.name, err)
	}
	return grid, nil
}

func (t *Table) columnIndex(grid [][]string, column string) (int, error) {
	if len(grid) == 0 {
		return 0, fmt.Errorf("%w: table %q has no header row", ErrColumnNotFound, t.name)
	}
	for i, name := range grid[0] {
		if name == column {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q in table %q", ErrColumnNotFound, column, t.name)
}

// padRow restores trailing empty cells the backing service omits, so data
// rows always come back at header arity.
func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	padded := make([]string, width)
	copy(padded, row)
	return padded
}
