package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryDocument implements Document with in-process grids. It backs tests
// and offline runs; the locking mirrors the remote service's per-call
// consistency, nothing more.
type MemoryDocument struct {
	mu    sync.Mutex
	order []string
	grids map[string]*memoryWorksheet
	url   string
}

// MemoryOption applies a configuration option to a MemoryDocument.
type MemoryOption func(*MemoryDocument)

// WithURL sets the address reported by URL.
func WithURL(url string) MemoryOption {
	return func(d *MemoryDocument) {
		d.url = url
	}
}

// NewMemoryDocument creates an empty in-memory document.
func NewMemoryDocument(opts ...MemoryOption) *MemoryDocument {
	d := &MemoryDocument{grids: make(map[string]*memoryWorksheet)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *MemoryDocument) Worksheet(_ context.Context, title string) (Worksheet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ws, ok := d.grids[title]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorksheetNotFound, title)
	}
	return ws, nil
}

func (d *MemoryDocument) CreateWorksheet(_ context.Context, title string, header []string) (Worksheet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.grids[title]; ok {
		return nil, fmt.Errorf("%w: %q", ErrWorksheetExists, title)
	}
	ws := &memoryWorksheet{doc: d, title: title}
	ws.rows = append(ws.rows, cloneRow(header))
	d.grids[title] = ws
	d.order = append(d.order, title)
	return ws, nil
}

func (d *MemoryDocument) URL() string { return d.url }

// Titles lists worksheet titles in creation order.
func (d *MemoryDocument) Titles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	titles := make([]string, len(d.order))
	copy(titles, d.order)
	return titles
}

type memoryWorksheet struct {
	doc   *MemoryDocument
	title string
	rows  [][]string
}

func (w *memoryWorksheet) Title() string { return w.title }

func (w *memoryWorksheet) Values(_ context.Context) ([][]string, error) {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	out := make([][]string, len(w.rows))
	for i, row := range w.rows {
		out[i] = cloneRow(row)
	}
	return out, nil
}

func (w *memoryWorksheet) Append(_ context.Context, row []string) error {
	w.doc.mu.Lock()
	defer w.doc.mu.Unlock()
	w.rows = append(w.rows, cloneRow(row))
	return nil
}

func cloneRow(row []string) []string {
	out := make([]string, len(row))
	copy(out, row)
	return out
}
