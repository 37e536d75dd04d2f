package ingest

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/smartexpense/smartexpense/internal/model"
)

// Batch is the in-memory list of validated, unsubmitted expenses that file
// imports and manual entries both append to.
type Batch struct {
	mu   sync.Mutex
	rows []model.ExpenseRow
}

// Rows returns a copy of the pending rows.
func (b *Batch) Rows() []model.ExpenseRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.ExpenseRow, len(b.rows))
	copy(out, b.rows)
	return out
}

// Len returns the number of pending rows.
func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// Total sums the pending amounts.
func (b *Batch) Total() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := decimal.Zero
	for _, r := range b.rows {
		total = total.Add(r.Amount)
	}
	return total
}

// Append adds already validated rows.
func (b *Batch) Append(rows ...model.ExpenseRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = append(b.rows, rows...)
}

// Remove drops the row at index i.
func (b *Batch) Remove(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.rows) {
		return false
	}
	b.rows = append(b.rows[:i], b.rows[i+1:]...)
	return true
}

// Clear empties the batch.
func (b *Batch) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows = nil
}

// dropFront removes the first n rows, keeping anything appended since they
// were read.
func (b *Batch) dropFront(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n >= len(b.rows) {
		b.rows = nil
		return
	}
	b.rows = append([]model.ExpenseRow(nil), b.rows[n:]...)
}

// Import decodes and validates one file and appends its rows. A file is
// accepted whole or not at all.
func (b *Batch) Import(v *Validator, name, mimeType string, r io.Reader) (int, error) {
	raw, err := Decode(name, mimeType, r)
	if err != nil {
		return 0, err
	}
	rows, err := v.Rows(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	b.Append(rows...)
	return len(rows), nil
}

// ImportFile imports the file at path, taking its type from the extension.
func (b *Batch) ImportFile(v *Validator, path string) (int, error) {
	mimeType, err := DetectMIME(path)
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()
	return b.Import(v, path, mimeType, f)
}

// ManualEntry is the single-expense form.
type ManualEntry struct {
	Date     string
	Category string
	Amount   string
}

// AddManual validates e and appends it. On success the returned entry is
// cleared; on failure e comes back unchanged alongside the error.
func (b *Batch) AddManual(v *Validator, e ManualEntry) (ManualEntry, error) {
	row, err := v.Entry(e.Category, e.Date, e.Amount)
	if err != nil {
		return e, err
	}
	b.Append(row)
	return ManualEntry{}, nil
}
