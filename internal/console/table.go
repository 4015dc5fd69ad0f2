package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"onetap-admin/internal/dashboard"
)

// Table is a terminal table body. Rows are numbered from 1 when rendered
// and their buttons are addressed by that number.
type Table struct {
	Title   string
	Headers []string

	resolve func(string) string

	mu   sync.Mutex
	rows []dashboard.Row
}

// NewTable creates an empty table. resolve turns image sources into
// something the operator can open; it may be nil.
func NewTable(title string, headers []string, resolve func(string) string) *Table {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	return &Table{Title: title, Headers: headers, resolve: resolve}
}

// Clear drops every row.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
}

// Append adds one row.
func (t *Table) Append(r dashboard.Row) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// Button returns the click handler of the first button in row n (1-based).
func (t *Table) Button(n int) (func(context.Context), error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.rows) {
		return nil, fmt.Errorf("%s has no row %d", strings.ToLower(t.Title), n)
	}
	for _, c := range t.rows[n-1].Cells {
		if c.Kind == dashboard.ButtonCell && c.OnClick != nil {
			return c.OnClick, nil
		}
	}
	return nil, fmt.Errorf("%s row %d has no action", strings.ToLower(t.Title), n)
}

// Image returns the resolved source of the first image in row n (1-based).
func (t *Table) Image(n int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if n < 1 || n > len(t.rows) {
		return "", fmt.Errorf("%s has no row %d", strings.ToLower(t.Title), n)
	}
	for _, c := range t.rows[n-1].Cells {
		if c.Kind == dashboard.ImageCell {
			return t.resolve(c.Src), nil
		}
	}
	return "", fmt.Errorf("%s row %d has no image", strings.ToLower(t.Title), n)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	t.mu.Lock()
	rows := append([]dashboard.Row(nil), t.rows...)
	t.mu.Unlock()

	fmt.Fprintf(w, "== %s (%d) ==\n", t.Title, len(rows))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\n", strings.Join(t.Headers, "\t"))
	for i, r := range rows {
		cols := make([]string, 0, len(r.Cells)+1)
		cols = append(cols, fmt.Sprint(i+1))
		for _, c := range r.Cells {
			cols = append(cols, t.cellText(c))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func (t *Table) cellText(c dashboard.Cell) string {
	switch c.Kind {
	case dashboard.ImageCell:
		return t.resolve(c.Src)
	case dashboard.ButtonCell:
		return "[" + c.Text + "]"
	default:
		return strings.NewReplacer("\t", " ", "\n", " ").Replace(c.Text)
	}
}

// Field is an in-memory text input.
type Field struct {
	mu sync.Mutex
	v  string
}

// Value returns the current text.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

// SetValue replaces the text.
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = v
}
