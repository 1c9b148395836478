// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tables renders entity lists as sortable, selectable tables and
// models the per-row dialog state as an explicit tagged union.
package tables

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrNotSortable is returned when sorting by a column that disables it.
var ErrNotSortable = errors.New("column is not sortable")

// ErrUnknownColumn is returned when sorting by a column key that does not exist.
var ErrUnknownColumn = errors.New("unknown column")

// Column describes one table column over rows of type T.
type Column[T any] struct {
	Key    string
	Header string
	Cell   func(T) string
	// Less orders two rows. A nil Less disables sorting on the column.
	Less func(a, b T) bool
}

// Sortable reports whether the column can be sorted.
func (c Column[T]) Sortable() bool { return c.Less != nil }

// Table binds rows to a column schema with sort and selection state.
type Table[T any] struct {
	Columns []Column[T]
	Rows    []T

	rowID    func(T) string
	sortKey  string
	desc     bool
	selected map[string]bool
}

// New creates a table. rowID identifies rows for selection.
func New[T any](columns []Column[T], rows []T, rowID func(T) string) *Table[T] {
	return &Table[T]{
		Columns:  columns,
		Rows:     rows,
		rowID:    rowID,
		selected: make(map[string]bool),
	}
}

// Sort orders the rows by the column with the given key.
func (t *Table[T]) Sort(key string, desc bool) error {
	col, ok := t.column(key)
	if !ok {
		return ErrUnknownColumn
	}
	if !col.Sortable() {
		return ErrNotSortable
	}

	sort.SliceStable(t.Rows, func(i, j int) bool {
		if desc {
			return col.Less(t.Rows[j], t.Rows[i])
		}
		return col.Less(t.Rows[i], t.Rows[j])
	})
	t.sortKey, t.desc = key, desc
	return nil
}

// SortedBy returns the active sort column key and direction.
func (t *Table[T]) SortedBy() (string, bool) { return t.sortKey, t.desc }

// ApplyQuery sorts according to "sort" and "dir" query parameters. Unknown
// or unsortable columns are ignored.
func (t *Table[T]) ApplyQuery(q url.Values) {
	key := q.Get("sort")
	if key == "" {
		return
	}
	_ = t.Sort(key, strings.EqualFold(q.Get("dir"), "desc"))
}

// Toggle flips the selection of a row.
func (t *Table[T]) Toggle(id string) {
	if t.selected[id] {
		delete(t.selected, id)
		return
	}
	t.selected[id] = true
}

// SelectAll selects every row, or clears the selection when all rows are
// already selected.
func (t *Table[T]) SelectAll() {
	if t.AllSelected() {
		t.selected = make(map[string]bool)
		return
	}
	for _, r := range t.Rows {
		t.selected[t.rowID(r)] = true
	}
}

// AllSelected reports whether every row is selected.
func (t *Table[T]) AllSelected() bool {
	if len(t.Rows) == 0 {
		return false
	}
	for _, r := range t.Rows {
		if !t.selected[t.rowID(r)] {
			return false
		}
	}
	return true
}

// IsSelected reports whether a row is selected.
func (t *Table[T]) IsSelected(id string) bool { return t.selected[id] }

// Selected returns the selected rows in display order.
func (t *Table[T]) Selected() []T {
	var out []T
	for _, r := range t.Rows {
		if t.selected[t.rowID(r)] {
			out = append(out, r)
		}
	}
	return out
}

// HeaderView is a rendered column header.
type HeaderView struct {
	Key      string
	Label    string
	Sortable bool
	Active   bool
	Desc     bool
}

// RowView is a rendered row.
type RowView struct {
	ID       string
	Cells    []string
	Selected bool
}

// Headers returns the header views in column order.
func (t *Table[T]) Headers() []HeaderView {
	out := make([]HeaderView, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, HeaderView{
			Key:      c.Key,
			Label:    c.Header,
			Sortable: c.Sortable(),
			Active:   c.Key == t.sortKey,
			Desc:     c.Key == t.sortKey && t.desc,
		})
	}
	return out
}

// View returns the rendered rows.
func (t *Table[T]) View() []RowView {
	out := make([]RowView, 0, len(t.Rows))
	for _, r := range t.Rows {
		id := t.rowID(r)
		cells := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			cells = append(cells, c.Cell(r))
		}
		out = append(out, RowView{ID: id, Cells: cells, Selected: t.selected[id]})
	}
	return out
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}
