package layout

import (
	"errors"
	"fmt"
)

// ErrComponentAreaTaken is returned when more than one column is flagged as
// the component area.
var ErrComponentAreaTaken = errors.New("layout: component area taken")

// NewRow returns an empty full width row with a single unassigned column.
func NewRow() Row {
	return Row{
		Type:   TypeRow,
		Layout: ColumnLayout("12"),
		Columns: []Column{
			newColumn(GridColumns),
		},
	}
}

func newColumn(size int) Column {
	return Column{
		Type:      TypeColumn,
		ClassName: columnClassName(size),
		Settings:  ColumnSettings{Name: "none", GridSize: size},
	}
}

func columnClassName(size int) string {
	return fmt.Sprintf("hu-layout-column col-%d", size)
}

// ArrangeColumns rebuilds the columns of a row for a new split. Existing
// column settings are kept by index with their width replaced; extra columns
// are dropped and missing ones start unassigned.
func (r *Row) ArrangeColumns(split string) error {
	sizes, err := ParseColumnLayout(split)
	if err != nil {
		return err
	}
	cols := make([]Column, len(sizes))
	for i, size := range sizes {
		if i < len(r.Columns) {
			col := r.Columns[i]
			col.Settings.GridSize = size
			col.ClassName = columnClassName(size)
			if col.Type == "" {
				col.Type = TypeColumn
			}
			cols[i] = col
			continue
		}
		cols[i] = newColumn(size)
	}
	r.Columns = cols
	if len(sizes) == 1 {
		r.Layout = ColumnLayout("12")
	} else {
		r.Layout = FormatColumnLayout(sizes)
	}
	return nil
}

// InsertRowAfter inserts a new row after index i. A negative index prepends.
func (l Layout) InsertRowAfter(i int) Layout {
	row := NewRow()
	if i < 0 {
		return append(Layout{row}, l...)
	}
	if i >= len(l) {
		return append(l, row)
	}
	out := make(Layout, 0, len(l)+1)
	out = append(out, l[:i+1]...)
	out = append(out, row)
	out = append(out, l[i+1:]...)
	return out
}

// RemoveRow removes the row at index i.
func (l Layout) RemoveRow(i int) (Layout, error) {
	if i < 0 || i >= len(l) {
		return l, fmt.Errorf("layout: row %d out of range", i)
	}
	out := make(Layout, 0, len(l)-1)
	out = append(out, l[:i]...)
	out = append(out, l[i+1:]...)
	return out, nil
}

// ComponentColumn returns the row/column index of the component area.
func (l Layout) ComponentColumn() (row, col int, ok bool) {
	for i, r := range l {
		for j, c := range r.Columns {
			if c.IsComponent() {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// SetComponent flags the column at (row, col) as component area. It fails
// when another column already holds it.
func (l Layout) SetComponent(row, col int) error {
	if row < 0 || row >= len(l) || col < 0 || col >= len(l[row].Columns) {
		return fmt.Errorf("layout: column %d/%d out of range", row, col)
	}
	if r, c, ok := l.ComponentColumn(); ok && (r != row || c != col) {
		return ErrComponentAreaTaken
	}
	l[row].Columns[col].Settings.ColumnType = true
	return nil
}

// Validate checks the structural rules enforced by the layout builder. All
// problems are reported together.
func Validate(l Layout) error {
	var errs []error
	components := 0
	for i, row := range l {
		if len(row.Columns) == 0 {
			errs = append(errs, fmt.Errorf("layout: row %d has no columns", i+1))
			continue
		}
		total := 0
		for j, col := range row.Columns {
			if col.Settings.GridSize <= 0 {
				errs = append(errs, fmt.Errorf("layout: row %d column %d has no grid size", i+1, j+1))
			}
			total += col.Settings.GridSize
			if col.IsComponent() {
				components++
			}
		}
		if total > GridColumns {
			errs = append(errs, fmt.Errorf("layout: row %d spans %d grid units", i+1, total))
		}
	}
	if components > 1 {
		errs = append(errs, ErrComponentAreaTaken)
	}
	return errors.Join(errs...)
}
