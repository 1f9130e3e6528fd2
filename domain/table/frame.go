package table

import "slices"

// Column is one named, typed vector of cells.
type Column struct {
	Name   string
	Type   DataType
	Values []ColumnValue
}

// NewColumn builds a column from values.
func NewColumn(name string, typ DataType, values ...ColumnValue) Column {
	return Column{Name: name, Type: typ, Values: values}
}

// Len returns the number of cells.
func (c Column) Len() int { return len(c.Values) }

// Value returns the cell at row, or Missing when row is out of range.
func (c Column) Value(row int) ColumnValue {
	if row < 0 || row >= len(c.Values) {
		return Missing()
	}
	return c.Values[row]
}

// Frame is a snapshot of a host table. RowLabels is nil when the host has none.
type Frame struct {
	Name      string
	Columns   []Column
	RowLabels []string
}

// NewFrame builds a frame from columns.
func NewFrame(name string, columns ...Column) *Frame {
	return &Frame{Name: name, Columns: columns}
}

// NumRows returns the number of source rows.
func (f *Frame) NumRows() int {
	if f == nil {
		return 0
	}
	n := len(f.RowLabels)
	for _, c := range f.Columns {
		if c.Len() > n {
			n = c.Len()
		}
	}
	return n
}

// NumColumns returns the number of columns.
func (f *Frame) NumColumns() int {
	if f == nil {
		return 0
	}
	return len(f.Columns)
}

// Shape returns the unfiltered table shape.
func (f *Frame) Shape() TableShape {
	return TableShape{NumRows: f.NumRows(), NumColumns: f.NumColumns()}
}

// Column returns the column at index.
func (f *Frame) Column(index int) (Column, bool) {
	if f == nil || index < 0 || index >= len(f.Columns) {
		return Column{}, false
	}
	return f.Columns[index], true
}

// ColumnByName returns the first column with the given name and its index.
func (f *Frame) ColumnByName(name string) (Column, int, bool) {
	for i, c := range f.Columns {
		if c.Name == name {
			return c, i, true
		}
	}
	return Column{}, -1, false
}

// HasRowLabels reports whether the host supplied row labels.
func (f *Frame) HasRowLabels() bool {
	return f != nil && len(f.RowLabels) > 0
}

// Clone returns a deep copy so callers cannot alias host storage.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{Name: f.Name, RowLabels: slices.Clone(f.RowLabels)}
	out.Columns = make([]Column, len(f.Columns))
	for i, c := range f.Columns {
		out.Columns[i] = Column{
			Name:   c.Name,
			Type:   DataType{Kind: c.Type.Kind, Levels: slices.Clone(c.Type.Levels)},
			Values: slices.Clone(c.Values),
		}
	}
	return out
}

// SameData reports whether both frames hold identical cells and row labels.
// Schemas are assumed equal.
func (f *Frame) SameData(o *Frame) bool {
	if f.NumRows() != o.NumRows() || f.NumColumns() != o.NumColumns() {
		return false
	}
	if !slices.Equal(f.RowLabels, o.RowLabels) {
		return false
	}
	for i := range f.Columns {
		a, b := f.Columns[i].Values, o.Columns[i].Values
		if len(a) != len(b) {
			return false
		}
		for r := range a {
			if !a[r].Equal(b[r]) {
				return false
			}
		}
	}
	return true
}
