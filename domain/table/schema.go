package table

import (
	"strings"

	"golang.org/x/text/cases"
)

// ColumnSchema is the metadata of one column at a point in time.
type ColumnSchema struct {
	Index       int         `json:"column_index"`
	Name        string      `json:"column_name"`
	DisplayType DisplayType `json:"type_display"`
	TypeLabel   string      `json:"type_name"`
}

// Schema is an ordered, immutable column metadata snapshot.
type Schema []ColumnSchema

// TableShape counts rows and columns.
type TableShape struct {
	NumRows    int `json:"num_rows"`
	NumColumns int `json:"num_columns"`
}

// InspectColumn derives the schema entry of a single column.
func InspectColumn(c Column, index int) ColumnSchema {
	return ColumnSchema{
		Index:       index,
		Name:        c.Name,
		DisplayType: c.Type.Display(),
		TypeLabel:   c.Type.Label(),
	}
}

// Inspect derives the full schema of a frame.
func Inspect(f *Frame) Schema {
	if f == nil {
		return nil
	}
	out := make(Schema, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = InspectColumn(c, i)
	}
	return out
}

// Equal reports whether both schemas name the same columns with the same types
// in the same order.
func (s Schema) Equal(o Schema) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Select returns the entries at the given indices, dropping out-of-range ones.
func (s Schema) Select(indices []int) Schema {
	out := make(Schema, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(s) {
			out = append(out, s[i])
		}
	}
	return out
}

// Search returns the columns whose names contain term, ignoring case.
func (s Schema) Search(term string) Schema {
	folder := cases.Fold()
	needle := folder.String(term)
	out := Schema{}
	for _, c := range s {
		if strings.Contains(folder.String(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}
