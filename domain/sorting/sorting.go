// Package sorting orders selected rows by multiple keys.
package sorting

import (
	"fmt"
	"slices"

	"dataview/domain/table"
)

// SortKey orders by one column. Earlier keys take priority. Column records
// the column the key was bound to; IsValid and ErrorMessage are recomputed
// on every bind.
type SortKey struct {
	ColumnIndex  int                `json:"column_index"`
	Ascending    bool               `json:"ascending"`
	Column       table.ColumnSchema `json:"column_schema"`
	IsValid      bool               `json:"is_valid"`
	ErrorMessage string             `json:"error_message,omitempty"`
}

// Bind resolves every key against frame. A bound key follows its column by
// name when it moves. A key whose column vanished or changed type is kept
// but marked invalid, with its recorded schema untouched so it can recover.
func Bind(frame *table.Frame, keys []SortKey) []SortKey {
	if keys == nil {
		return nil
	}
	out := make([]SortKey, len(keys))
	for i, k := range keys {
		if err := bind(frame, &k); err != nil {
			k.IsValid = false
			k.ErrorMessage = err.Error()
		} else {
			k.IsValid = true
			k.ErrorMessage = ""
		}
		out[i] = k
	}
	return out
}

func bind(frame *table.Frame, k *SortKey) error {
	if k.Column.Name == "" {
		col, ok := frame.Column(k.ColumnIndex)
		if !ok {
			return fmt.Errorf("column index %d is out of range", k.ColumnIndex)
		}
		k.Column = table.InspectColumn(col, k.ColumnIndex)
		return nil
	}

	col, ok := frame.Column(k.Column.Index)
	index := k.Column.Index
	if !ok || col.Name != k.Column.Name {
		col, index, ok = frame.ColumnByName(k.Column.Name)
		if !ok {
			return fmt.Errorf("column '%s' no longer exists", k.Column.Name)
		}
	}

	current := table.InspectColumn(col, index)
	if current.DisplayType != k.Column.DisplayType {
		return fmt.Errorf("column '%s' type changed from %s to %s",
			k.Column.Name, k.Column.DisplayType, current.DisplayType)
	}
	k.Column = current
	k.ColumnIndex = index
	return nil
}

// Order returns rows sorted by keys. The sort is stable, so ties keep the
// incoming row order. Missing values sort last in either direction, and keys
// that do not bind to a column are ignored.
func Order(frame *table.Frame, rows []int, keys []SortKey) []int {
	out := slices.Clone(rows)
	var cols []table.Column
	var usable []SortKey
	for _, k := range Bind(frame, keys) {
		if !k.IsValid {
			continue
		}
		col, _ := frame.Column(k.ColumnIndex)
		cols = append(cols, col)
		usable = append(usable, k)
	}
	if len(usable) == 0 {
		return out
	}

	slices.SortStableFunc(out, func(a, b int) int {
		for i, k := range usable {
			if c := compareCells(cols[i], a, b, k.Ascending); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

func compareCells(col table.Column, a, b int, ascending bool) int {
	va, vb := col.Value(a), col.Value(b)
	ma, mb := va.IsMissing(), vb.IsMissing()
	switch {
	case ma && mb:
		return 0
	case ma:
		return 1
	case mb:
		return -1
	}
	c := table.CompareValues(col.Type, va, vb)
	if !ascending {
		return -c
	}
	return c
}
