package filter

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"dataview/domain/table"
)

// Result is the outcome of evaluating a filter list.
type Result struct {
	// Mask holds the selected source rows.
	Mask *roaring.Bitmap
	// Filters is the input list with column bindings and validity refreshed.
	Filters   []RowFilter
	HadErrors bool
}

// Rows returns the selected source rows in ascending order.
func (r Result) Rows() []int {
	out := make([]int, 0, r.Mask.GetCardinality())
	it := r.Mask.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Count returns the number of selected rows.
func (r Result) Count() int {
	return int(r.Mask.GetCardinality())
}

// Evaluate applies filters left to right. The first valid filter seeds the
// mask and each later valid filter is combined using its own condition.
// Invalid filters are skipped, so they never narrow the selection.
func Evaluate(frame *table.Frame, filters []RowFilter) Result {
	n := frame.NumRows()
	out := make([]RowFilter, len(filters))
	var mask *roaring.Bitmap
	hadErrors := false

	for i, f := range filters {
		m, err := evaluateOne(frame, &f)
		if err != nil {
			f.IsValid = false
			f.ErrorMessage = err.Error()
			hadErrors = true
			out[i] = f
			continue
		}
		f.IsValid = true
		f.ErrorMessage = ""
		out[i] = f

		switch {
		case mask == nil:
			mask = m
		case f.Condition == ConditionOr:
			mask.Or(m)
		default:
			mask.And(m)
		}
	}

	if mask == nil {
		mask = allRows(n)
	}
	return Result{Mask: mask, Filters: out, HadErrors: hadErrors}
}

func evaluateOne(frame *table.Frame, f *RowFilter) (*roaring.Bitmap, error) {
	col, err := bind(frame, f)
	if err != nil {
		return nil, err
	}
	if err := checkApplicable(f.Kind, col.Type); err != nil {
		return nil, err
	}
	pred, err := newPredicate(f, col.Type)
	if err != nil {
		return nil, err
	}

	m := roaring.New()
	for row, v := range col.Values {
		if pred(v) {
			m.Add(uint32(row))
		}
	}
	return m, nil
}

// bind resolves the filter's column against the current frame. A column that
// moved is followed by name; a column that vanished or changed type family is
// an error, and the recorded schema is left untouched so the filter can
// recover if the column comes back.
func bind(frame *table.Frame, f *RowFilter) (table.Column, error) {
	if f.Column.Name == "" {
		col, ok := frame.Column(f.Column.Index)
		if !ok {
			return table.Column{}, fmt.Errorf("column index %d is out of range", f.Column.Index)
		}
		f.Column = table.InspectColumn(col, f.Column.Index)
		return col, nil
	}

	col, ok := frame.Column(f.Column.Index)
	index := f.Column.Index
	if !ok || col.Name != f.Column.Name {
		col, index, ok = frame.ColumnByName(f.Column.Name)
		if !ok {
			return table.Column{}, fmt.Errorf("column '%s' no longer exists", f.Column.Name)
		}
	}

	current := table.InspectColumn(col, index)
	if current.DisplayType != f.Column.DisplayType {
		return table.Column{}, fmt.Errorf("column '%s' type changed from %s to %s",
			f.Column.Name, f.Column.DisplayType, current.DisplayType)
	}
	f.Column = current
	return col, nil
}

func checkApplicable(kind Kind, typ table.DataType) error {
	ok := true
	switch kind {
	case KindIsEmpty, KindSearch:
		ok = typ.IsTextual()
	case KindIsTrue, KindIsFalse:
		ok = typ.Kind == table.TypeBoolean
	case KindCompare, KindSetMembership:
		ok = typ.Kind != table.TypeObject && typ.Kind != table.TypeUnknown
	case KindNotNull, KindIsNull:
	default:
		return fmt.Errorf("unknown filter type '%s'", kind)
	}
	if !ok {
		return fmt.Errorf("%s filter is not supported for %s columns", kind, typ.Display())
	}
	return nil
}

func allRows(n int) *roaring.Bitmap {
	m := roaring.New()
	m.AddRange(0, uint64(n))
	return m
}
