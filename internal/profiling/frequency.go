package profiling

import (
	"slices"

	"dataview/domain/core"
	"dataview/domain/format"
	"dataview/domain/table"
)

// FrequencyTable returns the limit most frequent distinct non-missing values.
// Values are grouped before formatting, so distinct values that render alike
// stay separate. Ties keep the order in which values were first seen.
func (p *Profiler) FrequencyTable(typ table.DataType, values []table.ColumnValue, limit int) (*FrequencyTable, error) {
	if typ.Kind == table.TypeObject || typ.Kind == table.TypeUnknown {
		return nil, core.NewUnsupportedTypeError("frequency_table", typ.Label())
	}
	if limit <= 0 {
		return nil, core.NewInvalidRequestError("frequency table limit must be positive")
	}

	type entry struct {
		cell  format.Cell
		count int
	}
	var entries []*entry
	index := make(map[string]*entry)
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.Key()
		e, ok := index[key]
		if !ok {
			e = &entry{cell: format.Value(v, typ, p.opts)}
			index[key] = e
			entries = append(entries, e)
		}
		e.count++
	}

	slices.SortStableFunc(entries, func(a, b *entry) int { return b.count - a.count })

	out := &FrequencyTable{Values: []format.Cell{}, Counts: []int{}}
	for i, e := range entries {
		if i < limit {
			out.Values = append(out.Values, e.cell)
			out.Counts = append(out.Counts, e.count)
			continue
		}
		out.OtherCount += e.count
	}
	return out, nil
}
