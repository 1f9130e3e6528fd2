// Package profiling computes column statistics over the rows of a view.
package profiling

import (
	"fmt"

	"dataview/domain/core"
	"dataview/domain/format"
	"dataview/domain/table"
)

// Profiler computes column profiles. Each requested kind is computed on its
// own so one failure never hides the others.
type Profiler struct {
	opts format.Options
}

// NewProfiler creates a profiler that formats results with opts.
func NewProfiler(opts format.Options) *Profiler {
	return &Profiler{opts: opts}
}

// Profile computes every requested profile of one column restricted to rows.
func (p *Profiler) Profile(frame *table.Frame, rows []int, req Request) Result {
	res := Result{}
	col, ok := frame.Column(req.ColumnIndex)
	if !ok {
		err := core.NewColumnOutOfRangeError(req.ColumnIndex, frame.NumColumns())
		for _, spec := range req.Profiles {
			res.fail(spec.Kind, err)
		}
		return res
	}

	values := make([]table.ColumnValue, len(rows))
	for i, r := range rows {
		values[i] = col.Value(r)
	}

	for _, spec := range req.Profiles {
		var err error
		switch spec.Kind {
		case KindNullCount:
			n := NullCount(values)
			res.NullCount = &n
		case KindSummaryStats:
			res.SummaryStats, err = p.SummaryStats(col.Type, values)
		case KindHistogram:
			if spec.Histogram == nil {
				err = core.NewInvalidRequestError("histogram requires histogram_params")
				break
			}
			res.Histogram, err = p.Histogram(col.Type, values, *spec.Histogram)
		case KindFrequencyTable:
			if spec.FrequencyTable == nil {
				err = core.NewInvalidRequestError("frequency table requires frequency_table_params")
				break
			}
			res.FrequencyTable, err = p.FrequencyTable(col.Type, values, spec.FrequencyTable.Limit)
		default:
			err = core.NewInvalidRequestError(fmt.Sprintf("unknown profile type '%s'", spec.Kind))
		}
		if err != nil {
			res.fail(spec.Kind, err)
		}
	}
	return res
}

// ProfileAll computes profiles for several columns.
func (p *Profiler) ProfileAll(frame *table.Frame, rows []int, reqs []Request) []Result {
	out := make([]Result, len(reqs))
	for i, req := range reqs {
		out[i] = p.Profile(frame, rows, req)
	}
	return out
}

func (r *Result) fail(kind Kind, err error) {
	if r.Errors == nil {
		r.Errors = make(map[Kind]string)
	}
	r.Errors[kind] = err.Error()
}

// NullCount counts missing values.
func NullCount(values []table.ColumnValue) int {
	n := 0
	for _, v := range values {
		if v.IsMissing() {
			n++
		}
	}
	return n
}
