package profiling

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"dataview/domain/core"
	"dataview/domain/format"
	"dataview/domain/table"
)

// SummaryStats summarizes values according to the column's type family.
func (p *Profiler) SummaryStats(typ table.DataType, values []table.ColumnValue) (*SummaryStats, error) {
	out := &SummaryStats{TypeDisplay: typ.Display()}
	switch {
	case typ.IsNumeric():
		ns, err := p.numberStats(typ, values)
		if err != nil {
			return nil, err
		}
		out.Number = ns
	case typ.IsTextual():
		out.String = stringStats(values)
	case typ.Kind == table.TypeBoolean:
		out.Boolean = booleanStats(values)
	case typ.IsTemporal():
		out.Date = p.dateStats(typ, values)
	default:
		return nil, core.NewUnsupportedTypeError("summary_stats", typ.Label())
	}
	return out, nil
}

func (p *Profiler) numberStats(typ table.DataType, values []table.ColumnValue) (*NumberStats, error) {
	data := numericData(values, false)
	if len(data) == 0 {
		return &NumberStats{}, nil
	}

	min, err := stats.Min(data)
	if err != nil {
		return nil, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil, err
	}
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, err
	}

	ns := &NumberStats{
		Min:    p.formatNumber(typ, min),
		Max:    p.formatNumber(typ, max),
		Mean:   format.Double(mean, p.opts),
		Median: format.Double(median, p.opts),
	}
	// Sample standard deviation needs two observations.
	if len(data) > 1 {
		sd, err := stats.StandardDeviationSample(data)
		if err != nil {
			return nil, err
		}
		ns.Stdev = format.Double(sd, p.opts)
	}
	return ns, nil
}

func (p *Profiler) formatNumber(typ table.DataType, f float64) string {
	if typ.Kind == table.TypeInteger && !math.IsInf(f, 0) {
		return format.Integer(f, p.opts)
	}
	return format.Double(f, p.opts)
}

func stringStats(values []table.ColumnValue) *StringStats {
	out := &StringStats{}
	seen := make(map[string]struct{})
	sawMissing := false
	for _, v := range values {
		if v.IsMissing() {
			sawMissing = true
			continue
		}
		if v.Str == "" {
			out.NumEmpty++
		}
		seen[v.Str] = struct{}{}
	}
	out.NumUnique = len(seen)
	if sawMissing {
		out.NumUnique++
	}
	return out
}

func booleanStats(values []table.ColumnValue) *BooleanStats {
	out := &BooleanStats{}
	for _, v := range values {
		if v.Kind != table.KindBoolean {
			continue
		}
		if v.Bool {
			out.TrueCount++
		} else {
			out.FalseCount++
		}
	}
	return out
}

func (p *Profiler) dateStats(typ table.DataType, values []table.ColumnValue) *DateStats {
	times := make([]time.Time, 0, len(values))
	unique := make(map[int64]struct{})
	for _, v := range values {
		if v.Kind != table.KindTemporal {
			continue
		}
		times = append(times, v.Time)
		unique[v.Time.UnixNano()] = struct{}{}
	}
	out := &DateStats{NumUnique: len(unique)}
	if len(times) == 0 {
		return out
	}

	slices.SortFunc(times, time.Time.Compare)
	mid := len(times) / 2
	median := times[mid]
	if len(times)%2 == 0 {
		lo := times[mid-1]
		median = lo.Add(median.Sub(lo) / 2)
	}

	render := func(t time.Time) string { return format.Value(table.Temporal(t), typ, p.opts).Text }
	out.Min = render(times[0])
	out.Median = render(median)
	out.Max = render(times[len(times)-1])
	return out
}

// Histogram bins the finite values of a numeric column.
func (p *Profiler) Histogram(typ table.DataType, values []table.ColumnValue, params HistogramParams) (*Histogram, error) {
	if !typ.IsNumeric() {
		return nil, core.NewUnsupportedTypeError("histogram", typ.Label())
	}
	if params.Method == MethodFixed && params.NumBins <= 0 {
		return nil, core.NewInvalidRequestError("num_bins must be positive")
	}

	data := numericData(values, true)
	slices.Sort(data)
	hist := &Histogram{BinEdges: []string{}, BinCounts: []int{}, Quantiles: []QuantileValue{}}

	for _, q := range params.Quantiles {
		if q < 0 || q > 1 {
			return nil, core.NewInvalidRequestError(fmt.Sprintf("quantile %v is outside [0, 1]", q))
		}
		if len(data) > 0 {
			v := stat.Quantile(q, stat.Empirical, data, nil)
			hist.Quantiles = append(hist.Quantiles, QuantileValue{Q: q, Value: format.Double(v, p.opts)})
		}
	}
	if len(data) == 0 {
		return hist, nil
	}

	lo, hi := data[0], data[len(data)-1]
	var edges []float64
	if lo == hi {
		edges = []float64{lo, hi}
	} else {
		bins, err := binCount(params, data, lo, hi)
		if err != nil {
			return nil, err
		}
		edges = prettyEdges(floats.Span(make([]float64, bins+1), lo, hi))
	}

	counts := binCounts(edges, data)
	for _, e := range edges {
		hist.BinEdges = append(hist.BinEdges, format.Double(e, p.opts))
	}
	hist.BinCounts = counts
	return hist, nil
}

func binCount(params HistogramParams, data []float64, lo, hi float64) (int, error) {
	n := float64(len(data))
	sturges := int(math.Ceil(math.Log2(n))) + 1

	var bins int
	switch params.Method {
	case MethodFixed:
		return params.NumBins, nil
	case MethodSturges, "":
		bins = sturges
	case MethodFreedmanDiaconis:
		iqr, err := stats.InterQuartileRange(data)
		if err != nil || iqr == 0 {
			bins = sturges
			break
		}
		bins = int(math.Ceil((hi - lo) / (2 * iqr / math.Cbrt(n))))
	case MethodScott:
		sd, err := stats.StandardDeviationSample(data)
		if err != nil || sd == 0 || math.IsNaN(sd) {
			bins = sturges
			break
		}
		bins = int(math.Ceil((hi - lo) / (3.49 * sd / math.Cbrt(n))))
	default:
		return 0, core.NewInvalidRequestError(fmt.Sprintf("unknown histogram method '%s'", params.Method))
	}

	if params.NumBins > 0 && bins > params.NumBins {
		bins = params.NumBins
	}
	return max(bins, 1), nil
}

// prettyEdges rounds interior edges to two significant digits of the bin
// width and merges edges that coincide after rounding. The outer edges stay
// at the observed minimum and maximum.
func prettyEdges(raw []float64) []float64 {
	first, last := raw[0], raw[len(raw)-1]
	width := (last - first) / float64(len(raw)-1)
	res := math.Pow10(int(math.Floor(math.Log10(width))) - 1)

	edges := []float64{first}
	for _, e := range raw[1 : len(raw)-1] {
		r := math.Round(e/res) * res
		if r <= edges[len(edges)-1] || r >= last {
			continue
		}
		edges = append(edges, r)
	}
	return append(edges, last)
}

// binCounts counts sorted data into half-open bins, with the last bin closed.
func binCounts(edges, sorted []float64) []int {
	dividers := slices.Clone(edges)
	dividers[len(dividers)-1] = math.Nextafter(dividers[len(dividers)-1], math.Inf(1))

	raw := stat.Histogram(nil, dividers, sorted, nil)
	counts := make([]int, len(raw))
	for i, c := range raw {
		counts[i] = int(c)
	}
	return counts
}

// numericData extracts non-missing numbers, optionally dropping infinities.
func numericData(values []table.ColumnValue, finiteOnly bool) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := v.Float()
		if !ok || (finiteOnly && math.IsInf(f, 0)) {
			continue
		}
		out = append(out, f)
	}
	return out
}
