package profiling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataview/domain/format"
	"dataview/domain/table"
)

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}

func repeat(values []table.ColumnValue, times []int) []table.ColumnValue {
	var out []table.ColumnValue
	for i, v := range values {
		for j := 0; j < times[i]; j++ {
			out = append(out, v)
		}
	}
	return out
}

func profileOne(t *testing.T, frame *table.Frame, rows []int, col int, specs ...Spec) Result {
	t.Helper()
	p := NewProfiler(format.DefaultOptions())
	return p.Profile(frame, rows, Request{ColumnIndex: col, Profiles: specs})
}

func TestSummaryStats(t *testing.T) {
	frame := table.NewFrame("df",
		table.NewColumn("num", table.Double, table.Number(1), table.Number(2), table.Number(3), table.Missing()),
		table.NewColumn("chr", table.String, table.Text("a"), table.Text("a"), table.Text(""), table.Missing()),
		table.NewColumn("lgl", table.Boolean, table.Bool(true), table.Bool(true), table.Bool(false), table.Missing()),
		table.NewColumn("int", table.Integer, table.Numbers(1000, 2000, 3000, 4000)...),
	)
	rows := allRows(4)
	spec := Spec{Kind: KindSummaryStats}

	num := profileOne(t, frame, rows, 0, spec)
	require.NotNil(t, num.SummaryStats)
	assert.Equal(t, table.DisplayNumber, num.SummaryStats.TypeDisplay)
	assert.Equal(t, &NumberStats{Min: "1.00", Max: "3.00", Mean: "2.00", Median: "2.00", Stdev: "1.00"}, num.SummaryStats.Number)

	chr := profileOne(t, frame, rows, 1, spec)
	assert.Equal(t, &StringStats{NumEmpty: 1, NumUnique: 3}, chr.SummaryStats.String)

	lgl := profileOne(t, frame, rows, 2, spec)
	assert.Equal(t, &BooleanStats{TrueCount: 2, FalseCount: 1}, lgl.SummaryStats.Boolean)

	ints := profileOne(t, frame, rows, 3, spec)
	assert.Equal(t, "1,000", ints.SummaryStats.Number.Min)
	assert.Equal(t, "4,000", ints.SummaryStats.Number.Max)
	assert.Equal(t, "2,500.00", ints.SummaryStats.Number.Mean)
}

func TestSummaryStatsFollowsView(t *testing.T) {
	frame := table.NewFrame("df", table.NewColumn("num", table.Double, table.Numbers(1, 2, 3, 100)...))
	res := profileOne(t, frame, []int{3}, 0, Spec{Kind: KindSummaryStats})

	assert.Equal(t, "100.00", res.SummaryStats.Number.Min)
	assert.Empty(t, res.SummaryStats.Number.Stdev)

	empty := profileOne(t, frame, nil, 0, Spec{Kind: KindSummaryStats})
	assert.Equal(t, &NumberStats{}, empty.SummaryStats.Number)
}

func TestDateStats(t *testing.T) {
	day := func(d int) table.ColumnValue { return table.Temporal(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) }
	frame := table.NewFrame("df", table.NewColumn("d", table.Date, day(3), day(1), table.Missing(), day(3), day(9)))

	res := profileOne(t, frame, allRows(5), 0, Spec{Kind: KindSummaryStats})
	require.NotNil(t, res.SummaryStats.Date)
	assert.Equal(t, &DateStats{NumUnique: 3, Min: "2024-01-01", Median: "2024-01-03", Max: "2024-01-09"}, res.SummaryStats.Date)
}

func TestNullCount(t *testing.T) {
	fibo := table.NewColumn("fibo", table.Double,
		table.Number(1), table.Missing(), table.Number(2), table.Number(3), table.Number(5),
		table.Missing(), table.Number(13), table.Number(21), table.Missing())
	frame := table.NewFrame("df", fibo)

	res := profileOne(t, frame, allRows(9), 0, Spec{Kind: KindNullCount})
	require.NotNil(t, res.NullCount)
	assert.Equal(t, 3, *res.NullCount)

	res = profileOne(t, frame, []int{0, 2, 3, 4, 6, 7}, 0, Spec{Kind: KindNullCount})
	assert.Equal(t, 0, *res.NullCount)
}

func TestProfileKindsAreIndependent(t *testing.T) {
	frame := table.NewFrame("df", table.NewColumn("l", table.Object, table.Null(), table.Text("x"), table.Null()))

	res := profileOne(t, frame, allRows(3), 0,
		Spec{Kind: KindNullCount},
		Spec{Kind: KindSummaryStats},
		Spec{Kind: KindHistogram, Histogram: &HistogramParams{Method: MethodFixed, NumBins: 5}},
	)

	require.NotNil(t, res.NullCount)
	assert.Equal(t, 2, *res.NullCount)
	assert.Nil(t, res.SummaryStats)
	assert.Nil(t, res.Histogram)
	assert.Contains(t, res.Errors, KindSummaryStats)
	assert.Contains(t, res.Errors, KindHistogram)
	assert.NotContains(t, res.Errors, KindNullCount)
}

func TestProfileUnknownColumn(t *testing.T) {
	frame := table.NewFrame("df", table.NewColumn("x", table.Double, table.Numbers(1)...))
	p := NewProfiler(format.DefaultOptions())

	results := p.ProfileAll(frame, allRows(1), []Request{
		{ColumnIndex: 4, Profiles: []Spec{{Kind: KindNullCount}}},
		{ColumnIndex: 0, Profiles: []Spec{{Kind: KindNullCount}}},
	})
	require.Len(t, results, 2)
	assert.Nil(t, results[0].NullCount)
	assert.Contains(t, results[0].Errors[KindNullCount], "out of range")
	assert.Equal(t, 0, *results[1].NullCount)
}

func TestFixedHistogram(t *testing.T) {
	values := repeat(table.Numbers(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	frame := table.NewFrame("df", table.NewColumn("x", table.Integer, values...))

	res := profileOne(t, frame, allRows(len(values)), 0,
		Spec{Kind: KindHistogram, Histogram: &HistogramParams{Method: MethodFixed, NumBins: 10}})
	require.Empty(t, res.Errors)
	require.NotNil(t, res.Histogram)

	assert.Equal(t, []string{
		"1.00", "1.90", "2.80", "3.70", "4.60", "5.50", "6.40", "7.30", "8.20", "9.10", "10.00",
	}, res.Histogram.BinEdges)
	assert.Equal(t, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}, res.Histogram.BinCounts)
}

func TestHistogramEdgeCases(t *testing.T) {
	p := NewProfiler(format.DefaultOptions())

	constant, err := p.Histogram(table.Double, table.Numbers(4, 4, 4), HistogramParams{Method: MethodFixed, NumBins: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"4.00", "4.00"}, constant.BinEdges)
	assert.Equal(t, []int{3}, constant.BinCounts)

	empty, err := p.Histogram(table.Double, []table.ColumnValue{table.Missing()}, HistogramParams{Method: MethodFixed, NumBins: 10})
	require.NoError(t, err)
	assert.Empty(t, empty.BinCounts)

	_, err = p.Histogram(table.String, table.Texts("a"), HistogramParams{Method: MethodFixed, NumBins: 10})
	assert.Error(t, err)

	_, err = p.Histogram(table.Double, table.Numbers(1, 2), HistogramParams{Method: MethodFixed})
	assert.Error(t, err)

	_, err = p.Histogram(table.Double, table.Numbers(1, 2), HistogramParams{Method: MethodFixed, NumBins: 2, Quantiles: []float64{1.5}})
	assert.Error(t, err)
}

func TestHistogramMethods(t *testing.T) {
	p := NewProfiler(format.DefaultOptions())
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}
	values := table.Numbers(data...)

	for _, method := range []HistogramMethod{MethodSturges, MethodFreedmanDiaconis, MethodScott} {
		t.Run(string(method), func(t *testing.T) {
			hist, err := p.Histogram(table.Double, values, HistogramParams{Method: method, NumBins: 50})
			require.NoError(t, err)
			assert.Len(t, hist.BinEdges, len(hist.BinCounts)+1)
			assert.LessOrEqual(t, len(hist.BinCounts), 50)

			total := 0
			for _, c := range hist.BinCounts {
				total += c
			}
			assert.Equal(t, 100, total)
		})
	}

	capped, err := p.Histogram(table.Double, values, HistogramParams{Method: MethodSturges, NumBins: 3})
	require.NoError(t, err)
	assert.Len(t, capped.BinCounts, 3)
}

func TestHistogramQuantiles(t *testing.T) {
	p := NewProfiler(format.DefaultOptions())
	hist, err := p.Histogram(table.Double, table.Numbers(1, 2, 3, 4, 5),
		HistogramParams{Method: MethodFixed, NumBins: 2, Quantiles: []float64{0, 0.5, 1}})
	require.NoError(t, err)
	assert.Equal(t, []QuantileValue{{Q: 0, Value: "1.00"}, {Q: 0.5, Value: "3.00"}, {Q: 1, Value: "5.00"}}, hist.Quantiles)
}

func TestPrettyEdgesMerge(t *testing.T) {
	edges := prettyEdges([]float64{0, 0.001, 0.0011, 1})
	assert.Equal(t, []float64{0, 1}, edges)

	counts := binCounts(edges, []float64{0, 0.0005, 0.002, 1})
	assert.Equal(t, []int{4}, counts)
}

func TestFrequencyTable(t *testing.T) {
	letters := table.Texts("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	values := repeat(letters, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1})
	frame := table.NewFrame("df", table.NewColumn("x", table.String, values...))

	res := profileOne(t, frame, allRows(len(values)), 0,
		Spec{Kind: KindFrequencyTable, FrequencyTable: &FrequencyTableParams{Limit: 5}})
	require.NotNil(t, res.FrequencyTable)

	assert.Equal(t, []format.Cell{
		format.Formatted("a"), format.Formatted("b"), format.Formatted("c"), format.Formatted("d"), format.Formatted("e"),
	}, res.FrequencyTable.Values)
	assert.Equal(t, []int{10, 9, 8, 7, 6}, res.FrequencyTable.Counts)
	assert.Equal(t, 15, res.FrequencyTable.OtherCount)
}

func TestFrequencyTableTiesAndMissing(t *testing.T) {
	p := NewProfiler(format.DefaultOptions())
	values := []table.ColumnValue{
		table.Text("z"), table.Missing(), table.Text("y"), table.Text("y"), table.Text("z"), table.Text("x"),
	}

	ft, err := p.FrequencyTable(table.String, values, 2)
	require.NoError(t, err)
	assert.Equal(t, []format.Cell{format.Formatted("z"), format.Formatted("y")}, ft.Values)
	assert.Equal(t, []int{2, 2}, ft.Counts)
	assert.Equal(t, 1, ft.OtherCount)

	_, err = p.FrequencyTable(table.String, values, 0)
	assert.Error(t, err)
}

func TestFrequencyTableGroupsByValue(t *testing.T) {
	opts := format.DefaultOptions()
	opts.MaxValueLength = 4
	p := NewProfiler(opts)

	tests := []struct {
		name   string
		typ    table.DataType
		values []table.ColumnValue
		counts []int
	}{
		{"numbers rendering alike", table.Double, table.Numbers(1.001, 1.002, 1.003, 1.002), []int{2, 1, 1}},
		{"strings sharing a prefix", table.String, table.Texts("abcdef", "abcdxy", "abcdef"), []int{2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft, err := p.FrequencyTable(tt.typ, tt.values, 5)
			require.NoError(t, err)
			assert.Equal(t, tt.counts, ft.Counts)
			assert.Len(t, ft.Values, len(tt.counts))
			assert.Equal(t, 0, ft.OtherCount)
		})
	}
}
