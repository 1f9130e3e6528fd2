package profiling

import (
	"dataview/domain/format"
	"dataview/domain/table"
)

// Kind names one column profile.
type Kind string

const (
	KindNullCount      Kind = "null_count"
	KindSummaryStats   Kind = "summary_stats"
	KindHistogram      Kind = "histogram"
	KindFrequencyTable Kind = "frequency_table"
)

// SupportedKinds lists every profile kind.
func SupportedKinds() []Kind {
	return []Kind{KindNullCount, KindSummaryStats, KindHistogram, KindFrequencyTable}
}

// HistogramMethod picks how the number of bins is chosen.
type HistogramMethod string

const (
	MethodFixed            HistogramMethod = "fixed"
	MethodSturges          HistogramMethod = "sturges"
	MethodFreedmanDiaconis HistogramMethod = "freedman_diaconis"
	MethodScott            HistogramMethod = "scott"
)

type HistogramParams struct {
	Method HistogramMethod `json:"method"`
	// NumBins is the bin count for fixed histograms and the upper bound for
	// the other methods.
	NumBins   int       `json:"num_bins"`
	Quantiles []float64 `json:"quantiles,omitempty"`
}

type FrequencyTableParams struct {
	Limit int `json:"limit"`
}

// Spec requests one profile kind.
type Spec struct {
	Kind           Kind                  `json:"profile_type"`
	Histogram      *HistogramParams      `json:"histogram_params,omitempty"`
	FrequencyTable *FrequencyTableParams `json:"frequency_table_params,omitempty"`
}

// Request lists the profiles wanted for one column.
type Request struct {
	ColumnIndex int    `json:"column_index"`
	Profiles    []Spec `json:"profiles"`
}

// Result holds whichever profiles succeeded. Errors maps each failed kind to
// its message.
type Result struct {
	NullCount      *int            `json:"null_count,omitempty"`
	SummaryStats   *SummaryStats   `json:"summary_stats,omitempty"`
	Histogram      *Histogram      `json:"histogram,omitempty"`
	FrequencyTable *FrequencyTable `json:"frequency_table,omitempty"`
	Errors         map[Kind]string `json:"errors,omitempty"`
}

type SummaryStats struct {
	TypeDisplay table.DisplayType `json:"type_display"`
	Number      *NumberStats      `json:"number_stats,omitempty"`
	String      *StringStats      `json:"string_stats,omitempty"`
	Boolean     *BooleanStats     `json:"boolean_stats,omitempty"`
	Date        *DateStats        `json:"date_stats,omitempty"`
}

// NumberStats fields are empty when the view has no values to summarize.
type NumberStats struct {
	Min    string `json:"min_value,omitempty"`
	Max    string `json:"max_value,omitempty"`
	Mean   string `json:"mean,omitempty"`
	Median string `json:"median,omitempty"`
	Stdev  string `json:"stdev,omitempty"`
}

type StringStats struct {
	NumEmpty  int `json:"num_empty"`
	NumUnique int `json:"num_unique"`
}

type BooleanStats struct {
	TrueCount  int `json:"true_count"`
	FalseCount int `json:"false_count"`
}

type DateStats struct {
	NumUnique int    `json:"num_unique"`
	Min       string `json:"min_date,omitempty"`
	Median    string `json:"median_date,omitempty"`
	Max       string `json:"max_date,omitempty"`
}

type QuantileValue struct {
	Q     float64 `json:"q"`
	Value string  `json:"value"`
}

type Histogram struct {
	BinEdges  []string        `json:"bin_edges"`
	BinCounts []int           `json:"bin_counts"`
	Quantiles []QuantileValue `json:"quantiles"`
}

type FrequencyTable struct {
	Values     []format.Cell `json:"values"`
	Counts     []int         `json:"counts"`
	OtherCount int           `json:"other_count"`
}
