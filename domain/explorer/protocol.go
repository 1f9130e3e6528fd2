// Package explorer defines the request, reply and event vocabulary spoken
// between a view session and its client.
package explorer

import (
	"encoding/json"

	"dataview/domain/core"
	"dataview/domain/export"
	"dataview/domain/filter"
	"dataview/domain/format"
	"dataview/domain/sorting"
	"dataview/domain/table"
	"dataview/internal/profiling"
)

// Method names an RPC.
type Method string

const (
	MethodGetSchema           Method = "get_schema"
	MethodSearchSchema        Method = "search_schema"
	MethodGetState            Method = "get_state"
	MethodSetRowFilters       Method = "set_row_filters"
	MethodSetSortColumns      Method = "set_sort_columns"
	MethodGetDataValues       Method = "get_data_values"
	MethodGetRowLabels        Method = "get_row_labels"
	MethodGetColumnProfiles   Method = "get_column_profiles"
	MethodExportDataSelection Method = "export_data_selection"
)

// Request is one RPC correlated by an opaque message id.
type Request struct {
	ID     string          `json:"id"`
	Method Method          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response carries either a result or an error for the request with the same id.
type Response struct {
	ID     string      `json:"id"`
	Result any         `json:"result,omitempty"`
	Error  *ErrorReply `json:"error,omitempty"`
}

type ErrorReply struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GetSchemaParams struct {
	ColumnIndices []int `json:"column_indices"`
}

type SchemaReply struct {
	Columns table.Schema `json:"columns"`
}

type SearchSchemaParams struct {
	SearchTerm string `json:"search_term"`
	MaxResults int    `json:"max_results"`
}

type SearchSchemaReply struct {
	Matches         table.Schema `json:"matches"`
	TotalNumMatches int          `json:"total_num_matches"`
}

type SupportedFeatures struct {
	RowFilters    []filter.Kind    `json:"row_filters"`
	ColumnProfile []profiling.Kind `json:"column_profiles"`
	ExportFormats []export.Format  `json:"export_formats"`
	SortColumns   bool             `json:"set_sort_columns"`
	SearchSchema  bool             `json:"search_schema"`
}

type BackendState struct {
	DisplayName          string             `json:"display_name"`
	TableShape           table.TableShape   `json:"table_shape"`
	TableUnfilteredShape table.TableShape   `json:"table_unfiltered_shape"`
	HasRowLabels         bool               `json:"has_row_labels"`
	RowFilters           []filter.RowFilter `json:"row_filters"`
	SortKeys             []sorting.SortKey  `json:"sort_keys"`
	SupportedFeatures    SupportedFeatures  `json:"supported_features"`
}

type SetRowFiltersParams struct {
	Filters []filter.RowFilter `json:"filters"`
}

type FilterResult struct {
	SelectedNumRows int  `json:"selected_num_rows"`
	HadErrors       bool `json:"had_errors"`
}

type SetSortColumnsParams struct {
	SortKeys []sorting.SortKey `json:"sort_keys"`
}

// DataSelectionRange is an inclusive range of view rows.
type DataSelectionRange struct {
	FirstIndex int `json:"first_index"`
	LastIndex  int `json:"last_index"`
}

// ArraySelection picks view rows by range or by explicit indices.
type ArraySelection struct {
	Range   *DataSelectionRange `json:"range,omitempty"`
	Indices []int               `json:"indices,omitempty"`
}

// Positions resolves the selection against a view of n rows, dropping
// positions outside it.
func (s ArraySelection) Positions(n int) []int {
	var out []int
	if s.Range != nil {
		first, last := max(s.Range.FirstIndex, 0), min(s.Range.LastIndex, n-1)
		for i := first; i <= last; i++ {
			out = append(out, i)
		}
		return out
	}
	for _, i := range s.Indices {
		if i >= 0 && i < n {
			out = append(out, i)
		}
	}
	return out
}

type ColumnSelection struct {
	ColumnIndex int            `json:"column_index"`
	Spec        ArraySelection `json:"spec"`
}

type GetDataValuesParams struct {
	Columns       []ColumnSelection `json:"columns"`
	FormatOptions *format.Options   `json:"format_options,omitempty"`
}

type TableData struct {
	Columns [][]format.Cell `json:"columns"`
}

type GetRowLabelsParams struct {
	Selection     ArraySelection  `json:"selection"`
	FormatOptions *format.Options `json:"format_options,omitempty"`
}

type TableRowLabels struct {
	RowLabels [][]string `json:"row_labels"`
}

type GetColumnProfilesParams struct {
	CallbackID    string              `json:"callback_id,omitempty"`
	Profiles      []profiling.Request `json:"profiles"`
	FormatOptions *format.Options     `json:"format_options,omitempty"`
}

type ColumnProfilesReply struct {
	CallbackID string             `json:"callback_id,omitempty"`
	Profiles   []profiling.Result `json:"profiles"`
}

type ExportDataSelectionParams struct {
	Selection export.Selection `json:"selection"`
	Format    export.Format    `json:"format"`
}

// EventKind names a push event.
type EventKind string

const (
	EventDataUpdate   EventKind = "data_update"
	EventSchemaUpdate EventKind = "schema_update"
	EventClosed       EventKind = "closed"
)

// Event is pushed from a session to its client.
type Event struct {
	SessionID core.SessionID `json:"session_id"`
	Kind      EventKind      `json:"kind"`
	Timestamp core.Timestamp `json:"timestamp"`
}
