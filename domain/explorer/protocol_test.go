package explorer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataview/domain/format"
	"dataview/domain/table"
)

func TestArraySelectionPositions(t *testing.T) {
	tests := []struct {
		name string
		sel  ArraySelection
		n    int
		want []int
	}{
		{"range inside", ArraySelection{Range: &DataSelectionRange{FirstIndex: 1, LastIndex: 3}}, 10, []int{1, 2, 3}},
		{"range clipped", ArraySelection{Range: &DataSelectionRange{FirstIndex: 2, LastIndex: 100}}, 4, []int{2, 3}},
		{"range past end", ArraySelection{Range: &DataSelectionRange{FirstIndex: 5, LastIndex: 9}}, 4, nil},
		{"negative start", ArraySelection{Range: &DataSelectionRange{FirstIndex: -3, LastIndex: 1}}, 4, []int{0, 1}},
		{"indices keep order", ArraySelection{Indices: []int{3, 0, 2}}, 4, []int{3, 0, 2}},
		{"indices out of range dropped", ArraySelection{Indices: []int{-1, 1, 4}}, 4, []int{1}},
		{"empty view", ArraySelection{Indices: []int{0}}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Positions(tt.n))
		})
	}
}

func TestRequestDecoding(t *testing.T) {
	raw := `{"id":"m7","method":"get_data_values","params":{"columns":[{"column_index":0,"spec":{"range":{"first_index":0,"last_index":4}}}],"format_options":{"large_num_digits":2,"small_num_digits":4,"max_integral_digits":7,"max_value_length":100,"thousands_sep":","}}}`

	var req Request
	require.NoError(t, json.Unmarshal([]byte(raw), &req))
	assert.Equal(t, "m7", req.ID)
	assert.Equal(t, MethodGetDataValues, req.Method)

	var params GetDataValuesParams
	require.NoError(t, json.Unmarshal(req.Params, &params))
	require.Len(t, params.Columns, 1)
	require.NotNil(t, params.Columns[0].Spec.Range)
	assert.Equal(t, 4, params.Columns[0].Spec.Range.LastIndex)
	require.NotNil(t, params.FormatOptions)
	assert.Equal(t, format.DefaultOptions(), *params.FormatOptions)
}

func TestResponseEncoding(t *testing.T) {
	ok := Response{ID: "1", Result: TableData{Columns: [][]format.Cell{{
		format.Formatted("1.00"), format.SpecialCell(table.SpecialNA),
	}}}}
	data, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","result":{"columns":[["1.00",1]]}}`, string(data))

	failed := Response{ID: "2", Error: &ErrorReply{Code: "UNKNOWN_METHOD", Message: "unknown method: x"}}
	data, err = json.Marshal(failed)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"2","error":{"code":"UNKNOWN_METHOD","message":"unknown method: x"}}`, string(data))
}
