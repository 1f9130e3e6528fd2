package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataview/domain/table"
)

func frame() *table.Frame {
	return table.NewFrame("df",
		table.NewColumn("a", table.Double,
			table.Number(2), table.Number(1), table.Missing(), table.Number(2), table.Number(1)),
		table.NewColumn("b", table.String, table.Texts("x", "y", "z", "w", "v")...),
	)
}

func TestOrder(t *testing.T) {
	f := frame()
	all := []int{0, 1, 2, 3, 4}

	tests := []struct {
		name string
		keys []SortKey
		want []int
	}{
		{"no keys keeps order", nil, all},
		{"ascending stable", []SortKey{{ColumnIndex: 0, Ascending: true}}, []int{1, 4, 0, 3, 2}},
		{"descending stable, missing last", []SortKey{{ColumnIndex: 0}}, []int{0, 3, 1, 4, 2}},
		{"second key breaks ties", []SortKey{{ColumnIndex: 0, Ascending: true}, {ColumnIndex: 1, Ascending: true}}, []int{4, 1, 3, 0, 2}},
		{"unknown column ignored", []SortKey{{ColumnIndex: 9, Ascending: true}}, all},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Order(f, all, tt.keys))
		})
	}
}

func TestOrderIsIdempotent(t *testing.T) {
	f := frame()
	keys := []SortKey{{ColumnIndex: 1, Ascending: false}}

	once := Order(f, []int{0, 1, 2, 3, 4}, keys)
	twice := Order(f, once, keys)
	assert.Equal(t, once, twice)
}

func TestOrderRestrictedToSelection(t *testing.T) {
	f := frame()
	rows := []int{0, 2, 4}
	assert.Equal(t, []int{4, 0, 2}, Order(f, rows, []SortKey{{ColumnIndex: 0, Ascending: true}}))
	assert.Equal(t, []int{0, 2, 4}, rows)
}

func TestBindFollowsColumnName(t *testing.T) {
	keys := Bind(frame(), []SortKey{{ColumnIndex: 1, Ascending: true}})
	require.Len(t, keys, 1)
	require.True(t, keys[0].IsValid)
	assert.Equal(t, "b", keys[0].Column.Name)

	moved := table.NewFrame("df",
		table.NewColumn("b", table.String, table.Texts("x", "y", "z", "w", "v")...))
	got := Bind(moved, keys)
	assert.True(t, got[0].IsValid)
	assert.Equal(t, 0, got[0].ColumnIndex)
	assert.Equal(t, []int{4, 3, 0, 1, 2}, Order(moved, []int{0, 1, 2, 3, 4}, keys))

	gone := table.NewFrame("df",
		table.NewColumn("a", table.Double, table.Numbers(5, 4, 3, 2, 1)...),
		table.NewColumn("c", table.String, table.Texts("x", "y", "z", "w", "v")...))
	got = Bind(gone, keys)
	assert.False(t, got[0].IsValid)
	assert.Contains(t, got[0].ErrorMessage, "no longer exists")
	assert.Equal(t, "b", got[0].Column.Name)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, Order(gone, []int{0, 1, 2, 3, 4}, keys))
}
