package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectLabels(t *testing.T) {
	frame := NewFrame("df",
		NewColumn("dbl", Double, Numbers(1, 2)...),
		NewColumn("str", String, Texts("a", "b")...),
		NewColumn("lgl", Boolean, Bool(true), Bool(false)),
		NewColumn("fct", Factor("a", "b", "c"), Texts("a", "c")...),
		NewColumn("date", Date, Temporal(time.Now()), Missing()),
		NewColumn("datetime", Datetime, Temporal(time.Now()), Missing()),
		NewColumn("int", Integer, Numbers(1, 2)...),
		NewColumn("list", Object, Null(), Null()),
	)

	schema := Inspect(frame)
	require.Len(t, schema, 8)

	tests := []struct {
		index   int
		display DisplayType
		label   string
	}{
		{0, DisplayNumber, "dbl"},
		{1, DisplayString, "str"},
		{2, DisplayBoolean, "lgl"},
		{3, DisplayString, "fct(3)"},
		{4, DisplayDate, "Date"},
		{5, DisplayDatetime, "POSIXct"},
		{6, DisplayNumber, "int"},
		{7, DisplayObject, "list"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.index, schema[tt.index].Index)
			assert.Equal(t, tt.display, schema[tt.index].DisplayType)
			assert.Equal(t, tt.label, schema[tt.index].TypeLabel)
		})
	}

	assert.Equal(t, TableShape{NumRows: 2, NumColumns: 8}, frame.Shape())
}

func TestSchemaSelectAndSearch(t *testing.T) {
	schema := Inspect(NewFrame("df",
		NewColumn("Alpha", Double),
		NewColumn("beta", Double),
		NewColumn("ALPHABET", String),
	))

	selected := schema.Select([]int{2, 7, -1, 0})
	require.Len(t, selected, 2)
	assert.Equal(t, "ALPHABET", selected[0].Name)
	assert.Equal(t, "Alpha", selected[1].Name)

	found := schema.Search("alpha")
	require.Len(t, found, 2)
	assert.Equal(t, 0, found[0].Index)
	assert.Equal(t, 2, found[1].Index)
}

func TestSchemaEqual(t *testing.T) {
	a := Inspect(NewFrame("df", NewColumn("x", Double), NewColumn("y", String)))
	b := Inspect(NewFrame("df", NewColumn("x", Double), NewColumn("y", String)))
	retyped := Inspect(NewFrame("df", NewColumn("x", String), NewColumn("y", String)))
	shorter := Inspect(NewFrame("df", NewColumn("x", Double)))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(retyped))
	assert.False(t, a.Equal(shorter))
}

func TestNumberSpecials(t *testing.T) {
	assert.Equal(t, KindNumber, Number(1.5).Kind)
	assert.Equal(t, SpecialNaN, Number(math.NaN()).Code)
	assert.Equal(t, SpecialInf, Number(math.Inf(1)).Code)
	assert.Equal(t, SpecialNegInf, Number(math.Inf(-1)).Code)

	assert.True(t, Number(math.NaN()).IsMissing())
	assert.True(t, Missing().IsMissing())
	assert.False(t, Number(math.Inf(1)).IsMissing())

	f, ok := Number(math.Inf(-1)).Float()
	require.True(t, ok)
	assert.True(t, math.IsInf(f, -1))

	assert.Equal(t, "-Inf", SpecialNegInf.String())
	assert.Equal(t, "NULL", SpecialNull.String())
}

func TestCompareValues(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name string
		typ  DataType
		a, b ColumnValue
		want int
	}{
		{"numbers", Double, Number(1), Number(2), -1},
		{"infinity", Double, Number(math.Inf(1)), Number(1e300), 1},
		{"text", String, Text("b"), Text("a"), 1},
		{"factor uses levels", Factor("z", "a"), Text("z"), Text("a"), -1},
		{"booleans", Boolean, Bool(false), Bool(true), -1},
		{"temporal", Datetime, Temporal(late), Temporal(early), 1},
		{"equal", Double, Number(3), Number(3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValues(tt.typ, tt.a, tt.b))
		})
	}
}

func TestCloneAndSameData(t *testing.T) {
	frame := NewFrame("df", NewColumn("x", Double, Numbers(1, 2, 3)...))
	frame.RowLabels = []string{"a", "b", "c"}

	clone := frame.Clone()
	require.True(t, frame.SameData(clone))

	clone.Columns[0].Values[1] = Number(20)
	assert.False(t, frame.SameData(clone))
	assert.Equal(t, 2.0, frame.Columns[0].Values[1].Num)

	relabeled := frame.Clone()
	relabeled.RowLabels[0] = "z"
	assert.False(t, frame.SameData(relabeled))

	nan := NewFrame("df", NewColumn("x", Double, Number(math.NaN())))
	assert.True(t, nan.SameData(nan.Clone()))
}

func TestFrameColumnLookup(t *testing.T) {
	frame := NewFrame("df", NewColumn("x", Double, Numbers(1)...), NewColumn("y", String, Text("a")))

	_, ok := frame.Column(2)
	assert.False(t, ok)

	col, idx, ok := frame.ColumnByName("y")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "y", col.Name)

	assert.Equal(t, Missing(), col.Value(10))
	assert.False(t, frame.HasRowLabels())
}
