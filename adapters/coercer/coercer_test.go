package coercer

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataview/domain/table"
)

func strs(xs ...string) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func TestTryParseNumeric(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"(123)", -123, true},
		{"$1,234.50", 1234.5, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"1,000", 1000, true},
		{"2,5", 2.5, true},
		{"45%", 45, true},
		{"1e3", 1000, true},
		{int64(7), 7, true},
		{2.25, 2.25, true},
		{"abc", 0, false},
		{"", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := c.tryParseNumeric(tt.in)
		assert.Equal(t, tt.ok, ok, "input %v", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.in)
		}
	}
}

func TestAnalyzeTypeDistribution(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())
	tests := []struct {
		name   string
		values []any
		want   table.TypeKind
	}{
		{"integers", strs("1", "2", "", "40"), table.TypeInteger},
		{"doubles", strs("1.5", "2", "NA"), table.TypeDouble},
		{"mostly numbers", strs("1.5", "2", "3", "4", "oops"), table.TypeDouble},
		{"booleans", strs("true", "FALSE", "yes"), table.TypeBoolean},
		{"dates", strs("2024-01-02", "2024-03-04"), table.TypeDate},
		{"datetimes", strs("2024-01-02 10:00:00", "2024-01-02"), table.TypeDatetime},
		{"text", strs("lambent", "3", "weasel"), table.TypeString},
		{"all missing", strs("NA", ""), table.TypeBoolean},
		{"native values", []any{int64(3), 1.5, nil}, table.TypeDouble},
		{"driver bytes", []any{[]byte("12.50"), []byte("3")}, table.TypeDouble},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.AnalyzeTypeDistribution(tt.values)
			assert.Equal(t, tt.want, got.RecommendedType.Kind)
		})
	}
}

func TestInferColumn(t *testing.T) {
	c := NewTypeCoercer(DefaultCoercionConfig())

	t.Run("numbers with stray text", func(t *testing.T) {
		col := c.InferColumn("x", strs("1", "2.5", "3", "4", "n/a?"))
		assert.Equal(t, table.Double, col.Type)
		assert.Equal(t, table.Number(2.5), col.Values[1])
		assert.True(t, col.Values[4].IsMissing())
	})

	t.Run("blank text stays empty", func(t *testing.T) {
		col := c.InferColumn("s", strs("a", "", "  spaced   out "))
		assert.Equal(t, table.String, col.Type)
		assert.Equal(t, table.Text(""), col.Values[1])
		assert.Equal(t, table.Text("spaced out"), col.Values[2])
	})

	t.Run("missing tokens", func(t *testing.T) {
		col := c.InferColumn("s", []any{"a", "NA", nil, math.NaN()})
		for _, v := range col.Values[1:] {
			assert.True(t, v.IsMissing())
		}
	})

	t.Run("dates", func(t *testing.T) {
		col := c.InferColumn("d", strs("2024-01-02", "", "01/15/2024"))
		assert.Equal(t, table.Date, col.Type)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), col.Values[2].Time)
		assert.True(t, col.Values[1].IsMissing())
	})
}

func TestInferFactor(t *testing.T) {
	cfg := DefaultCoercionConfig()
	cfg.FactorLevels = 3
	c := NewTypeCoercer(cfg)

	col := c.InferColumn("species", strs("setosa", "virginica", "setosa", "", "versicolor"))
	require.Equal(t, table.TypeFactor, col.Type.Kind)
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, col.Type.Levels)
	assert.True(t, col.Values[3].IsMissing())

	col = c.InferColumn("id", strs("a", "b", "c", "d"))
	assert.Equal(t, table.String, col.Type)
}
