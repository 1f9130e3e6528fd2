package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataview/domain/core"
	"dataview/domain/table"
)

func TestSourceSnapshotIsolation(t *testing.T) {
	frame := table.NewFrame("df", table.NewColumn("x", table.Double, table.Numbers(1, 2)...))
	src := NewSource("df", frame)

	frame.Columns[0].Values[0] = table.Number(99)
	snap, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap.Columns[0].Values[0].Num)

	snap.Columns[0].Values[0] = table.Number(42)
	again, err := src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.Columns[0].Values[0].Num)

	src.Update(func(f *table.Frame) { f.Columns[0].Values[1] = table.Number(7) })
	again, err = src.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.0, again.Columns[0].Values[1].Num)
}

func TestSourceDelete(t *testing.T) {
	src := NewSource("df", table.NewFrame("df"))
	src.Delete()

	_, err := src.Snapshot(context.Background())
	assert.ErrorIs(t, err, core.ErrSourceGone)
}

func TestCatalog(t *testing.T) {
	a := NewSource("b_table", table.NewFrame("b"))
	b := NewSource("a_table", table.NewFrame("a"))
	catalog := NewCatalog(a, b)

	assert.Equal(t, []string{"a_table", "b_table"}, catalog.Names())

	src, err := catalog.Open(context.Background(), "a_table")
	require.NoError(t, err)
	assert.Equal(t, "a_table", src.Name())

	_, err = catalog.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
