// Package view materializes the filtered and sorted row order of a table.
package view

import (
	"slices"

	"dataview/domain/filter"
	"dataview/domain/sorting"
	"dataview/domain/table"
)

// View is one self-consistent selection and ordering of source rows.
type View struct {
	// Rows maps view positions to source row indices.
	Rows      []int
	Filters   []filter.RowFilter
	HadErrors bool
}

// NumRows returns the number of rows in the view.
func (v *View) NumRows() int { return len(v.Rows) }

// SourceRow maps a view position to a source row.
func (v *View) SourceRow(i int) (int, bool) {
	if i < 0 || i >= len(v.Rows) {
		return 0, false
	}
	return v.Rows[i], true
}

// SourceRows maps view positions to source rows, dropping positions outside
// the view.
func (v *View) SourceRows(positions []int) []int {
	out := make([]int, 0, len(positions))
	for _, p := range positions {
		if r, ok := v.SourceRow(p); ok {
			out = append(out, r)
		}
	}
	return out
}

// Cache owns the inputs of a view and rebuilds it from scratch whenever any
// of them changed since the last build.
type Cache struct {
	frame   *table.Frame
	filters []filter.RowFilter
	keys    []sorting.SortKey

	generation uint64
	built      uint64
	current    *View
}

// NewCache returns a cache over frame with no filters or sort keys.
func NewCache(frame *table.Frame) *Cache {
	return &Cache{frame: frame, generation: 1}
}

// Frame returns the source snapshot the cache was last given.
func (c *Cache) Frame() *table.Frame { return c.frame }

// SetFrame replaces the source snapshot.
func (c *Cache) SetFrame(frame *table.Frame) {
	c.frame = frame
	c.generation++
}

// SetFilters replaces the filter list.
func (c *Cache) SetFilters(filters []filter.RowFilter) {
	c.filters = slices.Clone(filters)
	c.generation++
}

// SetSortKeys replaces the sort keys, binding them to the current columns.
func (c *Cache) SetSortKeys(keys []sorting.SortKey) {
	c.keys = sorting.Bind(c.frame, keys)
	c.generation++
}

// SortKeys returns the sort keys with validity from the latest build.
func (c *Cache) SortKeys() []sorting.SortKey {
	c.Get()
	return slices.Clone(c.keys)
}

// Filters returns the filters with validity from the latest build.
func (c *Cache) Filters() []filter.RowFilter {
	return slices.Clone(c.Get().Filters)
}

// Stale reports whether the next Get will rebuild.
func (c *Cache) Stale() bool { return c.built != c.generation }

// Get returns the current view, rebuilding it if needed.
func (c *Cache) Get() *View {
	if c.current != nil && !c.Stale() {
		return c.current
	}

	res := filter.Evaluate(c.frame, c.filters)
	c.filters = res.Filters
	c.keys = sorting.Bind(c.frame, c.keys)
	c.current = &View{
		Rows:      sorting.Order(c.frame, res.Rows(), c.keys),
		Filters:   res.Filters,
		HadErrors: res.HadErrors,
	}
	c.built = c.generation
	return c.current
}

// Shape returns the shape of the current view.
func (c *Cache) Shape() table.TableShape {
	return table.TableShape{NumRows: c.Get().NumRows(), NumColumns: c.frame.NumColumns()}
}
