package memory

import (
	"context"
	"slices"
	"sync"

	"dataview/domain/core"
	"dataview/ports"
)

// Catalog maps names to sources.
type Catalog struct {
	mu      sync.RWMutex
	sources map[string]ports.Source
}

// NewCatalog creates a catalog holding the given sources.
func NewCatalog(sources ...ports.Source) *Catalog {
	c := &Catalog{sources: make(map[string]ports.Source)}
	for _, s := range sources {
		c.Register(s)
	}
	return c
}

// Register adds or replaces a source under its name.
func (c *Catalog) Register(s ports.Source) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[s.Name()] = s
}

// Open returns the named source.
func (c *Catalog) Open(_ context.Context, name string) (ports.Source, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sources[name]
	if !ok {
		return nil, core.ErrSourceNotFound
	}
	return s, nil
}

// Names lists registered sources in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.sources))
	for name := range c.sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
