// Package memory holds host tables in process memory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dataview/domain/core"
	"dataview/domain/table"
)

// Source is a mutable in-memory table standing in for a host runtime object.
type Source struct {
	mu      sync.RWMutex
	name    string
	frame   *table.Frame
	deleted bool
}

// NewSource creates a source owning a copy of frame.
func NewSource(name string, frame *table.Frame) *Source {
	return &Source{name: name, frame: frame.Clone()}
}

func (s *Source) Name() string { return s.name }

// Snapshot returns a deep copy of the current table.
func (s *Source) Snapshot(ctx context.Context) (*table.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deleted {
		return nil, fmt.Errorf("%w: %s", core.ErrSourceGone, s.name)
	}
	return s.frame.Clone(), nil
}

// Replace swaps in a new table.
func (s *Source) Replace(frame *table.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame.Clone()
}

// Update mutates the table in place.
func (s *Source) Update(fn func(frame *table.Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.frame)
}

// Delete makes the source unresolvable.
func (s *Source) Delete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = true
}
