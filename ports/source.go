package ports

import (
	"context"

	"dataview/domain/table"
)

// Source is a host-owned table the engine observes but never mutates.
type Source interface {
	// Name identifies the source to clients.
	Name() string

	// Snapshot returns a copy of the current table. It returns an error
	// wrapping core.ErrSourceGone once the underlying object no longer exists.
	Snapshot(ctx context.Context) (*table.Frame, error)
}

// SourceCatalog resolves configured sources by name.
type SourceCatalog interface {
	Open(ctx context.Context, name string) (Source, error)
	Names() []string
}
