package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"dataview/domain/core"
	"dataview/ports"
)

// boundaryParallelism bounds the sessions checked at once per boundary.
const boundaryParallelism = 8

// SessionInfo describes an open session.
type SessionInfo struct {
	ID     core.SessionID `json:"id"`
	Source string         `json:"source"`
}

// Registry tracks open sessions and fans evaluation-boundary signals out to
// them.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[core.SessionID]*Session
	catalog   ports.SourceCatalog
	publisher ports.EventPublisher
	cfg       SessionConfig
	logger    *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(catalog ports.SourceCatalog, publisher ports.EventPublisher, cfg SessionConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:  make(map[core.SessionID]*Session),
		catalog:   catalog,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

// OpenByName opens a session over a source from the catalog.
func (r *Registry) OpenByName(ctx context.Context, name string) (*Session, error) {
	if r.catalog == nil {
		return nil, core.ErrSourceNotFound
	}
	source, err := r.catalog.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open source %q: %w", name, err)
	}
	return r.Open(ctx, source)
}

// Open starts a session over source.
func (r *Registry) Open(ctx context.Context, source ports.Source) (*Session, error) {
	s, err := NewSession(ctx, core.NewSessionID(), source, r.publisher, r.cfg, r.logger)
	if err != nil {
		return nil, err
	}
	s.onClose = r.remove

	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns an open session.
func (r *Registry) Get(id core.SessionID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return s, nil
}

// List describes every open session ordered by id.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SessionInfo, 0, len(r.sessions))
	for id, s := range r.sessions {
		out = append(out, SessionInfo{ID: id, Source: s.SourceName()})
	}
	slices.SortFunc(out, func(a, b SessionInfo) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Close shuts a session down.
func (r *Registry) Close(id core.SessionID) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// CloseAll shuts every session down.
func (r *Registry) CloseAll() {
	for _, info := range r.List() {
		_ = r.Close(info.ID)
	}
}

// NotifyEvaluationBoundary runs change detection on every open session and
// returns how many sessions reported a change.
func (r *Registry) NotifyEvaluationBoundary(ctx context.Context) int {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	sem := semaphore.NewWeighted(boundaryParallelism)
	var changed atomic.Int64
	var wg sync.WaitGroup
	for _, s := range sessions {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			defer sem.Release(1)

			change, err := s.CheckForChanges(ctx)
			if err != nil {
				r.logger.Warn("change detection failed", zap.String("session_id", s.ID().String()), zap.Error(err))
				return
			}
			if change != ChangeNone {
				changed.Add(1)
			}
		}(s)
	}
	wg.Wait()
	return int(changed.Load())
}

func (r *Registry) remove(id core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
