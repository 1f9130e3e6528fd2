package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"dataview/adapters/coercer"
	"dataview/domain/core"
	"dataview/domain/table"
)

// Config holds settings for a file-backed source
type Config struct {
	Sheet    string                 `json:"sheet" koanf:"sheet"`
	Coercion coercer.CoercionConfig `json:"coercion" koanf:"coercion"`
}

// DefaultConfig reads the first sheet with the default coercion rules
func DefaultConfig() Config {
	return Config{Coercion: coercer.DefaultCoercionConfig()}
}

// Source is a table read from a CSV, TSV or XLSX file. The file is parsed
// again only when its size or modification time changes.
type Source struct {
	name   string
	path   string
	reader *DataReader

	mu      sync.Mutex
	modTime time.Time
	size    int64
	frame   *table.Frame
}

// NewSource creates a source over the file at path
func NewSource(name, path string, cfg Config, logger *zap.Logger) *Source {
	return &Source{
		name:   name,
		path:   path,
		reader: NewDataReader(path, cfg, logger),
	}
}

func (s *Source) Name() string { return s.name }

// Path returns the backing file.
func (s *Source) Path() string { return s.path }

// Snapshot returns the current contents of the file. A deleted file reports
// core.ErrSourceGone.
func (s *Source) Snapshot(ctx context.Context) (*table.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", core.ErrSourceGone, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frame == nil || !info.ModTime().Equal(s.modTime) || info.Size() != s.size {
		frame, err := s.reader.ReadFrame(s.name)
		if err != nil {
			return nil, err
		}
		s.frame, s.modTime, s.size = frame, info.ModTime(), info.Size()
	}
	return s.frame.Clone(), nil
}
