package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"dataview/adapters/excel"
	"dataview/adapters/memory"
	"dataview/adapters/postgres"
	"dataview/internal/config"
	"dataview/internal/errors"
)

// openDatabase connects when any source needs Postgres
func openDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	needed := false
	for _, s := range cfg.Sources {
		needed = needed || s.Kind == config.SourcePostgres
	}
	if !needed {
		return nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	return db, nil
}

// buildCatalog registers every configured source by name
func buildCatalog(cfg *config.Config, db *sqlx.DB, logger *zap.Logger) (*memory.Catalog, error) {
	catalog := memory.NewCatalog()
	for _, s := range cfg.Sources {
		switch s.Kind {
		case config.SourceFile:
			catalog.Register(excel.NewSource(s.Name, s.Path, excel.Config{Sheet: s.Sheet, Coercion: cfg.Coercion}, logger))
		case config.SourcePostgres:
			if s.Table != "" {
				catalog.Register(postgres.NewTableSource(db, s.Name, s.Table, cfg.Coercion, logger))
			} else {
				catalog.Register(postgres.NewQuerySource(db, s.Name, s.Query, cfg.Coercion, logger))
			}
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
		}
	}
	return catalog, nil
}

func filePaths(cfg *config.Config) []string {
	var paths []string
	for _, s := range cfg.FileSources() {
		paths = append(paths, s.Path)
	}
	return paths
}
