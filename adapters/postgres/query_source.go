package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"dataview/adapters/coercer"
	"dataview/domain/core"
	"dataview/domain/table"
)

// undefined_table
const codeUndefinedTable = "42P01"

// QuerySource is a table produced by running a query. Each snapshot runs the
// query again.
type QuerySource struct {
	db      *sqlx.DB
	name    string
	query   string
	coercer *coercer.TypeCoercer
	logger  *zap.Logger
}

// NewQuerySource creates a source over an arbitrary SELECT
func NewQuerySource(db *sqlx.DB, name, query string, cfg coercer.CoercionConfig, logger *zap.Logger) *QuerySource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuerySource{
		db:      db,
		name:    name,
		query:   query,
		coercer: coercer.NewTypeCoercer(cfg),
		logger:  logger,
	}
}

// NewTableSource creates a source over every row of a table
func NewTableSource(db *sqlx.DB, name, tableName string, cfg coercer.CoercionConfig, logger *zap.Logger) *QuerySource {
	return NewQuerySource(db, name, "SELECT * FROM "+quoteQualified(tableName), cfg, logger)
}

func (s *QuerySource) Name() string { return s.name }

// Snapshot runs the query. A dropped table reports core.ErrSourceGone.
func (s *QuerySource) Snapshot(ctx context.Context) (*table.Frame, error) {
	rows, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == codeUndefinedTable {
			return nil, fmt.Errorf("%w: %s", core.ErrSourceGone, pqErr.Message)
		}
		return nil, fmt.Errorf("failed to query source %s: %w", s.name, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	hints := make([]string, len(names))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			hints[i] = ct.DatabaseTypeName()
		}
	}

	cells := make([][]any, len(names))
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for j, v := range values {
			cells[j] = append(cells[j], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	columns := make([]table.Column, len(names))
	for j, name := range names {
		typ, ok := columnType(hints[j])
		if !ok {
			columns[j] = s.coercer.InferColumn(name, cells[j])
			continue
		}
		values := make([]table.ColumnValue, len(cells[j]))
		for i, v := range cells[j] {
			values[i] = s.coercer.CoerceValue(v, typ)
		}
		columns[j] = table.NewColumn(name, typ, values...)
	}

	s.logger.Debug("query source read", zap.String("source", s.name), zap.Int("columns", len(columns)))
	return table.NewFrame(s.name, columns...), nil
}

// columnType maps a Postgres type name to a column type. Unknown names are
// left to inference.
func columnType(dbType string) (table.DataType, bool) {
	switch strings.ToUpper(dbType) {
	case "INT2", "INT4", "INT8":
		return table.Integer, true
	case "FLOAT4", "FLOAT8", "NUMERIC":
		return table.Double, true
	case "BOOL":
		return table.Boolean, true
	case "DATE":
		return table.Date, true
	case "TIMESTAMP", "TIMESTAMPTZ":
		return table.Datetime, true
	case "TEXT", "VARCHAR", "BPCHAR", "NAME", "UUID", "JSON", "JSONB":
		return table.String, true
	}
	return table.DataType{}, false
}

func quoteQualified(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
