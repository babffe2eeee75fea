package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tordrt/datascripter/internal/resultset"
)

// ErrNoRows is returned by Fetch when the query produced no data
var ErrNoRows = errors.New("the query produced no results")

// Source reads result sets and table metadata from one database
type Source interface {
	// DefaultQuery returns the SELECT used when the caller supplies none
	DefaultQuery(schemaName, tableName string) string

	// Query runs a SELECT and materializes its output
	Query(ctx context.Context, query string) (*resultset.ResultSet, error)

	// KeyColumns returns the primary key columns of a table in key order
	KeyColumns(ctx context.Context, schemaName, tableName string) ([]string, error)

	// ColumnFlags returns role metadata for the columns of a table, by name
	ColumnFlags(ctx context.Context, schemaName, tableName string) (map[string]resultset.ColumnFlags, error)
}

// Fetch runs query (or the source's default query when empty) against a
// table and returns the result together with its key columns
func Fetch(ctx context.Context, src Source, schemaName, tableName, query string) (*resultset.Table, error) {
	if query == "" {
		query = src.DefaultQuery(schemaName, tableName)
	}

	rs, err := src.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %w", err)
	}
	if len(rs.Rows) == 0 {
		return nil, ErrNoRows
	}

	keys, err := src.KeyColumns(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get key columns: %w", err)
	}

	flags, err := src.ColumnFlags(ctx, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get column metadata: %w", err)
	}
	rs.ApplyFlags(flags, keys)

	return &resultset.Table{
		Schema:     schemaName,
		Name:       tableName,
		Result:     rs,
		KeyColumns: keys,
	}, nil
}

// readRows materializes database/sql rows. typeOverrides adjusts the
// mapping of the engine's type names onto SQL Server names.
func readRows(rows *sql.Rows, typeOverrides map[string]string) (*resultset.ResultSet, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &resultset.ResultSet{Columns: make([]resultset.Column, len(types))}
	for i, ct := range types {
		rs.Columns[i] = resultset.Column{
			Name:     ct.Name(),
			DataType: normalizeType(ct.DatabaseTypeName(), typeOverrides),
		}
	}

	values := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(resultset.Row, len(values))
		for i, v := range values {
			if rs.Columns[i].DataType == "" && v != nil {
				rs.Columns[i].DataType = inferType(v)
			}
			row[i] = toCell(v, rs.Columns[i].DataType)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// expression columns with only NULLs still need a quoting type
	for i := range rs.Columns {
		if rs.Columns[i].DataType == "" {
			rs.Columns[i].DataType = "nvarchar"
		}
	}

	return rs, nil
}

// inferType picks a SQL Server type for a column the driver reports
// without a declared type, such as a SQLite expression column
func inferType(v any) string {
	switch v.(type) {
	case int64, int32, int:
		return "bigint"
	case float64, float32:
		return "float"
	case bool:
		return "bit"
	case time.Time:
		return "datetime2"
	default:
		return "nvarchar"
	}
}
