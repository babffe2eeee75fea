package db

import (
	"context"
	"strings"

	"github.com/tordrt/datascripter/internal/resultset"
)

// SQLServerSource reads data and table metadata from SQL Server
type SQLServerSource struct {
	client *SQLServerClient
}

// NewSQLServerSource creates a new SQL Server source
func NewSQLServerSource(client *SQLServerClient) *SQLServerSource {
	return &SQLServerSource{client: client}
}

// DefaultQuery selects every row of the table
func (s *SQLServerSource) DefaultQuery(schemaName, tableName string) string {
	return "SELECT * FROM " + msFQN(schemaName, tableName) + ";"
}

// Query runs a SELECT and materializes its output
func (s *SQLServerSource) Query(ctx context.Context, query string) (*resultset.ResultSet, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return readRows(rows, nil)
}

// KeyColumns returns the primary key columns ordered by key ordinal
func (s *SQLServerSource) KeyColumns(ctx context.Context, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT c.name
		FROM sys.indexes i
		JOIN sys.index_columns ic
			ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns c
			ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.is_primary_key = 1
			AND i.object_id = OBJECT_ID(@p1)
		ORDER BY ic.key_ordinal
	`

	rows, err := s.client.GetDB().QueryContext(ctx, query, msFQN(schemaName, tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		keys = append(keys, name)
	}

	return keys, rows.Err()
}

// ColumnFlags reports identity, computed and rowversion columns
func (s *SQLServerSource) ColumnFlags(ctx context.Context, schemaName, tableName string) (map[string]resultset.ColumnFlags, error) {
	query := `
		SELECT c.name, c.is_identity, c.is_computed, t.name
		FROM sys.columns c
		JOIN sys.types t ON t.user_type_id = c.user_type_id
		WHERE c.object_id = OBJECT_ID(@p1)
		ORDER BY c.column_id
	`

	rows, err := s.client.GetDB().QueryContext(ctx, query, msFQN(schemaName, tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[string]resultset.ColumnFlags)
	for rows.Next() {
		var name, typeName string
		var isIdentity, isComputed bool
		if err := rows.Scan(&name, &isIdentity, &isComputed, &typeName); err != nil {
			return nil, err
		}

		rowVersion := typeName == "timestamp" || typeName == "rowversion"
		flags[name] = resultset.ColumnFlags{
			IsIdentity:      isIdentity,
			IsAutoIncrement: isIdentity,
			IsReadOnly:      isIdentity || isComputed || rowVersion,
		}
	}

	return flags, rows.Err()
}

// msIdent quotes an identifier for SQL Server, e.g. "a]b" -> "[a]]b]"
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes a schema-qualified name as "[schema].[table]"
func msFQN(schemaName, tableName string) string {
	if schemaName == "" {
		return msIdent(tableName)
	}
	return msIdent(schemaName) + "." + msIdent(tableName)
}
