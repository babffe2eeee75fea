package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tordrt/datascripter/internal/resultset"
)

var sqliteTypes = map[string]string{
	"integer":   "bigint",
	"int":       "bigint",
	"text":      "nvarchar",
	"varchar":   "nvarchar",
	"real":      "float",
	"double":    "float",
	"blob":      "varbinary",
	"datetime":  "datetime2",
	"timestamp": "datetime2",
}

// SQLiteSource reads data and table metadata from SQLite
type SQLiteSource struct {
	client *SQLiteClient
}

// NewSQLiteSource creates a new SQLite source
func NewSQLiteSource(client *SQLiteClient) *SQLiteSource {
	return &SQLiteSource{client: client}
}

// DefaultQuery selects every row of the table. SQLite has no schemas
// beyond attached databases, so schemaName is only used when not "main".
func (s *SQLiteSource) DefaultQuery(schemaName, tableName string) string {
	if schemaName == "" || schemaName == "main" {
		return "SELECT * FROM " + liteIdent(tableName) + ";"
	}
	return "SELECT * FROM " + liteIdent(schemaName) + "." + liteIdent(tableName) + ";"
}

// Query runs a SELECT and materializes its output
func (s *SQLiteSource) Query(ctx context.Context, query string) (*resultset.ResultSet, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return readRows(rows, sqliteTypes)
}

type sqliteColumn struct {
	name    string
	colType string
	pk      int
	hidden  int
}

// tableColumns reads PRAGMA table_xinfo, which unlike table_info also
// lists generated columns. Attached databases are addressed by schema name.
func (s *SQLiteSource) tableColumns(ctx context.Context, schemaName, tableName string) ([]sqliteColumn, error) {
	query := fmt.Sprintf("PRAGMA table_xinfo(%s)", liteIdent(tableName))
	if schemaName != "" && schemaName != "main" {
		query = fmt.Sprintf("PRAGMA %s.table_xinfo(%s)", liteIdent(schemaName), liteIdent(tableName))
	}

	rows, err := s.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var cid, notNull int
		var defaultValue sql.NullString
		var col sqliteColumn

		if err := rows.Scan(&cid, &col.name, &col.colType, &notNull, &defaultValue, &col.pk, &col.hidden); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// KeyColumns returns the primary key columns ordered by key position
func (s *SQLiteSource) KeyColumns(ctx context.Context, schemaName, tableName string) ([]string, error) {
	columns, err := s.tableColumns(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}

	var pkCols []sqliteColumn
	for _, col := range columns {
		if col.pk > 0 {
			pkCols = append(pkCols, col)
		}
	}

	keys := make([]string, len(pkCols))
	for _, col := range pkCols {
		if col.pk <= len(keys) {
			keys[col.pk-1] = col.name
		}
	}

	return keys, nil
}

// ColumnFlags reports generated columns and the rowid alias. A single
// INTEGER primary key column aliases the rowid and behaves as an identity.
func (s *SQLiteSource) ColumnFlags(ctx context.Context, schemaName, tableName string) (map[string]resultset.ColumnFlags, error) {
	columns, err := s.tableColumns(ctx, schemaName, tableName)
	if err != nil {
		return nil, err
	}

	pkCount := 0
	for _, col := range columns {
		if col.pk > 0 {
			pkCount++
		}
	}

	flags := make(map[string]resultset.ColumnFlags, len(columns))
	for _, col := range columns {
		rowID := pkCount == 1 && col.pk == 1 && strings.EqualFold(col.colType, "INTEGER")
		flags[col.name] = resultset.ColumnFlags{
			IsIdentity:      rowID,
			IsAutoIncrement: rowID,
			IsReadOnly:      col.hidden == 2 || col.hidden == 3,
		}
	}

	return flags, nil
}

func liteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
