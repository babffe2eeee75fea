package db

import (
	"context"
	"strings"

	"github.com/tordrt/datascripter/internal/resultset"
)

var mysqlTypes = map[string]string{
	"varchar":            "nvarchar",
	"char":               "nchar",
	"text":               "nvarchar",
	"json":               "nvarchar",
	"datetime":           "datetime2",
	"timestamp":          "datetime2",
	"double":             "float",
	"float":              "real",
	"bit":                "varbinary",
	"unsigned tinyint":   "smallint",
	"unsigned smallint":  "int",
	"unsigned mediumint": "int",
	"unsigned int":       "bigint",
	"unsigned bigint":    "decimal",
}

// MySQLSource reads data and table metadata from MySQL
type MySQLSource struct {
	client *MySQLClient
}

// NewMySQLSource creates a new MySQL source
func NewMySQLSource(client *MySQLClient) *MySQLSource {
	return &MySQLSource{client: client}
}

// DefaultQuery selects every row of the table
func (s *MySQLSource) DefaultQuery(schemaName, tableName string) string {
	return "SELECT * FROM " + myIdent(schemaName) + "." + myIdent(tableName) + ";"
}

// Query runs a SELECT and materializes its output
func (s *MySQLSource) Query(ctx context.Context, query string) (*resultset.ResultSet, error) {
	rows, err := s.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return readRows(rows, mysqlTypes)
}

// KeyColumns returns the primary key columns ordered by ordinal position
func (s *MySQLSource) KeyColumns(ctx context.Context, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`

	rows, err := s.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
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

// ColumnFlags reports auto_increment and generated columns. DEFAULT_GENERATED
// only marks an expression default and leaves the column writable.
func (s *MySQLSource) ColumnFlags(ctx context.Context, schemaName, tableName string) (map[string]resultset.ColumnFlags, error) {
	query := `
		SELECT column_name, extra
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`

	rows, err := s.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[string]resultset.ColumnFlags)
	for rows.Next() {
		var name, extra string
		if err := rows.Scan(&name, &extra); err != nil {
			return nil, err
		}

		extra = strings.ToLower(extra)
		autoInc := strings.Contains(extra, "auto_increment")
		flags[name] = resultset.ColumnFlags{
			IsIdentity:      autoInc,
			IsAutoIncrement: autoInc,
			IsReadOnly:      strings.Contains(extra, "virtual generated") || strings.Contains(extra, "stored generated"),
		}
	}

	return flags, rows.Err()
}

func myIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
