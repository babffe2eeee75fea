package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/tordrt/datascripter/internal/resultset"
)

var postgresTypes = map[string]string{
	"text":      "nvarchar",
	"varchar":   "nvarchar",
	"timestamp": "datetime2",
	"numeric":   "numeric",
	"xml":       "xml",
}

// PostgresSource reads data and table metadata from PostgreSQL
type PostgresSource struct {
	client *PostgresClient
}

// NewPostgresSource creates a new PostgreSQL source
func NewPostgresSource(client *PostgresClient) *PostgresSource {
	return &PostgresSource{client: client}
}

// DefaultQuery selects every row of the table
func (s *PostgresSource) DefaultQuery(schemaName, tableName string) string {
	return "SELECT * FROM " + pgx.Identifier{schemaName, tableName}.Sanitize() + ";"
}

// Query runs a SELECT and materializes its output
func (s *PostgresSource) Query(ctx context.Context, query string) (*resultset.ResultSet, error) {
	conn := s.client.GetConnection()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	typeMap := conn.TypeMap()
	fields := rows.FieldDescriptions()
	rs := &resultset.ResultSet{Columns: make([]resultset.Column, len(fields))}
	asText := make([]bool, len(fields))
	for i, fd := range fields {
		typeName := "text"
		if t, ok := typeMap.TypeForOID(fd.DataTypeOID); ok {
			typeName = t.Name
			asText[i] = encodesAsText(t)
		}
		rs.Columns[i] = resultset.Column{
			Name:     fd.Name,
			DataType: normalizeType(typeName, postgresTypes),
		}
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(rs.Rows), err)
		}
		row := make(resultset.Row, len(values))
		for i, v := range values {
			if asText[i] {
				v = pgText(typeMap, fields[i].DataTypeOID, v)
			}
			row[i] = toCell(v, rs.Columns[i].DataType)
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, rows.Err()
}

// KeyColumns returns the primary key columns ordered by ordinal position
func (s *PostgresSource) KeyColumns(ctx context.Context, schemaName, tableName string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
			AND tc.table_name = kcu.table_name
		WHERE tc.table_schema = $1
			AND tc.table_name = $2
			AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position
	`

	rows, err := s.client.GetConnection().Query(ctx, query, schemaName, tableName)
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

// ColumnFlags reports identity, serial and generated columns
func (s *PostgresSource) ColumnFlags(ctx context.Context, schemaName, tableName string) (map[string]resultset.ColumnFlags, error) {
	query := `
		SELECT
			column_name,
			is_identity = 'YES',
			COALESCE(column_default LIKE 'nextval(%', false),
			is_generated = 'ALWAYS'
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := s.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[string]resultset.ColumnFlags)
	for rows.Next() {
		var name string
		var isIdentity, isSerial, isGenerated bool
		if err := rows.Scan(&name, &isIdentity, &isSerial, &isGenerated); err != nil {
			return nil, err
		}

		flags[name] = resultset.ColumnFlags{
			IsIdentity:      isIdentity || isSerial,
			IsAutoIncrement: isIdentity || isSerial,
			IsReadOnly:      isGenerated,
		}
	}

	return flags, rows.Err()
}

// encodesAsText reports types whose decoded Go values (maps, slices,
// scalars unwrapped from JSON) do not print as the column's text
func encodesAsText(t *pgtype.Type) bool {
	switch t.Name {
	case "json", "jsonb":
		return true
	}
	_, isArray := t.Codec.(*pgtype.ArrayCodec)
	return isArray
}

// pgText renders a decoded value in PostgreSQL's text format, e.g.
// []any{1, 2} of an int4[] column becomes "{1,2}". JSON is marshalled
// directly since the codec passes Go strings through as raw JSON.
func pgText(m *pgtype.Map, oid uint32, v any) any {
	if v == nil {
		return nil
	}

	if oid == pgtype.JSONOID || oid == pgtype.JSONBOID {
		b, err := json.Marshal(v)
		if err != nil {
			return v
		}
		return string(b)
	}

	buf, err := m.Encode(oid, pgtype.TextFormatCode, v, nil)
	if err != nil || buf == nil {
		return v
	}
	return string(buf)
}
