package resultset

// ResultSet represents the materialized output of a SELECT statement
type ResultSet struct {
	Columns []Column
	Rows    []Row
}

// Column describes one result column, in result-set order
type Column struct {
	Name            string
	DataType        string // SQL Server type name, lower case (nvarchar, int, ...)
	IsIdentity      bool
	IsReadOnly      bool
	IsKey           bool
	IsAutoIncrement bool
}

// Cell is a single value as rendered by the data source
type Cell struct {
	IsNull       bool
	DisplayValue string
}

// Row holds one cell per column, aligned with ResultSet.Columns
type Row []Cell

// ColumnFlags carries the role metadata of a table column as reported by
// the database catalog
type ColumnFlags struct {
	IsIdentity      bool
	IsReadOnly      bool
	IsAutoIncrement bool
	IsKey           bool
}

// Table is everything needed to script the data of one table
type Table struct {
	Schema     string
	Name       string
	Result     *ResultSet
	KeyColumns []string
}

// Value returns a non-null cell
func Value(s string) Cell {
	return Cell{DisplayValue: s}
}

// Null returns a null cell
func Null() Cell {
	return Cell{IsNull: true}
}

// ApplyFlags merges catalog flags into the column descriptors by name.
// Columns named in keyColumns are marked as keys.
func (rs *ResultSet) ApplyFlags(flags map[string]ColumnFlags, keyColumns []string) {
	keys := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		keys[k] = true
	}

	for i := range rs.Columns {
		col := &rs.Columns[i]
		if f, ok := flags[col.Name]; ok {
			col.IsIdentity = col.IsIdentity || f.IsIdentity
			col.IsReadOnly = col.IsReadOnly || f.IsReadOnly
			col.IsAutoIncrement = col.IsAutoIncrement || f.IsAutoIncrement
			col.IsKey = col.IsKey || f.IsKey
		}
		if keys[col.Name] {
			col.IsKey = true
		}
	}
}
