// Package generator turns a result set into a T-SQL MERGE script that
// inserts missing rows and updates existing ones, matched by key columns.
package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tordrt/datascripter/internal/resultset"
)

var (
	// ErrNoKeyColumns is returned by Validate when the key-column set is empty
	ErrNoKeyColumns = errors.New("no key columns")

	// ErrUnknownKeyColumn is wrapped by UnknownKeyColumnError
	ErrUnknownKeyColumn = errors.New("unknown key column")
)

// UnknownKeyColumnError reports a key column absent from the result set
type UnknownKeyColumnError struct {
	Column string
}

func (e *UnknownKeyColumnError) Error() string {
	return fmt.Sprintf("key column %q is not in the result set", e.Column)
}

func (e *UnknownKeyColumnError) Unwrap() error {
	return ErrUnknownKeyColumn
}

// RowError records a row whose values could not be formatted
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d, column %s: %v", e.Row, e.Column, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Script is the result of one generation call
type Script struct {
	Text     string
	RowCount int
	Failures []RowError
}

// Generator builds a MERGE script for one table
type Generator struct {
	rs         *resultset.ResultSet
	keyColumns []string
	schema     string
	table      string
}

// New creates a generator for the given result set and target table
func New(rs *resultset.ResultSet, keyColumns []string, schemaName, tableName string) *Generator {
	return &Generator{
		rs:         rs,
		keyColumns: keyColumns,
		schema:     schemaName,
		table:      tableName,
	}
}

// Validate checks that the key-column set is usable as a join predicate.
// Generate does not call it; an empty set yields an empty ON clause.
func (g *Generator) Validate() error {
	if len(g.keyColumns) == 0 {
		return ErrNoKeyColumns
	}

	names := make(map[string]bool, len(g.rs.Columns))
	for _, col := range g.rs.Columns {
		names[col.Name] = true
	}
	for _, k := range g.keyColumns {
		if !names[k] {
			return &UnknownKeyColumnError{Column: k}
		}
	}
	return nil
}

// GenerateMergeScript returns the complete script text
func (g *Generator) GenerateMergeScript() string {
	return g.Generate().Text
}

// Generate builds the script and reports rows that failed to format
func (g *Generator) Generate() *Script {
	var w lineWriter
	target := g.target()
	hasIdentity := g.hasIdentityColumn()

	w.line("/* Table %s.%s data */", g.schema, g.table)
	w.blank()

	if hasIdentity {
		w.line("SET IDENTITY_INSERT %s ON;", target)
		w.blank()
	}

	w.line("MERGE INTO %s AS t", target)
	w.line("USING")
	w.line("(")
	w.line("    VALUES")
	failures := g.writeValues(&w, 4)
	w.line(")")
	w.line("AS s")
	w.line("(")
	g.writeColumnNames(&w, 4, "")
	w.line(")")
	w.line("ON")
	w.line("(")
	g.writeJoin(&w, 4)
	w.line(")")
	w.line("WHEN NOT MATCHED BY TARGET THEN")
	w.line("    INSERT")
	w.line("    (")
	g.writeColumnNames(&w, 8, "")
	w.line("    )")
	w.line("    VALUES")
	w.line("    (")
	g.writeColumnNames(&w, 8, "s")
	w.line("    )")
	w.line("WHEN MATCHED THEN")
	w.line("    UPDATE SET")
	g.writeUpdate(&w, 8)
	w.line("OUTPUT $action AS [Action];")

	if hasIdentity {
		w.blank()
		w.line("SET IDENTITY_INSERT %s OFF;", target)
	}

	return &Script{
		Text:     w.String(),
		RowCount: len(g.rs.Rows),
		Failures: failures,
	}
}

func (g *Generator) target() string {
	return quoteIdent(g.schema) + "." + quoteIdent(g.table)
}

func (g *Generator) writeValues(w *lineWriter, indent int) []RowError {
	var failures []RowError
	pad := strings.Repeat(" ", indent)

	rows := make([]string, 0, len(g.rs.Rows))
	for i, row := range g.rs.Rows {
		data, err := g.formatRow(i, row)
		if err != nil {
			failures = append(failures, *err)
			data = ""
		}
		rows = append(rows, pad+"("+data+")")
	}

	w.joined(rows, ",")
	return failures
}

// formatRow renders the literals of one row, skipping ignorable columns
func (g *Generator) formatRow(index int, row resultset.Row) (string, *RowError) {
	if len(row) != len(g.rs.Columns) {
		return "", &RowError{
			Row: index,
			Err: fmt.Errorf("row has %d cells, expected %d", len(row), len(g.rs.Columns)),
		}
	}

	values := make([]string, 0, len(row))
	for i, col := range g.rs.Columns {
		if ignoreColumn(col) {
			continue
		}
		lit, err := FormatCellValue(col, row[i])
		if err != nil {
			return "", &RowError{Row: index, Column: col.Name, Err: err}
		}
		values = append(values, lit)
	}
	return strings.Join(values, ", "), nil
}

func (g *Generator) writeColumnNames(w *lineWriter, indent int, alias string) {
	pad := strings.Repeat(" ", indent)
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}

	var names []string
	for _, col := range g.rs.Columns {
		if ignoreColumn(col) {
			continue
		}
		names = append(names, pad+prefix+quoteIdent(col.Name))
	}
	w.joined(names, ",")
}

func (g *Generator) writeJoin(w *lineWriter, indent int) {
	preds := make([]string, 0, len(g.keyColumns))
	for _, k := range g.keyColumns {
		preds = append(preds, fmt.Sprintf("t.%s = s.%s", quoteIdent(k), quoteIdent(k)))
	}
	w.line("%s%s", strings.Repeat(" ", indent), strings.Join(preds, " AND "))
}

func (g *Generator) writeUpdate(w *lineWriter, indent int) {
	pad := strings.Repeat(" ", indent)

	var sets []string
	for _, col := range g.rs.Columns {
		if !g.updatable(col) {
			continue
		}
		sets = append(sets, fmt.Sprintf("%st.%s = s.%s", pad, quoteIdent(col.Name), quoteIdent(col.Name)))
	}
	w.joined(sets, ",")
}

func (g *Generator) updatable(col resultset.Column) bool {
	if col.IsKey || col.IsAutoIncrement || col.IsReadOnly {
		return false
	}
	for _, k := range g.keyColumns {
		if k == col.Name {
			return false
		}
	}
	return true
}

func (g *Generator) hasIdentityColumn() bool {
	for _, col := range g.rs.Columns {
		if col.IsIdentity {
			return true
		}
	}
	return false
}

// ignoreColumn reports columns that cannot be supplied as literals.
// Identity columns stay in, covered by IDENTITY_INSERT.
func ignoreColumn(col resultset.Column) bool {
	return col.IsReadOnly && !col.IsIdentity
}

// lineWriter accumulates script lines separated by newlines
type lineWriter struct {
	sb    strings.Builder
	lines int
}

func (w *lineWriter) line(format string, args ...any) {
	if w.lines > 0 {
		w.sb.WriteByte('\n')
	}
	fmt.Fprintf(&w.sb, format, args...)
	w.lines++
}

func (w *lineWriter) blank() {
	w.line("")
}

// joined writes items as one block, each but the last followed by sep.
// An empty list still produces one (empty) line.
func (w *lineWriter) joined(items []string, sep string) {
	w.line("%s", strings.Join(items, sep+"\n"))
}

func (w *lineWriter) String() string {
	return w.sb.String()
}
