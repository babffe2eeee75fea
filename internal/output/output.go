// Package output writes generated scripts to a stream or a directory.
package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Script is one table's generated script
type Script struct {
	Schema string
	Table  string
	Text   string
}

// Writer writes every script to one stream, separated by GO batch lines
type Writer struct {
	writer io.Writer
}

// NewWriter creates a new stream writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{writer: w}
}

// Write writes the scripts in order
func (w *Writer) Write(scripts []Script) error {
	for i, s := range scripts {
		if i > 0 {
			if _, err := io.WriteString(w.writer, "\nGO\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w.writer, s.Text); err != nil {
			return fmt.Errorf("failed to write script for %s.%s: %w", s.Schema, s.Table, err)
		}
	}
	if len(scripts) > 0 {
		if _, err := io.WriteString(w.writer, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// DirWriter writes one <schema>.<table>.sql file per script
type DirWriter struct {
	OutputDir string
}

// NewDirWriter creates a new directory writer
func NewDirWriter(outputDir string) *DirWriter {
	return &DirWriter{OutputDir: outputDir}
}

// Write creates the output directory if needed and writes each script
func (d *DirWriter) Write(scripts []Script) error {
	if err := os.MkdirAll(d.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, s := range scripts {
		path := filepath.Join(d.OutputDir, FileName(s.Schema, s.Table))
		if err := os.WriteFile(path, []byte(s.Text+"\n"), 0644); err != nil {
			return fmt.Errorf("failed to write script file for %s.%s: %w", s.Schema, s.Table, err)
		}
	}

	return nil
}

var unsafeFileChars = strings.NewReplacer("/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_")

// FileName returns the script file name for a table
func FileName(schemaName, tableName string) string {
	name := tableName + ".sql"
	if schemaName != "" {
		name = schemaName + "." + name
	}
	return unsafeFileChars.Replace(name)
}
