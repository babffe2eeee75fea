package output

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriterSeparatesBatches(t *testing.T) {
	var buf bytes.Buffer
	err := NewWriter(&buf).Write([]Script{
		{Schema: "dbo", Table: "A", Text: "script a"},
		{Schema: "dbo", Table: "B", Text: "script b"},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "script a\nGO\n\nscript b\n"
	if buf.String() != want {
		t.Errorf("Write() = %q, want %q", buf.String(), want)
	}
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(nil); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Write(nil) wrote %q", buf.String())
	}
}

func TestDirWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")

	err := NewDirWriter(dir).Write([]Script{
		{Schema: "dbo", Table: "Person", Text: "merge person"},
		{Schema: "sales", Table: "Order/Lines", Text: "merge lines"},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	tests := map[string]string{
		"dbo.Person.sql":        "merge person\n",
		"sales.Order_Lines.sql": "merge lines\n",
	}
	for name, want := range tests {
		got, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	if got := FileName("", "T"); got != "T.sql" {
		t.Errorf("FileName() = %q", got)
	}
	if got := FileName("dbo", "a:b"); got != "dbo.a_b.sql" {
		t.Errorf("FileName() = %q", got)
	}
}
