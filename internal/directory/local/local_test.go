package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestListFilesAndOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "@.json"), []byte(`{}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sakila@actor@0.tsv"), []byte("12345"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	d := New(dir, nil)
	entries, err := d.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("ListFiles returned %d entries, want 2 (subdirectories excluded): %+v", len(entries), entries)
	}

	f, err := d.Open(context.Background(), "sakila@actor@0.tsv")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "12345" {
		t.Fatalf("data = %q, want 12345", data)
	}
}

func TestOpenMissingFileErrors(t *testing.T) {
	d := New(t.TempDir(), nil)
	if _, err := d.Open(context.Background(), "missing.json"); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestFullPathIsAbsolute(t *testing.T) {
	d := New(".", nil)
	if !filepath.IsAbs(d.FullPath()) {
		t.Fatalf("FullPath() = %q, want an absolute path", d.FullPath())
	}
}
