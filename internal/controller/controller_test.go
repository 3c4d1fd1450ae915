package controller

import (
	"bytes"
	"context"
	"io"
	"testing"

	"dumpreader/internal/directory"
	"dumpreader/internal/model"
)

type memDirectory struct {
	files map[string][]byte
}

func newMemDirectory() *memDirectory { return &memDirectory{files: make(map[string][]byte)} }

func (d *memDirectory) put(name, content string) { d.files[name] = []byte(content) }

func (d *memDirectory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) {
	out := make([]directory.FileInfo, 0, len(d.files))
	for name, data := range d.files {
		out = append(out, directory.FileInfo{Name: name, Size: int64(len(data))})
	}
	return out, nil
}

func (d *memDirectory) Open(ctx context.Context, name string) (directory.File, error) {
	data, ok := d.files[name]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *memDirectory) FullPath() string { return "mem://test" }

func TestOpenBuildsSchemaShellsAndDumpAttributes(t *testing.T) {
	dir := newMemDirectory()
	dir.put("@.json", `{
		"schemas": ["sakila"],
		"version": "1.0",
		"serverVersion": "8.0.34",
		"defaultCharacterSet": "utf8mb4",
		"tzUtc": true
	}`)
	dir.put("sakila.json", `{"tables": [], "views": []}`)

	c := New(dir, nil, nil)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}

	d := c.Model().Dump
	if d.Version != "1.0" || d.ServerVersion != "8.0.34" || d.DefaultCharset != "utf8mb4" || !d.TZUTC {
		t.Fatalf("dump attrs = %+v", d)
	}
	s, ok := c.Model().Schema("sakila")
	if !ok || !s.MDLoaded {
		t.Fatal("schema shell should exist and be loaded after Open's initial rescan")
	}
}

func TestOpenEmptyDumpTransitionsToCompleteWithTerminator(t *testing.T) {
	dir := newMemDirectory()
	dir.put("@.json", `{"schemas": []}`)
	dir.put("@.done.json", `{"dataBytes": 0, "tableDataBytes": {}}`)

	c := New(dir, nil, nil)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Model().Dump.Status != model.StatusComplete {
		t.Fatal("empty dump with terminator present should be COMPLETE after Open")
	}
}

func TestOpenSchemaFilterExcludesSchema(t *testing.T) {
	dir := newMemDirectory()
	dir.put("@.json", `{"schemas": ["sakila", "world"]}`)
	dir.put("sakila.json", `{"tables": [], "views": []}`)

	c := New(dir, filterFunc{includeSchema: func(s string) bool { return s != "world" }}, nil)
	if err := c.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := c.Model().Schema("world"); ok {
		t.Fatal("excluded schema should never get a shell")
	}
	if _, ok := c.Model().Schema("sakila"); !ok {
		t.Fatal("included schema should get a shell")
	}
}

func TestRunIDAndRunNameAreStable(t *testing.T) {
	c := New(newMemDirectory(), nil, nil)
	if c.RunID() == "" || c.RunName() == "" {
		t.Fatal("RunID/RunName should be populated at construction")
	}
	if c.RunID() != c.RunID() || c.RunName() != c.RunName() {
		t.Fatal("RunID/RunName should be stable across calls")
	}
}

type filterFunc struct {
	includeSchema func(string) bool
	includeTable  func(string, string) bool
}

func (f filterFunc) IncludeSchema(schema string) bool {
	if f.includeSchema == nil {
		return true
	}
	return f.includeSchema(schema)
}

func (f filterFunc) IncludeTable(schema, table string) bool {
	if f.includeTable == nil {
		return true
	}
	return f.includeTable(schema, table)
}
