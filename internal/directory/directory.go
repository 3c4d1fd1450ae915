// Package directory defines the storage abstraction the scanner and work
// queue read dump artifacts through. Concrete backends (local filesystem,
// S3, Azure Blob, GCS) live in sibling packages; this package only holds
// the contract and a couple of convenience helpers built on it.
package directory

import (
	"context"
	"fmt"
	"io"
)

// FileInfo is one entry in a directory listing snapshot.
type FileInfo struct {
	Name string
	Size int64
}

// File is a handle opened for sequential read. Callers own it and must
// Close it; the scanner itself closes every handle it opens internally.
type File interface {
	io.Reader
	io.Closer
}

// Directory lists and opens the files that make up one dump. Listings are
// snapshots with no ordering requirement; the scanner tolerates listings
// taken at any point during a tailing dump.
type Directory interface {
	// ListFiles returns every file currently present.
	ListFiles(ctx context.Context) ([]FileInfo, error)
	// Open opens name for sequential read.
	Open(ctx context.Context, name string) (File, error)
	// FullPath returns a diagnostic-only description of where this
	// directory resolves to (a local path, or a bucket/prefix URI).
	FullPath() string
}

// Listing converts a ListFiles result into the filename→size map the
// scanner's Rescan expects.
func Listing(ctx context.Context, d Directory) (map[string]int64, error) {
	entries, err := d.ListFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", d.FullPath(), err)
	}
	out := make(map[string]int64, len(entries))
	for _, e := range entries {
		out[e.Name] = e.Size
	}
	return out, nil
}

// Slurp opens name, reads it to completion, and closes it. It is the
// whole-file-read primitive the scanner uses for the preamble/postamble/
// users scripts and for manifest documents.
func Slurp(ctx context.Context, d Directory, name string) ([]byte, error) {
	f, err := d.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
