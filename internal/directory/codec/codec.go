// Package codec wraps a directory.File with streaming decompression,
// keyed off the file's extension, so a loader can read ".tsv.zst" or
// ".tsv.gz" chunks the same way it reads an uncompressed ".tsv" chunk.
package codec

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"

	"dumpreader/internal/directory"
)

// reader adapts a decompressor's io.Reader plus the underlying file's
// Close to the directory.File interface.
type reader struct {
	io.Reader
	closers []io.Closer
}

func (r *reader) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Wrap inspects extension (without the leading dot, e.g. "zst", "gz",
// "tsv") and returns a directory.File that transparently decompresses
// f's contents if the extension names a known codec; otherwise it
// returns f unchanged.
func Wrap(f directory.File, extension string) (directory.File, error) {
	switch strings.ToLower(extension) {
	case "zst", "zstd":
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("codec: open zstd stream: %w", err)
		}
		rc := dec.IOReadCloser()
		return &reader{Reader: rc, closers: []io.Closer{rc, f}}, nil
	case "gz", "gzip":
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("codec: open gzip stream: %w", err)
		}
		return &reader{Reader: gz, closers: []io.Closer{gz, f}}, nil
	default:
		return f, nil
	}
}
