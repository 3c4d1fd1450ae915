// Package local implements directory.Directory against the local
// filesystem, the common case for a restore run reading a dump staged on
// disk or an NFS mount. Listing is a flat single-directory scan, since a
// dump directory has no subdirectories.
package local

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
)

// Directory lists and opens files under one root path.
type Directory struct {
	root string
	log  *slog.Logger
}

// New builds a Directory rooted at root. A nil logger discards.
func New(root string, log *slog.Logger) *Directory {
	return &Directory{root: root, log: logging.Scoped(log, "directory.local")}
}

// ListFiles returns every regular file directly under root (a dump
// directory is flat: no subdirectories to descend into).
func (d *Directory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", d.root, err)
	}
	out := make([]directory.FileInfo, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, directory.FileInfo{Name: e.Name(), Size: info.Size()})
	}
	return out, nil
}

// Open opens name under root for sequential read.
func (d *Directory) Open(ctx context.Context, name string) (directory.File, error) {
	f, err := os.Open(filepath.Join(d.root, name))
	if err != nil {
		return nil, err
	}
	return f, nil
}

// FullPath returns the absolute root path, diagnostic only.
func (d *Directory) FullPath() string {
	abs, err := filepath.Abs(d.root)
	if err != nil {
		return d.root
	}
	return abs
}

// Watch starts an fsnotify watcher on root and calls onChange (with no
// arguments — the caller always re-lists rather than trusting event
// payloads, since a dumper's writes often arrive as create-then-rename)
// whenever a write, create, or rename touches the directory. It runs
// until ctx is cancelled, then closes the watcher.
func (d *Directory) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher for %s: %w", d.root, err)
	}
	if err := watcher.Add(d.root); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", d.root, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				d.log.Warn("watch error", "root", d.root, "error", err)
			}
		}
	}()
	return nil
}
