// Package scanner implements the incremental, idempotent directory scan
// that classifies dump files and mutates the EntityModel as they appear.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"dumpreader/internal/classify"
	"dumpreader/internal/directory"
	"dumpreader/internal/logging"
	"dumpreader/internal/manifest"
	"dumpreader/internal/model"
)

// Filter decides which schemas and tables a scan includes. It is an
// external collaborator: the scanner only ever consults it, never
// constructs one.
type Filter interface {
	IncludeSchema(schema string) bool
	IncludeTable(schema, table string) bool
}

// AllowAll is a Filter that excludes nothing. Useful as a default and in
// tests.
type AllowAll struct{}

func (AllowAll) IncludeSchema(string) bool     { return true }
func (AllowAll) IncludeTable(string, string) bool { return true }

// Scanner performs the three-pass incremental scan (dump level, then
// metadata, then data) against one Directory. It holds no entity state
// itself — all mutation lands on the *model.Model passed to Rescan.
type Scanner struct {
	dir    directory.Directory
	filter Filter
	log    *slog.Logger
}

// New builds a Scanner over dir, filtering entities through filter. A nil
// logger discards.
func New(dir directory.Directory, filter Filter, log *slog.Logger) *Scanner {
	if filter == nil {
		filter = AllowAll{}
	}
	return &Scanner{dir: dir, filter: filter, log: logging.Default(log)}
}

// Rescan applies one incremental pass over listing (filename → size) to m.
// It never rereads a file already classified and never regresses a flag.
// Calling Rescan twice with the same listing is a no-op past the first
// call.
func (s *Scanner) Rescan(ctx context.Context, listing map[string]int64, m *model.Model) error {
	if err := s.scanDumpLevel(ctx, listing, m); err != nil {
		return fmt.Errorf("scan dump level: %w", err)
	}
	if err := s.scanMetadata(ctx, listing, m); err != nil {
		return fmt.Errorf("scan metadata: %w", err)
	}
	if err := s.scanData(ctx, listing, m); err != nil {
		return fmt.Errorf("scan data: %w", err)
	}

	if m.Dump.Status == model.StatusComplete && !m.AllSchemasReady() {
		panic("scanner: dump transitioned to COMPLETE with a schema not ready")
	}
	return nil
}

func (s *Scanner) scanDumpLevel(ctx context.Context, listing map[string]int64, m *model.Model) error {
	d := m.Dump

	if !d.PreambleLoaded {
		if _, ok := listing[classify.DumpPreambleName]; ok {
			data, err := directory.Slurp(ctx, s.dir, classify.DumpPreambleName)
			if err != nil {
				return err
			}
			d.Preamble = string(data)
			d.PreambleLoaded = true
		}
	}
	if !d.PostambleLoaded {
		if _, ok := listing[classify.DumpPostambleName]; ok {
			data, err := directory.Slurp(ctx, s.dir, classify.DumpPostambleName)
			if err != nil {
				return err
			}
			d.Postamble = string(data)
			d.PostambleLoaded = true
		}
	}
	if !d.UsersLoaded {
		if _, ok := listing[classify.UsersScriptName]; ok {
			data, err := directory.Slurp(ctx, s.dir, classify.UsersScriptName)
			if err != nil {
				return err
			}
			d.Users = string(data)
			d.UsersLoaded = true
		}
	}

	if d.Status == model.StatusComplete {
		return nil
	}

	present := false
	if _, ok := listing[classify.DumpTerminatorName]; ok {
		present = true
	}
	var data []byte
	if present {
		var err error
		data, err = directory.Slurp(ctx, s.dir, classify.DumpTerminatorName)
		if err != nil {
			return err
		}
	}

	term, outcome, err := manifest.ParseTerminator(present, data)
	switch outcome {
	case manifest.TerminatorNotYet:
		return nil
	case manifest.TerminatorMalformed:
		return err
	case manifest.TerminatorFound:
		if err != nil && !errors.Is(err, manifest.ErrTerminatorIncomplete) {
			return err
		}
		if err != nil {
			s.log.Warn("terminator manifest incomplete, falling back to running dump size", "error", err)
		}
		d.SizeIncomplete = term.Incomplete
		d.DataSize = term.DataBytes
		if term.TableDataBytes != nil {
			d.TableDataSize = make(map[model.TableKey]int64, len(m.Schemas()))
			for schema, tables := range term.TableDataBytes {
				for table, size := range tables {
					d.TableDataSize[model.TableKey{Schema: schema, Table: table}] = size
				}
			}
		}
		d.Status = model.StatusComplete
	}
	return nil
}
