// Package workqueue exposes the four non-blocking producer operations a
// worker pool calls to get its next unit of work: schema DDL, a table
// data chunk, a deferred index batch, or a table analyze.
package workqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dumpreader/internal/classify"
	"dumpreader/internal/directory"
	"dumpreader/internal/directory/codec"
	"dumpreader/internal/logging"
	"dumpreader/internal/model"
	"dumpreader/internal/scheduler"
)

// SchemaDDL is one schema's worth of DDL work: the schema script plus
// the script of every included view and of every included table that has
// one (HasSQL), each paired with an opened
// file handle the caller owns and must close.
type SchemaDDL struct {
	Schema string
	// HasDDL mirrors the schema's has_sql flag; Script is non-nil only
	// when HasDDL is true.
	HasDDL bool
	Script directory.File
	Tables []EntityScript
	Views  []EntityScript
}

// EntityScript pairs a table or view name with its opened DDL file.
type EntityScript struct {
	Name string
	File directory.File
}

// TableChunk is one dispatched data chunk.
type TableChunk struct {
	Schema      string
	Table       string
	Chunked     bool
	ChunkIndex  int
	ChunksTotal int // 0 means "more may still arrive"
	File        directory.File
	ChunkSize   int64
	Options     map[string]string
}

// DeferredIndexBatch is one table's withheld index statements, ready to
// apply now that its data load is confirmed finished.
type DeferredIndexBatch struct {
	Schema  string
	Table   string
	Indexes []string
}

// TableAnalyze is one table ready for its analyze step.
type TableAnalyze struct {
	Schema     string
	Table      string
	Histograms []model.Histogram
}

// WorkQueue is a thin, stateless-by-design view over a *model.Model and a
// directory.Directory. It holds no work state of its own: every producer
// method derives its answer from the model's current flags.
type WorkQueue struct {
	model *model.Model
	dir   directory.Directory
	log   *slog.Logger
}

// New builds a WorkQueue over m, opening DDL/chunk files through dir.
func New(m *model.Model, dir directory.Directory, log *slog.Logger) *WorkQueue {
	return &WorkQueue{model: m, dir: dir, log: logging.Default(log)}
}

// NextSchema returns the first schema that is ready and has not yet had
// its DDL emitted, opening every included view's script file and the
// script of every table with HasSQL set.
// It sets sql_done so the schema is never re-emitted.
func (q *WorkQueue) NextSchema(ctx context.Context) (SchemaDDL, bool, error) {
	for _, s := range q.model.Schemas() {
		if s.SQLDone || !s.Ready() {
			continue
		}

		out := SchemaDDL{Schema: s.Name, HasDDL: s.HasSQL}
		if s.HasSQL {
			f, err := q.dir.Open(ctx, classify.SchemaScriptName(s.Basename))
			if err != nil {
				return SchemaDDL{}, false, fmt.Errorf("open schema script for %s: %w", s.Name, err)
			}
			out.Script = f
		}
		for _, t := range s.Tables {
			if !t.HasSQL {
				continue
			}
			f, err := q.dir.Open(ctx, classify.TableScriptName(s.Basename, t.Basename))
			if err != nil {
				return SchemaDDL{}, false, fmt.Errorf("open table script for %s.%s: %w", s.Name, t.Name, err)
			}
			out.Tables = append(out.Tables, EntityScript{Name: t.Name, File: f})
		}
		for _, v := range s.Views {
			f, err := q.dir.Open(ctx, classify.ViewScriptName(s.Basename, v.Basename))
			if err != nil {
				return SchemaDDL{}, false, fmt.Errorf("open view script for %s.%s: %w", s.Name, v.Name, err)
			}
			out.Views = append(out.Views, EntityScript{Name: v.Name, File: f})
		}

		s.SQLDone = true
		q.log.Info("schema DDL handed out", "schema", s.Name, "tables", len(out.Tables), "views", len(out.Views))
		return out, true, nil
	}
	return SchemaDDL{}, false, nil
}

// NextTableChunk delegates table selection to package scheduler, then
// opens and returns the selected table's next chunk. inFlight is supplied
// by the caller and reflects bytes currently dispatched but not yet
// reported complete, keyed by model.TableKey.
func (q *WorkQueue) NextTableChunk(ctx context.Context, inFlight scheduler.InFlight) (TableChunk, bool, error) {
	keys := q.model.TablesWithData()
	if len(keys) == 0 {
		return TableChunk{}, false, nil
	}

	candidates := make([]scheduler.Candidate, 0, len(keys))
	for _, key := range keys {
		t, ok := q.model.Table(key)
		if !ok {
			continue
		}
		candidates = append(candidates, scheduler.Candidate{Key: key, BytesAvailable: t.BytesAvailable()})
	}

	picked, ok := scheduler.Pick(candidates, inFlight)
	if !ok {
		return TableChunk{}, false, nil
	}

	schema, ok := q.model.Schema(picked.Key.Schema)
	if !ok {
		return TableChunk{}, false, nil
	}
	t, ok := q.model.Table(picked.Key)
	if !ok {
		return TableChunk{}, false, nil
	}

	idx := t.ChunksConsumed
	size := t.AvailableChunkSizes[idx]
	chunksTotal := 0
	if t.LastChunkSeen {
		chunksTotal = t.NumChunks
	}
	isLast := idx+1 == chunksTotal

	var name string
	if t.Chunked {
		name = classify.ChunkDataName(schema.Basename, t.Basename, idx, t.Extension, isLast)
	} else {
		name = classify.UnchunkedDataName(schema.Basename, t.Basename, t.Extension)
	}

	f, err := q.dir.Open(ctx, name)
	if err != nil {
		return TableChunk{}, false, fmt.Errorf("open chunk %s: %w", name, err)
	}
	f, err = codec.Wrap(f, compressionSuffix(t.Extension))
	if err != nil {
		return TableChunk{}, false, fmt.Errorf("wrap chunk %s: %w", name, err)
	}

	t.ChunksConsumed++
	if !t.HasDataAvailable() {
		q.model.UnmarkTableHasData(picked.Key)
	}

	return TableChunk{
		Schema:      schema.Name,
		Table:       t.Name,
		Chunked:     t.Chunked,
		ChunkIndex:  idx,
		ChunksTotal: chunksTotal,
		File:        f,
		ChunkSize:   size,
		Options:     t.Options,
	}, true, nil
}

// NextDeferredIndex returns the first table whose data load is confirmed
// finished and whose indexes have not yet been handed out. loadFinished
// is supplied by the loader and reports completion per (schema, table).
func (q *WorkQueue) NextDeferredIndex(loadFinished func(schema, table string) bool) (DeferredIndexBatch, bool) {
	for _, s := range q.model.Schemas() {
		for _, t := range s.Tables {
			if !t.DataDone() || t.IndexesDone {
				continue
			}
			if !loadFinished(s.Name, t.Name) {
				continue
			}
			t.IndexesDone = true
			return DeferredIndexBatch{Schema: s.Name, Table: t.Name, Indexes: t.Indexes}, true
		}
	}
	return DeferredIndexBatch{}, false
}

// NextTableAnalyze returns the first table whose data and deferred
// indexes are both done and which has not yet been analyzed.
func (q *WorkQueue) NextTableAnalyze() (TableAnalyze, bool) {
	for _, s := range q.model.Schemas() {
		for _, t := range s.Tables {
			if !t.DataDone() || !t.IndexesDone || t.AnalyzeDone {
				continue
			}
			t.AnalyzeDone = true
			return TableAnalyze{Schema: s.Name, Table: t.Name, Histograms: t.Histograms}, true
		}
	}
	return TableAnalyze{}, false
}

// DataAvailable reports whether any table currently has undispatched chunks.
func (q *WorkQueue) DataAvailable() bool {
	return q.model.DataAvailable()
}

// WorkAvailable reports whether any table still needs its analyze step.
func (q *WorkQueue) WorkAvailable() bool {
	return q.model.WorkAvailable()
}

// compressionSuffix extracts a trailing codec token from a manifest
// extension value like "tsv.zst", returning "" for an uncompressed
// extension like "tsv" or "csv" so codec.Wrap passes the file through.
func compressionSuffix(extension string) string {
	idx := strings.LastIndexByte(extension, '.')
	if idx < 0 {
		return ""
	}
	return extension[idx+1:]
}
