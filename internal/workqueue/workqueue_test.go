package workqueue

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"testing"

	"dumpreader/internal/directory"
	"dumpreader/internal/model"
	"dumpreader/internal/scheduler"
)

type memDirectory struct {
	files map[string][]byte
}

func newMemDirectory() *memDirectory { return &memDirectory{files: make(map[string][]byte)} }

func (d *memDirectory) put(name string, size int64) {
	d.files[name] = bytes.Repeat([]byte{'x'}, int(size))
}

func (d *memDirectory) ListFiles(ctx context.Context) ([]directory.FileInfo, error) { return nil, nil }

func (d *memDirectory) Open(ctx context.Context, name string) (directory.File, error) {
	data, ok := d.files[name]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (d *memDirectory) FullPath() string { return "mem://test" }

func buildReadyTable(m *model.Model) (*model.Schema, *model.Table) {
	s := m.EnsureSchema("sakila")
	s.MDLoaded = true
	s.Basename = "sakila"
	t := m.EnsureTable(s, "actor")
	t.Basename = "actor"
	t.Extension = "tsv"
	t.Chunked = true
	t.HasData = true
	t.MDSeen = true
	return s, t
}

func TestNextSchemaGatesOnReadiness(t *testing.T) {
	dir := newMemDirectory()
	m := model.New()
	s, tb := buildReadyTable(m)
	tb.HasSQL = true

	q := New(m, dir, nil)

	if _, ok, err := q.NextSchema(context.Background()); ok || err != nil {
		t.Fatalf("NextSchema should withhold schema while table.SQLSeen is false: ok=%v err=%v", ok, err)
	}

	dir.put("sakila@actor.sql", 10)
	tb.SQLSeen = true

	got, ok, err := q.NextSchema(context.Background())
	if err != nil || !ok {
		t.Fatalf("NextSchema after table DDL observed: ok=%v err=%v", ok, err)
	}
	if got.Schema != "sakila" || len(got.Tables) != 1 {
		t.Fatalf("got = %+v", got)
	}
	got.Tables[0].File.(io.Closer).Close()

	if _, ok, _ := q.NextSchema(context.Background()); ok {
		t.Fatal("NextSchema must not re-emit a schema once sql_done")
	}
	if !s.SQLDone {
		t.Fatal("SQLDone should be set")
	}
}

func TestNextTableChunkFollowsTailingSingleTableScenario(t *testing.T) {
	dir := newMemDirectory()
	m := model.New()
	_, tb := buildReadyTable(m)

	q := New(m, dir, nil)

	if _, ok, _ := q.NextTableChunk(context.Background(), nil); ok {
		t.Fatal("no chunks observed yet, should return nothing")
	}

	dir.put("sakila@actor@0.tsv", 100)
	tb.NumChunks = 1
	tb.AvailableChunkSizes = []int64{100}
	m.MarkTableHasData(model.TableKey{Schema: "sakila", Table: "actor"})

	chunk, ok, err := q.NextTableChunk(context.Background(), nil)
	if err != nil || !ok {
		t.Fatalf("expected a chunk: ok=%v err=%v", ok, err)
	}
	if chunk.ChunkIndex != 0 || chunk.ChunksTotal != 0 || chunk.ChunkSize != 100 {
		t.Fatalf("chunk = %+v, want idx=0 total=0(more may arrive) size=100", chunk)
	}
	chunk.File.(io.Closer).Close()

	if _, ok, _ := q.NextTableChunk(context.Background(), nil); ok {
		t.Fatal("no further chunks available yet, should return nothing")
	}

	dir.put("sakila@actor@@1.tsv", 50)
	tb.NumChunks = 2
	tb.AvailableChunkSizes = append(tb.AvailableChunkSizes, 50)
	tb.LastChunkSeen = true
	m.MarkTableHasData(model.TableKey{Schema: "sakila", Table: "actor"})

	chunk, ok, err = q.NextTableChunk(context.Background(), nil)
	if err != nil || !ok {
		t.Fatalf("expected the final chunk: ok=%v err=%v", ok, err)
	}
	if chunk.ChunkIndex != 1 || chunk.ChunksTotal != 2 || chunk.ChunkSize != 50 {
		t.Fatalf("chunk = %+v, want idx=1 total=2 size=50", chunk)
	}
	chunk.File.(io.Closer).Close()

	if q.DataAvailable() {
		t.Fatal("data_available should be false once all observed chunks are dispatched")
	}
	if !q.WorkAvailable() {
		t.Fatal("work_available should be true: data done, analyze not done")
	}
}

func TestNextTableChunkUsesScheduler(t *testing.T) {
	dir := newMemDirectory()
	m := model.New()
	s := m.EnsureSchema("sakila")
	s.MDLoaded = true

	mkTable := func(name string, size int64) {
		tb := m.EnsureTable(s, name)
		tb.Basename = name
		tb.Extension = "tsv"
		tb.HasData = true
		tb.MDSeen = true
		tb.NumChunks = 1
		tb.LastChunkSeen = true
		tb.AvailableChunkSizes = []int64{size}
		dir.put("sakila@"+name+"@@0.tsv", size)
		tb.Chunked = true
		m.MarkTableHasData(model.TableKey{Schema: "sakila", Table: name})
	}
	mkTable("a", 900)
	mkTable("b", 100)
	mkTable("c", 100)

	q := New(m, dir, nil)
	inFlight := scheduler.InFlight{{Schema: "sakila", Table: "a"}: 500}

	chunk, ok, err := q.NextTableChunk(context.Background(), inFlight)
	if err != nil || !ok {
		t.Fatalf("NextTableChunk: ok=%v err=%v", ok, err)
	}
	chunk.File.(io.Closer).Close()
	if chunk.Table == "a" {
		t.Fatalf("scheduler should have preferred an idle table over A, got %+v", chunk)
	}
}

func TestDeferredIndexAndAnalyzeOrdering(t *testing.T) {
	m := model.New()
	_, tb := buildReadyTable(m)
	tb.NumChunks = 1
	tb.LastChunkSeen = true
	tb.ChunksConsumed = 1
	tb.Indexes = []string{"ADD INDEX i1 (a)"}

	q := New(m, nil, nil)

	finished := false
	if _, ok := q.NextDeferredIndex(func(schema, table string) bool { return finished }); ok {
		t.Fatal("NextDeferredIndex must wait for load_finished")
	}

	finished = true
	batch, ok := q.NextDeferredIndex(func(schema, table string) bool { return finished })
	if !ok || batch.Table != "actor" || len(batch.Indexes) != 1 {
		t.Fatalf("batch = %+v, ok=%v", batch, ok)
	}

	if _, ok := q.NextDeferredIndex(func(string, string) bool { return true }); ok {
		t.Fatal("NextDeferredIndex must fire at most once per table")
	}

	analyze, ok := q.NextTableAnalyze()
	if !ok || analyze.Table != "actor" {
		t.Fatalf("analyze = %+v, ok=%v", analyze, ok)
	}
	if _, ok := q.NextTableAnalyze(); ok {
		t.Fatal("NextTableAnalyze must fire at most once per table")
	}
}

func TestNextTableChunkTransparentlyDecompressesGzipExtension(t *testing.T) {
	dir := newMemDirectory()
	m := model.New()
	s, tb := buildReadyTable(m)
	tb.Extension = "tsv.gz"
	tb.Chunked = false

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("1\tpenelope\n"))
	gz.Close()
	name := "sakila@actor.tsv.gz"
	dir.files[name] = buf.Bytes()
	tb.NumChunks = 1
	tb.LastChunkSeen = true
	tb.AvailableChunkSizes = []int64{int64(buf.Len())}
	m.MarkTableHasData(model.TableKey{Schema: s.Name, Table: tb.Name})

	q := New(m, dir, nil)
	chunk, ok, err := q.NextTableChunk(context.Background(), scheduler.InFlight{})
	if err != nil || !ok {
		t.Fatalf("NextTableChunk: ok=%v err=%v", ok, err)
	}
	defer chunk.File.Close()

	data, err := io.ReadAll(chunk.File)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "1\tpenelope\n" {
		t.Fatalf("data = %q, want decompressed tsv content", data)
	}
}

func TestNextTableAnalyzeWithheldUntilIndexesDone(t *testing.T) {
	m := model.New()
	_, tb := buildReadyTable(m)
	tb.NumChunks = 1
	tb.LastChunkSeen = true
	tb.ChunksConsumed = 1

	q := New(m, nil, nil)
	if _, ok := q.NextTableAnalyze(); ok {
		t.Fatal("analyze must not fire before indexes_done")
	}
}
