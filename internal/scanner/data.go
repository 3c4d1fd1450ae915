package scanner

import (
	"context"

	"dumpreader/internal/classify"
	"dumpreader/internal/model"
)

func (s *Scanner) scanData(ctx context.Context, listing map[string]int64, m *model.Model) error {
	for _, schema := range m.Schemas() {
		for _, t := range schema.Tables {
			s.scanTableData(listing, m, schema, t)
		}
	}
	return nil
}

func (s *Scanner) scanTableData(listing map[string]int64, m *model.Model, schema *model.Schema, t *model.Table) {
	if !t.HasData || t.LastChunkSeen {
		return
	}
	key := model.TableKey{Schema: schema.Name, Table: t.Name}

	if !t.Chunked {
		name := classify.UnchunkedDataName(schema.Basename, t.Basename, t.Extension)
		size, ok := listing[name]
		if !ok {
			return
		}
		t.NumChunks = 1
		t.AvailableChunkSizes = append(t.AvailableChunkSizes, size)
		t.LastChunkSeen = true
		m.Dump.DumpSize += size
		m.MarkTableHasData(key)
		return
	}

	// Chunked tables: probe strictly in order starting at num_chunks,
	// non-final naming first, then the final-marker naming. Stop at the
	// first gap. A bounded one-step lookahead past the gap distinguishes
	// "dump still writing" from "dumper wrote chunks out of order" for
	// diagnostics, without ever advancing num_chunks past the gap.
	for {
		idx := t.NumChunks
		nonFinal := classify.ChunkDataName(schema.Basename, t.Basename, idx, t.Extension, false)
		final := classify.ChunkDataName(schema.Basename, t.Basename, idx, t.Extension, true)

		if size, ok := listing[nonFinal]; ok {
			t.NumChunks++
			t.AvailableChunkSizes = append(t.AvailableChunkSizes, size)
			m.Dump.DumpSize += size
			m.MarkTableHasData(key)
			continue
		}
		if size, ok := listing[final]; ok {
			t.NumChunks++
			t.AvailableChunkSizes = append(t.AvailableChunkSizes, size)
			t.LastChunkSeen = true
			m.Dump.DumpSize += size
			m.MarkTableHasData(key)
			return
		}

		s.warnIfOutOfOrder(listing, schema, t, idx)
		return
	}
}

func (s *Scanner) warnIfOutOfOrder(listing map[string]int64, schema *model.Schema, t *model.Table, gapIdx int) {
	lookNonFinal := classify.ChunkDataName(schema.Basename, t.Basename, gapIdx+1, t.Extension, false)
	lookFinal := classify.ChunkDataName(schema.Basename, t.Basename, gapIdx+1, t.Extension, true)
	if _, ok := listing[lookNonFinal]; ok {
		s.log.Warn("chunk observed out of order, withholding until gap fills",
			"schema", schema.Name, "table", t.Name, "missing_index", gapIdx, "observed_index", gapIdx+1)
		return
	}
	if _, ok := listing[lookFinal]; ok {
		s.log.Warn("final chunk observed out of order, withholding until gap fills",
			"schema", schema.Name, "table", t.Name, "missing_index", gapIdx, "observed_index", gapIdx+1)
	}
}
