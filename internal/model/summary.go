package model

// DumpSummary is a read-only snapshot of restore progress, derived
// entirely from the current Model — it adds no state of its own. It
// backs the status CLI command and embedders that want one call instead
// of polling WorkQueue.
type DumpSummary struct {
	Status Status

	SchemaCount int
	TableCount  int
	ViewCount   int

	// SchemasReady/TablesReady count entities whose Ready() is true.
	SchemasReady int
	TablesReady  int

	// BytesObserved is the running total of chunk bytes the scanner has
	// seen so far (Dump.DumpSize).
	BytesObserved int64

	// BytesAuthoritative is Dump.EffectiveDataSize(): the terminator's
	// dataBytes once trustworthy, else the same running total.
	BytesAuthoritative int64

	// BytesFiltered is Model.FilteredDataSize(): the terminator's
	// per-table byte counts summed over tables that survived the Filter,
	// once the terminator has reported per-table sizes at all.
	BytesFiltered int64

	// TablesWithPendingData counts tables holding observed-but-undispatched chunks.
	TablesWithPendingData int

	// TablesAwaitingAnalyze counts tables whose data is done but whose
	// ANALYZE step has not yet been handed out; index state is not
	// consulted.
	TablesAwaitingAnalyze int
}

// Summarize builds a DumpSummary from the current state of m.
func (m *Model) Summarize() DumpSummary {
	sum := DumpSummary{
		Status:                m.Dump.Status,
		BytesObserved:         m.Dump.DumpSize,
		BytesAuthoritative:    m.Dump.EffectiveDataSize(),
		BytesFiltered:         m.FilteredDataSize(),
		TablesWithPendingData: len(m.tablesWithData),
	}

	for _, name := range m.schemaOrder {
		s := m.schemas[name]
		sum.SchemaCount++
		if s.Ready() {
			sum.SchemasReady++
		}
		sum.TableCount += len(s.Tables)
		sum.ViewCount += len(s.Views)
		for _, t := range s.Tables {
			if t.Ready() {
				sum.TablesReady++
			}
			if t.DataDone() && !t.AnalyzeDone {
				sum.TablesAwaitingAnalyze++
			}
		}
	}

	return sum
}
