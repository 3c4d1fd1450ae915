package model

// Histogram is a column histogram carried in a table manifest, handed
// unopened to the loader at analyze time.
type Histogram struct {
	Column  string
	Buckets any
}

// Table is one dump table: its manifest/DDL readiness, its chunk
// accounting, and the deferred work (indexes, analyze) the work queue
// hands out once data loading finishes.
type Table struct {
	Schema string
	Name   string

	Basename string

	HasSQL  bool
	HasData bool

	MDSeen  bool
	SQLSeen bool

	HasTriggers bool
	Extension   string
	Chunked     bool

	// NumChunks is the count of chunk files observed so far. It only
	// increases, and only via the scanner's data-descent pass.
	NumChunks int

	// LastChunkSeen is set once the final-marker chunk file (or the
	// single unchunked data file) has been observed.
	LastChunkSeen bool

	// AvailableChunkSizes holds the byte size of each observed chunk,
	// indexed by chunk index.
	AvailableChunkSizes []int64

	// ChunksConsumed is how many leading chunks have been handed out by
	// WorkQueue.NextTableChunk. It only increases, and only via that call.
	ChunksConsumed int

	PrimaryIndex string
	Options      map[string]string
	Histograms   []Histogram

	// Indexes holds the non-foreign-key DDL statements deferred until
	// after bulk loading. FK statements live on the owning Schema's
	// FKQueries instead (package ddl moves them there).
	Indexes     []string
	IndexesDone bool
	AnalyzeDone bool
}

// Ready reports whether this table's prerequisite manifests/scripts have
// been observed. It does not require data to be fully loaded — only that
// the metadata needed to start loading exists.
func (t *Table) Ready() bool {
	if t.HasData && !t.MDSeen {
		return false
	}
	if t.HasSQL && !t.SQLSeen {
		return false
	}
	return true
}

// DataDone reports whether every chunk this table will ever have has been
// observed and dispatched.
func (t *Table) DataDone() bool {
	return t.LastChunkSeen && t.ChunksConsumed == t.NumChunks
}

// BytesAvailable sums the sizes of chunks observed but not yet dispatched.
func (t *Table) BytesAvailable() int64 {
	var total int64
	for i := t.ChunksConsumed; i < len(t.AvailableChunkSizes) && i < t.NumChunks; i++ {
		total += t.AvailableChunkSizes[i]
	}
	return total
}

// HasDataAvailable reports whether at least one observed chunk has not yet
// been dispatched.
func (t *Table) HasDataAvailable() bool {
	return t.ChunksConsumed < t.NumChunks
}
