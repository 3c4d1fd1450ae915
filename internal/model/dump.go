package model

// Status is the dump's overall lifecycle state.
type Status int

const (
	// StatusDumping means the terminator manifest has not yet been observed.
	StatusDumping Status = iota
	// StatusComplete means the terminator manifest was observed and parsed.
	StatusComplete
)

func (s Status) String() string {
	if s == StatusComplete {
		return "COMPLETE"
	}
	return "DUMPING"
}

// Dump is the root entity: dump-wide metadata plus the authoritative or
// running size accounting.
type Dump struct {
	Version          string
	ServerVersion    string
	DefaultCharset   string
	GTIDExecuted     string
	TZUTC            bool
	MDSCompatibility bool
	Status           Status

	Preamble       string
	PreambleLoaded bool
	Postamble      string
	PostambleLoaded bool
	Users          string
	UsersLoaded    bool

	// DataSize is authoritative once Status == StatusComplete (from the
	// terminator's dataBytes field).
	DataSize int64

	// TableDataSize is authoritative once Status == StatusComplete (from
	// the terminator's tableDataBytes map).
	TableDataSize map[TableKey]int64

	// SizeIncomplete is set when the terminator was found but missing
	// dataBytes or tableDataBytes (manifest.ErrTerminatorIncomplete).
	// EffectiveDataSize falls back to DumpSize while this is set.
	SizeIncomplete bool

	// DumpSize is the running total counted from observed chunk file
	// sizes while DUMPING; it never decreases and equals DataSize (modulo
	// filtered-out entities) once COMPLETE.
	DumpSize int64

	// SchemaBasenames maps a schema's logical name to its file-name stem,
	// as recorded in the root manifest's "basenames" field. Schemas
	// without an entry use their own name as the basename.
	SchemaBasenames map[string]string
}

// EffectiveDataSize returns DataSize once it is trustworthy, falling back
// to the running DumpSize while the terminator is absent or incomplete.
func (d *Dump) EffectiveDataSize() int64 {
	if d.Status != StatusComplete || d.SizeIncomplete {
		return d.DumpSize
	}
	return d.DataSize
}
