package model

// Schema is a dump schema and its included tables/views.
type Schema struct {
	Name     string
	Basename string

	HasSQL  bool
	HasData bool

	SQLSeen  bool
	MDLoaded bool

	// MDDone mirrors MDLoaded: the scanner sets both when it reads the
	// per-schema manifest file. Readiness only ever consults MDLoaded;
	// MDDone is retained for manifest fidelity.
	MDDone bool

	// SQLDone is set by WorkQueue.NextSchema once this schema's DDL has
	// been handed to a loader, so it is never re-emitted.
	SQLDone bool

	Tables []*Table
	Views  []*View

	TriggerNames   []string
	FunctionNames  []string
	ProcedureNames []string
	EventNames     []string

	// FKQueries accumulates foreign-key DDL statements split out of each
	// table's Indexes by the ddl package, destined for application after
	// every table's data and indexes are complete.
	FKQueries []string

	// TableBasenames maps a table's logical name to its file-name stem,
	// as recorded in this schema's manifest "basenames" field.
	TableBasenames map[string]string
	// ViewBasenames is the analogous map for views.
	ViewBasenames map[string]string
}

// Ready reports whether this schema and every included table/view is ready.
func (s *Schema) Ready() bool {
	if !s.MDLoaded {
		return false
	}
	if s.HasSQL && !s.SQLSeen {
		return false
	}
	for _, t := range s.Tables {
		if !t.Ready() {
			return false
		}
	}
	for _, v := range s.Views {
		if !v.Ready() {
			return false
		}
	}
	return true
}

// AppendFKQuery adds stmt to FKQueries. It satisfies package ddl's
// SchemaTarget capability, letting the splitter accumulate foreign-key
// statements without holding a back-pointer into this schema.
func (s *Schema) AppendFKQuery(stmt string) {
	s.FKQueries = append(s.FKQueries, stmt)
}
