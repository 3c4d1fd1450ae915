// Package model holds the in-memory Dump/Schema/Table/View tree that the
// scanner mutates and the work queue reads from.
//
// Model is not safe for concurrent mutation. The scanner writes it during
// Scanner.Rescan, and the WorkQueue handout methods also update
// consumption flags on it; WorkQueue holds no lock, so callers serialize
// rescans and handouts themselves.
package model

import "sort"

// TableKey identifies a table by its logical (schema, table) name pair.
// tablesWithData is a weak, non-owning index into Model.tables keyed this
// way — a flat key set rather than a back-pointer, per the design note on
// avoiding raw ownership-sharing references into owned records.
type TableKey struct {
	Schema string
	Table  string
}

// Model is the owned tree of one dump's entities.
type Model struct {
	Dump *Dump

	schemas      map[string]*Schema
	schemaOrder  []string
	tables       map[TableKey]*Table
	views        map[TableKey]*View
	tablesWithData map[TableKey]struct{}
}

// New creates an empty Model around a freshly constructed Dump.
func New() *Model {
	return &Model{
		Dump:           &Dump{Status: StatusDumping, TableDataSize: make(map[TableKey]int64)},
		schemas:        make(map[string]*Schema),
		tables:         make(map[TableKey]*Table),
		views:          make(map[TableKey]*View),
		tablesWithData: make(map[TableKey]struct{}),
	}
}

// Schema returns the schema with the given name, if included and seen.
func (m *Model) Schema(name string) (*Schema, bool) {
	s, ok := m.schemas[name]
	return s, ok
}

// Schemas returns all included schemas in first-sight order.
func (m *Model) Schemas() []*Schema {
	out := make([]*Schema, 0, len(m.schemaOrder))
	for _, name := range m.schemaOrder {
		out = append(out, m.schemas[name])
	}
	return out
}

// EnsureSchema returns the existing schema shell for name, creating an
// unloaded shell (MDLoaded=false) on first sight.
func (m *Model) EnsureSchema(name string) *Schema {
	if s, ok := m.schemas[name]; ok {
		return s
	}
	s := &Schema{Name: name, Basename: name}
	m.schemas[name] = s
	m.schemaOrder = append(m.schemaOrder, name)
	return s
}

// Table returns the table at key, if included and seen.
func (m *Model) Table(key TableKey) (*Table, bool) {
	t, ok := m.tables[key]
	return t, ok
}

// EnsureTable returns the existing table shell for key, creating one on
// first sight and registering it with the owning schema.
func (m *Model) EnsureTable(schema *Schema, name string) *Table {
	key := TableKey{Schema: schema.Name, Table: name}
	if t, ok := m.tables[key]; ok {
		return t
	}
	t := &Table{
		Schema:    schema.Name,
		Name:      name,
		Basename:  name,
		Extension: "tsv",
		HasSQL:    schema.HasSQL,
		HasData:   schema.HasData,
	}
	m.tables[key] = t
	schema.Tables = append(schema.Tables, t)
	return t
}

// View returns the view at key, if included and seen.
func (m *Model) View(key TableKey) (*View, bool) {
	v, ok := m.views[key]
	return v, ok
}

// EnsureView returns the existing view shell for key, creating one on
// first sight and registering it with the owning schema.
func (m *Model) EnsureView(schema *Schema, name string) *View {
	key := TableKey{Schema: schema.Name, Table: name}
	if v, ok := m.views[key]; ok {
		return v
	}
	v := &View{Schema: schema.Name, Name: name, Basename: name}
	m.views[key] = v
	schema.Views = append(schema.Views, v)
	return v
}

// MarkTableHasData inserts key into the weak tables-with-data set. It is a
// no-op if already present.
func (m *Model) MarkTableHasData(key TableKey) {
	m.tablesWithData[key] = struct{}{}
}

// UnmarkTableHasData removes key from the weak tables-with-data set. It is
// a no-op if absent.
func (m *Model) UnmarkTableHasData(key TableKey) {
	delete(m.tablesWithData, key)
}

// TablesWithData returns a deterministically ordered snapshot of the
// tables-with-data set. Order is sorted by key purely so tests are
// reproducible; any stable tie-break is acceptable to callers.
func (m *Model) TablesWithData() []TableKey {
	out := make([]TableKey, 0, len(m.tablesWithData))
	for k := range m.tablesWithData {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Schema != out[j].Schema {
			return out[i].Schema < out[j].Schema
		}
		return out[i].Table < out[j].Table
	})
	return out
}

// FilteredDataSize sums Dump.TableDataSize over the tables that survived
// the Filter, i.e. the ones actually present in m.tables. Schemas/tables
// the filter excluded never get an EnsureSchema/EnsureTable call, so a
// terminator entry for a key absent from m.tables is an excluded table
// and is not counted.
func (m *Model) FilteredDataSize() int64 {
	var total int64
	for key, size := range m.Dump.TableDataSize {
		if _, ok := m.tables[key]; ok {
			total += size
		}
	}
	return total
}

// DataAvailable reports whether any table currently has undispatched chunks.
func (m *Model) DataAvailable() bool {
	return len(m.tablesWithData) > 0
}

// AllSchemasReady reports whether every included schema is ready. Used by
// the scanner to guard against marking a dump COMPLETE while any schema,
// table, or view is still missing metadata or DDL.
func (m *Model) AllSchemasReady() bool {
	for _, name := range m.schemaOrder {
		if !m.schemas[name].Ready() {
			return false
		}
	}
	return true
}

// WorkAvailable reports whether any table still needs its analyze step.
func (m *Model) WorkAvailable() bool {
	for _, name := range m.schemaOrder {
		for _, t := range m.schemas[name].Tables {
			if t.DataDone() && !t.AnalyzeDone {
				return true
			}
		}
	}
	return false
}
