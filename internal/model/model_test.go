package model

import "testing"

func TestEnsureSchemaIsIdempotent(t *testing.T) {
	m := New()
	s1 := m.EnsureSchema("sakila")
	s2 := m.EnsureSchema("sakila")
	if s1 != s2 {
		t.Fatal("EnsureSchema should return the same shell on repeat calls")
	}
}

func TestEnsureTableRegistersWithSchema(t *testing.T) {
	m := New()
	s := m.EnsureSchema("sakila")
	tb := m.EnsureTable(s, "actor")

	if len(s.Tables) != 1 || s.Tables[0] != tb {
		t.Fatalf("schema.Tables = %v, want [actor]", s.Tables)
	}
	got, ok := m.Table(TableKey{Schema: "sakila", Table: "actor"})
	if !ok || got != tb {
		t.Fatalf("Table lookup = %v, %v", got, ok)
	}
}

func TestEnsureTableInheritsHasSQLAndHasDataFromSchema(t *testing.T) {
	m := New()
	s := m.EnsureSchema("sakila")
	s.HasSQL = true
	s.HasData = true

	tb := m.EnsureTable(s, "actor")
	if !tb.HasSQL {
		t.Error("EnsureTable should inherit HasSQL from the owning schema")
	}
	if !tb.HasData {
		t.Error("EnsureTable should inherit HasData from the owning schema")
	}
}

func TestTableReadyFormula(t *testing.T) {
	tb := &Table{HasData: true, HasSQL: true}
	if tb.Ready() {
		t.Error("table with HasData and HasSQL but no manifests/scripts seen should not be ready")
	}
	tb.MDSeen = true
	if tb.Ready() {
		t.Error("table still missing SQLSeen should not be ready")
	}
	tb.SQLSeen = true
	if !tb.Ready() {
		t.Error("table with both manifest and script seen should be ready")
	}
}

func TestTableReadyWithoutDataOrSQL(t *testing.T) {
	tb := &Table{}
	if !tb.Ready() {
		t.Error("a table that declares neither data nor SQL should be trivially ready")
	}
}

func TestSchemaReadyRequiresAllTablesAndViews(t *testing.T) {
	s := &Schema{MDLoaded: true}
	s.Tables = append(s.Tables, &Table{HasSQL: true})
	if s.Ready() {
		t.Error("schema should not be ready while a table is not ready")
	}
	s.Tables[0].SQLSeen = true
	if !s.Ready() {
		t.Error("schema should be ready once its only table is ready")
	}

	s.Views = append(s.Views, &View{})
	if s.Ready() {
		t.Error("schema should not be ready while a view is not ready")
	}
	s.Views[0].SQLSeen = true
	s.Views[0].SQLPreSeen = true
	if !s.Ready() {
		t.Error("schema should be ready once its view is also ready")
	}
}

func TestTableDerivedAccessors(t *testing.T) {
	tb := &Table{
		NumChunks:           3,
		LastChunkSeen:       true,
		AvailableChunkSizes: []int64{10, 20, 30},
		ChunksConsumed:      1,
	}
	if tb.DataDone() {
		t.Error("DataDone should be false until all chunks are consumed")
	}
	if got, want := tb.BytesAvailable(), int64(50); got != want {
		t.Errorf("BytesAvailable = %d, want %d", got, want)
	}
	if !tb.HasDataAvailable() {
		t.Error("HasDataAvailable should be true with unconsumed chunks")
	}

	tb.ChunksConsumed = 3
	if !tb.DataDone() {
		t.Error("DataDone should be true once all chunks are consumed and the last chunk seen")
	}
	if tb.HasDataAvailable() {
		t.Error("HasDataAvailable should be false once fully consumed")
	}
}

func TestTablesWithDataIsDeterministicallyOrdered(t *testing.T) {
	m := New()
	m.MarkTableHasData(TableKey{Schema: "b", Table: "z"})
	m.MarkTableHasData(TableKey{Schema: "a", Table: "y"})
	m.MarkTableHasData(TableKey{Schema: "a", Table: "x"})

	got := m.TablesWithData()
	want := []TableKey{
		{Schema: "a", Table: "x"},
		{Schema: "a", Table: "y"},
		{Schema: "b", Table: "z"},
	}
	if len(got) != len(want) {
		t.Fatalf("TablesWithData() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("TablesWithData() = %v, want %v", got, want)
		}
	}
}

func TestUnmarkTableHasData(t *testing.T) {
	m := New()
	key := TableKey{Schema: "sakila", Table: "actor"}
	m.MarkTableHasData(key)
	if !m.DataAvailable() {
		t.Fatal("DataAvailable should be true after marking")
	}
	m.UnmarkTableHasData(key)
	if m.DataAvailable() {
		t.Fatal("DataAvailable should be false after unmarking")
	}
}

func TestAllSchemasReadyAndWorkAvailable(t *testing.T) {
	m := New()
	s := m.EnsureSchema("sakila")
	s.MDLoaded = true
	tb := m.EnsureTable(s, "actor")
	tb.LastChunkSeen = true
	tb.NumChunks = 1
	tb.ChunksConsumed = 1

	if !m.AllSchemasReady() {
		t.Fatal("AllSchemasReady should be true once the only table is ready")
	}
	if !m.WorkAvailable() {
		t.Fatal("WorkAvailable should be true: data done, analyze not done")
	}

	tb.AnalyzeDone = true
	if m.WorkAvailable() {
		t.Fatal("WorkAvailable should be false once the only table has been analyzed")
	}
}
