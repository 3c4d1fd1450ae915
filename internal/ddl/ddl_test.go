package ddl

import (
	"reflect"
	"testing"
)

type fakeSchema struct {
	fkQueries []string
}

func (f *fakeSchema) AppendFKQuery(stmt string) {
	f.fkQueries = append(f.fkQueries, stmt)
}

func TestAddDeferredIndexesSplitsForeignKeys(t *testing.T) {
	schema := &fakeSchema{}
	input := []string{
		"ADD INDEX i1 (a)",
		"ADD CONSTRAINT fk1 FOREIGN KEY (b) REFERENCES u(id)",
		"ADD UNIQUE u1 (c)",
	}

	kept := AddDeferredIndexes(schema, input)

	want := []string{"ADD INDEX i1 (a)", "ADD UNIQUE u1 (c)"}
	if !reflect.DeepEqual(kept, want) {
		t.Fatalf("kept = %v, want %v", kept, want)
	}
	wantFK := []string{"ADD CONSTRAINT fk1 FOREIGN KEY (b) REFERENCES u(id)"}
	if !reflect.DeepEqual(schema.fkQueries, wantFK) {
		t.Fatalf("fkQueries = %v, want %v", schema.fkQueries, wantFK)
	}
}

func TestAddDeferredIndexesIsIdempotent(t *testing.T) {
	schema := &fakeSchema{}
	input := []string{
		"ADD INDEX i1 (a)",
		"ADD CONSTRAINT fk1 FOREIGN KEY (b) REFERENCES u(id)",
	}
	first := AddDeferredIndexes(schema, input)

	schema2 := &fakeSchema{}
	second := AddDeferredIndexes(schema2, first)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-splitting already-split output changed it: %v vs %v", first, second)
	}
	if len(schema2.fkQueries) != 0 {
		t.Fatalf("re-splitting should find no more FK statements, got %v", schema2.fkQueries)
	}
}

func TestAddDeferredIndexesIgnoresForeignKeyInsideStringLiteral(t *testing.T) {
	schema := &fakeSchema{}
	input := []string{"ADD INDEX note (a) COMMENT 'not a FOREIGN KEY here'"}

	kept := AddDeferredIndexes(schema, input)
	if len(kept) != 1 || len(schema.fkQueries) != 0 {
		t.Fatalf("literal text wrongly classified as FK: kept=%v fk=%v", kept, schema.fkQueries)
	}
}

func TestAddDeferredIndexesIsCaseInsensitive(t *testing.T) {
	schema := &fakeSchema{}
	input := []string{"add constraint fk1 foreign key (b) references u(id)"}

	kept := AddDeferredIndexes(schema, input)
	if len(kept) != 0 || len(schema.fkQueries) != 1 {
		t.Fatalf("lowercase FK not detected: kept=%v fk=%v", kept, schema.fkQueries)
	}
}
