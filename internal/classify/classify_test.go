package classify

import "testing"

func TestClassifyDumpRoot(t *testing.T) {
	cases := []struct {
		name string
		want Kind
	}{
		{"@.json", KindDumpManifest},
		{"@.done.json", KindDumpTerminator},
		{"@.sql", KindDumpPreamble},
		{"@.post.sql", KindDumpPostamble},
		{"@.users.sql", KindUsersScript},
	}
	for _, c := range cases {
		got, ok := ClassifyDumpRoot(c.name)
		if !ok || got != c.want {
			t.Errorf("ClassifyDumpRoot(%q) = %v, %v; want %v, true", c.name, got, ok, c.want)
		}
	}

	if _, ok := ClassifyDumpRoot("sakila.json"); ok {
		t.Error("ClassifyDumpRoot(sakila.json) should not match a dump-root name")
	}
}

func TestConstructedNamesRoundTripThroughClassify(t *testing.T) {
	name := SchemaManifestName("sakila")
	c, ok := Classify(name)
	if !ok || c.Kind != KindSchemaManifest || c.SchemaBasename != "sakila" {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = TableManifestName("sakila", "actor")
	c, ok = Classify(name)
	if !ok || c.Kind != KindTableManifest || c.SchemaBasename != "sakila" || c.EntityBasename != "actor" {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = TableTriggersName("sakila", "actor")
	c, ok = Classify(name)
	if !ok || c.Kind != KindTableTriggers || c.EntityBasename != "actor" {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = ViewPreScriptName("sakila", "actor_info")
	c, ok = Classify(name)
	if !ok || c.Kind != KindViewPreScript || c.EntityBasename != "actor_info" {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = UnchunkedDataName("sakila", "actor", "tsv")
	c, ok = Classify(name)
	if !ok || c.Kind != KindTableData || c.HasIndex || c.Extension != "tsv" {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = ChunkDataName("sakila", "actor", 0, "tsv", false)
	c, ok = Classify(name)
	if !ok || c.Kind != KindTableData || !c.HasIndex || c.Last || c.Index != 0 {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}

	name = ChunkDataName("sakila", "actor", 1, "tsv", true)
	c, ok = Classify(name)
	if !ok || c.Kind != KindTableData || !c.HasIndex || !c.Last || c.Index != 1 {
		t.Fatalf("Classify(%q) = %+v, %v", name, c, ok)
	}
}

func TestClassifyTableScript(t *testing.T) {
	c, ok := Classify("sakila@actor.sql")
	if !ok || c.Kind != KindTableScript || c.SchemaBasename != "sakila" || c.EntityBasename != "actor" {
		t.Fatalf("Classify(sakila@actor.sql) = %+v, %v", c, ok)
	}
}

func TestClassifySchemaFiles(t *testing.T) {
	c, ok := Classify("sakila.json")
	if !ok || c.Kind != KindSchemaManifest || c.SchemaBasename != "sakila" {
		t.Fatalf("Classify(sakila.json) = %+v, %v", c, ok)
	}

	c, ok = Classify("sakila.sql")
	if !ok || c.Kind != KindSchemaScript || c.SchemaBasename != "sakila" {
		t.Fatalf("Classify(sakila.sql) = %+v, %v", c, ok)
	}
}

func TestClassifyRemappedBasenames(t *testing.T) {
	// Basenames are opaque; classification must not assume they equal
	// any entity name.
	c, ok := Classify("schema_01@table_07@@3.csv")
	if !ok || c.Kind != KindTableData || c.SchemaBasename != "schema_01" || c.EntityBasename != "table_07" || !c.Last || c.Index != 3 {
		t.Fatalf("Classify(schema_01@table_07@@3.csv) = %+v, %v", c, ok)
	}
}

func TestClassifyRejectsGarbage(t *testing.T) {
	for _, name := range []string{"", "noextension", "a@b@c@d@e.tsv", "sakila@actor@@notanumber.tsv"} {
		if _, ok := Classify(name); ok {
			t.Errorf("Classify(%q) unexpectedly succeeded", name)
		}
	}
}
