package scanner

import (
	"context"
	"fmt"

	"dumpreader/internal/classify"
	"dumpreader/internal/directory"
	"dumpreader/internal/manifest"
	"dumpreader/internal/model"
)

func (s *Scanner) scanMetadata(ctx context.Context, listing map[string]int64, m *model.Model) error {
	for _, schema := range m.Schemas() {
		if !schema.MDLoaded {
			if err := s.loadSchemaManifest(ctx, listing, m, schema); err != nil {
				return err
			}
		}
		if err := s.scanSchemaScripts(ctx, listing, schema); err != nil {
			return err
		}

		for _, t := range schema.Tables {
			if !t.MDSeen {
				if err := s.loadTableManifest(ctx, listing, m.Dump, schema, t); err != nil {
					return err
				}
			}
			if err := s.scanTableScripts(ctx, listing, schema, t); err != nil {
				return err
			}
		}
		for _, v := range schema.Views {
			s.scanViewScripts(listing, schema, v)
		}
	}
	return nil
}

func (s *Scanner) loadSchemaManifest(ctx context.Context, listing map[string]int64, m *model.Model, schema *model.Schema) error {
	name := classify.SchemaManifestName(schema.Basename)
	if _, ok := listing[name]; !ok {
		return nil
	}
	data, err := directory.Slurp(ctx, s.dir, name)
	if err != nil {
		return err
	}
	tree, err := manifest.Parse(name, data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	schema.HasSQL = tree.Bool("includesDdl", true)
	schema.HasData = tree.Bool("includesData", true)
	schema.FunctionNames = tree.StringSlice("functions")
	schema.ProcedureNames = tree.StringSlice("procedures")
	schema.EventNames = tree.StringSlice("events")

	// The schema manifest carries one "basenames" map shared by both its
	// tables and its views.
	basenames := tree.StringMap("basenames")
	schema.TableBasenames = basenames
	schema.ViewBasenames = basenames

	for _, name := range tree.StringSlice("tables") {
		if !s.filter.IncludeTable(schema.Name, name) {
			continue
		}
		t := m.EnsureTable(schema, name)
		if base, ok := basenames[name]; ok {
			t.Basename = base
		}
	}
	for _, name := range tree.StringSlice("views") {
		if !s.filter.IncludeTable(schema.Name, name) {
			continue
		}
		v := m.EnsureView(schema, name)
		if base, ok := basenames[name]; ok {
			v.Basename = base
		}
	}

	schema.MDLoaded = true
	schema.MDDone = true
	return nil
}

func (s *Scanner) loadTableManifest(ctx context.Context, listing map[string]int64, d *model.Dump, schema *model.Schema, t *model.Table) error {
	name := classify.TableManifestName(schema.Basename, t.Basename)
	if _, ok := listing[name]; !ok {
		return nil
	}
	data, err := directory.Slurp(ctx, s.dir, name)
	if err != nil {
		return err
	}
	tree, err := manifest.Parse(name, data)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	t.HasSQL = tree.Bool("includesDdl", true)
	t.HasData = tree.Bool("includesData", true)
	t.Extension = tree.String("extension", "tsv")
	t.Chunked = tree.Bool("chunking", false)

	if raw, ok := tree["histograms"].([]any); ok {
		for _, h := range raw {
			obj, ok := h.(map[string]any)
			if !ok {
				continue
			}
			t.Histograms = append(t.Histograms, model.Histogram{
				Column:  manifest.Tree(obj).String("column", ""),
				Buckets: obj["buckets"],
			})
		}
	}

	options, primaryIndex := normalizeOptions(tree.Object("options"), d.DefaultCharset)
	t.Options = options
	t.PrimaryIndex = primaryIndex

	t.MDSeen = true
	return nil
}

// normalizeOptions drops "compression", renames "defaultCharacterSet" to
// "characterSet" (injecting the dump default if absent), and strips
// "primaryIndex" into its own return value rather than keeping it in the
// options map.
func normalizeOptions(raw manifest.Tree, dumpDefaultCharset string) (options map[string]string, primaryIndex string) {
	options = make(map[string]string, len(raw))
	for key, v := range raw {
		switch key {
		case "compression":
			continue
		case "primaryIndex":
			primaryIndex = stringifyOption(v)
		case "defaultCharacterSet":
			options["characterSet"] = stringifyOption(v)
		default:
			options[key] = stringifyOption(v)
		}
	}
	if _, ok := options["characterSet"]; !ok && dumpDefaultCharset != "" {
		options["characterSet"] = dumpDefaultCharset
	}
	return options, primaryIndex
}

func stringifyOption(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any:
		parts := make([]string, 0, len(val))
		for _, e := range val {
			if s, ok := e.(string); ok {
				parts = append(parts, s)
			} else {
				parts = append(parts, fmt.Sprint(e))
			}
		}
		out := ""
		for i, p := range parts {
			if i > 0 {
				out += ","
			}
			out += p
		}
		return out
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func (s *Scanner) scanSchemaScripts(ctx context.Context, listing map[string]int64, schema *model.Schema) error {
	if !schema.SQLSeen {
		if _, ok := listing[classify.SchemaScriptName(schema.Basename)]; ok {
			schema.SQLSeen = true
		}
	}
	return nil
}

func (s *Scanner) scanTableScripts(ctx context.Context, listing map[string]int64, schema *model.Schema, t *model.Table) error {
	if !t.HasTriggers {
		if _, ok := listing[classify.TableTriggersName(schema.Basename, t.Basename)]; ok {
			t.HasTriggers = true
		}
	}
	if !t.SQLSeen {
		if _, ok := listing[classify.TableScriptName(schema.Basename, t.Basename)]; ok {
			t.SQLSeen = true
		}
	}
	return nil
}

func (s *Scanner) scanViewScripts(listing map[string]int64, schema *model.Schema, v *model.View) {
	if !v.SQLSeen {
		if _, ok := listing[classify.ViewScriptName(schema.Basename, v.Basename)]; ok {
			v.SQLSeen = true
		}
	}
	if !v.SQLPreSeen {
		if _, ok := listing[classify.ViewPreScriptName(schema.Basename, v.Basename)]; ok {
			v.SQLPreSeen = true
		}
	}
}
