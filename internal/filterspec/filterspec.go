// Package filterspec compiles operator-facing glob patterns into the
// scanner.Filter predicate the core consumes. The core never depends on
// this package — filtering policy stays external to it — but a reference
// implementation operators actually configure via the CLI is in scope
// for a complete repository.
package filterspec

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// rule is one compiled pattern: a schema glob, an optional "."-separated
// table glob, and whether it negates (a leading "!").
type rule struct {
	negate     bool
	schemaGlob string
	tableGlob  string // "" means "every table in a matching schema"
}

// Filter compiles a list of patterns into the IncludeSchema/IncludeTable
// predicate pair. Patterns are evaluated in order; the last matching rule
// wins, mirroring gitignore-style precedence. With no patterns at all,
// everything is included.
type Filter struct {
	rules []rule
}

// Compile parses patterns like "sakila.*", "sakila.actor", "*.secret_*",
// or "!sakila.audit_log" (exclude) into a Filter. An empty pattern list
// compiles to a Filter that includes everything.
func Compile(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		r, err := compileOne(p)
		if err != nil {
			return nil, fmt.Errorf("filterspec: compile %q: %w", p, err)
		}
		f.rules = append(f.rules, r)
	}
	return f, nil
}

func compileOne(pattern string) (rule, error) {
	r := rule{}
	if len(pattern) > 0 && pattern[0] == '!' {
		r.negate = true
		pattern = pattern[1:]
	}

	schemaGlob, tableGlob, hasTable := splitOnFirstDot(pattern)
	if !doublestar.ValidatePattern(schemaGlob) {
		return rule{}, fmt.Errorf("invalid schema glob %q", schemaGlob)
	}
	if hasTable && !doublestar.ValidatePattern(tableGlob) {
		return rule{}, fmt.Errorf("invalid table glob %q", tableGlob)
	}

	r.schemaGlob = schemaGlob
	if hasTable {
		r.tableGlob = tableGlob
	}
	return r, nil
}

func splitOnFirstDot(s string) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

// IncludeSchema reports whether schema is included by at least one
// positive rule and not excluded by a later negative one. With no rules
// configured, every schema is included.
func (f *Filter) IncludeSchema(schema string) bool {
	if len(f.rules) == 0 {
		return true
	}
	included := false
	for _, r := range f.rules {
		if r.negate && r.tableGlob != "" {
			// A table-scoped negation removes tables, not the schema.
			continue
		}
		ok, _ := doublestar.Match(r.schemaGlob, schema)
		if !ok {
			continue
		}
		included = !r.negate
	}
	return included
}

// IncludeTable reports whether schema.table is included. A rule with no
// table glob matches every table in a matching schema.
func (f *Filter) IncludeTable(schema, table string) bool {
	if len(f.rules) == 0 {
		return true
	}
	included := false
	for _, r := range f.rules {
		schemaOK, _ := doublestar.Match(r.schemaGlob, schema)
		if !schemaOK {
			continue
		}
		if r.tableGlob != "" {
			tableOK, _ := doublestar.Match(r.tableGlob, table)
			if !tableOK {
				continue
			}
		}
		included = !r.negate
	}
	return included
}
