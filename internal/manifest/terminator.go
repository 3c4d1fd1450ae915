package manifest

import "errors"

// ErrTerminatorIncomplete means the terminator manifest parsed but is
// missing dataBytes or tableDataBytes. This is a non-fatal warning: size
// accessors fall back to the running dump size.
var ErrTerminatorIncomplete = errors.New("manifest: terminator missing dataBytes or tableDataBytes")

// TerminatorOutcome discriminates the three ways reading the terminator
// manifest can go. The source system used exceptions to signal "not yet
// present" during open(); this is the explicit replacement.
type TerminatorOutcome int

const (
	// TerminatorNotYet means the file is absent from the listing: not an
	// error, the dump is (still) DUMPING.
	TerminatorNotYet TerminatorOutcome = iota
	// TerminatorFound means the file was present and parsed.
	TerminatorFound
	// TerminatorMalformed means the file was present but not a JSON object.
	TerminatorMalformed
)

// Terminator is the parsed @.done.json document.
type Terminator struct {
	DataBytes      int64
	TableDataBytes map[string]map[string]int64
	// Incomplete is set when dataBytes or tableDataBytes was missing.
	Incomplete bool
}

// ParseTerminator parses the terminator manifest bytes. present indicates
// whether the file was found in the directory listing at all; when false,
// data is ignored and the outcome is TerminatorNotYet.
func ParseTerminator(present bool, data []byte) (Terminator, TerminatorOutcome, error) {
	if !present {
		return Terminator{}, TerminatorNotYet, nil
	}

	tree, err := Parse("@.done.json", data)
	if err != nil {
		return Terminator{}, TerminatorMalformed, err
	}

	term := Terminator{}
	dataBytes, hasData := tree["dataBytes"]
	tableBytesTree := tree.Object("tableDataBytes")

	if hasData {
		if f, ok := dataBytes.(float64); ok {
			term.DataBytes = int64(f)
		} else {
			term.Incomplete = true
		}
	} else {
		term.Incomplete = true
	}

	if tableBytesTree == nil {
		term.Incomplete = true
	} else {
		term.TableDataBytes = make(map[string]map[string]int64, len(tableBytesTree))
		for schema, v := range tableBytesTree {
			inner, ok := v.(map[string]any)
			if !ok {
				continue
			}
			tables := make(map[string]int64, len(inner))
			for table, raw := range inner {
				if f, ok := raw.(float64); ok {
					tables[table] = int64(f)
				}
			}
			term.TableDataBytes[schema] = tables
		}
	}

	if term.Incomplete {
		return term, TerminatorFound, ErrTerminatorIncomplete
	}
	return term, TerminatorFound, nil
}
