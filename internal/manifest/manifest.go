// Package manifest provides typed, defaulted access over the generic tree
// value a JSON decode of a manifest document yields. Parsing the bytes
// into that generic tree is this package's only concern — walking the
// tree into domain objects (Dump/Schema/Table/View) is the scanner's job.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformed means a manifest's top-level JSON value is not an object.
// This is fatal: the caller must abort open/rescan.
var ErrMalformed = errors.New("manifest: top-level value is not an object")

// Tree is the generic tree value an external parser hands back: a decoded
// JSON object. Values are any of nil, bool, float64, string, []any, or
// map[string]any, per encoding/json's default decoding.
type Tree map[string]any

// Parse decodes data as a JSON object. It returns ErrMalformed, wrapped
// with the source name, if the top-level value is not an object (or the
// bytes are not valid JSON at all).
func Parse(source string, data []byte) (Tree, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", source, ErrMalformed, err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse %s: %w", source, ErrMalformed)
	}
	return Tree(obj), nil
}

// String returns the string at key, or def if absent or not a string.
func (t Tree) String(key, def string) string {
	if v, ok := t[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool at key, or def if absent or not a bool.
func (t Tree) Bool(key string, def bool) bool {
	if v, ok := t[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int64 returns the integer at key (JSON numbers decode as float64), or
// def if absent or not a number.
func (t Tree) Int64(key string, def int64) int64 {
	if v, ok := t[key]; ok {
		if f, ok := v.(float64); ok {
			return int64(f)
		}
	}
	return def
}

// StringSlice returns the string array at key, skipping any non-string
// elements. Returns nil if key is absent or not an array.
func (t Tree) StringSlice(key string) []string {
	v, ok := t[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringMap returns the string→string map at key (e.g. a "basenames"
// field), skipping any non-string values. Returns nil if key is absent
// or not an object.
func (t Tree) StringMap(key string) map[string]string {
	v, ok := t[key]
	if !ok {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(obj))
	for k, e := range obj {
		if s, ok := e.(string); ok {
			out[k] = s
		}
	}
	return out
}

// Object returns the nested tree at key, or nil if absent or not an object.
func (t Tree) Object(key string) Tree {
	v, ok := t[key]
	if !ok {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return Tree(obj)
}

// NestedUint64 looks up the two-level path outerKey.innerKey (for the
// terminator's tableDataBytes.<schema>.<table> shape, call it on the
// tableDataBytes object; ParseTerminator walks that map itself). Missing
// or malformed values return (0, false) rather than an error.
func (t Tree) NestedUint64(outerKey, innerKey string) (uint64, bool) {
	outer := t.Object(outerKey)
	if outer == nil {
		return 0, false
	}
	v, ok := outer[innerKey]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, false
	}
	return uint64(f), true
}
