// Package export renders an EntityModel snapshot in an operator-facing
// structured format, for CLI debugging rather than machine consumption by
// the core scanner/scheduler/workqueue pipeline.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"dumpreader/internal/model"
)

// Format selects the wire encoding Marshal produces.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// Snapshot is the exported shape of a Model: flatter and more
// self-describing than the internal tree, meant to be read by a human or
// a generic JSON/msgpack viewer rather than fed back into the scanner.
type Snapshot struct {
	Status  string            `json:"status" msgpack:"status"`
	Summary model.DumpSummary `json:"summary" msgpack:"summary"`
	Schemas []SchemaSnapshot  `json:"schemas" msgpack:"schemas"`
}

// SchemaSnapshot is one schema's exported shape.
type SchemaSnapshot struct {
	Name   string          `json:"name" msgpack:"name"`
	Ready  bool            `json:"ready" msgpack:"ready"`
	Tables []TableSnapshot `json:"tables" msgpack:"tables"`
	Views  []string        `json:"views" msgpack:"views"`
}

// TableSnapshot is one table's exported shape.
type TableSnapshot struct {
	Name           string `json:"name" msgpack:"name"`
	Ready          bool   `json:"ready" msgpack:"ready"`
	Chunked        bool   `json:"chunked" msgpack:"chunked"`
	NumChunks      int    `json:"numChunks" msgpack:"numChunks"`
	ChunksConsumed int    `json:"chunksConsumed" msgpack:"chunksConsumed"`
	DataDone       bool   `json:"dataDone" msgpack:"dataDone"`
	AnalyzeDone    bool   `json:"analyzeDone" msgpack:"analyzeDone"`
}

// BuildSnapshot flattens m into its exported shape.
func BuildSnapshot(m *model.Model) Snapshot {
	snap := Snapshot{
		Status:  m.Dump.Status.String(),
		Summary: m.Summarize(),
	}
	for _, s := range m.Schemas() {
		ss := SchemaSnapshot{Name: s.Name, Ready: s.Ready()}
		for _, t := range s.Tables {
			ss.Tables = append(ss.Tables, TableSnapshot{
				Name:           t.Name,
				Ready:          t.Ready(),
				Chunked:        t.Chunked,
				NumChunks:      t.NumChunks,
				ChunksConsumed: t.ChunksConsumed,
				DataDone:       t.DataDone(),
				AnalyzeDone:    t.AnalyzeDone,
			})
		}
		for _, v := range s.Views {
			ss.Views = append(ss.Views, v.Name)
		}
		snap.Schemas = append(snap.Schemas, ss)
	}
	return snap
}

// Marshal encodes m's snapshot in the given format.
func Marshal(m *model.Model, format Format) ([]byte, error) {
	snap := BuildSnapshot(m)
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("export: encode json: %w", err)
		}
		return data, nil
	case FormatMsgpack:
		data, err := msgpack.Marshal(snap)
		if err != nil {
			return nil, fmt.Errorf("export: encode msgpack: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("export: unknown format %q", format)
	}
}
