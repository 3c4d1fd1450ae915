// Package config describes the desired shape of one restore run: where
// the dump lives, which schema/table filter patterns apply, and how much
// concurrency the external worker pool is allowed. It follows a
// declarative Store/Config pattern: load-on-start, not hot-reloaded, and
// not on any hot path.
package config

import "context"

// Store persists and loads a Config.
type Store interface {
	// Load reads the configuration. Returns nil config if none exists.
	Load(ctx context.Context) (*Config, error)

	// Save persists the configuration.
	Save(ctx context.Context, cfg *Config) error
}

// Config is declarative: it names which Directory backend to open and how
// the run should behave, not how those components are constructed.
type Config struct {
	// Backend selects which Directory implementation Open uses.
	Backend BackendConfig `json:"backend"`

	// FilterPatterns are compiled by internal/filterspec into the Filter
	// predicate the scanner consumes. Last-match-wins, "!" negates.
	FilterPatterns []string `json:"filterPatterns,omitempty"`

	// Concurrency bounds the external worker pool (cmd/dumpreader load),
	// not anything in the core scanner/scheduler.
	Concurrency int `json:"concurrency"`

	// TailIntervalSeconds is how often the status command re-lists the
	// directory while the dump is incomplete.
	TailIntervalSeconds int `json:"tailIntervalSeconds"`
}

// BackendKind identifies a Directory implementation.
type BackendKind string

const (
	BackendLocal BackendKind = "local"
	BackendS3    BackendKind = "s3"
	BackendAzure BackendKind = "azureblob"
	BackendGCS   BackendKind = "gcs"
)

// BackendConfig carries the fields needed to construct any one Directory
// backend. Only the fields relevant to Kind are expected to be set; the
// rest are ignored.
type BackendConfig struct {
	Kind BackendKind `json:"kind"`

	// Local
	Path string `json:"path,omitempty"`

	// S3 / Azure / GCS
	Bucket            string  `json:"bucket,omitempty"`
	Prefix            string  `json:"prefix,omitempty"`
	RequestsPerSecond float64 `json:"requestsPerSecond,omitempty"`

	// Azure only
	ServiceURL string `json:"serviceURL,omitempty"`
	Container  string `json:"container,omitempty"`
}

// Default returns a Config usable against a local dump directory with
// conservative defaults, the shape `dumpreader scan` falls back to when
// no config file is given.
func Default(path string) *Config {
	return &Config{
		Backend:             BackendConfig{Kind: BackendLocal, Path: path},
		Concurrency:         4,
		TailIntervalSeconds: 2,
	}
}
