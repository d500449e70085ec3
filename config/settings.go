// Package config provides the construction-time configuration for a
// namespace, plus the process-wide BM25 parameter pair.
package config

import (
	"fmt"
	"os"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultK1 is the BM25 term-frequency saturation parameter used when
	// a namespace's process has not overridden it via SetBM25Params.
	DefaultK1 = 1.5
	// DefaultB is the BM25 document-length-normalization parameter used
	// when a namespace's process has not overridden it via SetBM25Params.
	DefaultB = 0.75
	// DefaultCompactionIntervalMS is used when AutoCompaction is enabled
	// but CompactionIntervalMS is left at zero.
	DefaultCompactionIntervalMS = 3_600_000
)

// Config is the construction-time configuration for one namespace.
type Config struct {
	Dim                  int   `yaml:"dim"`
	MaxElements          int   `yaml:"max_elements"`
	AutoCompaction       bool  `yaml:"auto_compaction"`
	CompactionIntervalMS int64 `yaml:"compaction_interval_ms"`
}

// ApplyDefaults fills in zero-valued optional fields.
func (c *Config) ApplyDefaults() {
	if c.CompactionIntervalMS == 0 {
		c.CompactionIntervalMS = DefaultCompactionIntervalMS
	}
}

// Validate checks the required fields of a Config.
func (c Config) Validate() error {
	if c.Dim <= 0 {
		return fmt.Errorf("config: dim must be positive, got %d", c.Dim)
	}
	if c.MaxElements <= 0 {
		return fmt.Errorf("config: max_elements must be positive, got %d", c.MaxElements)
	}
	return nil
}

// Load reads a YAML file into a Config and applies defaults. It is a
// convenience for callers that prefer a config file over struct literal
// construction.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator, not untrusted input
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, cfg.Validate()
}

// BM25Params holds the process-wide BM25 tuning pair. It is intended to
// be set rarely, typically at startup, and is read without locking by
// every scoring call — the spec treats it as a startup-time constant
// that callers should not mutate under load.
type BM25Params struct {
	K1 float64
	B  float64
}

// DefaultBM25Params returns the spec's default (k1=1.5, b=0.75).
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: DefaultK1, B: DefaultB}
}

// currentBM25Params is the process-wide (k1, b) pair every namespace's
// BM25 scoring reads. It is shared across namespaces by design (spec
// §5: "process-wide across all namespaces") and intentionally
// lock-free — callers are expected to set it rarely, typically at
// startup, not under concurrent search load.
var currentBM25Params atomic.Value

func init() {
	currentBM25Params.Store(DefaultBM25Params())
}

// SetBM25Params overwrites the process-wide BM25 tuning pair.
func SetBM25Params(k1, b float64) {
	currentBM25Params.Store(BM25Params{K1: k1, B: b})
}

// CurrentBM25Params returns the process-wide BM25 tuning pair in effect.
func CurrentBM25Params() BM25Params {
	return currentBM25Params.Load().(BM25Params)
}
