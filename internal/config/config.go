// Package config handles the fuzzysearch CLI configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
	"github.com/PixelSnake/FuzzySearch/distance"
	"github.com/PixelSnake/FuzzySearch/internal/fs"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "fuzzysearch.toml"

// Config describes a catalog: where it is stored, which fields it has and
// how it is searched.
type Config struct {
	// Path is the data log location. The offset index lives next to it.
	Path string `toml:"path"`

	// Distance is "levenshtein" (default) or "weighted".
	Distance string `toml:"distance,omitempty"`

	// Cutoff is the default acceptance threshold. 0 selects the default.
	Cutoff float64 `toml:"cutoff,omitempty"`

	// Parallelism is the number of scoring goroutines. 0 selects GOMAXPROCS.
	Parallelism int `toml:"parallelism,omitempty"`

	// Durability is "sync" (default) or "async".
	Durability string `toml:"durability,omitempty"`

	// Format is "plain" (default) or "framed".
	Format string `toml:"format,omitempty"`

	// LogLevel is one of debug, info, warn, error. Empty disables logging.
	LogLevel string `toml:"log_level,omitempty"`

	// MaxConcurrentQueries caps concurrent searches. 0 means unlimited.
	MaxConcurrentQueries int64 `toml:"max_concurrent_queries,omitempty"`

	// IOLimit rate-limits exports in bytes per second. 0 means unlimited.
	IOLimit int64 `toml:"io_limit,omitempty"`

	// RecordCache bounds the record LRU in bytes. 0 disables it.
	RecordCache int64 `toml:"record_cache,omitempty"`

	// Fields are the catalog fields in order.
	Fields []Field `toml:"field"`
}

// Field is one catalog field.
type Field struct {
	Name string `toml:"name"`
	// Fuzzy defaults to true.
	Fuzzy *bool `toml:"fuzzy,omitempty"`
}

// IsFuzzy reports whether the field is searched.
func (f Field) IsFuzzy() bool {
	return f.Fuzzy == nil || *f.Fuzzy
}

// Default returns a config for a catalog at path with the given fuzzy fields.
func Default(path string, fields ...string) *Config {
	cfg := &Config{Path: path}
	for _, name := range fields {
		cfg.Fields = append(cfg.Fields, Field{Name: name})
	}
	return cfg
}

// Load loads the configuration from path. A missing file yields an empty
// config.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	return &cfg, nil
}

// SaveTo writes cfg to path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return fs.WriteFileAtomic(fs.Default, path, buf.Bytes(), 0o644)
}

// Validate checks the config for values the index would reject.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return fmt.Errorf("path is required")
	}
	if _, err := distance.ParseMetric(c.Distance); err != nil {
		return err
	}
	if _, err := parseDurability(c.Durability); err != nil {
		return err
	}
	if _, err := parseFormat(c.Format); err != nil {
		return err
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.RecordCache < 0 {
		return fmt.Errorf("record_cache must be non-negative, got %d", c.RecordCache)
	}
	if c.Cutoff < 0 || math.IsNaN(c.Cutoff) || math.IsInf(c.Cutoff, 0) {
		return fmt.Errorf("cutoff must be a non-negative number, got %v", c.Cutoff)
	}
	return c.Schema().Validate()
}

// Schema returns the item schema for the configured fields.
func (c *Config) Schema() fuzzysearch.Schema[fuzzysearch.Item] {
	var fuzzy []string
	for _, f := range c.Fields {
		if f.IsFuzzy() {
			fuzzy = append(fuzzy, f.Name)
		}
	}
	s := fuzzysearch.ItemSchema(fuzzy...)
	for _, f := range c.Fields {
		if !f.IsFuzzy() {
			name := f.Name
			s.Fields = append(s.Fields, fuzzysearch.Field[fuzzysearch.Item]{
				Name: name,
				Text: func(it fuzzysearch.Item) string { return it.Fields[name] },
			})
		}
	}
	return s
}

// Options translates the config into index options. Validate first.
func (c *Config) Options() []fuzzysearch.Option {
	var opts []fuzzysearch.Option

	if m, err := distance.ParseMetric(c.Distance); err == nil {
		if fn, err := m.Func(); err == nil {
			opts = append(opts, fuzzysearch.WithDistance(fn))
		}
	}
	if c.Cutoff > 0 {
		opts = append(opts, fuzzysearch.WithCutoff(c.Cutoff))
	}
	if d, err := parseDurability(c.Durability); err == nil {
		opts = append(opts, fuzzysearch.WithDurability(d))
	}
	if f, err := parseFormat(c.Format); err == nil {
		opts = append(opts, fuzzysearch.WithFormat(f))
	}
	if lvl, err := parseLevel(c.LogLevel); err == nil && c.LogLevel != "" {
		opts = append(opts, fuzzysearch.WithLogLevel(lvl))
	}
	opts = append(opts,
		fuzzysearch.WithParallelism(c.Parallelism),
		fuzzysearch.WithMaxConcurrentQueries(c.MaxConcurrentQueries),
		fuzzysearch.WithIOLimit(c.IOLimit),
		fuzzysearch.WithRecordCache(c.RecordCache),
	)
	return opts
}

func parseDurability(s string) (fuzzysearch.Durability, error) {
	switch strings.ToLower(s) {
	case "", "sync":
		return fuzzysearch.DurabilitySync, nil
	case "async":
		return fuzzysearch.DurabilityAsync, nil
	default:
		return 0, fmt.Errorf("unknown durability %q", s)
	}
}

func parseFormat(s string) (fuzzysearch.Format, error) {
	switch strings.ToLower(s) {
	case "", "plain":
		return fuzzysearch.FormatPlain, nil
	case "framed":
		return fuzzysearch.FormatFramed, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return lvl, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return lvl, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
