package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
path = "catalog.log"
distance = "weighted"
cutoff = 0.4
parallelism = 2
durability = "async"
format = "framed"
log_level = "debug"

[[field]]
name = "brand"

[[field]]
name = "name"

[[field]]
name = "sku"
fuzzy = false
`)

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "catalog.log", cfg.Path)
	assert.Equal(t, 0.4, cfg.Cutoff)
	require.Len(t, cfg.Fields, 3)
	assert.True(t, cfg.Fields[0].IsFuzzy())
	assert.False(t, cfg.Fields[2].IsFuzzy())

	schema := cfg.Schema()
	assert.Equal(t, []string{"brand", "name"}, schema.FuzzyFields())
	assert.Len(t, schema.Fields, 3)
	assert.NotEmpty(t, cfg.Options())
}

func TestLoadFrom_UnknownKey(t *testing.T) {
	path := writeConfig(t, `
path = "catalog.log"
colour = "blue"
`)
	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "colour")
}

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Path)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"MissingPath", func(c *Config) { c.Path = "" }, "path is required"},
		{"Distance", func(c *Config) { c.Distance = "hamming" }, "unknown distance metric"},
		{"Durability", func(c *Config) { c.Durability = "maybe" }, "unknown durability"},
		{"Format", func(c *Config) { c.Format = "json" }, "unknown format"},
		{"LogLevel", func(c *Config) { c.LogLevel = "loud" }, "unknown log level"},
		{"Cutoff", func(c *Config) { c.Cutoff = -1 }, "cutoff must be a non-negative number"},
		{"CutoffNaN", func(c *Config) { c.Cutoff = math.NaN() }, "cutoff must be a non-negative number"},
		{"RecordCache", func(c *Config) { c.RecordCache = -1 }, "record_cache must be non-negative"},
		{"NoFields", func(c *Config) { c.Fields = nil }, "at least one fuzzy field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("catalog.log", "name")
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errMsg)
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	cfg := Default("catalog.log", "brand", "name")
	cfg.Format = "framed"

	require.NoError(t, SaveTo(path, cfg))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	assert.Error(t, SaveTo(" ", cfg))
}

func TestOptions_OpenIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(filepath.Join(dir, "catalog.log"), "name")
	cfg.Format = "framed"
	cfg.RecordCache = 1 << 20
	require.NoError(t, cfg.Validate())

	ix, err := fuzzysearch.Open(cfg.Path, cfg.Schema(), cfg.Options()...)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, fuzzysearch.FormatFramed, ix.Stats().Format)

	item := fuzzysearch.Item{ID: 1, Fields: map[string]string{"name": "claw hammer"}}
	require.NoError(t, ix.Add(t.Context(), item))
	for range 2 {
		_, err := ix.Get(1)
		require.NoError(t, err)
	}
	s := ix.Stats()
	assert.Equal(t, int64(1), s.CacheHits)
	assert.Equal(t, int64(1), s.CacheMisses)
}
