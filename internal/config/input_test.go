package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/taxcurve/internal/store/filesystem"
	"github.com/rgehrsitz/taxcurve/internal/store/memory"
	"github.com/rgehrsitz/taxcurve/internal/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, NewInputParser().ValidateConfiguration(Default()))
}

func TestLoadFromFile_YAML(t *testing.T) {
	path := writeFile(t, "taxcurve.yaml", `
jurisdiction: United States
store:
  backend: sqlite
  path: ./schedules.db
sampling:
  points_per_bracket: 25
  ceiling_buffer: 1.5
server:
  addr: "127.0.0.1:9090"
  allowed_origins: ["http://localhost:5173"]
log_level: debug
`)

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, config.Store.Backend)
	assert.Equal(t, "./schedules.db", config.Store.Path)
	assert.Equal(t, 25, config.Sampling.PointsPerBracket)
	assert.True(t, config.Sampling.CeilingBuffer.Equal(decimal.RequireFromString("1.5")))
	assert.Equal(t, "127.0.0.1:9090", config.Server.Addr)
	assert.Equal(t, []string{"http://localhost:5173"}, config.Server.AllowedOrigins)
	assert.Equal(t, "debug", config.LogLevel)
}

func TestLoadFromFile_PartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "taxcurve.yaml", "store:\n  backend: memory\n")

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, config.Store.Backend)
	assert.Equal(t, 10, config.Sampling.PointsPerBracket)
	assert.Equal(t, ":8080", config.Server.Addr)
	assert.Equal(t, "United States", config.Jurisdiction)
}

func TestLoadFromFile_JSONC(t *testing.T) {
	path := writeFile(t, "taxcurve.jsonc", `{
  // schedules live next to the binary
  "store": {"backend": "filesystem", "path": "data"},
  "sampling": {"points_per_bracket": 4,},
}`)

	config, err := NewInputParser().LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", config.Store.Path)
	assert.Equal(t, 4, config.Sampling.PointsPerBracket)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read file")

	_, err = NewInputParser().LoadFromFile(writeFile(t, "bad.yaml", "store: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse")
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		message string
	}{
		{"unknown backend", func(c *Configuration) { c.Store.Backend = "redis" }, "unknown backend"},
		{"filesystem without path", func(c *Configuration) { c.Store.Path = "" }, "path is required"},
		{"zero points", func(c *Configuration) { c.Sampling.PointsPerBracket = 0 }, "points_per_bracket"},
		{"buffer below one", func(c *Configuration) { c.Sampling.CeilingBuffer = decimal.RequireFromString("0.9") }, "ceiling_buffer"},
		{"empty addr", func(c *Configuration) { c.Server.Addr = "" }, "addr is required"},
		{"bad log level", func(c *Configuration) { c.LogLevel = "chatty" }, "log_level"},
		{"empty jurisdiction", func(c *Configuration) { c.Jurisdiction = " " }, "jurisdiction"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := NewInputParser().ValidateConfiguration(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}

	memoryOnly := Default()
	memoryOnly.Store = StoreConfig{Backend: BackendMemory}
	assert.NoError(t, NewInputParser().ValidateConfiguration(memoryOnly))
}

func TestOpenStore(t *testing.T) {
	fs, err := StoreConfig{Backend: BackendFilesystem, Path: t.TempDir()}.OpenStore()
	require.NoError(t, err)
	assert.IsType(t, &filesystem.Store{}, fs)

	db, err := StoreConfig{Backend: BackendSQLite, Path: filepath.Join(t.TempDir(), "s.db")}.OpenStore()
	require.NoError(t, err)
	assert.IsType(t, &sqlite.Store{}, db)
	require.NoError(t, db.Close())

	mem, err := StoreConfig{Backend: BackendMemory}.OpenStore()
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, mem)

	_, err = StoreConfig{Backend: "redis"}.OpenStore()
	assert.Error(t, err)
}
