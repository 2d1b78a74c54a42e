package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rgehrsitz/taxcurve/internal/domain"
	"github.com/rgehrsitz/taxcurve/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendFilesystem = "filesystem"
	BackendSQLite     = "sqlite"
	BackendMemory     = "memory"
)

// Configuration is the taxcurve config file
type Configuration struct {
	Jurisdiction string         `yaml:"jurisdiction" json:"jurisdiction"`
	Store        StoreConfig    `yaml:"store" json:"store"`
	Sampling     SamplingConfig `yaml:"sampling" json:"sampling"`
	Server       ServerConfig   `yaml:"server" json:"server"`
	LogLevel     string         `yaml:"log_level" json:"log_level"`
}

// StoreConfig selects where schedules are kept
type StoreConfig struct {
	Backend string `yaml:"backend" json:"backend"`
	Path    string `yaml:"path" json:"path"`
}

// SamplingConfig controls curve sampling defaults
type SamplingConfig struct {
	PointsPerBracket int             `yaml:"points_per_bracket" json:"points_per_bracket"`
	CeilingBuffer    decimal.Decimal `yaml:"ceiling_buffer" json:"ceiling_buffer"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr           string   `yaml:"addr" json:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// Default returns the configuration used when no file is given
func Default() *Configuration {
	return &Configuration{
		Jurisdiction: domain.DefaultJurisdiction,
		Store: StoreConfig{
			Backend: BackendFilesystem,
			Path:    "./bracket-data-store",
		},
		Sampling: SamplingConfig{
			PointsPerBracket: 10,
			CeilingBuffer:    decimal.NewFromFloat(1.2),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		LogLevel: "info",
	}
}

// InputParser handles parsing of configuration files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads configuration from a YAML, JSON or JSONC file. Fields
// the file leaves out keep their defaults.
func (ip *InputParser) LoadFromFile(filename string) (*Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".jsonc":
		// JSON is YAML once comments and trailing commas are gone
		data = jsonc.ToJSON(data)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// ValidateConfiguration validates the loaded configuration
func (ip *InputParser) ValidateConfiguration(config *Configuration) error {
	if strings.TrimSpace(config.Jurisdiction) == "" {
		return fmt.Errorf("jurisdiction is required")
	}
	if err := ip.validateStore(&config.Store); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := ip.validateSampling(&config.Sampling); err != nil {
		return fmt.Errorf("sampling: %w", err)
	}
	if strings.TrimSpace(config.Server.Addr) == "" {
		return fmt.Errorf("server: addr is required")
	}
	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func (ip *InputParser) validateStore(sc *StoreConfig) error {
	switch sc.Backend {
	case BackendFilesystem, BackendSQLite:
		if strings.TrimSpace(sc.Path) == "" {
			return fmt.Errorf("path is required for the %s backend", sc.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (valid: %s, %s, %s)", sc.Backend, BackendFilesystem, BackendSQLite, BackendMemory)
	}
	return nil
}

func (ip *InputParser) validateSampling(sc *SamplingConfig) error {
	if sc.PointsPerBracket < 1 || sc.PointsPerBracket > 1000 {
		return fmt.Errorf("points_per_bracket must be between 1 and 1000, got %d", sc.PointsPerBracket)
	}
	if sc.CeilingBuffer.LessThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("ceiling_buffer must be at least 1, got %s", sc.CeilingBuffer)
	}
	return nil
}
