// Package config loads and validates service configuration.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (overlaid by the caller)
//  2. YAML config file
//  3. Hardcoded defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultEndpoint is the listen address when none is configured.
	DefaultEndpoint = "127.0.0.1:3000"
	// DefaultRescanInterval is the time between resync passes.
	DefaultRescanInterval = 30 * time.Second
	// DefaultMaxResults caps hits per query when none is configured.
	DefaultMaxResults = 10000

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// ErrMissingScanDirectory is returned by Validate when no directory to scan
// was configured by file or flag.
var ErrMissingScanDirectory = errors.New("scan directory is required")

// ScanSettings is the scan_settings section of the YAML document.
type ScanSettings struct {
	// ScanDirectory is the root of the tree to index. Required.
	ScanDirectory string `koanf:"scan_directory"`
	// Endpoint is the host:port the HTTP server binds.
	Endpoint string `koanf:"endpoint"`
	// RescanInterval is the time between incremental resync passes,
	// written as a duration string ("30s", "5m").
	RescanInterval time.Duration `koanf:"rescan_interval"`
	// PreScanCommands are shell command lines run, in order, in the scan
	// directory before each resync pass.
	PreScanCommands []string `koanf:"pre_scan_commands"`
	// ExcludePatterns skips any path containing one of these substrings.
	ExcludePatterns []string `koanf:"exclude_patterns"`
	// MaxResults caps how many hits a single query may return.
	MaxResults int `koanf:"max_results"`
	// Workers bounds concurrent file hashing. Zero picks a default from the
	// machine's CPU count.
	Workers int `koanf:"workers"`
}

// Config is the full configuration document.
type Config struct {
	ScanSettings ScanSettings `koanf:"scan_settings"`
}

// Validate checks the configuration after defaults and flag overlays have
// been applied.
func (c *Config) Validate() error {
	s := c.ScanSettings
	if s.ScanDirectory == "" {
		return ErrMissingScanDirectory
	}
	if info, err := os.Stat(s.ScanDirectory); err != nil {
		return fmt.Errorf("scan directory %s: %w", s.ScanDirectory, err)
	} else if !info.IsDir() {
		return fmt.Errorf("scan directory %s is not a directory", s.ScanDirectory)
	}
	if s.Endpoint == "" {
		return errors.New("endpoint must not be empty")
	}
	if s.RescanInterval <= 0 {
		return fmt.Errorf("rescan_interval must be positive, got %s", s.RescanInterval)
	}
	if s.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", s.MaxResults)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

// Default returns a configuration with every default applied and no scan
// directory set.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML config file. The result has defaults applied but is not
// yet validated, so the caller can overlay flag values first.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(content)
}

// Parse decodes a YAML document and applies defaults.
func Parse(content []byte) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills in values the document left unset.
func applyDefaults(cfg *Config) {
	s := &cfg.ScanSettings
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	if s.RescanInterval == 0 {
		s.RescanInterval = DefaultRescanInterval
	}
	if s.ExcludePatterns == nil {
		s.ExcludePatterns = []string{".git"}
	}
	if s.MaxResults == 0 {
		s.MaxResults = DefaultMaxResults
	}
}
