// Package yaml loads semjson settings from YAML files.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fwojciec/semjson"
	"github.com/fwojciec/semjson/export"
	"gopkg.in/yaml.v3"
)

// Renderer kinds selectable in Config.Renderer.
const (
	RendererNone     = "none"
	RendererGoldmark = "goldmark"
	RendererAPI      = "api"
)

// DefaultDBPath is the content database used when none is configured.
const DefaultDBPath = "semjson.db"

// PaceConfig configures the pause taken during full-site exports.
type PaceConfig struct {
	Every int           `yaml:"every"`
	Delay time.Duration `yaml:"delay"`
}

// Config is the structure of a semjson configuration file.
type Config struct {
	// DB is the path of the SQLite content database.
	DB string `yaml:"db"`

	// Renderer selects how fields are rendered: none, goldmark or api.
	Renderer string `yaml:"renderer"`

	// APIURL is the MediaWiki API endpoint used by the api renderer.
	APIURL string `yaml:"apiURL"`

	// Markdown converts rendered fields to Markdown.
	Markdown bool `yaml:"markdown"`

	// RateLimit caps API renderer requests per second. Zero disables it.
	RateLimit float64 `yaml:"rateLimit"`

	Pace PaceConfig `yaml:"pace"`

	Export export.Config `yaml:"export"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		DB:       DefaultDBPath,
		Renderer: RendererGoldmark,
		Export:   export.DefaultConfig(),
	}
}

// Validate returns EINVALID if the configuration cannot be used.
func (c *Config) Validate() error {
	switch c.Renderer {
	case RendererNone, RendererGoldmark:
	case RendererAPI:
		if c.APIURL == "" {
			return semjson.Errorf(semjson.EINVALID, "apiURL required for api renderer")
		}
	default:
		return semjson.Errorf(semjson.EINVALID, "unknown renderer %q", c.Renderer)
	}
	if c.RateLimit < 0 {
		return semjson.Errorf(semjson.EINVALID, "rateLimit must not be negative")
	}
	if c.Export.MaxCacheSize <= 0 {
		return semjson.Errorf(semjson.EINVALID, "maxCacheSize must be positive")
	}
	if c.Export.CacheBackjump <= 0 || c.Export.CacheBackjump > c.Export.MaxCacheSize {
		return semjson.Errorf(semjson.EINVALID, "cacheBackjump must be between 1 and maxCacheSize")
	}
	for _, b := range c.Export.Blocks {
		if b.Name == "" {
			return semjson.Errorf(semjson.EINVALID, "block name required")
		}
	}
	return nil
}

// LoadConfigFile loads configuration from path. Returns the defaults if
// the file doesn't exist. Keys missing from the file keep their default
// values; unknown keys are an error.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration data over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, semjson.Errorf(semjson.EINVALID, "failed to parse config file: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
