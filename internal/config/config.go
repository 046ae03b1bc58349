// Package config loads the nodegraph.yaml (or nodegraph.json) project file.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recera/nodegraph/pkg/graph"
	"github.com/recera/nodegraph/pkg/layout"
)

// FileNames are searched in order by Load.
var FileNames = []string{"nodegraph.yaml", "nodegraph.yml", "nodegraph.json"}

// Config represents the project configuration.
type Config struct {
	// Server configuration for `nodegraph serve`
	Server *ServerConfig `yaml:"server,omitempty" json:"server,omitempty"`

	// Component catalog source
	Catalog *CatalogConfig `yaml:"catalog,omitempty" json:"catalog,omitempty"`

	// Layout engine configuration
	Layout *LayoutConfig `yaml:"layout,omitempty" json:"layout,omitempty"`

	// Node geometry; zero fields keep the stock sizes
	Geometry *graph.Metrics `yaml:"geometry,omitempty" json:"geometry,omitempty"`

	// Logging configuration
	Log *LogConfig `yaml:"log,omitempty" json:"log,omitempty"`
}

// ServerConfig contains live server configuration
type ServerConfig struct {
	Host string `yaml:"host,omitempty" json:"host,omitempty"`
	Port int    `yaml:"port,omitempty" json:"port,omitempty"`

	// Layout ticks per second for each session
	FrameRate int `yaml:"frameRate,omitempty" json:"frameRate,omitempty"`

	// Origins allowed to open a session; empty allows any
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" json:"allowedOrigins,omitempty"`
}

// CatalogConfig contains component catalog configuration
type CatalogConfig struct {
	// Path to the JSON array of component definitions
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Whether to reload the catalog when the file changes
	Watch bool `yaml:"watch" json:"watch"`
}

// LayoutConfig selects and tunes the layout engine
type LayoutConfig struct {
	// Engine is "force" or "grid"
	Engine  string          `yaml:"engine,omitempty" json:"engine,omitempty"`
	Options *layout.Options `yaml:"options,omitempty" json:"options,omitempty"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level       string `yaml:"level,omitempty" json:"level,omitempty"`
	Development bool   `yaml:"development,omitempty" json:"development,omitempty"`
}

// Addr returns the host:port the server listens on.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Find returns the first config file present in projectPath, or "".
func Find(projectPath string) string {
	for _, name := range FileNames {
		p := filepath.Join(projectPath, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load loads configuration from projectPath. A missing file yields the
// default configuration.
func Load(projectPath string) (*Config, error) {
	path := Find(projectPath)
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFile(path)
}

// LoadFile loads one config file, picking the format by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if isJSON(path) {
		err = json.Unmarshal(data, &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &config, nil
}

// Save writes configuration to path, picking the format by extension.
func Save(config *Config, path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	switch c.Layout.Engine {
	case layout.KindForce, layout.KindGrid:
	default:
		return fmt.Errorf("unknown layout engine %q", c.Layout.Engine)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Server.Port)
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: &ServerConfig{
			Host:      "localhost",
			Port:      8080,
			FrameRate: 60,
		},
		Catalog: &CatalogConfig{
			Path:  "components.json",
			Watch: false,
		},
		Layout: &LayoutConfig{
			Engine: layout.KindForce,
		},
		Log: &LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		if config.Server.Host == "" {
			config.Server.Host = defaults.Server.Host
		}
		if config.Server.Port == 0 {
			config.Server.Port = defaults.Server.Port
		}
		if config.Server.FrameRate <= 0 {
			config.Server.FrameRate = defaults.Server.FrameRate
		}
	}

	if config.Catalog == nil {
		config.Catalog = defaults.Catalog
	} else if config.Catalog.Path == "" {
		config.Catalog.Path = defaults.Catalog.Path
	}

	if config.Layout == nil {
		config.Layout = defaults.Layout
	} else if config.Layout.Engine == "" {
		config.Layout.Engine = defaults.Layout.Engine
	}

	if config.Log == nil {
		config.Log = defaults.Log
	} else if config.Log.Level == "" {
		config.Log.Level = defaults.Log.Level
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
