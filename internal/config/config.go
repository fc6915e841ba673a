// Package config loads golimit settings from an optional YAML file with
// environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/golimit"
	"github.com/njchilds90/golimit/internal/logging"
)

// Environment variables that take precedence over the file.
const (
	EnvLogLevel = "GOLIMIT_LOG_LEVEL"
	EnvAddr     = "GOLIMIT_ADDR"
)

// Config is the full application configuration.
type Config struct {
	LogLevel string       `mapstructure:"log_level" yaml:"log_level"`
	Theme    Theme        `mapstructure:"theme" yaml:"theme"`
	Server   ServerConfig `mapstructure:"server" yaml:"server"`
	MCP      MCPConfig    `mapstructure:"mcp" yaml:"mcp"`
	Engine   EngineConfig `mapstructure:"engine" yaml:"engine"`
}

// Theme holds the terminal palette as hex colors.
// Bg is the error box background on truecolor terminals.
type Theme struct {
	Bg          string `mapstructure:"bg" yaml:"bg"`
	Fg          string `mapstructure:"fg" yaml:"fg"`
	Muted       string `mapstructure:"muted" yaml:"muted"`
	Accent      string `mapstructure:"accent" yaml:"accent"`
	AccentError string `mapstructure:"accent_error" yaml:"accent_error"`
}

type ServerConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	Metrics bool   `mapstructure:"metrics" yaml:"metrics"`
}

type MCPConfig struct {
	Transport string `mapstructure:"transport" yaml:"transport"`
	Port      int    `mapstructure:"port" yaml:"port"`
}

type EngineConfig struct {
	MaxOrder int `mapstructure:"max_order" yaml:"max_order"`
}

// DefaultTheme is the dark palette of the calculator.
var DefaultTheme = Theme{
	Bg:          "#0B1220",
	Fg:          "#E5E7EB",
	Muted:       "#9CA3AF",
	Accent:      "#2563EB",
	AccentError: "#DC2626",
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LogLevel: "info",
		Theme:    DefaultTheme,
		Server:   ServerConfig{Addr: ":8080", Metrics: true},
		MCP:      MCPConfig{Transport: "stdio", Port: 8081},
		Engine:   EngineConfig{MaxOrder: golimit.DefaultMaxOrder},
	}
}

// Load reads path (if non-empty and present), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := decode(data, &cfg); err != nil {
				return cfg, err
			}
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// decode merges YAML data over the values already in cfg.
func decode(data []byte, cfg *Config) error {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if raw == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("mcp.transport: unknown transport %q (want stdio or sse)", c.MCP.Transport)
	}
	if c.MCP.Port <= 0 || c.MCP.Port > 65535 {
		return fmt.Errorf("mcp.port: %d out of range", c.MCP.Port)
	}
	if c.Engine.MaxOrder < 4 {
		return fmt.Errorf("engine.max_order: must be at least 4, got %d", c.Engine.MaxOrder)
	}
	return nil
}
