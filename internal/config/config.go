// YAML config loader with CUE validation and environment overrides
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"qjm-roster/internal/roster"
	"qjm-roster/internal/scenario"
)

// Service describes the remote wargame service.
type Service struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`
}

// Greptime configures the optional GreptimeDB journal sink.
type Greptime struct {
	Endpoint string `yaml:"endpoint"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
}

// Journal selects the reassignment event sinks.
type Journal struct {
	File     string   `yaml:"file"`
	Stdout   bool     `yaml:"stdout"`
	TUI      bool     `yaml:"tui"`
	Greptime Greptime `yaml:"greptime"`
}

// Config is the root configuration of the roster console.
type Config struct {
	Service    Service               `yaml:"service"`
	ListenAddr string                `yaml:"listen_addr"`
	LogLevel   string                `yaml:"log_level"`
	Roles      roster.RoleContainers `yaml:"roles"`
	Parameters scenario.Parameters   `yaml:"parameters"`
	Journal    Journal               `yaml:"journal"`
}

// Default returns a config that works against a local service.
func Default() Config {
	return Config{
		Service: Service{
			BaseURL: "http://localhost:5000",
			Timeout: 30 * time.Second,
			RPS:     5,
			Burst:   5,
		},
		ListenAddr: ":8080",
		LogLevel:   "info",
		Roles:      roster.DefaultRoleContainers(),
		Parameters: scenario.Defaults(),
		Journal: Journal{
			Greptime: Greptime{Database: "public", Table: "roster_events"},
		},
	}
}

// Load reads a YAML config, validates it against the CUE schema, and applies
// environment overrides. A .env file in the working directory is honoured.
// An empty schemaPath skips CUE validation.
func Load(configPath, schemaPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if configPath != "" {
		if schemaPath != "" {
			if err := ValidateWithCue(configPath, schemaPath); err != nil {
				return nil, err
			}
		}
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := scenario.Validate(&cfg.Parameters); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	WargameURL       string `env:"WARGAME_URL"`
	ListenAddr       string `env:"ROSTER_LISTEN_ADDR"`
	LogLevel         string `env:"ROSTER_LOG_LEVEL"`
	GreptimeEndpoint string `env:"GREPTIMEDB_ENDPOINT"`
	GreptimeDatabase string `env:"GREPTIMEDB_DATABASE"`
	GreptimeTable    string `env:"GREPTIMEDB_TABLE"`
}

// ApplyEnv overrides config fields from set environment variables.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	setIf(&cfg.Service.BaseURL, o.WargameURL)
	setIf(&cfg.ListenAddr, o.ListenAddr)
	setIf(&cfg.LogLevel, o.LogLevel)
	setIf(&cfg.Journal.Greptime.Endpoint, o.GreptimeEndpoint)
	setIf(&cfg.Journal.Greptime.Database, o.GreptimeDatabase)
	setIf(&cfg.Journal.Greptime.Table, o.GreptimeTable)
	return nil
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
