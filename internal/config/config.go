// Package config loads rushmetrics settings from a TOML file with
// environment overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/pable/go-rushing-metrics/internal/model"
	"github.com/pable/go-rushing-metrics/internal/source"
)

// Environment variables that override the file.
const (
	EnvCarriesURL     = "RUSHMETRICS_CARRIES_URL"
	EnvComparisonsURL = "RUSHMETRICS_COMPARISONS_URL"
	EnvAddr           = "RUSHMETRICS_ADDR"
	EnvTop            = "RUSHMETRICS_TOP"
)

// Config is the on-disk configuration.
type Config struct {
	Data    DataConfig    `toml:"data"`
	Compare CompareConfig `toml:"compare"`
	Server  ServerConfig  `toml:"server"`
	Analyze AnalyzeConfig `toml:"analyze"`
}

// DataConfig locates the two reference tables. Values may be URLs or
// local paths.
type DataConfig struct {
	CarriesURL     string `toml:"carries_url"`
	ComparisonsURL string `toml:"comparisons_url"`
}

// CompareConfig holds the default selection.
type CompareConfig struct {
	Top     int    `toml:"top"`
	TeamOne string `toml:"team_one"`
	TeamTwo string `toml:"team_two"`
}

// ServerConfig configures the HTTP dashboard.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AnalyzeConfig selects the model used by the analyze command.
type AnalyzeConfig struct {
	Model string `toml:"model"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			CarriesURL:     source.DefaultCarriesURL,
			ComparisonsURL: source.DefaultComparisonsURL,
		},
		Compare: CompareConfig{
			Top:     10,
			TeamOne: model.DefaultTeamOne,
			TeamTwo: model.DefaultTeamTwo,
		},
		Server:  ServerConfig{Addr: ":8080"},
		Analyze: AnalyzeConfig{Model: "claude-haiku-4-5-20251001"},
	}
}

// DefaultPath is ~/.rushmetrics/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".rushmetrics", "config.toml")
}

// Load reads path over the defaults and then applies environment
// overrides. A missing file is not an error. An empty path means
// DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvCarriesURL); v != "" {
		cfg.Data.CarriesURL = v
	}
	if v := os.Getenv(EnvComparisonsURL); v != "" {
		cfg.Data.ComparisonsURL = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvTop); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTop, err)
		}
		cfg.Compare.Top = n
	}
	return nil
}

// Encode writes cfg to w as TOML.
func Encode(w io.Writer, cfg *Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Save writes cfg to path, creating the parent directory. An empty path
// means DefaultPath.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, cfg); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
