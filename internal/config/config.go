// Package config loads the todos configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme values accepted in the theme field.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config is the application configuration.
type Config struct {
	// URLPath is the public base URL pages use for links and assets.
	URLPath string `yaml:"url_path"`

	// Theme selects the page colour scheme: "light" or "dark".
	Theme string `yaml:"theme"`

	// Addr is the listen address for the web server.
	Addr string `yaml:"addr"`

	// DataDir holds the embedded database files.
	DataDir string `yaml:"data_dir"`

	// Database names the database and the version it is opened at.
	Database Database `yaml:"database"`
}

// Database configures the local store.
type Database struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		URLPath: "",
		Theme:   ThemeDark,
		Addr:    "127.0.0.1:8080",
		DataDir: "data",
		Database: Database{
			Name:    "TaskDB",
			Version: 1,
		},
	}
}

// Load reads the YAML file at path over the defaults. Unknown fields are
// rejected. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.URLPath = strings.TrimRight(cfg.URLPath, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are present and valid.
func (c Config) Validate() error {
	if c.Theme != ThemeLight && c.Theme != ThemeDark {
		return fmt.Errorf("theme must be %q or %q, got %q", ThemeLight, ThemeDark, c.Theme)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.Version < 1 {
		return fmt.Errorf("database.version must be a positive integer, got %d", c.Database.Version)
	}
	return nil
}
