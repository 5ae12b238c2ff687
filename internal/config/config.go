package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults, relative to the working tree root unless noted.
const (
	DefaultConfigFile = ".patchrun.yaml"
	DefaultPatchDir   = "patches"
	DefaultLogFile    = "PATCH_LOG.md"
	DefaultIgnoreFile = ".patchignore" // relative to the patch directory
	DefaultGitBinary  = "git"
)

// Config represents the patchrun configuration.
// Every field is optional; zero values fall back to the defaults above.
type Config struct {
	PatchDir       string `yaml:"patch_dir,omitempty"`
	LogFile        string `yaml:"log_file,omitempty"`
	IgnoreFile     string `yaml:"ignore_file,omitempty"`
	GitBinary      string `yaml:"git_binary,omitempty"`
	HistoryDB      string `yaml:"history_db,omitempty"` // default ~/.patchrun/history.db
	DisableHistory bool   `yaml:"disable_history,omitempty"`
	DebugLog       string `yaml:"debug_log,omitempty"` // default ~/.patchrun/patchrun.log
}

// Options is the typed result of command-line parsing.
type Options struct {
	List   bool
	DryRun bool
	Apply  bool
	Force  bool
	Help   bool
}

// HasAction reports whether any operation was requested.
// Force alone is not an action.
func (o Options) HasAction() bool {
	return o.List || o.DryRun || o.Apply
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the YAML config for the working tree at root.
// An empty path means <root>/.patchrun.yaml, which may be absent.
// An explicitly named file must exist.
func LoadConfig(root, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, DefaultConfigFile)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// SaveConfig writes cfg as YAML to <root>/.patchrun.yaml.
func SaveConfig(root string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(root, DefaultConfigFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.PatchDir == "" {
		c.PatchDir = DefaultPatchDir
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.IgnoreFile == "" {
		c.IgnoreFile = DefaultIgnoreFile
	}
	if c.GitBinary == "" {
		c.GitBinary = DefaultGitBinary
	}
}

// PatchDirPath returns the absolute patch directory for root.
func (c *Config) PatchDirPath(root string) string {
	return resolve(root, c.PatchDir)
}

// LogFilePath returns the absolute patch log path for root.
func (c *Config) LogFilePath(root string) string {
	return resolve(root, c.LogFile)
}

// IgnoreFilePath returns the absolute ignore file path for root.
func (c *Config) IgnoreFilePath(root string) string {
	return resolve(c.PatchDirPath(root), c.IgnoreFile)
}

// HistoryDBPath returns the history database path for root, or "" when
// history is disabled.
func (c *Config) HistoryDBPath(root string) (string, error) {
	if c.DisableHistory {
		return "", nil
	}
	if c.HistoryDB != "" {
		return resolve(root, c.HistoryDB), nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// DebugLogPath returns the rotating debug log path for root.
func (c *Config) DebugLogPath(root string) (string, error) {
	if c.DebugLog != "" {
		return resolve(root, c.DebugLog), nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "patchrun.log"), nil
}

// StateDir returns ~/.patchrun, where state shared across working trees lives.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".patchrun"), nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
