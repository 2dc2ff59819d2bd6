package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the configuration file, if any, then applies the environment.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	path, err := l.GetConfigPath()
	if err != nil {
		return nil, err
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		cfg, err = Parse(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath is where `config save` writes when no path is given.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tenzor", "config.rc")
}

// GetConfigPath returns the path to the configuration file, or empty string
// if not found. A path named by the override or $TENZOR_CONFIG must exist;
// when it does not, the path is returned along with the error.
func (l *Loader) GetConfigPath() (string, error) {
	for _, p := range []string{l.OverridePath, os.Getenv(EnvConfig)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return p, fmt.Errorf("config %s: %w", p, err)
		}
		return p, nil
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".tenzorrc")
		if fileExists(localPath) {
			return localPath, nil
		}
	}

	if p := DefaultPath(); fileExists(p) {
		return p, nil
	}
	return "", nil
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
