package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds operator preferences. Playback code never computes paths
// itself; everything consumes the directories resolved here.
type Config struct {
	Shell     string  `yaml:"shell"`      // shell binary for playback sessions
	Speed     float64 `yaml:"speed"`      // default speed multiplier
	NoInput   bool    `yaml:"no_input"`   // disable control keys and clipboard
	DataDir   string  `yaml:"data_dir"`   // overrides the XDG data location
	StateFile string  `yaml:"state_file"` // overrides the session index path
}

// Load reads the config from ~/.config/scenecast/config.yaml.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	cfg := &Config{Speed: 1}

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	path := filepath.Join(home, ".config", "scenecast", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Speed <= 0 {
		cfg.Speed = 1
	}
	// Expand ~ in overrides
	if len(cfg.DataDir) > 0 && cfg.DataDir[0] == '~' {
		cfg.DataDir = filepath.Join(home, cfg.DataDir[1:])
	}
	if len(cfg.StateFile) > 0 && cfg.StateFile[0] == '~' {
		cfg.StateFile = filepath.Join(home, cfg.StateFile[1:])
	}

	return cfg, nil
}

// dataDir resolves $XDG_DATA_HOME/scenecast, honoring the config override.
func (c *Config) dataDir() (string, error) {
	if c.DataDir != "" {
		return c.DataDir, nil
	}
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "scenecast"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "scenecast"), nil
}

// ScenesDir resolves the scene file directory.
func (c *Config) ScenesDir() (string, error) {
	dir, err := c.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "scenes"), nil
}

// SessionsDir resolves the session snapshot directory.
func (c *Config) SessionsDir() (string, error) {
	dir, err := c.dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// IndexPath resolves the session index database at
// $XDG_STATE_HOME/scenecast/index.db, honoring the config override.
func (c *Config) IndexPath() (string, error) {
	if c.StateFile != "" {
		return c.StateFile, nil
	}
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "scenecast", "index.db"), nil
}
