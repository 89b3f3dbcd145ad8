package easel

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds user-level editor settings.
type Config struct {
	SaveDirectory string  `yaml:"save_directory"`
	Autosave      bool    `yaml:"autosave"`
	ExportScale   float64 `yaml:"export_scale"`
	CanvasWidth   int     `yaml:"canvas_width"`
	CanvasHeight  int     `yaml:"canvas_height"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Autosave:     true,
		ExportScale:  1.0,
		CanvasWidth:  1280,
		CanvasHeight: 800,
	}
}

// DefaultConfigPath returns ~/.config/easel/config.yaml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "easel", "config.yaml")
}

// LoadConfig reads a yaml config file. A missing file (or empty path) is
// not an error: defaults are returned. A file that exists but cannot be
// parsed returns defaults alongside the error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	if cfg.ExportScale <= 0 {
		cfg.ExportScale = 1.0
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 1280
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = 800
	}
	cfg.SaveDirectory = expandHome(cfg.SaveDirectory)
	return cfg, nil
}

// expandHome resolves a leading ~ in a path.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
