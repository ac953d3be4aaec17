package app

import (
	"fmt"
	"os"
	"path/filepath"

	"vaultwars/internal/config"
)

// Env is where the CLI finds its config and data, taken from the environment
// with XDG-style fallbacks:
//   - VW_CONFIG_PATH: config file (default ~/.config/vw.toml)
//   - VW_HOME: data directory (default ~/.local/share/vw)
//   - VW_CATALOG: move and card catalog replacing the configured catalog_path,
//     for trying out balance changes without editing the config
type Env struct {
	ConfigPath  string
	BaseDir     string
	LogDir      string
	CatalogPath string
}

// LoadEnv resolves the Env of the current process.
func LoadEnv() (*Env, error) {
	configPath := os.Getenv("VW_CONFIG_PATH")
	baseDir := os.Getenv("VW_HOME")
	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "vw.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "vw")
		}
	}

	return &Env{
		ConfigPath:  configPath,
		BaseDir:     baseDir,
		LogDir:      filepath.Join(baseDir, "log"),
		CatalogPath: os.Getenv("VW_CATALOG"),
	}, nil
}

// Apply overlays the environment's overrides on cfg.
func (e *Env) Apply(cfg *config.Config) {
	if e.CatalogPath != "" {
		cfg.CatalogPath = e.CatalogPath
	}
}
