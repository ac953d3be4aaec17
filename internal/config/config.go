package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for vw.
type Config struct {
	PlayerID    string         `toml:"player_id"`
	BaseDir     string         `toml:"base_dir"`
	LogDir      string         `toml:"log_dir"`
	CatalogPath string         `toml:"catalog_path"` // empty uses the built-in catalog
	Rules       RulesConfig    `toml:"rules"`
	Database    DatabaseConfig `toml:"database"`
	Archive     ArchiveConfig  `toml:"archive"`
	Seal        SealConfig     `toml:"seal"`
}

// RulesConfig holds the tunable economy parameters. Zero values fall back
// to the built-in defaults.
type RulesConfig struct {
	Zone              string `toml:"zone"`
	BoundaryHour      int    `toml:"boundary_hour"`
	Capacity          int    `toml:"capacity"`
	MaxShield         int    `toml:"max_shield"`
	MaxMovesPerDay    int    `toml:"max_moves_per_day"`
	RestoreBaseCost   int    `toml:"restore_base_cost"`
	RestoreStepCost   int    `toml:"restore_step_cost"`
	HealthRestoreCost int    `toml:"health_restore_cost"`
	ShieldBuffAmount  int    `toml:"shield_buff_amount"`
	EffectStacking    string `toml:"effect_stacking"` // "stack" (default) or "replace"

	// Generator is the rate table indexed by level-1.
	Generator []GeneratorRateConfig `toml:"generator,omitempty"`
}

// GeneratorRateConfig is the daily output of one generator level.
type GeneratorRateConfig struct {
	PointsPerDay  int `toml:"points_per_day"`
	ShieldsPerDay int `toml:"shields_per_day"`
}

// DatabaseConfig represents configuration for the game state store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// ArchiveConfig represents configuration for the snapshot archive.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type ArchiveConfig struct {
	Type string `toml:"type"` // "", "memory", "filesystem" or "s3"; empty disables archiving

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"` // S3-compatible stores such as MinIO or R2

	// Static credentials; when empty the default AWS credential chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`
}

// SealConfig holds paths to the age key pair used to seal archived snapshots.
type SealConfig struct {
	Type           string `toml:"type"` // "age" (default) or "none"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a new Config with the provided values and default paths.
func NewConfig(playerID, baseDir string) *Config {
	return &Config{
		PlayerID: playerID,
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		Rules:    defaultRules(),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Seal: SealConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "vw.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "vw.key"),
		},
	}
}

func defaultRules() RulesConfig {
	return RulesConfig{
		Zone:           "America/New_York",
		BoundaryHour:   8,
		EffectStacking: "stack",
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Rules keys missing from
// the input keep their defaults; an explicit boundary_hour = 0 is midnight.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Config{Rules: defaultRules()}
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
