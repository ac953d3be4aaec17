package database

import (
	"fmt"
	"os"
	"path/filepath"

	"vaultwars/internal/config"
)

// NewDatabaseFromConfig creates a SQLiteDatabase based on the database config type.
// The memory type is migrated on open since it starts empty every run.
func NewDatabaseFromConfig(cfg config.DatabaseConfig, playerID string) (*SQLiteDatabase, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteDatabase(DatabasePath(cfg, playerID))
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating memory database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

// DatabasePath returns the file a sqlite database config points at.
func DatabasePath(cfg config.DatabaseConfig, playerID string) string {
	return filepath.Join(cfg.DataDir, playerID+".db")
}
