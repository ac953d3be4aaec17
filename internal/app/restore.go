package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"vaultwars/internal/archive"
	"vaultwars/internal/config"
	"vaultwars/internal/database"
	"vaultwars/internal/seal"
)

// SetupSeal generates the snapshot key pair protected by passphrase.
// It refuses to overwrite existing keys.
func SetupSeal(cfg *config.Config, passphrase string) error {
	sealer, err := seal.NewSealerFromConfig(cfg.Seal)
	if err != nil {
		return err
	}
	if cfg.Seal.Type != "none" && sealer.IsConfigured() {
		return fmt.Errorf("seal keys already exist at %s", cfg.Seal.PrivateKeyPath)
	}
	return sealer.Setup(passphrase)
}

// RestoreFromArchive replaces the local sqlite store with the latest archived
// snapshot and returns the version it was taken at.
func RestoreFromArchive(ctx context.Context, cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("restore requires a sqlite database, got %q", cfg.Database.Type)
	}

	arc, err := archive.NewArchiveFromConfig(ctx, cfg.Archive)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}
	if arc == nil {
		return 0, fmt.Errorf("no archive configured")
	}

	version, err := arc.GetSnapshotVersion(cfg.PlayerID)
	if err != nil {
		return 0, fmt.Errorf("checking snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("no snapshot archived for player %s", cfg.PlayerID)
	}

	sealer, err := seal.NewSealerFromConfig(cfg.Seal)
	if err != nil {
		return 0, fmt.Errorf("creating sealer: %w", err)
	}
	unsealer, err := sealer.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking seal: %w", err)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating data directory: %w", err)
	}
	dest := database.DatabasePath(cfg.Database, cfg.PlayerID)

	sealed, err := os.CreateTemp(filepath.Dir(dest), ".restore-*.sealed")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(sealed.Name())
	defer sealed.Close()

	if err := arc.GetSnapshot(cfg.PlayerID, sealed); err != nil {
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}
	if _, err := sealed.Seek(0, 0); err != nil {
		return 0, fmt.Errorf("rewinding snapshot: %w", err)
	}

	plain, err := os.CreateTemp(filepath.Dir(dest), ".restore-*.db")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	plainPath := plain.Name()
	defer os.Remove(plainPath)

	if err := unsealer.Unseal(sealed, plain); err != nil {
		plain.Close()
		return 0, fmt.Errorf("unsealing snapshot: %w", err)
	}
	if err := plain.Close(); err != nil {
		return 0, fmt.Errorf("closing restored store: %w", err)
	}

	// Verify the snapshot opens and is at the current schema before swapping.
	db, err := database.NewSQLiteDatabase(plainPath)
	if err != nil {
		return 0, fmt.Errorf("opening restored store: %w", err)
	}
	checkErr := db.CheckMigrations()
	db.Close()
	if checkErr != nil {
		return 0, fmt.Errorf("restored store schema: %w", checkErr)
	}

	if err := os.Rename(plainPath, dest); err != nil {
		return 0, fmt.Errorf("replacing local store: %w", err)
	}
	return version, nil
}
