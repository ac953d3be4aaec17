package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vaultwars/internal/archive"
	"vaultwars/internal/config"
	"vaultwars/internal/database"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("player-1", base)
	cfg.Archive = config.ArchiveConfig{Type: "filesystem", FSRoot: filepath.Join(base, "archive")}
	cfg.Seal.Type = "none"

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.PlayerID)
	if err != nil {
		t.Fatalf("NewDatabaseFromConfig() error = %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	db.Close()
	return cfg
}

func archivedVersion(t *testing.T, cfg *config.Config) int64 {
	t.Helper()
	a, err := archive.NewFileSystemArchive(cfg.Archive.FSRoot)
	if err != nil {
		t.Fatalf("NewFileSystemArchive() error = %v", err)
	}
	v, err := a.GetSnapshotVersion(cfg.PlayerID)
	if err != nil {
		t.Fatalf("GetSnapshotVersion() error = %v", err)
	}
	return v
}

func TestVWApp_MutatingCommandArchivesSnapshot(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	a, err := NewVWApp(ctx, cfg, "Credit")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	balance, err := a.Credit(ctx, 150)
	if err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if balance != 150 {
		t.Errorf("Credit() = %d, want 150", balance)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := archivedVersion(t, cfg); got != 1 {
		t.Errorf("archived version = %d, want 1", got)
	}

	// A read-only command leaves the archive alone.
	a, err = NewVWApp(ctx, cfg, "GetHistory")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Operation != "Credit" || ops[0].Status != "success" {
		t.Errorf("GetHistory() = %+v, want one successful Credit", ops)
	}
	if ops[0].Parameters != "points=150" {
		t.Errorf("Parameters = %q, want %q", ops[0].Parameters, "points=150")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := archivedVersion(t, cfg); got != 1 {
		t.Errorf("archived version after read = %d, want 1", got)
	}
}

func TestVWApp_OfflineStatusIsReadOnly(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	a, err := NewVWApp(ctx, cfg, "Credit")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	if _, err := a.Credit(ctx, 40); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	a, err = NewVWApp(ctx, cfg, "OfflineStatus")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	if _, err := a.OfflineStatus(ctx); err != nil {
		t.Fatalf("OfflineStatus() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := archivedVersion(t, cfg); got != 1 {
		t.Errorf("archived version after OfflineStatus = %d, want 1", got)
	}

	a, err = NewVWApp(ctx, cfg, "GetHistory")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	defer a.Close()
	ops, err := a.GetHistory(10)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Operation != "Credit" {
		t.Errorf("GetHistory() = %+v, want only the Credit", ops)
	}
}

func TestVWApp_FailedCommandRecordsError(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	a, err := NewVWApp(ctx, cfg, "Debit")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	if err := a.Debit(ctx, 10); err == nil {
		t.Error("Debit() on empty vault expected error")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	a, err = NewVWApp(ctx, cfg, "GetHistory")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	defer a.Close()
	ops, err := a.GetHistory(1)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if len(ops) != 1 || ops[0].Status != "error" {
		t.Errorf("GetHistory() = %+v, want one errored operation", ops)
	}
}

func TestVWApp_RefusesStaleStore(t *testing.T) {
	ctx := context.Background()
	cfg := newTestConfig(t)

	a, err := NewVWApp(ctx, cfg, "Credit")
	if err != nil {
		t.Fatalf("NewVWApp() error = %v", err)
	}
	if _, err := a.Credit(ctx, 40); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Replace the local store with a fresh one, as on a second host.
	if err := os.Remove(database.DatabasePath(cfg.Database, cfg.PlayerID)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.PlayerID)
	if err != nil {
		t.Fatalf("NewDatabaseFromConfig() error = %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	db.Close()

	if _, err := NewVWApp(ctx, cfg, "Credit"); err == nil {
		t.Fatal("NewVWApp() expected error for store behind archive")
	}

	version, err := RestoreFromArchive(ctx, cfg, "")
	if err != nil {
		t.Fatalf("RestoreFromArchive() error = %v", err)
	}
	if version != 1 {
		t.Errorf("RestoreFromArchive() = %d, want 1", version)
	}

	a, err = NewVWApp(ctx, cfg, "ShowVault")
	if err != nil {
		t.Fatalf("NewVWApp() after restore error = %v", err)
	}
	defer a.Close()
	v, err := a.Vault(ctx, "")
	if err != nil {
		t.Fatalf("Vault() error = %v", err)
	}
	if v.CurrentPoints != 40 {
		t.Errorf("CurrentPoints = %d, want 40", v.CurrentPoints)
	}
}

func TestRestoreFromArchive_NoArchive(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Archive = config.ArchiveConfig{}

	if _, err := RestoreFromArchive(context.Background(), cfg, ""); err == nil {
		t.Error("RestoreFromArchive() expected error without archive")
	}
}

func TestSetupSeal(t *testing.T) {
	cfg := config.NewConfig("player-1", t.TempDir())

	if err := SetupSeal(cfg, "secret"); err != nil {
		t.Fatalf("SetupSeal() error = %v", err)
	}
	if err := SetupSeal(cfg, "secret"); err == nil {
		t.Error("SetupSeal() twice expected error")
	}
}

func TestRulesFromConfig(t *testing.T) {
	cfg := config.RulesConfig{
		Capacity:       500,
		MaxMovesPerDay: 5,
		EffectStacking: "replace",
		Generator:      []config.GeneratorRateConfig{{PointsPerDay: 10, ShieldsPerDay: 1}},
	}

	rules := rulesFromConfig(cfg)
	if rules.Capacity != 500 || rules.MaxMovesPerDay != 5 {
		t.Errorf("rules = %+v, want overrides applied", rules)
	}
	if rules.RestoreBaseCost != 100 {
		t.Errorf("RestoreBaseCost = %d, want default 100", rules.RestoreBaseCost)
	}
	if rules.Stacking != "replace" {
		t.Errorf("Stacking = %q, want replace", rules.Stacking)
	}
	if len(rules.GeneratorRates) != 1 || rules.GeneratorRates[0].PointsPerDay != 10 {
		t.Errorf("GeneratorRates = %+v, want single configured level", rules.GeneratorRates)
	}
}
