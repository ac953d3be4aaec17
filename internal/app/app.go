package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vaultwars/internal/archive"
	"vaultwars/internal/catalog"
	"vaultwars/internal/config"
	"vaultwars/internal/database"
	"vaultwars/internal/seal"
	"vaultwars/internal/vw"
)

// VWApp is the application layer between the CLI and VWService.
// It constructs all dependencies from config, acts as the configured
// player, and manages the store lifecycle on Close.
type VWApp struct {
	cfg     *config.Config
	db      *database.SQLiteDatabase
	archive vw.Archive // nil when archiving is disabled
	sealer  vw.Sealer
	service *vw.VWService
	op      *Operation
	logger  *slog.Logger
	logFile *os.File
}

// NewVWApp creates a fully wired VWApp from the given config.
// operation identifies the CLI command being run (e.g. "UseMove", "Credit").
// The caller must call Close when done.
func NewVWApp(ctx context.Context, cfg *config.Config, operation string) (*VWApp, error) {
	if cfg.PlayerID == "" {
		return nil, fmt.Errorf("player_id is not configured")
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	boundary, err := vw.NewBoundaryResolver(cfg.Rules.Zone, cfg.Rules.BoundaryHour)
	if err != nil {
		return nil, err
	}

	arc, err := archive.NewArchiveFromConfig(ctx, cfg.Archive)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	sealer, err := seal.NewSealerFromConfig(cfg.Seal)
	if err != nil {
		return nil, fmt.Errorf("creating sealer: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	// A snapshot newer than the local store means another host played on.
	if arc != nil {
		remoteVersion, err := arc.GetSnapshotVersion(cfg.PlayerID)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking remote snapshot version: %w", err)
		}
		localMax, err := db.MaxOperationID()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("checking local store version: %w", err)
		}
		if remoteVersion > localMax {
			db.Close()
			return nil, fmt.Errorf("local store is behind archive (local=%d, remote=%d): run archive restore", localMax, remoteVersion)
		}
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID, cfg.PlayerID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc, err := vw.NewVWService(db, cat, boundary, rulesFromConfig(cfg.Rules), &slogAdapter{l: logger}, vw.RealClock{}, vw.UUIDGenerator{}, vw.RandomRoller{})
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating service: %w", err)
	}

	return &VWApp{
		cfg:     cfg,
		db:      db,
		archive: arc,
		sealer:  sealer,
		service: svc,
		op:      NewOperation(operation, cfg.PlayerID),
		logger:  logger,
		logFile: logFile,
	}, nil
}

// PlayerID returns the configured acting player.
func (a *VWApp) PlayerID() string { return a.cfg.PlayerID }

// Service exposes the underlying service for read-only queries.
func (a *VWApp) Service() *vw.VWService { return a.service }

// persistOperation saves the operation record, giving it an auto-increment ID.
// Only mutating commands call it; params are recorded as key=value pairs.
func (a *VWApp) persistOperation(params ...any) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Describe(params...)
	dbOp, err := a.db.CreateOperation(a.op.Command, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// record marks the operation failed when err is non-nil and passes err through.
func (a *VWApp) record(err error) error {
	a.op.Fail(err)
	return err
}

// Vault returns the player's vault, or another player's when ownerID is set.
func (a *VWApp) Vault(ctx context.Context, ownerID string) (*vw.Vault, error) {
	if ownerID == "" || ownerID == a.cfg.PlayerID {
		if err := a.persistOperation(); err != nil {
			return nil, err
		}
		ownerID = a.cfg.PlayerID
	}
	v, err := a.service.Vault(ctx, ownerID)
	return v, a.record(err)
}

// Credit adds points to the player's vault.
func (a *VWApp) Credit(ctx context.Context, points int) (int, error) {
	if err := a.persistOperation("points", points); err != nil {
		return 0, err
	}
	n, err := a.service.Credit(ctx, a.cfg.PlayerID, points)
	return n, a.record(err)
}

// Debit removes points from the player's vault.
func (a *VWApp) Debit(ctx context.Context, points int) error {
	if err := a.persistOperation("points", points); err != nil {
		return err
	}
	return a.record(a.service.Debit(ctx, a.cfg.PlayerID, points))
}

// GrantTruthMetal adds the premium currency.
func (a *VWApp) GrantTruthMetal(ctx context.Context, amount int) error {
	if err := a.persistOperation("amount", amount); err != nil {
		return err
	}
	return a.record(a.service.GrantTruthMetal(ctx, a.cfg.PlayerID, amount))
}

func (a *VWApp) CollectGenerator(ctx context.Context) (int, int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, 0, err
	}
	points, shields, err := a.service.CollectGenerator(ctx, a.cfg.PlayerID)
	return points, shields, a.record(err)
}

func (a *VWApp) UpgradeGenerator(ctx context.Context) (int, int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, 0, err
	}
	level, cost, err := a.service.UpgradeGenerator(ctx, a.cfg.PlayerID)
	return level, cost, a.record(err)
}

func (a *VWApp) RestoreVaultHealth(ctx context.Context, clearCooldown bool) (int, int, error) {
	if err := a.persistOperation("clear_cooldown", clearCooldown); err != nil {
		return 0, 0, err
	}
	restored, cost, err := a.service.RestoreVaultHealth(ctx, a.cfg.PlayerID, clearCooldown)
	return restored, cost, a.record(err)
}

func (a *VWApp) ActivateBoost(ctx context.Context, multiplier float64, d time.Duration, source string) (*vw.Boost, error) {
	if err := a.persistOperation("multiplier", multiplier, "duration", d, "source", source); err != nil {
		return nil, err
	}
	b, err := a.service.ActivateBoost(ctx, a.cfg.PlayerID, multiplier, d, source)
	return b, a.record(err)
}

func (a *VWApp) TakeLoan(ctx context.Context, amount int) error {
	if err := a.persistOperation("amount", amount); err != nil {
		return err
	}
	return a.record(a.service.TakeLoan(ctx, a.cfg.PlayerID, amount))
}

func (a *VWApp) RepayDebt(ctx context.Context, amount int) (int, error) {
	if err := a.persistOperation("amount", amount); err != nil {
		return 0, err
	}
	n, err := a.service.RepayDebt(ctx, a.cfg.PlayerID, amount)
	return n, a.record(err)
}

func (a *VWApp) UnlockMove(ctx context.Context, name string) error {
	if err := a.persistOperation("move", name); err != nil {
		return err
	}
	return a.record(a.service.UnlockMove(ctx, a.cfg.PlayerID, name))
}

func (a *VWApp) UnlockCard(ctx context.Context, name string) error {
	if err := a.persistOperation("card", name); err != nil {
		return err
	}
	return a.record(a.service.UnlockCard(ctx, a.cfg.PlayerID, name))
}

func (a *VWApp) UpgradeMoveMastery(ctx context.Context, name string) (int, error) {
	if err := a.persistOperation("move", name); err != nil {
		return 0, err
	}
	level, err := a.service.UpgradeMoveMastery(ctx, a.cfg.PlayerID, name)
	return level, a.record(err)
}

func (a *VWApp) UpgradeCardMastery(ctx context.Context, name string) (int, error) {
	if err := a.persistOperation("card", name); err != nil {
		return 0, err
	}
	level, err := a.service.UpgradeCardMastery(ctx, a.cfg.PlayerID, name)
	return level, a.record(err)
}

func (a *VWApp) ResetCards(ctx context.Context) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	return a.record(a.service.ResetCards(ctx, a.cfg.PlayerID))
}

func (a *VWApp) StartTurn(ctx context.Context) (*vw.TurnReport, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	r, err := a.service.StartTurn(ctx, a.cfg.PlayerID)
	return r, a.record(err)
}

// UseMove resolves a move against targetID ("" or the player for self moves).
func (a *VWApp) UseMove(ctx context.Context, name, targetID string) (*vw.MoveResult, error) {
	if err := a.persistOperation("move", name, "target", targetID); err != nil {
		return nil, err
	}
	r, err := a.service.UseMove(ctx, a.cfg.PlayerID, name, targetID)
	return r, a.record(err)
}

// CastCard resolves a card against targetID.
func (a *VWApp) CastCard(ctx context.Context, name, targetID string) (*vw.MoveResult, error) {
	if err := a.persistOperation("card", name, "target", targetID); err != nil {
		return nil, err
	}
	r, err := a.service.CastCard(ctx, a.cfg.PlayerID, name, targetID)
	return r, a.record(err)
}

func (a *VWApp) OfflineStatus(ctx context.Context) (vw.OfflineStatus, error) {
	return a.service.OfflineStatus(ctx, a.cfg.PlayerID)
}

func (a *VWApp) OfflineMoves(ctx context.Context) ([]*vw.OfflineMove, error) {
	return a.service.OfflineMoves(ctx, a.cfg.PlayerID)
}

func (a *VWApp) SubmitOfflineMove(ctx context.Context, req vw.OfflineRequest) (*vw.OfflineMove, *vw.MoveResult, error) {
	if err := a.persistOperation("type", req.Type, "target", req.TargetID, "move", req.Move); err != nil {
		return nil, nil, err
	}
	m, r, err := a.service.SubmitOfflineMove(ctx, a.cfg.PlayerID, req)
	return m, r, a.record(err)
}

func (a *VWApp) CompleteOfflineMove(ctx context.Context, id string) (*vw.OfflineMove, error) {
	if err := a.persistOperation("id", id); err != nil {
		return nil, err
	}
	m, err := a.service.CompleteOfflineMove(ctx, a.cfg.PlayerID, id)
	return m, a.record(err)
}

func (a *VWApp) FailOfflineMove(ctx context.Context, id string) (*vw.OfflineMove, error) {
	if err := a.persistOperation("id", id); err != nil {
		return nil, err
	}
	m, err := a.service.FailOfflineMove(ctx, a.cfg.PlayerID, id)
	return m, a.record(err)
}

func (a *VWApp) RestoreOfflineMove(ctx context.Context) (int, error) {
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	cost, err := a.service.RestoreOfflineMove(ctx, a.cfg.PlayerID)
	return cost, a.record(err)
}

// SiegeHistory returns attacks on ownerID's vault ("" for the player).
func (a *VWApp) SiegeHistory(ctx context.Context, ownerID string, limit int) ([]*vw.SiegeAttack, error) {
	if ownerID == "" {
		ownerID = a.cfg.PlayerID
	}
	return a.service.SiegeHistory(ctx, ownerID, limit)
}

// GetHistory returns the most recent operations.
func (a *VWApp) GetHistory(limit int) ([]*vw.Operation, error) {
	return a.service.GetHistory(limit)
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the
// store, and uploads the sealed snapshot to the archive.
// For non-persisted operations: just closes the database.
func (a *VWApp) Close() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if !a.op.Persisted() {
		if err := a.db.Close(); err != nil {
			keep(fmt.Errorf("closing database: %w", err))
		}
		if a.logFile != nil {
			a.logFile.Close()
		}
		return firstErr
	}

	if err := a.db.FinishOperation(a.op.ID, a.op.Status); err != nil {
		keep(fmt.Errorf("finishing operation: %w", err))
	}
	a.logger.Log(context.Background(), a.op.logLevel(), "operation finished", a.op.LogAttrs()...)

	var snapshotPath string
	if a.archive != nil && a.sealer.IsConfigured() {
		tmpDir, err := os.MkdirTemp("", "vw-snapshot-*")
		if err != nil {
			keep(fmt.Errorf("creating temp dir for snapshot: %w", err))
		} else {
			defer os.RemoveAll(tmpDir)
			snapshotPath = filepath.Join(tmpDir, "store.db")
			if err := a.db.BackupTo(snapshotPath); err != nil {
				keep(fmt.Errorf("snapshotting database: %w", err))
				snapshotPath = ""
			}
		}
	}

	if err := a.db.Close(); err != nil {
		keep(fmt.Errorf("closing database: %w", err))
	}

	if snapshotPath != "" {
		keep(a.uploadSnapshot(snapshotPath, a.op.ID))
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// uploadSnapshot seals the snapshot file and uploads it with version as its
// consistency marker.
func (a *VWApp) uploadSnapshot(path string, version int64) error {
	sealedPath := path + ".sealed"
	if err := sealFile(a.sealer, path, sealedPath); err != nil {
		return err
	}

	f, err := os.Open(sealedPath)
	if err != nil {
		return fmt.Errorf("opening sealed snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat sealed snapshot: %w", err)
	}

	if err := a.archive.PutSnapshot(a.cfg.PlayerID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to archive: %w", err)
	}
	return nil
}

func sealFile(sealer vw.Sealer, src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating sealed snapshot: %w", err)
	}
	if err := sealer.Seal(in, out); err != nil {
		out.Close()
		return fmt.Errorf("sealing snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing sealed snapshot: %w", err)
	}
	return nil
}
