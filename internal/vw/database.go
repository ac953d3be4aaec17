package vw

import (
	"context"
	"time"
)

// Document collections written by the core.
const (
	CollectionVaults       = "vaults"
	CollectionLoadouts     = "loadouts"
	CollectionOfflineMoves = "offline_moves"
	CollectionSiegeAttacks = "siege_attacks"
)

// Changeset is a set of writes committed atomically.
//
// Vaults and Loadouts are compare-and-swap writes: each carries the version it
// was read at (zero to create). If any stored version differs, the whole
// changeset fails with ErrVersionConflict and nothing is written. On success
// the store advances the Version field of every written document.
type Changeset struct {
	Vaults       []*Vault
	Loadouts     []*Loadout
	OfflineMoves []*OfflineMove // inserted, or status updated when the id exists
	SiegeAttacks []*SiegeAttack
}

// Empty reports whether the changeset writes nothing.
func (c *Changeset) Empty() bool {
	return len(c.Vaults) == 0 && len(c.Loadouts) == 0 && len(c.OfflineMoves) == 0 && len(c.SiegeAttacks) == 0
}

// ChangeEvent notifies subscribers that a document was written.
type ChangeEvent struct {
	Collection string
	ID         string
	Version    int64
}

// Operation records one mutating command run against the store.
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Database is the document store behind the core.
type Database interface {
	// FindVault returns the vault of a player, or nil if none exists.
	FindVault(ctx context.Context, ownerID string) (*Vault, error)

	// FindLoadout returns the loadout of a player, or nil if none exists.
	FindLoadout(ctx context.Context, ownerID string) (*Loadout, error)

	// Commit applies a changeset atomically. See Changeset.
	Commit(ctx context.Context, cs *Changeset) error

	// FindOfflineMoves returns a player's offline moves created in [from, to), oldest first.
	FindOfflineMoves(ctx context.Context, userID string, from, to time.Time) ([]*OfflineMove, error)

	// FindOfflineMove returns one offline move by id, or nil.
	FindOfflineMove(ctx context.Context, id string) (*OfflineMove, error)

	// FindSiegeAttacks returns the most recent attacks on a vault, newest first.
	FindSiegeAttacks(ctx context.Context, targetID string, limit int) ([]*SiegeAttack, error)

	// Subscribe streams change notifications for a collection ("" for all)
	// until ctx is done, when the channel is closed.
	Subscribe(ctx context.Context, collection string) (<-chan ChangeEvent, error)

	// Operation tracking

	CreateOperation(operation string, parameters string) (*Operation, error)
	FinishOperation(id int64, status string) error
	ListOperations(limit int) ([]*Operation, error)
	MaxOperationID() (int64, error)

	// CheckMigrations verifies the schema is current.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the store to destPath.
	BackupTo(destPath string) error

	// Close closes the database connection.
	Close() error
}
