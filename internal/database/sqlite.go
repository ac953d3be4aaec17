package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vaultwars/internal/database/migrations"
	"vaultwars/internal/vw"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements vw.Database as a document store on SQLite.
//
// Vaults and loadouts are JSON documents keyed by (collection, id) with a
// version column used for compare-and-swap writes. Offline moves, siege
// attacks and operations are append-mostly tables with indexed columns for
// the range queries the core runs.
type SQLiteDatabase struct {
	db     *sql.DB
	path   string
	events *broadcaster
}

// NewSQLiteDatabase creates a new SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteDatabase{db: db, path: path, events: newBroadcaster()}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db, events: newBroadcaster()}
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases
	// from splitting across pooled connections.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}
	return db, nil
}

// Documents

func (s *SQLiteDatabase) findDocument(ctx context.Context, collection, id string, dst any) (int64, bool, error) {
	var (
		version int64
		body    string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT version, body FROM documents WHERE collection = ? AND id = ?",
		collection, id,
	).Scan(&version, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return 0, false, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return version, true, nil
}

func (s *SQLiteDatabase) FindVault(ctx context.Context, ownerID string) (*vw.Vault, error) {
	var v vw.Vault
	version, ok, err := s.findDocument(ctx, vw.CollectionVaults, ownerID, &v)
	if err != nil || !ok {
		return nil, err
	}
	v.Version = version
	return &v, nil
}

func (s *SQLiteDatabase) FindLoadout(ctx context.Context, ownerID string) (*vw.Loadout, error) {
	var l vw.Loadout
	version, ok, err := s.findDocument(ctx, vw.CollectionLoadouts, ownerID, &l)
	if err != nil || !ok {
		return nil, err
	}
	l.Version = version
	if l.Moves == nil {
		l.Moves = make(map[string]*vw.MoveState)
	}
	if l.Cards == nil {
		l.Cards = make(map[string]*vw.CardState)
	}
	return &l, nil
}

// putDocument writes a document if its stored version still equals expected.
// expected zero means the document must not exist yet.
func putDocument(ctx context.Context, tx *sql.Tx, collection, id string, expected int64, doc any, now time.Time) (int64, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}

	var res sql.Result
	if expected == 0 {
		res, err = tx.ExecContext(ctx,
			`INSERT INTO documents (collection, id, version, body, updated_at) VALUES (?, ?, 1, ?, ?)
			 ON CONFLICT (collection, id) DO NOTHING`,
			collection, id, string(body), now.UnixNano(),
		)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE documents SET version = version + 1, body = ?, updated_at = ?
			 WHERE collection = ? AND id = ? AND version = ?`,
			string(body), now.UnixNano(), collection, id, expected,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("writing %s/%s: %w", collection, id, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: %s/%s changed since version %d", vw.ErrVersionConflict, collection, id, expected)
	}
	return expected + 1, nil
}

// Commit applies the changeset in one transaction. Versions of the written
// documents are advanced only once the transaction has committed.
func (s *SQLiteDatabase) Commit(ctx context.Context, cs *vw.Changeset) error {
	if cs.Empty() {
		return nil
	}
	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		events        []vw.ChangeEvent
		vaultVersions = make([]int64, len(cs.Vaults))
		loadVersions  = make([]int64, len(cs.Loadouts))
	)

	for i, v := range cs.Vaults {
		version, err := putDocument(ctx, tx, vw.CollectionVaults, v.OwnerID, v.Version, v, now)
		if err != nil {
			return err
		}
		vaultVersions[i] = version
		events = append(events, vw.ChangeEvent{Collection: vw.CollectionVaults, ID: v.OwnerID, Version: version})
	}
	for i, l := range cs.Loadouts {
		version, err := putDocument(ctx, tx, vw.CollectionLoadouts, l.OwnerID, l.Version, l, now)
		if err != nil {
			return err
		}
		loadVersions[i] = version
		events = append(events, vw.ChangeEvent{Collection: vw.CollectionLoadouts, ID: l.OwnerID, Version: version})
	}

	for _, m := range cs.OfflineMoves {
		if err := upsertOfflineMove(ctx, tx, m); err != nil {
			return err
		}
		events = append(events, vw.ChangeEvent{Collection: vw.CollectionOfflineMoves, ID: m.ID})
	}
	for _, a := range cs.SiegeAttacks {
		if err := insertSiegeAttack(ctx, tx, a); err != nil {
			return err
		}
		events = append(events, vw.ChangeEvent{Collection: vw.CollectionSiegeAttacks, ID: a.ID})
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	for i, v := range cs.Vaults {
		v.Version = vaultVersions[i]
	}
	for i, l := range cs.Loadouts {
		l.Version = loadVersions[i]
	}
	s.events.publish(events)
	return nil
}

// Offline moves

// upsertOfflineMove appends a new entry or, for an existing id, updates its
// status. No other column of a stored entry ever changes.
func upsertOfflineMove(ctx context.Context, tx *sql.Tx, m *vw.OfflineMove) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO offline_moves (id, user_id, type, status, target_id, detail, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at`,
		m.ID, m.UserID, string(m.Type), string(m.Status), m.TargetID, m.Detail,
		m.CreatedAt.UnixNano(), m.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("writing offline move %s: %w", m.ID, err)
	}
	return nil
}

const offlineMoveColumns = "id, user_id, type, status, target_id, detail, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOfflineMove(row rowScanner) (*vw.OfflineMove, error) {
	var (
		m                    vw.OfflineMove
		typ, status          string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&m.ID, &m.UserID, &typ, &status, &m.TargetID, &m.Detail, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.Type = vw.OfflineMoveType(typ)
	m.Status = vw.OfflineMoveStatus(status)
	m.CreatedAt = time.Unix(0, createdAt).UTC()
	m.UpdatedAt = time.Unix(0, updatedAt).UTC()
	return &m, nil
}

func (s *SQLiteDatabase) FindOfflineMoves(ctx context.Context, userID string, from, to time.Time) ([]*vw.OfflineMove, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+offlineMoveColumns+` FROM offline_moves
		 WHERE user_id = ? AND created_at >= ? AND created_at < ?
		 ORDER BY created_at, rowid`,
		userID, from.UnixNano(), to.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("listing offline moves: %w", err)
	}
	defer rows.Close()

	var moves []*vw.OfflineMove
	for rows.Next() {
		m, err := scanOfflineMove(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning offline move: %w", err)
		}
		moves = append(moves, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing offline moves: %w", err)
	}
	return moves, nil
}

func (s *SQLiteDatabase) FindOfflineMove(ctx context.Context, id string) (*vw.OfflineMove, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+offlineMoveColumns+" FROM offline_moves WHERE id = ?", id)
	m, err := scanOfflineMove(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, fmt.Errorf("finding offline move: %w", err)
	}
	return m, nil
}

// Siege attacks

func insertSiegeAttack(ctx context.Context, tx *sql.Tx, a *vw.SiegeAttack) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding siege attack %s: %w", a.ID, err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO siege_attacks (id, attacker_id, target_id, created_at, body) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.AttackerID, a.TargetID, a.CreatedAt.UnixNano(), string(body),
	)
	if err != nil {
		return fmt.Errorf("writing siege attack %s: %w", a.ID, err)
	}
	return nil
}

func (s *SQLiteDatabase) FindSiegeAttacks(ctx context.Context, targetID string, limit int) ([]*vw.SiegeAttack, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM siege_attacks WHERE target_id = ?
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		targetID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing siege attacks: %w", err)
	}
	defer rows.Close()

	var attacks []*vw.SiegeAttack
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning siege attack: %w", err)
		}
		var a vw.SiegeAttack
		if err := json.Unmarshal([]byte(body), &a); err != nil {
			return nil, fmt.Errorf("decoding siege attack: %w", err)
		}
		attacks = append(attacks, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing siege attacks: %w", err)
	}
	return attacks, nil
}

// Subscribe streams committed changes until ctx is done.
func (s *SQLiteDatabase) Subscribe(ctx context.Context, collection string) (<-chan vw.ChangeEvent, error) {
	switch collection {
	case "", vw.CollectionVaults, vw.CollectionLoadouts, vw.CollectionOfflineMoves, vw.CollectionSiegeAttacks:
	default:
		return nil, fmt.Errorf("unknown collection: %q", collection)
	}
	return s.events.subscribe(ctx, collection), nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*vw.Operation, error) {
	startedAt := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO operations (operation, parameters, started_at) VALUES (?, ?, ?)",
		operation, parameters, startedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &vw.Operation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		Status:     "running",
		StartedAt:  startedAt,
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	_, err := s.db.Exec(
		"UPDATE operations SET status = ?, finished_at = ? WHERE id = ?",
		status, time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(limit int) ([]*vw.Operation, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, status, started_at, finished_at
		 FROM operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*vw.Operation
	for rows.Next() {
		var (
			op         vw.Operation
			startedAt  int64
			finishedAt sql.NullInt64
		)
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.Status, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		op.StartedAt = time.Unix(0, startedAt)
		if finishedAt.Valid {
			t := time.Unix(0, finishedAt.Int64)
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	var id int64
	if err := s.db.QueryRow("SELECT COALESCE(MAX(id), 0) FROM operations").Scan(&id); err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// Migrate brings the schema up to date.
func (s *SQLiteDatabase) Migrate() error {
	return migrations.MigrateUp(s.db)
}

// SchemaVersion reports the applied migration version and whether it is dirty.
func (s *SQLiteDatabase) SchemaVersion() (uint, bool, error) {
	return migrations.SchemaVersion(s.db)
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo creates a complete copy of the database at destPath using VACUUM INTO.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	_, err := s.db.Exec("VACUUM INTO ?", destPath)
	if err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

// Close ends every subscription and closes the database connection.
func (s *SQLiteDatabase) Close() error {
	s.events.close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements vw.Database interface
var _ vw.Database = (*SQLiteDatabase)(nil)
