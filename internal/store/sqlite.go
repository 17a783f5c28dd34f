package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/zenfocus/zenfocus/internal/model"
	"github.com/zenfocus/zenfocus/internal/queue"
)

// Fixed keys for the two persisted blobs. Everything outside this
// package treats both values as opaque JSON.
const (
	snapshotKey = "zenfocus_state"
	queueKey    = "offline_queue"
)

// SQLiteStore is the durable local storage behind the snapshot and the
// mutation queue. Both are stored as single serialized blobs in a
// key/value table.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// getBlob reads a raw blob by key. Missing keys return (nil, nil).
func (s *SQLiteStore) getBlob(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM blobs WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %q: %w", key, err)
	}
	return []byte(value), nil
}

// setBlob writes a raw blob under key, replacing any previous value.
func (s *SQLiteStore) setBlob(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO blobs (key, value, updated_at)
		VALUES (?, ?, ?)`,
		key, string(value), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("writing blob %q: %w", key, err)
	}
	return nil
}

// LoadSnapshot reads the persisted snapshot. Missing or corrupt data
// degrades to a fresh default snapshot so first run and corruption both
// start clean instead of crashing; only storage-level failures are
// reported.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	data, err := s.getBlob(ctx, snapshotKey)
	if err != nil {
		return model.NewSnapshot(), err
	}
	if len(data) == 0 {
		return model.NewSnapshot(), nil
	}

	snap := model.NewSnapshot()
	if err := json.Unmarshal(data, snap); err != nil {
		// Corrupt blob: start fresh rather than fail.
		return model.NewSnapshot(), nil
	}
	if snap.Stats.HydrationTarget == 0 {
		snap.Stats.HydrationTarget = model.DefaultHydrationTarget
	}
	return snap, nil
}

// SaveSnapshot serializes and writes the whole snapshot.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	return s.setBlob(ctx, snapshotKey, data)
}

// LoadQueue reads the persisted mutation queue in enqueue order.
// Missing or corrupt data degrades to an empty queue.
func (s *SQLiteStore) LoadQueue(ctx context.Context) ([]queue.Mutation, error) {
	data, err := s.getBlob(ctx, queueKey)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var mutations []queue.Mutation
	if err := json.Unmarshal(data, &mutations); err != nil {
		return nil, nil
	}
	return mutations, nil
}

// SaveQueue serializes and writes the whole mutation queue.
func (s *SQLiteStore) SaveQueue(ctx context.Context, mutations []queue.Mutation) error {
	if mutations == nil {
		mutations = []queue.Mutation{}
	}
	data, err := json.Marshal(mutations)
	if err != nil {
		return fmt.Errorf("marshaling queue: %w", err)
	}
	return s.setBlob(ctx, queueKey, data)
}
