package disccache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"retroforge/internal/disc"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; mismatched databases are discarded and rebuilt.
const schemaVersion = 1

// Store is a SQLite-backed descriptor cache.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the cache database at path, creating parent
// directories as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?%s", url.PathEscape(path), "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 1 {
		var version int
		if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
			return fmt.Errorf("read schema version: %w", err)
		}
		if version == schemaVersion {
			return nil
		}
		// The cache is disposable; rebuild on mismatch rather than migrate.
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS discs; DROP TABLE IF EXISTS schema_version"); err != nil {
			return fmt.Errorf("reset stale cache schema: %w", err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Lookup returns the cached descriptor for path when size and mtime still
// match. The second return is false on miss or stale entry.
func (s *Store) Lookup(ctx context.Context, path string, size, mtimeUnix int64) (*disc.Descriptor, bool, error) {
	var (
		storedSize  int64
		storedMtime int64
		payload     string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT size, mtime_unix, payload FROM discs WHERE path = ?", path,
	).Scan(&storedSize, &storedMtime, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}
	if storedSize != size || storedMtime != mtimeUnix {
		return nil, false, nil
	}

	var d disc.Descriptor
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, false, fmt.Errorf("decode cached descriptor: %w", err)
	}
	d.Path = path
	return &d, true, nil
}

// Put upserts the descriptor for its path.
func (s *Store) Put(ctx context.Context, d *disc.Descriptor, size, mtimeUnix int64) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO discs (path, size, mtime_unix, payload, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime_unix = excluded.mtime_unix,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		d.Path, size, mtimeUnix, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("store descriptor: %w", err)
	}
	return nil
}

// Prune removes entries whose path is not in the keep set. Called after a
// full scan so deleted files do not accumulate.
func (s *Store) Prune(ctx context.Context, keep map[string]struct{}) error {
	rows, err := s.db.QueryContext(ctx, "SELECT path FROM discs")
	if err != nil {
		return fmt.Errorf("list cache paths: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return fmt.Errorf("scan cache path: %w", err)
		}
		if _, ok := keep[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate cache paths: %w", err)
	}

	for _, path := range stale {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM discs WHERE path = ?", path); err != nil {
			return fmt.Errorf("prune cache entry: %w", err)
		}
	}
	return nil
}
