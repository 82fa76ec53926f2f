package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS phrase_cache (
	phrase      TEXT PRIMARY KEY,
	translation TEXT NOT NULL,
	timestamp   REAL NOT NULL
)`

// SQLitePersister keeps the cache in a SQLite table. Save replaces the table
// contents inside one transaction so the cache is still written as a unit.
type SQLitePersister struct {
	db   *sql.DB
	path string
}

// NewSQLitePersister opens (or creates) the database at path.
func NewSQLitePersister(path string) (*SQLitePersister, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLitePersister{db: db, path: path}, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA synchronous = NORMAL;",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	return nil
}

// Load reads every row.
func (p *SQLitePersister) Load(ctx context.Context) (map[string]Entry, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT phrase, translation, timestamp FROM phrase_cache`)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "query cache"), "path", p.path)
	}
	defer rows.Close()

	entries := make(map[string]Entry)
	for rows.Next() {
		var phrase string
		var entry Entry
		if err := rows.Scan(&phrase, &entry.Translation, &entry.Timestamp); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "scan cache row"), "path", p.path)
		}
		entries[phrase] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "iterate cache rows"), "path", p.path)
	}
	return entries, nil
}

// Save replaces the table contents with entries.
func (p *SQLitePersister) Save(ctx context.Context, entries map[string]Entry) (err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "begin cache transaction"), "path", p.path)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM phrase_cache`); err != nil {
		return zerr.With(zerr.Wrap(err, "clear cache table"), "path", p.path)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO phrase_cache (phrase, translation, timestamp) VALUES (?, ?, ?)`)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "prepare cache insert"), "path", p.path)
	}
	defer stmt.Close()

	for phrase, entry := range entries {
		if _, err = stmt.ExecContext(ctx, phrase, entry.Translation, entry.Timestamp); err != nil {
			return zerr.With(zerr.Wrap(err, "insert cache row"), "path", p.path)
		}
	}

	if err = tx.Commit(); err != nil {
		return zerr.With(zerr.Wrap(err, "commit cache transaction"), "path", p.path)
	}
	return nil
}

// Close closes the database.
func (p *SQLitePersister) Close() error {
	return p.db.Close()
}

// Verify SQLitePersister implements Persister
var _ Persister = (*SQLitePersister)(nil)
