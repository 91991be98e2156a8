// Package db persists the shim database as a single SQLite file. The file is
// always rewritten wholesale: Save builds a fresh database next to the target
// and renames it into place.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/asdfw/internal/models"
)

// Format identifies the schema stored in the meta table. Any change to the
// encoding is breaking and requires a full reshim.
const Format = "asdfw-shims/1"

var (
	// ErrDatabaseMissing is returned by Load when no database has been saved yet.
	ErrDatabaseMissing = errors.New("shim database does not exist (run 'asdfw reshim')")
	// ErrCorruptDatabase is returned when the file is not a valid shim database.
	ErrCorruptDatabase = errors.New("shim database is corrupt or has an unknown format")
)

// Store reads and writes the shim database at Path.
type Store struct {
	Path string
}

// New returns a Store for the database file at path.
func New(path string) *Store {
	return &Store{Path: path}
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

var schema = []string{
	`CREATE TABLE meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE shims (
		command TEXT PRIMARY KEY,
		tool    TEXT NOT NULL,
		kind    TEXT NOT NULL
	)`,
}

// ---------------------------------------------------------------------------
// Save / Load
// ---------------------------------------------------------------------------

// Save writes shims to a new database and atomically replaces the file at
// s.Path. On failure the previous database is left untouched.
func (s *Store) Save(shims models.ShimDB) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("db.Save: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("db.Save: temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := writeDatabase(tmpPath, shims); err != nil {
		return fmt.Errorf("db.Save: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("db.Save: replace %s: %w", s.Path, err)
	}
	committed = true
	slog.Info("saved shim database", "path", s.Path, "shims", len(shims))
	return nil
}

func writeDatabase(path string, shims models.ShimDB) error {
	dsn, err := fileURI(path, "_journal_mode=DELETE")
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer sqldb.Close()

	tx, err := sqldb.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("schema exec: %w\nSQL: %s", err, stmt)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta (key, value) VALUES ('format', ?)`, Format); err != nil {
		return fmt.Errorf("meta: %w", err)
	}

	ins, err := tx.Prepare(`INSERT INTO shims (command, tool, kind) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	for cmd, e := range shims {
		if _, err := ins.Exec(cmd, e.Tool, e.Kind.String()); err != nil {
			_ = ins.Close()
			return fmt.Errorf("insert %q: %w", cmd, err)
		}
	}
	if err := ins.Close(); err != nil {
		return fmt.Errorf("prepare close: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return sqldb.Close()
}

// fileURI returns a SQLite URI filename for path with query appended. The
// path is percent-encoded so that '#', '?' and '%' stay part of it.
func fileURI(path, query string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p // C:/x → /C:/x
	}
	return (&url.URL{Scheme: "file", Path: p, RawQuery: query}).String(), nil
}

// Load reads the whole shim database.
func (s *Store) Load() (models.ShimDB, error) {
	info, err := os.Stat(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("db.Load %s: %w", s.Path, ErrDatabaseMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("db.Load: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("db.Load %s: not a regular file: %w", s.Path, ErrCorruptDatabase)
	}

	dsn, err := fileURI(s.Path, "mode=ro")
	if err != nil {
		return nil, fmt.Errorf("db.Load: %w", err)
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db.Load: open: %w", err)
	}
	defer sqldb.Close()

	var format string
	if err := sqldb.QueryRow(`SELECT value FROM meta WHERE key = 'format'`).Scan(&format); err != nil {
		return nil, fmt.Errorf("db.Load %s: %w: %w", s.Path, ErrCorruptDatabase, err)
	}
	if format != Format {
		return nil, fmt.Errorf("db.Load %s: format %q, want %q: %w", s.Path, format, Format, ErrCorruptDatabase)
	}

	rows, err := sqldb.Query(`SELECT command, tool, kind FROM shims`)
	if err != nil {
		return nil, fmt.Errorf("db.Load %s: %w: %w", s.Path, ErrCorruptDatabase, err)
	}
	defer rows.Close()

	out := make(models.ShimDB)
	for rows.Next() {
		var cmd, tool, kind string
		if err := rows.Scan(&cmd, &tool, &kind); err != nil {
			return nil, fmt.Errorf("db.Load scan: %w", err)
		}
		k, err := models.ParseShimKind(kind)
		if err != nil {
			return nil, fmt.Errorf("db.Load %s: shim %q: %w: %w", s.Path, cmd, ErrCorruptDatabase, err)
		}
		out[cmd] = models.ShimEntry{Tool: tool, Kind: k}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db.Load rows: %w", err)
	}
	return out, nil
}

// FindTool returns the tool owning cmd. ok is false when cmd is not in the
// database; that is not an error.
func (s *Store) FindTool(cmd string) (tool string, ok bool, err error) {
	shims, err := s.Load()
	if err != nil {
		return "", false, err
	}
	e, ok := shims[cmd]
	return e.Tool, ok, nil
}
