// Package sqlite stores dread's play history in a local SQLite file.
package sqlite

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/dread/internal/history"
	"github.com/zjrosen/dread/internal/infrastructure/migrations"
	"github.com/zjrosen/dread/internal/log"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB owns the history database connection.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens the database at path, creating its directory if needed, and
// migrates it to the latest schema. An existing file is copied to path.bak
// before migrating. ":memory:" opens a private in-memory database.
func NewDB(path string) (*DB, error) {
	if path == MemoryPath {
		return openMemory()
	}

	log.Debug(log.CatDB, "Opening database", "path", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.ErrorErr(log.CatDB, "Failed to create database directory", err, "path", dir)
		return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := path + ".bak"
		if err := copyFile(path, backupPath); err != nil {
			log.ErrorErr(log.CatDB, "Failed to back up database", err, "path", path, "backup", backupPath)
			return nil, fmt.Errorf("failed to create pre-migration backup: %w", err)
		}
		log.Debug(log.CatDB, "Backed up database", "backup", backupPath)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		log.ErrorErr(log.CatDB, "Failed to open database", err, "path", path)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := prepare(conn, filePragmas); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info(log.CatDB, "History database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// MemoryPath selects an in-memory database.
const MemoryPath = ":memory:"

var filePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

func openMemory() (*DB, error) {
	conn, err := sql.Open("sqlite3", "file::memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection would get its own empty database.
	conn.SetMaxOpenConns(1)
	if err := prepare(conn, []string{"PRAGMA foreign_keys=ON"}); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &DB{conn: conn, path: MemoryPath}, nil
}

// prepare pings conn, applies pragmas and runs migrations.
func prepare(conn *sql.DB, pragmas []string) error {
	if err := conn.Ping(); err != nil {
		log.ErrorErr(log.CatDB, "Failed to ping database", err)
		return fmt.Errorf("failed to ping database: %w", err)
	}
	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			log.ErrorErr(log.CatDB, "Failed to apply pragma", err, "pragma", p)
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	if err := migrations.RunMigrations(conn); err != nil {
		log.ErrorErr(log.CatDB, "Failed to run migrations", err)
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close releases database resources.
func (db *DB) Close() error {
	if db.conn != nil {
		log.Debug(log.CatDB, "Closing database", "path", db.path)
		return db.conn.Close()
	}
	return nil
}

// PlaySessions returns the history repository.
func (db *DB) PlaySessions() history.Repository {
	return &playSessionRepository{db: db.conn}
}

// Path returns the database path.
func (db *DB) Path() string {
	return db.path
}

// copyFile overwrites dst with src. A failed close of dst is an error.
func copyFile(src, dst string) (retErr error) {
	sourceFile, err := os.Open(src) //nolint:gosec // G304: src is the database path, controlled by application
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sourceFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close source file: %w", closeErr)
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode()) //nolint:gosec // G304: dst is backup path derived from database path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("failed to close backup file: %w", closeErr)
		}
	}()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
