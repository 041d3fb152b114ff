// Package store owns the SQLite-backed relational persistence layer: the
// connection, the forward-only migration runner, and the single-
// transaction document ingest pipeline. See migrations.go for schema
// history and ingest.go for the write pipeline.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/salacoste/swagger-mcp-server/internal/logging"
)

// Store wraps the SQLite connection used by the ingest pipeline and the
// MCP server's health resource.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens (creating if absent) the SQLite database at path, sets the
// connection pragmas this system relies on, and applies any pending
// migrations.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection: reads and writes through this Store are
	// serialized on it. WAL mode keeps readers on other connections
	// unblocked by a writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}
	logging.StoreDebug("opened database at %s", path)

	s := &Store{db: db, dbPath: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for read-only access (the MCP
// server's health resource). Writers must go through IngestDocument.
func (s *Store) DB() *sql.DB {
	return s.db
}
