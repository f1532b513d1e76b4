// Package storage persists execution history in SQLite. The database
// stores results only; submitted source never touches disk.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitsnaps/open-creator/internal/config"
	"github.com/bitsnaps/open-creator/internal/storage/migrations"

	_ "modernc.org/sqlite"
)

// DB wraps the database connection.
type DB struct {
	*sql.DB
	path string
}

// Open opens the database at path, creating parent directories and
// applying pending migrations. WAL keeps readers (the history API) from
// blocking on the per-execution appends; busy_timeout rides out the
// retention sweep.
func Open(path string) (*DB, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", expanded)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{DB: db, path: expanded}, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}
