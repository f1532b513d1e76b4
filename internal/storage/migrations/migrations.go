// Package migrations applies versioned schema scripts embedded in the
// binary. Applied versions are tracked in the _migrations table.
package migrations

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

type migration struct {
	version int
	name    string
	content string
}

// Run applies every script whose version is not yet recorded, oldest
// first. Each script runs in its own transaction together with the
// version bookkeeping, so a failed script leaves the schema at the last
// good version.
func Run(db *sql.DB) error {
	if err := ensureTable(db); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return fmt.Errorf("read applied versions: %w", err)
	}

	scripts, err := loadScripts()
	if err != nil {
		return fmt.Errorf("load migration scripts: %w", err)
	}

	for _, m := range scripts {
		if applied[m.version] {
			continue
		}
		if err := apply(db, m); err != nil {
			return fmt.Errorf("apply %s: %w", m.name, err)
		}
	}

	return nil
}

// Version returns the highest applied schema version, 0 for a fresh
// database.
func Version(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM _migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// Pending returns the script versions not yet applied, in order.
func Pending(db *sql.DB) ([]int, error) {
	applied, err := appliedVersions(db)
	if err != nil {
		return nil, err
	}

	scripts, err := loadScripts()
	if err != nil {
		return nil, err
	}

	var pending []int
	for _, m := range scripts {
		if !applied[m.version] {
			pending = append(pending, m.version)
		}
	}
	return pending, nil
}

func ensureTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM _migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// loadScripts reads every NNN_name.sql under scripts/ and returns them
// sorted by version. Files that do not match the naming scheme are
// skipped.
func loadScripts() ([]migration, error) {
	entries, err := fs.ReadDir(FS, "scripts")
	if err != nil {
		return nil, err
	}

	var scripts []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		prefix, _, _ := strings.Cut(entry.Name(), "_")
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}

		// embed.FS paths always use forward slashes.
		content, err := fs.ReadFile(FS, "scripts/"+entry.Name())
		if err != nil {
			return nil, err
		}

		scripts = append(scripts, migration{
			version: version,
			name:    entry.Name(),
			content: string(content),
		})
	}

	sort.Slice(scripts, func(i, j int) bool {
		return scripts[i].version < scripts[j].version
	})
	return scripts, nil
}

func apply(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO _migrations (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("record version: %w", err)
	}
	return tx.Commit()
}
