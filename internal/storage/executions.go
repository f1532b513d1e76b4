package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Execution is one recorded run: the result fields plus bookkeeping.
// The source text is deliberately absent.
type Execution struct {
	ID         string    `json:"id"`
	Session    string    `json:"session"`
	Status     string    `json:"status"`
	Fault      string    `json:"fault,omitempty"`
	Stdout     string    `json:"stdout"`
	Stderr     string    `json:"stderr"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// AppendExecution records one finished execution and returns the row.
func (db *DB) AppendExecution(session, status, fault, stdout, stderr string, duration time.Duration) (*Execution, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := db.Exec(
		"INSERT INTO executions (id, session, status, fault, stdout, stderr, duration_ms, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		id, session, status, fault, stdout, stderr, duration.Milliseconds(), now,
	)
	if err != nil {
		return nil, err
	}

	return &Execution{
		ID:         id,
		Session:    session,
		Status:     status,
		Fault:      fault,
		Stdout:     stdout,
		Stderr:     stderr,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  now,
	}, nil
}

// GetExecution returns a single recorded execution.
func (db *DB) GetExecution(id string) (*Execution, error) {
	var e Execution
	err := db.QueryRow(
		"SELECT id, session, status, fault, stdout, stderr, duration_ms, created_at FROM executions WHERE id = ?",
		id,
	).Scan(&e.ID, &e.Session, &e.Status, &e.Fault, &e.Stdout, &e.Stderr, &e.DurationMS, &e.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListExecutions returns recorded executions newest first. An empty
// session lists across all sessions; limit 0 means no limit.
func (db *DB) ListExecutions(session string, limit int) ([]*Execution, error) {
	query := "SELECT id, session, status, fault, stdout, stderr, duration_ms, created_at FROM executions"
	var args []any

	if session != "" {
		query += " WHERE session = ?"
		args = append(args, session)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*Execution
	for rows.Next() {
		var e Execution
		if err := rows.Scan(&e.ID, &e.Session, &e.Status, &e.Fault, &e.Stdout, &e.Stderr, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, err
		}
		executions = append(executions, &e)
	}

	return executions, rows.Err()
}

// CountExecutions counts recorded executions, optionally per session.
func (db *DB) CountExecutions(session string) (int, error) {
	var count int
	var err error
	if session == "" {
		err = db.QueryRow("SELECT COUNT(*) FROM executions").Scan(&count)
	} else {
		err = db.QueryRow("SELECT COUNT(*) FROM executions WHERE session = ?", session).Scan(&count)
	}
	return count, err
}

// DeleteExecutionsBefore removes executions recorded before cutoff and
// returns how many rows were deleted.
func (db *DB) DeleteExecutionsBefore(cutoff time.Time) (int64, error) {
	result, err := db.Exec("DELETE FROM executions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DeleteExecutions removes all executions for one session and returns
// how many rows were deleted.
func (db *DB) DeleteExecutions(session string) (int64, error) {
	result, err := db.Exec("DELETE FROM executions WHERE session = ?", session)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
