package storage

import (
	"errors"
	"testing"
	"time"
)

func TestAppendExecution(t *testing.T) {
	db := openTestDB(t)

	e, err := db.AppendExecution("default", "success", "", "42", "", 15*time.Millisecond)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if e.ID == "" {
		t.Error("expected generated ID")
	}
	if e.DurationMS != 15 {
		t.Errorf("DurationMS = %d, want 15", e.DurationMS)
	}
	if e.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := db.GetExecution(e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Session != "default" {
		t.Errorf("Session = %q, want default", got.Session)
	}
	if got.Status != "success" {
		t.Errorf("Status = %q, want success", got.Status)
	}
	if got.Stdout != "42" {
		t.Errorf("Stdout = %q, want 42", got.Stdout)
	}
	if got.Stderr != "" {
		t.Errorf("Stderr = %q, want empty", got.Stderr)
	}
}

func TestAppendExecution_Fault(t *testing.T) {
	db := openTestDB(t)

	e, err := db.AppendExecution("work", "error", "timeout", "partial", "Code execution timed out", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := db.GetExecution(e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Fault != "timeout" {
		t.Errorf("Fault = %q, want timeout", got.Fault)
	}
	if got.Stdout != "partial" {
		t.Errorf("Stdout = %q, want partial", got.Stdout)
	}
	if got.Stderr != "Code execution timed out" {
		t.Errorf("Stderr = %q", got.Stderr)
	}
}

func TestGetExecution_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetExecution("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListExecutions(t *testing.T) {
	db := openTestDB(t)

	for i, session := range []string{"a", "a", "b"} {
		if _, err := db.AppendExecution(session, "success", "", "", "", time.Duration(i)*time.Millisecond); err != nil {
			t.Fatalf("append: %v", err)
		}
		// created_at ordering must be strict for the newest-first check
		time.Sleep(5 * time.Millisecond)
	}

	all, err := db.ListExecutions("", 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if !all[0].CreatedAt.After(all[2].CreatedAt) {
		t.Error("expected newest-first ordering")
	}

	onlyA, err := db.ListExecutions("a", 0)
	if err != nil {
		t.Fatalf("list session: %v", err)
	}
	if len(onlyA) != 2 {
		t.Errorf("len = %d, want 2", len(onlyA))
	}
	for _, e := range onlyA {
		if e.Session != "a" {
			t.Errorf("unexpected session %q", e.Session)
		}
	}

	limited, err := db.ListExecutions("", 2)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len = %d, want 2", len(limited))
	}
}

func TestCountExecutions(t *testing.T) {
	db := openTestDB(t)

	for _, session := range []string{"a", "a", "b"} {
		if _, err := db.AppendExecution(session, "success", "", "", "", 0); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	total, err := db.CountExecutions("")
	if err != nil {
		t.Fatalf("count all: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	countA, err := db.CountExecutions("a")
	if err != nil {
		t.Fatalf("count a: %v", err)
	}
	if countA != 2 {
		t.Errorf("countA = %d, want 2", countA)
	}
}

func TestDeleteExecutionsBefore(t *testing.T) {
	db := openTestDB(t)

	old := time.Now().Add(-48 * time.Hour)
	if _, err := db.Exec(
		"INSERT INTO executions (id, session, status, created_at) VALUES ('old1', 'default', 'success', ?)",
		old,
	); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if _, err := db.AppendExecution("default", "success", "", "", "", 0); err != nil {
		t.Fatalf("append fresh: %v", err)
	}

	deleted, err := db.DeleteExecutionsBefore(time.Now().Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := db.CountExecutions("")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestDeleteExecutions(t *testing.T) {
	db := openTestDB(t)

	for _, session := range []string{"a", "a", "b"} {
		if _, err := db.AppendExecution(session, "success", "", "", "", 0); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	deleted, err := db.DeleteExecutions("a")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	remaining, err := db.CountExecutions("")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
}
