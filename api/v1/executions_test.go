package v1

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "creator.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestListExecutions(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.AppendExecution("default", "success", "", "1\n", "", 5*time.Millisecond); err != nil {
		t.Fatalf("append execution: %v", err)
	}
	if _, err := db.AppendExecution("alpha", "error", "runtime", "", "TypeError", 2*time.Millisecond); err != nil {
		t.Fatalf("append execution: %v", err)
	}

	r := newTestRouter(t, RouterDeps{DB: db})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ExecutionsListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 executions, got %d", resp.Count)
	}
}

func TestListExecutionsSessionFilter(t *testing.T) {
	db := newTestDB(t)
	db.AppendExecution("default", "success", "", "", "", 0)
	db.AppendExecution("alpha", "success", "", "", "", 0)

	r := newTestRouter(t, RouterDeps{DB: db})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions?session=alpha", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ExecutionsListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 execution, got %d", resp.Count)
	}
	if resp.Executions[0].Session != "alpha" {
		t.Errorf("expected session alpha, got %q", resp.Executions[0].Session)
	}
}

func TestListExecutionsLimit(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 3; i++ {
		db.AppendExecution("default", "success", "", "", "", 0)
	}

	r := newTestRouter(t, RouterDeps{DB: db})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ExecutionsListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 executions, got %d", resp.Count)
	}
}

func TestListExecutionsBadLimit(t *testing.T) {
	r := newTestRouter(t, RouterDeps{DB: newTestDB(t)})

	for _, raw := range []string{"abc", "0", "-5"} {
		rec := doRequest(t, r, http.MethodGet, "/v1/executions?limit="+raw, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: expected 400, got %d", raw, rec.Code)
		}
	}
}

func TestListExecutionsNoDB(t *testing.T) {
	r := newTestRouter(t, RouterDeps{})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPurgeExecutions(t *testing.T) {
	db := newTestDB(t)
	db.AppendExecution("default", "success", "", "", "", 0)
	db.AppendExecution("alpha", "success", "", "", "", 0)
	db.AppendExecution("alpha", "error", "runtime", "", "TypeError", 0)

	r := newTestRouter(t, RouterDeps{DB: db})

	rec := doRequest(t, r, http.MethodDelete, "/v1/executions?session=alpha", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ExecutionsPurgeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Session != "alpha" {
		t.Errorf("expected session alpha, got %q", resp.Session)
	}
	if resp.Deleted != 2 {
		t.Errorf("expected 2 deleted, got %d", resp.Deleted)
	}

	rec = doRequest(t, r, http.MethodGet, "/v1/executions", nil)
	var list ExecutionsListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if list.Count != 1 || list.Executions[0].Session != "default" {
		t.Errorf("expected only the default session to survive, got %+v", list)
	}
}

func TestPurgeExecutionsUnknownSession(t *testing.T) {
	r := newTestRouter(t, RouterDeps{DB: newTestDB(t)})

	rec := doRequest(t, r, http.MethodDelete, "/v1/executions?session=ghost", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ExecutionsPurgeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Deleted != 0 {
		t.Errorf("expected 0 deleted, got %d", resp.Deleted)
	}
}

func TestPurgeExecutionsRequiresSession(t *testing.T) {
	r := newTestRouter(t, RouterDeps{DB: newTestDB(t)})

	rec := doRequest(t, r, http.MethodDelete, "/v1/executions", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != handlers.ErrCodeInvalidRequest {
		t.Errorf("expected %s, got %s", handlers.ErrCodeInvalidRequest, resp.Error.Code)
	}
}

func TestPurgeExecutionsNoDB(t *testing.T) {
	r := newTestRouter(t, RouterDeps{})

	rec := doRequest(t, r, http.MethodDelete, "/v1/executions?session=alpha", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestGetExecution(t *testing.T) {
	db := newTestDB(t)
	exec, err := db.AppendExecution("default", "success", "", "hi\n", "", time.Millisecond)
	if err != nil {
		t.Fatalf("append execution: %v", err)
	}

	r := newTestRouter(t, RouterDeps{DB: db})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions/"+exec.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var got storage.Execution
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != exec.ID {
		t.Errorf("expected id %q, got %q", exec.ID, got.ID)
	}
	if got.Stdout != "hi\n" {
		t.Errorf("expected stdout %q, got %q", "hi\n", got.Stdout)
	}
}

func TestGetExecutionNotFound(t *testing.T) {
	r := newTestRouter(t, RouterDeps{DB: newTestDB(t)})

	rec := doRequest(t, r, http.MethodGet, "/v1/executions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Error.Code != handlers.ErrCodeNotFound {
		t.Errorf("expected %s, got %s", handlers.ErrCodeNotFound, resp.Error.Code)
	}
}
