package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/storage"
)

const defaultExecutionsLimit = 50

// HandleListExecutions returns recorded runs, newest first. The
// optional "session" query filters by session and "limit" caps the
// page size.
func (rt *Router) HandleListExecutions(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "history store not configured")
		return
	}

	limit := defaultExecutionsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			handlers.SendError(w, http.StatusBadRequest, handlers.ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	execs, err := rt.db.ListExecutions(r.URL.Query().Get("session"), limit)
	if err != nil {
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to list executions")
		return
	}
	if execs == nil {
		execs = []*storage.Execution{}
	}

	handlers.SendJSON(w, http.StatusOK, ExecutionsListResponse{
		Executions: execs,
		Count:      len(execs),
	})
}

// HandlePurgeExecutions deletes the recorded runs of one session. The
// "session" query is required; there is no way to purge the whole
// history through this endpoint.
func (rt *Router) HandlePurgeExecutions(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "history store not configured")
		return
	}

	name := r.URL.Query().Get("session")
	if name == "" {
		handlers.SendError(w, http.StatusBadRequest, handlers.ErrCodeInvalidRequest, "session query parameter is required")
		return
	}

	deleted, err := rt.db.DeleteExecutions(name)
	if err != nil {
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to purge executions")
		return
	}

	handlers.SendJSON(w, http.StatusOK, ExecutionsPurgeResponse{
		Session: name,
		Deleted: deleted,
	})
}

// HandleGetExecution returns a single recorded run by ID.
func (rt *Router) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	if rt.db == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "history store not configured")
		return
	}

	id := mux.Vars(r)["id"]
	exec, err := rt.db.GetExecution(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			handlers.SendError(w, http.StatusNotFound, handlers.ErrCodeNotFound, "execution not found: "+id)
			return
		}
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to load execution")
		return
	}

	handlers.SendJSON(w, http.StatusOK, exec)
}
