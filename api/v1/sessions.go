package v1

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/session"
)

// HandleListSessions returns all live sessions with their usage stats.
func (rt *Router) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	if rt.sessions == nil {
		handlers.SendJSON(w, http.StatusOK, SessionsListResponse{Sessions: []session.Info{}})
		return
	}

	infos := rt.sessions.List()
	handlers.SendJSON(w, http.StatusOK, SessionsListResponse{
		Sessions: infos,
		Count:    len(infos),
	})
}

// HandleGetSession returns one live session with its usage stats and
// the number of runs the history store holds for it.
func (rt *Router) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if rt.sessions == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "session manager not configured")
		return
	}

	name := mux.Vars(r)["id"]
	info, err := rt.sessions.Get(name)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			handlers.SendError(w, http.StatusNotFound, handlers.ErrCodeNotFound, "session not found: "+name)
			return
		}
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to load session")
		return
	}

	detail := SessionDetailResponse{Info: info}
	if rt.db != nil {
		// History is best effort here, like recording itself.
		if n, err := rt.db.CountExecutions(name); err == nil {
			detail.Recorded = n
		}
	}

	handlers.SendJSON(w, http.StatusOK, detail)
}

// HandleRemoveSession destroys a session and its namespace.
func (rt *Router) HandleRemoveSession(w http.ResponseWriter, r *http.Request) {
	if rt.sessions == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "session manager not configured")
		return
	}

	name := mux.Vars(r)["id"]
	if err := rt.sessions.Remove(name); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			handlers.SendError(w, http.StatusNotFound, handlers.ErrCodeNotFound, "session not found: "+name)
			return
		}
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to remove session")
		return
	}

	handlers.SendJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "session removed"})
}
