package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/gateway/websocket"
	"github.com/bitsnaps/open-creator/internal/interpreter"
	"github.com/bitsnaps/open-creator/internal/session"
)

// HandleExecute runs a code block on the default session.
func (rt *Router) HandleExecute(w http.ResponseWriter, r *http.Request) {
	rt.runOn(w, r, session.DefaultSession)
}

// HandleSessionExecute runs a code block on a named session, creating
// it on first use.
func (rt *Router) HandleSessionExecute(w http.ResponseWriter, r *http.Request) {
	rt.runOn(w, r, mux.Vars(r)["id"])
}

// HandleSessionStream upgrades to a websocket that streams output
// chunks while code runs on the named session.
func (rt *Router) HandleSessionStream(w http.ResponseWriter, r *http.Request) {
	// The interface check inside ServeStream cannot see a typed nil.
	if rt.sessions == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "session manager not configured")
		return
	}
	websocket.ServeStream(rt.sessions, mux.Vars(r)["id"], w, r)
}

func (rt *Router) runOn(w http.ResponseWriter, r *http.Request, name string) {
	if rt.sessions == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "session manager not configured")
		return
	}

	var req ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.SendError(w, http.StatusBadRequest, handlers.ErrCodeInvalidRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		handlers.SendError(w, http.StatusBadRequest, handlers.ErrCodeInvalidRequest, "code is required")
		return
	}

	result, err := rt.sessions.Execute(r.Context(), name, req.Code)
	if err != nil && result.Status == "" {
		// The run never happened; execution faults arrive inside result.
		sendExecuteFailure(w, err)
		return
	}

	handlers.SendJSON(w, executeStatus(result), result)
}

// executeStatus maps a finished run to its HTTP status. Rejected code
// never ran, so it is the caller's error; runtime faults and timeouts
// are reported inside the body of a 200.
func executeStatus(result interpreter.Result) int {
	if result.Status == interpreter.StatusError && result.Fault == interpreter.FaultPolicy {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

func sendExecuteFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrLimitExceeded):
		handlers.SendError(w, http.StatusTooManyRequests, handlers.ErrCodeSessionLimit, err.Error())
	case errors.Is(err, session.ErrManagerClosed):
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, err.Error())
	default:
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "execution failed")
	}
}
