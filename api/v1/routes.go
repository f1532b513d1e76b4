// Package v1 implements the REST API for the interpreter service.
package v1

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bitsnaps/open-creator/internal/session"
	"github.com/bitsnaps/open-creator/internal/skills"
	"github.com/bitsnaps/open-creator/internal/storage"
	"github.com/bitsnaps/open-creator/internal/tools"
)

// RouterDeps holds the dependencies the API needs. Any of them may be
// nil; the affected handlers degrade to 503 or an empty list.
type RouterDeps struct {
	Sessions *session.Manager
	DB       *storage.DB
	Tools    *tools.Registry
	Skills   *skills.Store
}

// Router handles API v1 routes.
type Router struct {
	sessions *session.Manager
	db       *storage.DB
	tools    *tools.Registry
	skills   *skills.Store
}

// NewRouter creates a new API v1 router.
func NewRouter(deps RouterDeps) *Router {
	return &Router{
		sessions: deps.Sessions,
		db:       deps.DB,
		tools:    deps.Tools,
		skills:   deps.Skills,
	}
}

// RegisterRoutes mounts all v1 routes on the given router.
func (rt *Router) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/v1").Subrouter()

	api.HandleFunc("/execute", rt.HandleExecute).Methods(http.MethodPost)

	api.HandleFunc("/sessions", rt.HandleListSessions).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", rt.HandleGetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", rt.HandleRemoveSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/execute", rt.HandleSessionExecute).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/stream", rt.HandleSessionStream).Methods(http.MethodGet)

	api.HandleFunc("/executions", rt.HandleListExecutions).Methods(http.MethodGet)
	api.HandleFunc("/executions", rt.HandlePurgeExecutions).Methods(http.MethodDelete)
	api.HandleFunc("/executions/{id}", rt.HandleGetExecution).Methods(http.MethodGet)

	api.HandleFunc("/skills", rt.HandleListSkills).Methods(http.MethodGet)
	api.HandleFunc("/skills/{name}", rt.HandleRemoveSkill).Methods(http.MethodDelete)

	api.HandleFunc("/tools", rt.HandleListTools).Methods(http.MethodGet)
}
