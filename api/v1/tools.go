package v1

import (
	"net/http"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/tools"
)

// HandleListTools returns the schemas of all registered tools.
func (rt *Router) HandleListTools(w http.ResponseWriter, r *http.Request) {
	if rt.tools == nil {
		handlers.SendJSON(w, http.StatusOK, ToolsListResponse{Tools: []tools.Definition{}})
		return
	}

	defs := rt.tools.Definitions()
	handlers.SendJSON(w, http.StatusOK, ToolsListResponse{
		Tools: defs,
		Count: len(defs),
	})
}
