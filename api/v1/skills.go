package v1

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bitsnaps/open-creator/internal/gateway/handlers"
	"github.com/bitsnaps/open-creator/internal/skills"
)

// HandleListSkills returns the skill library, optionally filtered by a
// "query" parameter matched against names, descriptions and tags.
func (rt *Router) HandleListSkills(w http.ResponseWriter, r *http.Request) {
	if rt.skills == nil {
		handlers.SendJSON(w, http.StatusOK, SkillsListResponse{Skills: []skills.Skill{}})
		return
	}

	var matched []skills.Skill
	if query := r.URL.Query().Get("query"); query != "" {
		matched = rt.skills.Search(query)
	} else {
		matched = rt.skills.List()
	}

	handlers.SendJSON(w, http.StatusOK, SkillsListResponse{
		Skills: matched,
		Count:  len(matched),
	})
}

// HandleRemoveSkill deletes one skill from the library.
func (rt *Router) HandleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	if rt.skills == nil {
		handlers.SendError(w, http.StatusServiceUnavailable, handlers.ErrCodeServiceUnavailable, "skill library not configured")
		return
	}

	name := mux.Vars(r)["name"]
	if err := rt.skills.Remove(name); err != nil {
		if errors.Is(err, skills.ErrNotFound) {
			handlers.SendError(w, http.StatusNotFound, handlers.ErrCodeNotFound, "skill not found: "+name)
			return
		}
		handlers.SendError(w, http.StatusInternalServerError, handlers.ErrCodeInternalError, "failed to remove skill")
		return
	}

	handlers.SendJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "skill removed"})
}
