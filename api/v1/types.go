package v1

import (
	"github.com/bitsnaps/open-creator/internal/session"
	"github.com/bitsnaps/open-creator/internal/skills"
	"github.com/bitsnaps/open-creator/internal/storage"
	"github.com/bitsnaps/open-creator/internal/tools"
)

// ExecuteRequest is the body of the execute endpoints.
type ExecuteRequest struct {
	Code string `json:"code"`
}

// SessionsListResponse lists live sessions.
type SessionsListResponse struct {
	Sessions []session.Info `json:"sessions"`
	Count    int            `json:"count"`
}

// SessionDetailResponse describes one live session. Recorded counts
// the session's rows in the history store, which can lag the live
// execution counter once retention prunes old runs.
type SessionDetailResponse struct {
	session.Info
	Recorded int `json:"recorded"`
}

// ExecutionsListResponse lists execution history rows, newest first.
type ExecutionsListResponse struct {
	Executions []*storage.Execution `json:"executions"`
	Count      int                  `json:"count"`
}

// ExecutionsPurgeResponse reports how many history rows a purge removed.
type ExecutionsPurgeResponse struct {
	Session string `json:"session"`
	Deleted int64  `json:"deleted"`
}

// SkillsListResponse lists library skills sorted by name.
type SkillsListResponse struct {
	Skills []skills.Skill `json:"skills"`
	Count  int            `json:"count"`
}

// ToolsListResponse lists registered tool schemas.
type ToolsListResponse struct {
	Tools []tools.Definition `json:"tools"`
	Count int                `json:"count"`
}

// SuccessResponse is a generic acknowledgement body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
