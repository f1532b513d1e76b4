package handlers

import (
	"net/http"
	"sync"
	"time"
)

var (
	startTime time.Time
	startOnce sync.Once
)

// InitStartTime pins the uptime baseline. Called once at server start;
// later calls are no-ops.
func InitStartTime() {
	startOnce.Do(func() {
		startTime = time.Now()
	})
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   int64  `json:"uptime"`
	Sessions int    `json:"sessions"`
}

// HealthHandler returns a health check handler. sessionCount is sampled
// per request; pass nil when no session manager is wired.
func HealthHandler(version string, sessionCount func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(0)
		if !startTime.IsZero() {
			uptime = int64(time.Since(startTime).Seconds())
		}

		sessions := 0
		if sessionCount != nil {
			sessions = sessionCount()
		}

		SendJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  version,
			Uptime:   uptime,
			Sessions: sessions,
		})
	}
}
