package api

import (
	"net/http"
	"time"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

type HealthHandler struct {
	source    CorpusSource
	version   string
	startTime time.Time
}

func NewHealthHandler(source CorpusSource, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{
		source:    source,
		version:   version,
		startTime: startTime,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	if h.source == nil {
		checks["corpus"] = "not_loaded"
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["corpus"] = "ok"
		if ws := h.source.WatcherStatus(); ws != nil {
			checks["watcher"] = ws.Status
			if ws.Status == "stopped" && status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["watcher"] = "not_configured"
		}
	}

	WriteJSON(w, httpStatus, HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	})
}
