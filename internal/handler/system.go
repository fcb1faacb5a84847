package handler

import (
	"net/http"

	"github.com/taskmanager/taskmanager-go/internal/config"
)

// SystemHandler serves the service banner and liveness probe.
type SystemHandler struct {
	app config.AppConfig
}

func NewSystemHandler(app config.AppConfig) *SystemHandler {
	return &SystemHandler{app: app}
}

// HandleRoot handles GET / requests.
func (h *SystemHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": h.app.Name,
		"status":  "running",
		"version": h.app.Version,
	})
}

// HandleHealth handles GET /health requests.
func (h *SystemHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
