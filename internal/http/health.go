package http

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mrlokans/editions/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports the database and media dir, which the API
// cannot serve without, plus the state of the background workers.
type HealthController struct {
	db       *database.Database
	mediaDir string
	inbox    InboxTrigger
	tasks    bool
	version  string
}

func NewHealthController(cfg RouterConfig) *HealthController {
	return &HealthController{
		db:       cfg.Database,
		mediaDir: cfg.MediaDir,
		inbox:    cfg.Inbox,
		tasks:    cfg.TaskQueue != nil,
		version:  cfg.Version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	healthy := true

	if h.db != nil {
		if err := h.pingDatabase(); err != nil {
			checks["database"] = "error: " + err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.mediaDir != "" {
		if info, err := os.Stat(h.mediaDir); err != nil {
			checks["media"] = "error: " + err.Error()
			healthy = false
		} else if !info.IsDir() {
			checks["media"] = fmt.Sprintf("error: %s is not a directory", h.mediaDir)
			healthy = false
		} else {
			checks["media"] = "ok"
		}
	} else {
		checks["media"] = "not configured"
	}

	// Worker states are informational and never fail the check
	checks["inbox"] = h.inboxState()
	if h.tasks {
		checks["tasks"] = "enabled"
	} else {
		checks["tasks"] = "disabled"
	}

	health := HealthResponse{
		Status:  "healthy",
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if !healthy {
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (h *HealthController) inboxState() string {
	switch {
	case h.inbox == nil:
		return "disabled"
	case h.inbox.IsScanning():
		return "scanning"
	case !h.inbox.IsRunning():
		return "stopped"
	}
	if next := h.inbox.NextRunTime(); next != nil {
		return "scheduled, next scan " + next.Format(time.RFC3339)
	}
	return "scheduled"
}
