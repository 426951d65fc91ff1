package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/editions/internal/entities"
	"github.com/mrlokans/editions/internal/scheduler"
)

type InboxController struct {
	inbox    InboxTrigger
	settings SettingsReader
}

func NewInboxController(inbox InboxTrigger, settings SettingsReader) *InboxController {
	return &InboxController{
		inbox:    inbox,
		settings: settings,
	}
}

// GetStatus handles GET /api/inbox
func (ic *InboxController) GetStatus(c *gin.Context) {
	resp := gin.H{
		"running":  ic.inbox.IsRunning(),
		"scanning": ic.inbox.IsScanning(),
		"next_run": ic.inbox.NextRunTime(),
	}
	if ic.settings != nil {
		resp["last_scan_at"] = ic.settings.GetValue(entities.SettingKeyInboxLastScanAt, "")
		resp["last_scan_status"] = ic.settings.GetValue(entities.SettingKeyInboxLastScanStatus, "")
		resp["last_scan_message"] = ic.settings.GetValue(entities.SettingKeyInboxLastScanMessage, "")
	}
	c.JSON(http.StatusOK, resp)
}

// Scan handles POST /api/inbox/scan
// Runs a scan before responding.
func (ic *InboxController) Scan(c *gin.Context) {
	result, err := ic.inbox.Scan(c.Request.Context())
	if errors.Is(err, scheduler.ErrScanInProgress) {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "inbox scan")
		return
	}
	c.JSON(http.StatusOK, result)
}
