package http

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/editions/internal/indesign"
	"github.com/mrlokans/editions/internal/tasks"
)

// ImportController triggers extraction of an export directory on the
// server's filesystem.
type ImportController struct {
	importer EditionImporter
	queue    TaskQueue
}

func NewImportController(importer EditionImporter, queue TaskQueue) *ImportController {
	return &ImportController{
		importer: importer,
		queue:    queue,
	}
}

type ImportRequest struct {
	Path string `json:"path" binding:"required"`
}

// Import handles POST /api/editions/import
// Enqueues an extraction task when a task queue is configured, otherwise
// runs the extraction before responding.
func (ic *ImportController) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "path is required")
		return
	}

	root, err := filepath.Abs(req.Path)
	if err != nil {
		respondBadRequest(c, "invalid path")
		return
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		respondBadRequest(c, "path is not a readable directory")
		return
	}

	if ic.queue != nil {
		taskID, err := ic.queue.Enqueue(tasks.ExtractEditionTask{Path: root})
		if err != nil {
			respondInternalError(c, err, "enqueue extraction")
			return
		}
		respondAccepted(c, "extraction enqueued", gin.H{"task_id": taskID, "path": root})
		return
	}

	if ic.importer == nil {
		respondError(c, http.StatusServiceUnavailable, "imports are not configured")
		return
	}

	result, err := ic.importer.Run(c.Request.Context(), root)
	if err != nil {
		if errors.Is(err, indesign.ErrExportRootMissing) || errors.Is(err, indesign.ErrNoSpreads) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
		respondInternalError(c, err, "run extraction")
		return
	}

	c.JSON(http.StatusOK, result)
}
