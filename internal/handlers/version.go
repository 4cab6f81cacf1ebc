package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/services"
)

type VersionHandler struct {
	log      *logger.Logger
	versions services.VersionService
}

func NewVersionHandler(log *logger.Logger, versions services.VersionService) *VersionHandler {
	return &VersionHandler{
		log:      log.With("handler", "VersionHandler"),
		versions: versions,
	}
}

// GET /api/content/:id/versions
func (h *VersionHandler) History(c *gin.Context) {
	contentID := c.Param("id")
	history, err := h.versions.History(c.Request.Context(), contentID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_versions_failed", err)
		return
	}
	RespondOK(c, gin.H{"versions": history})
}
