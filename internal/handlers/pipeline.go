package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/quality"
)

type PipelineHandler struct {
	log    *logger.Logger
	reg    *quality.Registry
	scorer *quality.Scorer
}

func NewPipelineHandler(log *logger.Logger, reg *quality.Registry, scorer *quality.Scorer) *PipelineHandler {
	return &PipelineHandler{
		log:    log.With("handler", "PipelineHandler"),
		reg:    reg,
		scorer: scorer,
	}
}

type dimensionView struct {
	Dimension string  `json:"dimension"`
	Weight    float64 `json:"weight"`
	Threshold float64 `json:"threshold"`
	Enabled   bool    `json:"enabled"`
}

// GET /api/pipeline/config
func (h *PipelineHandler) GetConfig(c *gin.Context) {
	entries := h.reg.All()
	dims := make([]dimensionView, 0, len(entries))
	for _, e := range entries {
		dims = append(dims, dimensionView{
			Dimension: string(e.Dimension),
			Weight:    e.Weight,
			Threshold: e.Threshold,
			Enabled:   e.Enabled,
		})
	}
	RespondOK(c, gin.H{
		"global_threshold": h.scorer.GlobalThreshold(),
		"critical_bar":     h.scorer.CriticalBar(),
		"dimensions":       dims,
	})
}
