package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/quality"
	"github.com/quillboard/quillboard-backend/internal/services"
)

type EvaluationHandler struct {
	log  *logger.Logger
	eval services.EvaluationService
}

func NewEvaluationHandler(log *logger.Logger, eval services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{
		log:  log.With("handler", "EvaluationHandler"),
		eval: eval,
	}
}

type evaluateRequest struct {
	Content string `json:"content" binding:"required"`
	Context struct {
		Title    string   `json:"title"`
		Keywords []string `json:"keywords"`
		Audience string   `json:"audience"`
	} `json:"context"`
	Mode           string             `json:"mode"`
	DeadlineMS     int64              `json:"deadline_ms"`
	FallbackScores map[string]float64 `json:"fallback_scores"`
	RecordVersion  bool               `json:"record_version"`
	Author         string             `json:"author"`
}

type evaluateResponse struct {
	Run      *quality.QualityScore  `json:"run,omitempty"`
	Failures []quality.StageFailure `json:"failures,omitempty"`
}

// POST /api/content/:id/evaluate
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	contentID := c.Param("id")
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	fallbacks := make(map[quality.Dimension]float64, len(req.FallbackScores))
	for dim, score := range req.FallbackScores {
		fallbacks[quality.Dimension(dim)] = score
	}
	opts := services.EvaluateOptions{
		Mode:           quality.Mode(req.Mode),
		Deadline:       time.Duration(req.DeadlineMS) * time.Millisecond,
		FallbackScores: fallbacks,
		RecordVersion:  req.RecordVersion,
		Author:         req.Author,
	}

	ec := quality.EvalContext{
		Title:    req.Context.Title,
		Keywords: req.Context.Keywords,
		Audience: req.Context.Audience,
	}
	qs, failures, err := h.eval.Evaluate(c.Request.Context(), contentID, req.Content, ec, opts)
	switch {
	case errors.Is(err, qerrors.ErrRunCancelled):
		RespondError(c, http.StatusRequestTimeout, "run_cancelled", err)
	case errors.Is(err, qerrors.ErrRunAborted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    APIError{Message: err.Error(), Code: "run_aborted"},
			"failures": failures,
		})
	case errors.Is(err, qerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
	case err != nil:
		RespondError(c, http.StatusInternalServerError, "evaluation_failed", err)
	default:
		RespondOK(c, evaluateResponse{Run: qs, Failures: failures})
	}
}

// GET /api/content/:id/runs
func (h *EvaluationHandler) RecentRuns(c *gin.Context) {
	contentID := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	runs, err := h.eval.RecentRuns(c.Request.Context(), contentID, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_runs_failed", err)
		return
	}
	RespondOK(c, gin.H{"runs": runs})
}
