package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/quillboard/quillboard-backend/internal/domain"
	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/quality"
	"github.com/quillboard/quillboard-backend/internal/repos"
	"github.com/quillboard/quillboard-backend/internal/telemetry"
)

// EvaluateOptions are the caller-facing knobs of one pipeline run.
type EvaluateOptions struct {
	Mode           quality.Mode
	Deadline       time.Duration
	StageTimeout   time.Duration
	FallbackScores map[quality.Dimension]float64

	// RecordVersion appends a ContentVersion when the run passes the global
	// threshold. The pipeline never persists a revision on its own.
	RecordVersion bool
	Author        string
}

// EvaluationService is the caller API consumed by the content-generation
// workflow: run the pipeline, audit the run, emit one telemetry event, and
// optionally record the revision.
type EvaluationService interface {
	Evaluate(ctx context.Context, contentID, content string, ec quality.EvalContext, opts EvaluateOptions) (*quality.QualityScore, []quality.StageFailure, error)
	RecentRuns(ctx context.Context, contentID string, limit int) ([]*domain.EvaluationRun, error)
}

type evaluationService struct {
	log      *logger.Logger
	orch     *quality.Orchestrator
	runs     repos.EvaluationRunRepo
	versions VersionService
	bus      telemetry.Bus
}

func NewEvaluationService(
	baseLog *logger.Logger,
	orch *quality.Orchestrator,
	runs repos.EvaluationRunRepo,
	versions VersionService,
	bus telemetry.Bus,
) EvaluationService {
	return &evaluationService{
		log:      baseLog.With("service", "EvaluationService"),
		orch:     orch,
		runs:     runs,
		versions: versions,
		bus:      bus,
	}
}

func (s *evaluationService) Evaluate(ctx context.Context, contentID, content string, ec quality.EvalContext, opts EvaluateOptions) (*quality.QualityScore, []quality.StageFailure, error) {
	if strings.TrimSpace(contentID) == "" {
		return nil, nil, fmt.Errorf("evaluate: empty content id: %w", qerrors.ErrInvalidArgument)
	}
	mode := opts.Mode
	if mode == "" {
		mode = quality.ModeStrict
	}

	runID := uuid.New()
	log := s.log.With("run_id", runID, "content_id", contentID)
	start := time.Now()

	qs, failures, runErr := s.orch.Run(ctx, content, ec, quality.RunOptions{
		Mode:           mode,
		Deadline:       opts.Deadline,
		StageTimeout:   opts.StageTimeout,
		FallbackScores: opts.FallbackScores,
	})
	elapsed := time.Since(start)

	// A cancelled run produced nothing to audit or report.
	if errors.Is(runErr, qerrors.ErrRunCancelled) {
		log.Info("run cancelled", "duration_ms", elapsed.Milliseconds())
		return nil, nil, runErr
	}

	s.audit(ctx, log, runID, contentID, string(mode), qs, failures, elapsed, runErr)
	s.emit(ctx, log, runID, contentID, string(mode), qs, failures, elapsed, runErr)

	if runErr != nil {
		return nil, failures, runErr
	}

	log.Info("run completed",
		"overall_score", qs.OverallScore,
		"passes", qs.PassesThreshold,
		"grade", qs.Grade,
		"failed_stages", len(failures),
		"duration_ms", elapsed.Milliseconds())

	if opts.RecordVersion && qs.PassesThreshold {
		if _, err := s.versions.RecordRevision(ctx, contentID, content, opts.Author); err != nil {
			// The decision stands even if the revision append fails; the
			// caller still holds the score and can retry persistence.
			log.Error("recording revision failed", "error", err)
			return qs, failures, fmt.Errorf("record revision: %w", err)
		}
	}
	return qs, failures, nil
}

func (s *evaluationService) RecentRuns(ctx context.Context, contentID string, limit int) ([]*domain.EvaluationRun, error) {
	return s.runs.ListByContentID(ctx, contentID, limit)
}

func (s *evaluationService) audit(
	ctx context.Context,
	log *logger.Logger,
	runID uuid.UUID,
	contentID, mode string,
	qs *quality.QualityScore,
	failures []quality.StageFailure,
	elapsed time.Duration,
	runErr error,
) {
	if s.runs == nil {
		return
	}
	row := &domain.EvaluationRun{
		ID:           runID,
		ContentID:    contentID,
		Mode:         mode,
		Aborted:      runErr != nil,
		FailureCount: len(failures),
		DurationMS:   elapsed.Milliseconds(),
		CreatedAt:    time.Now().UTC(),
	}
	if qs != nil {
		row.OverallScore = qs.OverallScore
		row.Grade = qs.Grade
		row.PassesThreshold = qs.PassesThreshold
		row.Dimensions = mustJSON(qs.DimensionScores)
		row.Recommendations = mustJSON(qs.Recommendations)
	}
	if len(failures) > 0 {
		row.Failures = mustJSON(failures)
	}
	if err := s.runs.Create(ctx, row); err != nil {
		log.Error("persisting run audit failed", "error", err)
	}
}

func (s *evaluationService) emit(
	ctx context.Context,
	log *logger.Logger,
	runID uuid.UUID,
	contentID, mode string,
	qs *quality.QualityScore,
	failures []quality.StageFailure,
	elapsed time.Duration,
	runErr error,
) {
	if s.bus == nil {
		return
	}
	ev := telemetry.RunEvent{
		RunID:      runID,
		ContentID:  contentID,
		Mode:       mode,
		Aborted:    runErr != nil,
		Dimensions: make(map[string]bool),
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if qs != nil {
		ev.OverallScore = qs.OverallScore
		ev.PassesThreshold = qs.PassesThreshold
		for _, ds := range qs.DimensionScores {
			ev.Dimensions[string(ds.Dimension)] = ds.Passes
		}
	}
	for _, f := range failures {
		if _, ok := ev.Dimensions[string(f.Dimension)]; !ok {
			ev.Dimensions[string(f.Dimension)] = false
		}
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		log.Warn("telemetry publish failed", "error", err)
	}
}

func mustJSON(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
