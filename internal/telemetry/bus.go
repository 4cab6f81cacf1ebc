package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

// RunEvent is the single required side channel of the pipeline: one event
// per run, consumed by dashboards and alerting outside this repo.
type RunEvent struct {
	RunID           uuid.UUID       `json:"run_id"`
	ContentID       string          `json:"content_id"`
	Mode            string          `json:"mode"`
	Aborted         bool            `json:"aborted"`
	OverallScore    float64         `json:"overall_score"`
	PassesThreshold bool            `json:"passes_threshold"`
	Dimensions      map[string]bool `json:"dimensions"` // dimension -> passes
	DurationMS      int64           `json:"duration_ms"`
	Timestamp       time.Time       `json:"timestamp"`
}

type Bus interface {
	Publish(ctx context.Context, ev RunEvent) error
	Close() error
}

// NewBus returns the redis-backed bus when REDIS_ADDR is configured and a
// no-op bus otherwise, so telemetry never blocks local development.
func NewBus(log *logger.Logger) (Bus, error) {
	b, err := NewRedisBus(log)
	if err == nil {
		return b, nil
	}
	log.Warn("telemetry bus disabled", "reason", err)
	return NewNoopBus(), nil
}
