package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EvaluationRun is the audit row for one pipeline run, persisted whether or
// not the run produced a QualityScore.
type EvaluationRun struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentID       string         `gorm:"column:content_id;not null;index" json:"content_id"`
	Mode            string         `gorm:"column:mode;not null" json:"mode"` // strict|degraded
	Aborted         bool           `gorm:"column:aborted;not null" json:"aborted"`
	OverallScore    float64        `gorm:"column:overall_score" json:"overall_score"`
	Grade           string         `gorm:"column:grade" json:"grade"`
	PassesThreshold bool           `gorm:"column:passes_threshold" json:"passes_threshold"`
	FailureCount    int            `gorm:"column:failure_count;not null;default:0" json:"failure_count"`
	DurationMS      int64          `gorm:"column:duration_ms;not null" json:"duration_ms"`
	Dimensions      datatypes.JSON `gorm:"column:dimensions;type:jsonb" json:"dimensions,omitempty"`
	Recommendations datatypes.JSON `gorm:"column:recommendations;type:jsonb" json:"recommendations,omitempty"`
	Failures        datatypes.JSON `gorm:"column:failures;type:jsonb" json:"failures,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (EvaluationRun) TableName() string { return "evaluation_run" }
