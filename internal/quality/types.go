package quality

import (
	"context"
	"time"
)

// Dimension names one quality axis. The set of dimensions a pipeline runs is
// fixed by Registry configuration; the constants below are the axes the
// built-in analyzers cover.
type Dimension string

const (
	DimensionNLP          Dimension = "nlp"
	DimensionSEO          Dimension = "seo"
	DimensionAuthority    Dimension = "authority"
	DimensionEEAT         Dimension = "eeat"
	DimensionHumanization Dimension = "humanization"
	DimensionUserValue    Dimension = "userValue"
)

// EvalContext carries the caller-side hints stages may use when scoring.
type EvalContext struct {
	Title    string   `json:"title,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
	Audience string   `json:"audience,omitempty"`
}

// StageResult is the output of one dimension's evaluation. Results are
// created fresh per run and never mutated after construction. Score must be
// in [0,100]; a stage producing an out-of-range score is a contract
// violation the orchestrator records as a StageFailure, never a clamp.
type StageResult struct {
	Dimension Dimension      `json:"dimension"`
	Score     float64        `json:"score"`
	Detail    map[string]any `json:"detail,omitempty"`
}

// Stage is the single-method plugin contract every analyzer implements.
// Evaluate must be deterministic and side-effect free for a given content
// and context.
type Stage interface {
	Evaluate(ctx context.Context, content string, ec EvalContext) (StageResult, error)
}

// StageFunc adapts a plain function to the Stage contract.
type StageFunc func(ctx context.Context, content string, ec EvalContext) (StageResult, error)

func (f StageFunc) Evaluate(ctx context.Context, content string, ec EvalContext) (StageResult, error) {
	return f(ctx, content, ec)
}

// DimensionScore is one dimension's contribution to the aggregate. Weight
// and Threshold always come from Registry configuration, never from the
// stage itself.
type DimensionScore struct {
	Dimension     Dimension `json:"dimension"`
	Score         float64   `json:"score"`
	Weight        float64   `json:"weight"`
	WeightedScore float64   `json:"weighted_score"`
	Threshold     float64   `json:"threshold"`
	Passes        bool      `json:"passes"`
}

// QualityScore is the aggregate decision for one pipeline run. It is only
// constructible from a complete set of dimension results; DimensionScores
// preserve Registry declaration order so reports stay reproducible.
type QualityScore struct {
	OverallScore    float64          `json:"overall_score"`
	Grade           string           `json:"grade"`
	DimensionScores []DimensionScore `json:"dimension_scores"`
	PassesThreshold bool             `json:"passes_threshold"`
	Recommendations []string         `json:"recommendations"`
	Timestamp       time.Time        `json:"timestamp"`
}

// StageFailure records a stage that produced no result after exhausting its
// retry budget.
type StageFailure struct {
	Dimension Dimension `json:"dimension"`
	LastError string    `json:"last_error"`
	Attempts  int       `json:"attempts"`
}
