package quality

import (
	"fmt"
	"math"
	"time"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
)

// Scorer combines a complete set of StageResults into a QualityScore using
// the sealed registry's weights and thresholds.
type Scorer struct {
	reg             *Registry
	globalThreshold float64
	criticalBar     float64
}

func NewScorer(reg *Registry, globalThreshold, criticalBar float64) (*Scorer, error) {
	if reg == nil {
		return nil, fmt.Errorf("scorer: nil registry: %w", qerrors.ErrInvalidArgument)
	}
	if !reg.Closed() {
		return nil, qerrors.ErrRegistryOpen
	}
	if globalThreshold < 0 || globalThreshold > 100 {
		return nil, fmt.Errorf("scorer: global threshold %v outside [0,100]: %w", globalThreshold, qerrors.ErrInvalidArgument)
	}
	if criticalBar < 0 || criticalBar > 100 {
		return nil, fmt.Errorf("scorer: critical bar %v outside [0,100]: %w", criticalBar, qerrors.ErrInvalidArgument)
	}
	return &Scorer{reg: reg, globalThreshold: globalThreshold, criticalBar: criticalBar}, nil
}

func (s *Scorer) GlobalThreshold() float64 { return s.globalThreshold }
func (s *Scorer) CriticalBar() float64     { return s.criticalBar }

// Score fails closed: the result set must cover exactly the enabled
// dimensions (extra and missing are both errors) and every score must be in
// [0,100]. A corrupt analyzer blocks publishing instead of silently
// understating risk.
func (s *Scorer) Score(results []StageResult) (*QualityScore, error) {
	entries, err := s.reg.Resolve()
	if err != nil {
		return nil, err
	}

	byDim := make(map[Dimension]StageResult, len(results))
	for _, res := range results {
		if _, dup := byDim[res.Dimension]; dup {
			return nil, fmt.Errorf("duplicate result for dimension %q: %w", res.Dimension, qerrors.ErrIncompleteResults)
		}
		byDim[res.Dimension] = res
	}
	if len(byDim) != len(entries) {
		return nil, fmt.Errorf("got %d results for %d configured dimensions: %w",
			len(byDim), len(entries), qerrors.ErrIncompleteResults)
	}

	dimScores := make([]DimensionScore, 0, len(entries))
	var overall float64
	for _, ent := range entries {
		res, ok := byDim[ent.Dimension]
		if !ok {
			return nil, fmt.Errorf("missing result for dimension %q: %w", ent.Dimension, qerrors.ErrIncompleteResults)
		}
		if res.Score < 0 || res.Score > 100 {
			return nil, fmt.Errorf("dimension %q score %.2f: %w", ent.Dimension, res.Score, qerrors.ErrScoreOutOfRange)
		}
		ds := DimensionScore{
			Dimension:     ent.Dimension,
			Score:         res.Score,
			Weight:        ent.Weight,
			WeightedScore: res.Score * ent.Weight,
			Threshold:     ent.Threshold,
			Passes:        res.Score >= ent.Threshold,
		}
		overall += ds.WeightedScore
		dimScores = append(dimScores, ds)
	}
	overall = round2(overall)

	return &QualityScore{
		OverallScore:    overall,
		Grade:           GradeFor(overall),
		DimensionScores: dimScores,
		PassesThreshold: overall >= s.globalThreshold,
		Recommendations: Recommend(dimScores, overall, s.criticalBar),
		Timestamp:       time.Now().UTC(),
	}, nil
}

// GradeFor maps an overall score to a letter grade. Informational only; it
// never gates pass/fail.
func GradeFor(overall float64) string {
	switch {
	case overall >= 95:
		return "A+"
	case overall >= 90:
		return "A"
	case overall >= 85:
		return "B+"
	case overall >= 80:
		return "B"
	case overall >= 75:
		return "C+"
	case overall >= 70:
		return "C"
	case overall >= 60:
		return "D"
	default:
		return "F"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
