package quality

import (
	"errors"
	"testing"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
)

func sealedRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	regs := []struct {
		dim       Dimension
		weight    float64
		threshold float64
	}{
		{"seo", 0.5, 90},
		{"eeat", 0.3, 85},
		{"humanization", 0.2, 80},
	}
	for _, rg := range regs {
		if err := r.Register(rg.dim, constStage{dim: rg.dim}, rg.weight, rg.threshold); err != nil {
			t.Fatalf("register %s: %v", rg.dim, err)
		}
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return r
}

func TestScorerWeightedAggregate(t *testing.T) {
	r := sealedRegistry(t)
	s, err := NewScorer(r, 90, 80)
	if err != nil {
		t.Fatalf("new scorer: %v", err)
	}
	qs, err := s.Score([]StageResult{
		{Dimension: "seo", Score: 96},
		{Dimension: "eeat", Score: 92},
		{Dimension: "humanization", Score: 88},
	})
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if qs.OverallScore != 93.2 {
		t.Fatalf("overall: want=93.2 got=%v", qs.OverallScore)
	}
	if qs.Grade != "A" {
		t.Fatalf("grade: want=A got=%s", qs.Grade)
	}
	if !qs.PassesThreshold {
		t.Fatalf("93.2 vs threshold 90: want pass")
	}
	if len(qs.Recommendations) != 0 {
		t.Fatalf("all dimensions pass, want no recommendations, got %v", qs.Recommendations)
	}
	if len(qs.DimensionScores) != 3 {
		t.Fatalf("dimension scores: want=3 got=%d", len(qs.DimensionScores))
	}
	for i, want := range []Dimension{"seo", "eeat", "humanization"} {
		if qs.DimensionScores[i].Dimension != want {
			t.Fatalf("dimension order at %d: want=%s got=%s", i, want, qs.DimensionScores[i].Dimension)
		}
	}
	if ds := qs.DimensionScores[0]; ds.WeightedScore != 48 || !ds.Passes {
		t.Fatalf("seo dimension score: got %+v", ds)
	}
}

func TestScorerFailsClosedOnMissingResult(t *testing.T) {
	r := sealedRegistry(t)
	s, _ := NewScorer(r, 90, 80)
	_, err := s.Score([]StageResult{
		{Dimension: "seo", Score: 96},
		{Dimension: "eeat", Score: 92},
	})
	if !errors.Is(err, qerrors.ErrIncompleteResults) {
		t.Fatalf("missing result: want ErrIncompleteResults, got %v", err)
	}
}

func TestScorerFailsClosedOnUnknownResult(t *testing.T) {
	r := sealedRegistry(t)
	s, _ := NewScorer(r, 90, 80)
	_, err := s.Score([]StageResult{
		{Dimension: "seo", Score: 96},
		{Dimension: "eeat", Score: 92},
		{Dimension: "tone", Score: 88},
	})
	if !errors.Is(err, qerrors.ErrIncompleteResults) {
		t.Fatalf("unknown dimension result: want ErrIncompleteResults, got %v", err)
	}
}

func TestScorerFailsClosedOnDuplicateResult(t *testing.T) {
	r := sealedRegistry(t)
	s, _ := NewScorer(r, 90, 80)
	_, err := s.Score([]StageResult{
		{Dimension: "seo", Score: 96},
		{Dimension: "seo", Score: 90},
		{Dimension: "eeat", Score: 92},
	})
	if !errors.Is(err, qerrors.ErrIncompleteResults) {
		t.Fatalf("duplicate result: want ErrIncompleteResults, got %v", err)
	}
}

func TestScorerRejectsOutOfRangeScore(t *testing.T) {
	r := sealedRegistry(t)
	s, _ := NewScorer(r, 90, 80)
	_, err := s.Score([]StageResult{
		{Dimension: "seo", Score: 104},
		{Dimension: "eeat", Score: 92},
		{Dimension: "humanization", Score: 88},
	})
	if !errors.Is(err, qerrors.ErrScoreOutOfRange) {
		t.Fatalf("score 104: want ErrScoreOutOfRange, got %v", err)
	}
}

func TestScorerDeterministic(t *testing.T) {
	r := sealedRegistry(t)
	s, _ := NewScorer(r, 90, 80)
	results := []StageResult{
		{Dimension: "humanization", Score: 88},
		{Dimension: "seo", Score: 70},
		{Dimension: "eeat", Score: 92},
	}
	first, err := s.Score(results)
	if err != nil {
		t.Fatalf("first score: %v", err)
	}
	second, err := s.Score(results)
	if err != nil {
		t.Fatalf("second score: %v", err)
	}
	if first.OverallScore != second.OverallScore || first.Grade != second.Grade {
		t.Fatalf("same inputs produced %v/%s then %v/%s",
			first.OverallScore, first.Grade, second.OverallScore, second.Grade)
	}
	if len(first.Recommendations) != len(second.Recommendations) {
		t.Fatalf("recommendation count changed between runs")
	}
	for i := range first.Recommendations {
		if first.Recommendations[i] != second.Recommendations[i] {
			t.Fatalf("recommendation %d changed: %q vs %q", i, first.Recommendations[i], second.Recommendations[i])
		}
	}
}

func TestNewScorerRequiresClosedRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("seo", constStage{dim: "seo"}, 1.0, 90); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := NewScorer(r, 90, 80); !errors.Is(err, qerrors.ErrRegistryOpen) {
		t.Fatalf("open registry: want ErrRegistryOpen, got %v", err)
	}
}

func TestGradeFor(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{100, "A+"}, {95, "A+"}, {94.99, "A"}, {90, "A"},
		{89.99, "B+"}, {85, "B+"}, {80, "B"}, {75, "C+"},
		{70, "C"}, {69.99, "D"}, {60, "D"}, {59.99, "F"}, {0, "F"},
	}
	for _, c := range cases {
		if got := GradeFor(c.score); got != c.want {
			t.Fatalf("grade(%v): want=%s got=%s", c.score, c.want, got)
		}
	}
}
