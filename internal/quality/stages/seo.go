package stages

import (
	"context"
	"strings"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

// SEOStage scores topical coverage: how much of the requested keyword set
// the content actually covers, at a sane density, with enough body to rank.
type SEOStage struct{}

func NewSEOStage() *SEOStage { return &SEOStage{} }

func (s *SEOStage) Evaluate(_ context.Context, content string, ec quality.EvalContext) (quality.StageResult, error) {
	st := analyze(content)
	lower := strings.ToLower(content)
	titleLower := strings.ToLower(ec.Title)

	matched := 0
	totalHits := 0
	inTitle := 0
	for _, kw := range ec.Keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" {
			continue
		}
		hits := strings.Count(lower, k)
		if hits > 0 {
			matched++
			totalHits += hits
		}
		if titleLower != "" && strings.Contains(titleLower, k) {
			inTitle++
		}
	}

	coverage := 1.0
	if len(ec.Keywords) > 0 {
		coverage = float64(matched) / float64(len(ec.Keywords))
	}

	// Keyword stuffing: more than 4 hits per 100 words reads as spam.
	density := 0.0
	if len(st.words) > 0 {
		density = float64(totalHits) / float64(len(st.words)) * 100
	}
	stuffingPenalty := 0.0
	if density > 4 {
		stuffingPenalty = (density - 4) * 5
		if stuffingPenalty > 25 {
			stuffingPenalty = 25
		}
	}

	bodyScore := 30.0
	if len(st.words) < 300 {
		bodyScore = float64(len(st.words)) / 300 * 30
	}

	titleScore := 0.0
	if len(ec.Keywords) == 0 || inTitle > 0 {
		titleScore = 10
	}

	score := clampScore(bodyScore + coverage*60 + titleScore - stuffingPenalty)

	return quality.StageResult{
		Dimension: quality.DimensionSEO,
		Score:     score,
		Detail: map[string]any{
			"keywords_total":    len(ec.Keywords),
			"keywords_matched":  matched,
			"keywords_in_title": inTitle,
			"keyword_hits":      totalHits,
			"density_pct":       density,
			"stuffing_penalty":  stuffingPenalty,
			"word_count":        len(st.words),
		},
	}, nil
}
