package stages

import (
	"context"
	"strings"
	"unicode"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

var attributionPhrases = []string{
	"according to",
	"research",
	"study",
	"survey",
	"report",
	"data from",
	"published in",
}

// AuthorityStage scores sourcing signals: outbound references, attributed
// claims, concrete figures, and quoted material.
type AuthorityStage struct{}

func NewAuthorityStage() *AuthorityStage { return &AuthorityStage{} }

func (s *AuthorityStage) Evaluate(_ context.Context, content string, _ quality.EvalContext) (quality.StageResult, error) {
	lower := strings.ToLower(content)

	links := strings.Count(lower, "http://") + strings.Count(lower, "https://")
	attributions := countOccurrences(lower, attributionPhrases)
	quotes := strings.Count(content, "\"") / 2
	figures := 0
	for _, w := range strings.Fields(content) {
		if len(w) > 0 && unicode.IsDigit(rune(w[0])) {
			figures++
		}
	}

	score := clampScore(35 +
		14*float64(minInt(links, 3)) +
		5*float64(minInt(attributions, 4)) +
		4*float64(minInt(quotes, 3)) +
		1.5*float64(minInt(figures, 10)))

	return quality.StageResult{
		Dimension: quality.DimensionAuthority,
		Score:     score,
		Detail: map[string]any{
			"links":        links,
			"attributions": attributions,
			"quotes":       quotes,
			"figures":      figures,
		},
	}, nil
}
