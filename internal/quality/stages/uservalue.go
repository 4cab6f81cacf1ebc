package stages

import (
	"context"
	"strings"
	"unicode"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

var (
	actionablePhrases = []string{
		"how to",
		"step",
		"for example",
		"you can",
		"try ",
		"tip:",
		"checklist",
	}
	fluffPhrases = []string{
		"as we all know",
		"needless to say",
		"at the end of the day",
		"without further ado",
		"when it comes to",
	}
)

// UserValueStage scores reader value: actionable guidance, scannable
// structure, and audience fit, penalizing filler.
type UserValueStage struct{}

func NewUserValueStage() *UserValueStage { return &UserValueStage{} }

func (s *UserValueStage) Evaluate(_ context.Context, content string, ec quality.EvalContext) (quality.StageResult, error) {
	st := analyze(content)
	lower := strings.ToLower(content)

	actionable := countOccurrences(lower, actionablePhrases)
	fluff := countOccurrences(lower, fluffPhrases)
	structure := structuredLines(st.lines)

	audienceFit := 0
	if a := strings.ToLower(strings.TrimSpace(ec.Audience)); a != "" && strings.Contains(lower, a) {
		audienceFit = 1
	}

	score := clampScore(45 +
		8*float64(minInt(actionable, 4)) +
		5*float64(minInt(structure, 3)) +
		8*float64(audienceFit) -
		6*float64(fluff))

	return quality.StageResult{
		Dimension: quality.DimensionUserValue,
		Score:     score,
		Detail: map[string]any{
			"actionable_markers": actionable,
			"structured_lines":   structure,
			"audience_fit":       audienceFit == 1,
			"fluff_markers":      fluff,
		},
	}, nil
}

// structuredLines counts list-style lines: bullets and numbered items.
func structuredLines(lines []string) int {
	n := 0
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ") {
			n++
			continue
		}
		if len(t) > 1 && unicode.IsDigit(rune(t[0])) && (t[1] == '.' || t[1] == ')') {
			n++
		}
	}
	return n
}
