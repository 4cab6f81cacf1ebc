package stages

import (
	"context"
	"strings"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

// NLPStage scores grammar and readability: spacing and capitalization
// slips, word echoes, and sentence length. The bar for this analyzer is
// determinism and the [0,100] contract, not linguistic completeness.
type NLPStage struct{}

func NewNLPStage() *NLPStage { return &NLPStage{} }

func (s *NLPStage) Evaluate(_ context.Context, content string, _ quality.EvalContext) (quality.StageResult, error) {
	st := analyze(content)

	doubleSpaces := strings.Count(content, "  ")
	repeated := repeatedAdjacentWords(st.words)
	longSentences := 0
	lowercaseStarts := 0
	for _, sent := range st.sentences {
		if len(strings.Fields(sent)) > 30 {
			longSentences++
		}
		if startsLower(sent) {
			lowercaseStarts++
		}
	}
	missingTerminal := 0
	if trimmed := strings.TrimSpace(content); trimmed != "" && !strings.ContainsAny(trimmed[len(trimmed)-1:], ".!?") {
		missingTerminal = 1
	}

	readabilityPenalty := 0.0
	if st.avgSentenceLen > 25 {
		readabilityPenalty = (st.avgSentenceLen - 25) * 1.5
		if readabilityPenalty > 20 {
			readabilityPenalty = 20
		}
	}

	score := clampScore(100 -
		3*float64(doubleSpaces) -
		5*float64(repeated) -
		4*float64(longSentences) -
		3*float64(lowercaseStarts) -
		5*float64(missingTerminal) -
		readabilityPenalty)

	return quality.StageResult{
		Dimension: quality.DimensionNLP,
		Score:     score,
		Detail: map[string]any{
			"double_spaces":       doubleSpaces,
			"repeated_words":      repeated,
			"long_sentences":      longSentences,
			"lowercase_starts":    lowercaseStarts,
			"missing_terminal":    missingTerminal == 1,
			"avg_sentence_length": st.avgSentenceLen,
			"sentence_count":      len(st.sentences),
			"readability_penalty": readabilityPenalty,
		},
	}, nil
}

func repeatedAdjacentWords(words []string) int {
	n := 0
	for i := 1; i < len(words); i++ {
		a := strings.ToLower(strings.Trim(words[i-1], ".,;:!?"))
		b := strings.ToLower(strings.Trim(words[i], ".,;:!?"))
		if a != "" && a == b {
			n++
		}
	}
	return n
}
