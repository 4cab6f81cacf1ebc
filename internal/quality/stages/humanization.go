package stages

import (
	"context"
	"strings"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

var (
	machinePhrases = []string{
		"in today's fast-paced world",
		"it's important to note",
		"it is important to note",
		"delve into",
		"in conclusion,",
		"furthermore,",
		"moreover,",
		"unlock the power",
		"game-changer",
		"in the ever-evolving landscape",
	}
	contractions = []string{
		"don't", "it's", "you'll", "we're", "can't", "isn't", "that's", "won't",
	}
)

// HumanizationStage scores the risk that content reads as machine-generated:
// flat sentence rhythm, repeated sentence openers, template phrases, and an
// absence of conversational contractions. Higher score = lower risk.
type HumanizationStage struct{}

func NewHumanizationStage() *HumanizationStage { return &HumanizationStage{} }

func (s *HumanizationStage) Evaluate(_ context.Context, content string, _ quality.EvalContext) (quality.StageResult, error) {
	st := analyze(content)
	lower := strings.ToLower(content)

	machineHits := countOccurrences(lower, machinePhrases)
	contractionHits := countOccurrences(lower, contractions)

	// Burstiness: human prose varies sentence length; a standard deviation
	// near zero is the strongest generation tell.
	burstiness := 0.0
	if len(st.sentences) >= 3 {
		burstiness = st.sentenceLenSD / 8 * 25
		if burstiness > 25 {
			burstiness = 25
		}
	} else {
		burstiness = 15 // too little signal to judge rhythm
	}

	openerRepeats := repeatedOpeners(st.sentences)

	score := clampScore(50 +
		burstiness +
		5*float64(minInt(contractionHits, 2)) -
		8*float64(machineHits) -
		5*float64(openerRepeats))

	return quality.StageResult{
		Dimension: quality.DimensionHumanization,
		Score:     score,
		Detail: map[string]any{
			"machine_phrases":  machineHits,
			"contractions":     contractionHits,
			"burstiness":       burstiness,
			"opener_repeats":   openerRepeats,
			"sentence_len_sd":  st.sentenceLenSD,
			"sentence_len_avg": st.avgSentenceLen,
		},
	}, nil
}

// repeatedOpeners counts sentences that reuse the previous sentence's first
// word. Adjacent comparison keeps the measure order-stable.
func repeatedOpeners(sentences []string) int {
	n := 0
	prev := ""
	for _, s := range sentences {
		fields := strings.Fields(s)
		if len(fields) == 0 {
			continue
		}
		first := strings.ToLower(strings.Trim(fields[0], ".,;:!?"))
		if first != "" && first == prev {
			n++
		}
		prev = first
	}
	return n
}
