package stages

import (
	"context"
	"strings"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

var (
	experiencePhrases = []string{
		"in my experience",
		"i tested",
		"we tested",
		"i found",
		"we found",
		"hands-on",
		"i've used",
		"we reviewed",
	}
	credentialPhrases = []string{
		"certified",
		"licensed",
		"years of experience",
		"specialist",
		"expert in",
	}
	trustPhrases = []string{
		"sources",
		"references",
		"disclosure",
		"fact-checked",
		"last updated",
		"methodology",
	}
)

// EEATStage scores experience/expertise/authoritativeness/trust markers:
// first-hand experience language, stated credentials, and transparency cues.
type EEATStage struct{}

func NewEEATStage() *EEATStage { return &EEATStage{} }

func (s *EEATStage) Evaluate(_ context.Context, content string, _ quality.EvalContext) (quality.StageResult, error) {
	lower := strings.ToLower(content)

	experience := countOccurrences(lower, experiencePhrases)
	credentials := countOccurrences(lower, credentialPhrases)
	trust := countOccurrences(lower, trustPhrases)

	score := clampScore(40 +
		15*float64(minInt(experience, 2)) +
		10*float64(minInt(credentials, 2)) +
		5*float64(minInt(trust, 2)))

	return quality.StageResult{
		Dimension: quality.DimensionEEAT,
		Score:     score,
		Detail: map[string]any{
			"experience_markers": experience,
			"credential_markers": credentials,
			"trust_markers":      trust,
		},
	}, nil
}
