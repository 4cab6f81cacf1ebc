package stages

import (
	"context"
	"strings"
	"testing"

	"github.com/quillboard/quillboard-backend/internal/quality"
)

const cleanSample = `Quillboard helps editorial teams track content quality over time. The dashboard shows every dimension at a glance, so writers can act before publishing.

According to a 2024 survey (https://example.com/research), teams that review drafts against explicit quality bars ship fewer corrections. In my experience running an editorial desk, the biggest wins come from checking structure first. You should start with the outline, then tighten each section.

Here's how to get started:
1. Define the dimensions you care about.
2. Set a weight and a threshold for each.
3. Run the pipeline on every draft.

Dr. Reyes said: "Consistent review beats heroic rewriting." That's been true for us as well.`

func allStages(t *testing.T) map[quality.Dimension]quality.Stage {
	t.Helper()
	dims := []quality.Dimension{
		quality.DimensionNLP,
		quality.DimensionSEO,
		quality.DimensionAuthority,
		quality.DimensionEEAT,
		quality.DimensionHumanization,
		quality.DimensionUserValue,
	}
	out := make(map[quality.Dimension]quality.Stage, len(dims))
	for _, d := range dims {
		st, ok := ForDimension(d)
		if !ok {
			t.Fatalf("no built-in stage for %s", d)
		}
		out[d] = st
	}
	return out
}

func TestForDimensionUnknown(t *testing.T) {
	if _, ok := ForDimension("tone"); ok {
		t.Fatalf("unknown dimension must not resolve")
	}
}

func TestStagesStayInRangeAndReportOwnDimension(t *testing.T) {
	ec := quality.EvalContext{
		Title:    "How Quillboard Tracks Content Quality",
		Keywords: []string{"quillboard", "content quality"},
		Audience: "editors",
	}
	samples := []string{"", "one short line", cleanSample, strings.Repeat("word ", 500)}
	for dim, st := range allStages(t) {
		for _, sample := range samples {
			res, err := st.Evaluate(context.Background(), sample, ec)
			if err != nil {
				t.Fatalf("%s evaluate: %v", dim, err)
			}
			if res.Dimension != dim {
				t.Fatalf("stage %s reported dimension %s", dim, res.Dimension)
			}
			if res.Score < 0 || res.Score > 100 {
				t.Fatalf("%s score out of range: %v", dim, res.Score)
			}
		}
	}
}

func TestStagesAreDeterministic(t *testing.T) {
	ec := quality.EvalContext{Title: "Sample", Keywords: []string{"quality"}}
	for dim, st := range allStages(t) {
		a, err := st.Evaluate(context.Background(), cleanSample, ec)
		if err != nil {
			t.Fatalf("%s first evaluate: %v", dim, err)
		}
		b, err := st.Evaluate(context.Background(), cleanSample, ec)
		if err != nil {
			t.Fatalf("%s second evaluate: %v", dim, err)
		}
		if a.Score != b.Score {
			t.Fatalf("%s not deterministic: %v then %v", dim, a.Score, b.Score)
		}
	}
}

func TestNLPStagePenalizesSloppyText(t *testing.T) {
	st := NewNLPStage()
	clean, err := st.Evaluate(context.Background(), "This is a tidy sentence. It reads well.", quality.EvalContext{})
	if err != nil {
		t.Fatalf("clean evaluate: %v", err)
	}
	sloppy, err := st.Evaluate(context.Background(), "this is is a  sloppy sentence with no ending", quality.EvalContext{})
	if err != nil {
		t.Fatalf("sloppy evaluate: %v", err)
	}
	if sloppy.Score >= clean.Score {
		t.Fatalf("sloppy text must score lower: clean=%v sloppy=%v", clean.Score, sloppy.Score)
	}
}

func TestSEOStageRewardsKeywordCoverage(t *testing.T) {
	st := NewSEOStage()
	ec := quality.EvalContext{
		Title:    "Content Quality Pipelines",
		Keywords: []string{"content quality", "pipeline"},
	}
	covered, err := st.Evaluate(context.Background(), "Our content quality pipeline checks every draft before it ships.", ec)
	if err != nil {
		t.Fatalf("covered evaluate: %v", err)
	}
	uncovered, err := st.Evaluate(context.Background(), "This paragraph talks about something else entirely for a while.", ec)
	if err != nil {
		t.Fatalf("uncovered evaluate: %v", err)
	}
	if covered.Score <= uncovered.Score {
		t.Fatalf("keyword coverage must raise the score: covered=%v uncovered=%v", covered.Score, uncovered.Score)
	}
}

func TestSEOStagePenalizesKeywordStuffing(t *testing.T) {
	st := NewSEOStage()
	ec := quality.EvalContext{Keywords: []string{"widget"}}
	normal, err := st.Evaluate(context.Background(),
		"The widget guide explains setup once. "+strings.Repeat("Plenty of ordinary supporting prose follows here. ", 20), ec)
	if err != nil {
		t.Fatalf("normal evaluate: %v", err)
	}
	stuffed, err := st.Evaluate(context.Background(),
		strings.Repeat("widget widget widget buy widget now. ", 10), ec)
	if err != nil {
		t.Fatalf("stuffed evaluate: %v", err)
	}
	if stuffed.Score >= normal.Score {
		t.Fatalf("stuffing must lower the score: normal=%v stuffed=%v", normal.Score, stuffed.Score)
	}
}

func TestAuthorityStageRewardsCitations(t *testing.T) {
	st := NewAuthorityStage()
	cited, err := st.Evaluate(context.Background(),
		`According to the 2023 standards report (https://example.org/report), 85% of teams improved. Research shows the effect holds. "Measured review works," said the study lead.`,
		quality.EvalContext{})
	if err != nil {
		t.Fatalf("cited evaluate: %v", err)
	}
	bare, err := st.Evaluate(context.Background(), "I think this is probably fine and most people would agree.", quality.EvalContext{})
	if err != nil {
		t.Fatalf("bare evaluate: %v", err)
	}
	if cited.Score <= bare.Score {
		t.Fatalf("citations must raise the score: cited=%v bare=%v", cited.Score, bare.Score)
	}
}

func TestEEATStageRewardsExperienceSignals(t *testing.T) {
	st := NewEEATStage()
	experienced, err := st.Evaluate(context.Background(),
		"In my experience as a certified editor, I tested this workflow for years. We found it reliable.",
		quality.EvalContext{})
	if err != nil {
		t.Fatalf("experienced evaluate: %v", err)
	}
	generic, err := st.Evaluate(context.Background(), "The workflow can be configured in several ways.", quality.EvalContext{})
	if err != nil {
		t.Fatalf("generic evaluate: %v", err)
	}
	if experienced.Score <= generic.Score {
		t.Fatalf("first-hand signals must raise the score: experienced=%v generic=%v", experienced.Score, generic.Score)
	}
}

func TestHumanizationStagePenalizesMachinePhrases(t *testing.T) {
	st := NewHumanizationStage()
	human, err := st.Evaluate(context.Background(),
		"Honestly? We didn't expect it to work. But it did. The team couldn't believe how much time it saved across a normal week of editing.",
		quality.EvalContext{})
	if err != nil {
		t.Fatalf("human evaluate: %v", err)
	}
	robotic, err := st.Evaluate(context.Background(),
		"In today's digital landscape, it is important to note that content matters. Furthermore, it is worth noting that quality matters. In conclusion, it is important to note that both matter.",
		quality.EvalContext{})
	if err != nil {
		t.Fatalf("robotic evaluate: %v", err)
	}
	if robotic.Score >= human.Score {
		t.Fatalf("machine phrasing must lower the score: human=%v robotic=%v", human.Score, robotic.Score)
	}
}

func TestUserValueStageRewardsActionableStructure(t *testing.T) {
	st := NewUserValueStage()
	actionable, err := st.Evaluate(context.Background(),
		"Here's how to fix it:\n1. Open the settings page.\n2. For example, set the threshold to 85.\n3. You can then save and re-run.\nStep by step, this avoids a common mistake.",
		quality.EvalContext{Audience: "editors"})
	if err != nil {
		t.Fatalf("actionable evaluate: %v", err)
	}
	fluffy, err := st.Evaluate(context.Background(),
		"As we all know, at the end of the day quality is needless to say important, and it goes without saying that everyone wants it.",
		quality.EvalContext{Audience: "editors"})
	if err != nil {
		t.Fatalf("fluffy evaluate: %v", err)
	}
	if actionable.Score <= fluffy.Score {
		t.Fatalf("actionable structure must raise the score: actionable=%v fluffy=%v", actionable.Score, fluffy.Score)
	}
}
