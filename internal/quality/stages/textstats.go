package stages

import (
	"math"
	"strings"
	"unicode"
)

// textStats holds the shared token/sentence breakdown the analyzers score
// against. Computed once per Evaluate call; all counts are deterministic
// functions of the content.
type textStats struct {
	words          []string
	sentences      []string
	lines          []string
	avgSentenceLen float64
	sentenceLenSD  float64
}

func analyze(content string) textStats {
	st := textStats{
		words:     strings.Fields(content),
		sentences: splitSentences(content),
		lines:     strings.Split(content, "\n"),
	}
	if len(st.sentences) > 0 {
		var sum float64
		lens := make([]float64, len(st.sentences))
		for i, s := range st.sentences {
			lens[i] = float64(len(strings.Fields(s)))
			sum += lens[i]
		}
		st.avgSentenceLen = sum / float64(len(st.sentences))
		var varSum float64
		for _, l := range lens {
			d := l - st.avgSentenceLen
			varSum += d * d
		}
		st.sentenceLenSD = math.Sqrt(varSum / float64(len(lens)))
	}
	return st
}

func splitSentences(content string) []string {
	var out []string
	var b strings.Builder
	for _, r := range content {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(b.String())
			if s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}

func countOccurrences(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		n += strings.Count(lower, p)
	}
	return n
}

func startsLower(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return unicode.IsLower(r)
		}
		if unicode.IsDigit(r) || r == '"' || r == '\'' {
			return false
		}
	}
	return false
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return math.Round(v*10) / 10
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
