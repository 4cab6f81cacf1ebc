package quality

import (
	"fmt"
	"sort"
	"strconv"
)

// Severity labels derive from the raw gap (threshold - score), not the
// weighted gap: how far below its own bar a dimension sits.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Recommend turns failing dimensions into a prioritized action list. Failing
// dimensions are ordered descending by weighted gap (threshold-score)*weight,
// so an axis that is both far below its bar and heavy in the aggregate
// surfaces first; ties keep registry declaration order. When the overall
// score sits below the critical bar a single global warning is prepended —
// that check is independent of per-dimension failures, since lenient
// thresholds can all pass while the weighted overall stays mediocre.
func Recommend(scores []DimensionScore, overallScore, criticalBar float64) []string {
	failing := make([]DimensionScore, 0, len(scores))
	for _, ds := range scores {
		if !ds.Passes {
			failing = append(failing, ds)
		}
	}
	sort.SliceStable(failing, func(i, j int) bool {
		return weightedGap(failing[i]) > weightedGap(failing[j])
	})

	out := make([]string, 0, len(failing)+1)
	if overallScore < criticalBar {
		out = append(out, fmt.Sprintf(
			"[CRITICAL] overall quality score %.2f is below the critical bar %s; revise before publishing",
			overallScore, trimFloat(criticalBar)))
	}
	for _, ds := range failing {
		gap := ds.Threshold - ds.Score
		out = append(out, fmt.Sprintf(
			"[%s] %s is %.1f points below target (Current: %.1f, Target: %s)",
			severityFor(gap), ds.Dimension, gap, ds.Score, trimFloat(ds.Threshold)))
	}
	return out
}

func weightedGap(ds DimensionScore) float64 {
	return (ds.Threshold - ds.Score) * ds.Weight
}

func severityFor(gap float64) string {
	switch {
	case gap > 10:
		return SeverityHigh
	case gap > 5:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
