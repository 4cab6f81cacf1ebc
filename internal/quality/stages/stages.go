// Package stages holds the built-in analyzers behind the single-method
// stage contract. Each one is deterministic, side-effect free, and
// swappable: nothing in the pipeline core depends on this package.
package stages

import "github.com/quillboard/quillboard-backend/internal/quality"

// ForDimension resolves a built-in analyzer by dimension name, used when
// building the registry from configuration.
func ForDimension(dim quality.Dimension) (quality.Stage, bool) {
	switch dim {
	case quality.DimensionNLP:
		return NewNLPStage(), true
	case quality.DimensionSEO:
		return NewSEOStage(), true
	case quality.DimensionAuthority:
		return NewAuthorityStage(), true
	case quality.DimensionEEAT:
		return NewEEATStage(), true
	case quality.DimensionHumanization:
		return NewHumanizationStage(), true
	case quality.DimensionUserValue:
		return NewUserValueStage(), true
	default:
		return nil, false
	}
}
