package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRegistryClosed is returned when a dimension is registered after the
	// registry has been sealed.
	ErrRegistryClosed = errors.New("stage registry is closed")
	// ErrRegistryOpen is returned when a sealed-only operation runs against a
	// registry that has not been closed yet.
	ErrRegistryOpen = errors.New("stage registry is not closed")

	// ErrRunAborted marks a pipeline run that produced no QualityScore because
	// one or more required dimensions had no result under strict mode.
	ErrRunAborted = errors.New("pipeline run aborted")
	// ErrRunCancelled marks a run terminated by the caller; partial results
	// are discarded.
	ErrRunCancelled = errors.New("pipeline run cancelled")

	// ErrIncompleteResults is the aggregation completeness violation: the
	// result set does not cover exactly the configured dimensions.
	ErrIncompleteResults = errors.New("incomplete dimension results")
	// ErrScoreOutOfRange is the aggregation range violation: a stage score
	// outside [0,100] reached the scorer.
	ErrScoreOutOfRange = errors.New("stage score out of range")
)
