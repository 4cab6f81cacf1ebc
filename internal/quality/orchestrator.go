package quality

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

// Mode selects the completeness policy for a run.
type Mode string

const (
	// ModeStrict aborts the run when any dimension has no result. Default.
	ModeStrict Mode = "strict"
	// ModeDegraded substitutes caller-supplied fallback scores for failed
	// dimensions. Never implied; the caller must ask for it.
	ModeDegraded Mode = "degraded"
)

// RetryPolicy bounds per-stage retries. Backoff doubles from MinBackoff per
// attempt, capped at MaxBackoff, with +/- JitterFrac jitter.
type RetryPolicy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	JitterFrac  float64
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 2
	}
	if p.MinBackoff <= 0 {
		p.MinBackoff = 100 * time.Millisecond
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = 2 * time.Second
	}
	if p.JitterFrac <= 0 {
		p.JitterFrac = 0.20
	}
	return p
}

// Config carries the orchestration defaults; RunOptions can override the
// timeout and deadline per call.
type Config struct {
	StageTimeout time.Duration // per-attempt budget, default 3s
	RunDeadline  time.Duration // whole-run budget, default 15s
	MaxInFlight  int64         // stage evaluations in flight across overlapping runs, default 16
	Retry        RetryPolicy
}

func (c Config) withDefaults() Config {
	if c.StageTimeout <= 0 {
		c.StageTimeout = 3 * time.Second
	}
	if c.RunDeadline <= 0 {
		c.RunDeadline = 15 * time.Second
	}
	if c.MaxInFlight <= 0 {
		c.MaxInFlight = 16
	}
	c.Retry = c.Retry.withDefaults()
	return c
}

// RunOptions are the per-call knobs of Run.
type RunOptions struct {
	Mode           Mode
	StageTimeout   time.Duration // 0 = config default
	Deadline       time.Duration // 0 = config default
	FallbackScores map[Dimension]float64
}

// Orchestrator runs the registered stages against one content payload,
// applying per-stage timeout and bounded retry, and hands the complete
// result set to the scorer. Stages run concurrently; the in-flight budget is
// shared across overlapping runs so many simultaneous evaluations cannot
// exhaust the process.
type Orchestrator struct {
	reg    *Registry
	scorer *Scorer
	log    *logger.Logger
	cfg    Config
	sem    *semaphore.Weighted
	tracer trace.Tracer
}

func NewOrchestrator(reg *Registry, scorer *Scorer, baseLog *logger.Logger, cfg Config) (*Orchestrator, error) {
	if reg == nil || scorer == nil {
		return nil, fmt.Errorf("orchestrator: nil registry or scorer: %w", qerrors.ErrInvalidArgument)
	}
	if !reg.Closed() {
		return nil, qerrors.ErrRegistryOpen
	}
	if baseLog == nil {
		return nil, fmt.Errorf("orchestrator: nil logger: %w", qerrors.ErrInvalidArgument)
	}
	cfg = cfg.withDefaults()
	return &Orchestrator{
		reg:    reg,
		scorer: scorer,
		log:    baseLog.With("component", "Orchestrator"),
		cfg:    cfg,
		sem:    semaphore.NewWeighted(cfg.MaxInFlight),
		tracer: otel.Tracer("quillboard/quality"),
	}, nil
}

type stageSlot struct {
	result  *StageResult
	failure *StageFailure
}

// Run evaluates every enabled stage. In strict mode any missing dimension
// aborts the run: no QualityScore is returned, only the failure list and an
// ErrRunAborted error. In degraded mode each failed dimension must have a
// caller-supplied fallback score, which is substituted while the failure
// stays on the audit list. Caller cancellation discards all partial results.
func (o *Orchestrator) Run(ctx context.Context, content string, ec EvalContext, opts RunOptions) (*QualityScore, []StageFailure, error) {
	entries, err := o.reg.Resolve()
	if err != nil {
		return nil, nil, err
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeStrict
	}
	if mode != ModeStrict && mode != ModeDegraded {
		return nil, nil, fmt.Errorf("unknown run mode %q: %w", mode, qerrors.ErrInvalidArgument)
	}
	stageTimeout := opts.StageTimeout
	if stageTimeout <= 0 {
		stageTimeout = o.cfg.StageTimeout
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = o.cfg.RunDeadline
	}

	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	runCtx, span := o.tracer.Start(runCtx, "pipeline.run",
		trace.WithAttributes(
			attribute.Int("pipeline.stage_count", len(entries)),
			attribute.String("pipeline.mode", string(mode)),
		))
	defer span.End()

	slots := make([]stageSlot, len(entries))
	var wg sync.WaitGroup
	for i, ent := range entries {
		wg.Add(1)
		go func(i int, ent Entry) {
			defer wg.Done()
			slots[i] = o.runStage(runCtx, ent, content, ec, stageTimeout)
		}(i, ent)
	}
	wg.Wait()

	// A cancelled run must never produce a QualityScore claiming
	// completeness, so partial results are dropped here.
	if ctx.Err() != nil {
		span.AddEvent("run cancelled")
		return nil, nil, fmt.Errorf("%w: %v", qerrors.ErrRunCancelled, ctx.Err())
	}

	var failures []StageFailure
	results := make([]StageResult, 0, len(entries))
	for i := range slots {
		if slots[i].failure != nil {
			failures = append(failures, *slots[i].failure)
			continue
		}
		results = append(results, *slots[i].result)
	}

	if len(failures) > 0 {
		if mode == ModeStrict {
			o.log.Warn("run aborted under strict mode",
				"failed_stages", len(failures), "total_stages", len(entries))
			return nil, failures, fmt.Errorf("%w: %d of %d stages failed", qerrors.ErrRunAborted, len(failures), len(entries))
		}
		substituted, err := o.applyFallbacks(slots, entries, opts.FallbackScores)
		if err != nil {
			return nil, failures, err
		}
		results = substituted
	}

	qs, err := o.scorer.Score(results)
	if err != nil {
		// Aggregation contract violations always fail the run.
		return nil, failures, err
	}
	span.SetAttributes(
		attribute.Float64("pipeline.overall_score", qs.OverallScore),
		attribute.Bool("pipeline.passes", qs.PassesThreshold),
	)
	return qs, failures, nil
}

// applyFallbacks rebuilds the result set in declaration order, substituting
// the caller's fallback score wherever a stage failed. A failed dimension
// without a fallback still aborts: degraded mode is explicit per dimension,
// never silently optimistic.
func (o *Orchestrator) applyFallbacks(slots []stageSlot, entries []Entry, fallbacks map[Dimension]float64) ([]StageResult, error) {
	results := make([]StageResult, 0, len(entries))
	for i, ent := range entries {
		if slots[i].result != nil {
			results = append(results, *slots[i].result)
			continue
		}
		fb, ok := fallbacks[ent.Dimension]
		if !ok {
			return nil, fmt.Errorf("%w: no fallback score for failed dimension %q", qerrors.ErrRunAborted, ent.Dimension)
		}
		if fb < 0 || fb > 100 {
			return nil, fmt.Errorf("fallback for %q is %.2f: %w", ent.Dimension, fb, qerrors.ErrScoreOutOfRange)
		}
		o.log.Warn("substituting fallback score",
			"dimension", ent.Dimension, "fallback", fb, "attempts", slots[i].failure.Attempts)
		results = append(results, StageResult{
			Dimension: ent.Dimension,
			Score:     fb,
			Detail: map[string]any{
				"fallback":   true,
				"attempts":   slots[i].failure.Attempts,
				"last_error": slots[i].failure.LastError,
			},
		})
	}
	return results, nil
}

func (o *Orchestrator) runStage(ctx context.Context, ent Entry, content string, ec EvalContext, timeout time.Duration) stageSlot {
	if err := o.sem.Acquire(ctx, 1); err != nil {
		return stageSlot{failure: &StageFailure{
			Dimension: ent.Dimension,
			LastError: fmt.Sprintf("waiting for stage slot: %v", err),
			Attempts:  0,
		}}
	}
	defer o.sem.Release(1)

	ctx, span := o.tracer.Start(ctx, "pipeline.stage",
		trace.WithAttributes(attribute.String("pipeline.dimension", string(ent.Dimension))))
	defer span.End()

	policy := o.cfg.Retry
	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		attempts = attempt
		res, err := o.evaluateOnce(ctx, ent, content, ec, timeout)
		if err == nil {
			span.SetAttributes(attribute.Float64("pipeline.score", res.Score))
			return stageSlot{result: res}
		}
		lastErr = err
		o.log.Debug("stage attempt failed",
			"dimension", ent.Dimension, "attempt", attempt, "error", err)
		if attempt == policy.MaxAttempts {
			break
		}
		select {
		case <-time.After(backoffFor(policy, attempt)):
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = policy.MaxAttempts
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("stage %q produced no result", ent.Dimension)
	}
	span.AddEvent("stage exhausted retries")
	return stageSlot{failure: &StageFailure{
		Dimension: ent.Dimension,
		LastError: lastErr.Error(),
		Attempts:  attempts,
	}}
}

// evaluateOnce enforces the attempt timeout even against stages that ignore
// their context, and converts contract violations (wrong dimension,
// out-of-range score, panic) into errors.
func (o *Orchestrator) evaluateOnce(ctx context.Context, ent Entry, content string, ec EvalContext, timeout time.Duration) (*StageResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		res StageResult
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("stage %q panicked: %v", ent.Dimension, r)}
			}
		}()
		res, err := ent.Stage.Evaluate(attemptCtx, content, ec)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if out.res.Dimension != ent.Dimension {
			return nil, fmt.Errorf("stage registered as %q reported dimension %q", ent.Dimension, out.res.Dimension)
		}
		if out.res.Score < 0 || out.res.Score > 100 {
			return nil, fmt.Errorf("stage %q returned %.2f: %w", ent.Dimension, out.res.Score, qerrors.ErrScoreOutOfRange)
		}
		return &out.res, nil
	case <-attemptCtx.Done():
		return nil, fmt.Errorf("stage %q: %w", ent.Dimension, attemptCtx.Err())
	}
}

func backoffFor(p RetryPolicy, attempt int) time.Duration {
	base := p.MinBackoff
	for i := 1; i < attempt; i++ {
		base *= 2
		if base >= p.MaxBackoff {
			base = p.MaxBackoff
			break
		}
	}
	jitter := 1 + p.JitterFrac*(2*rand.Float64()-1)
	d := time.Duration(float64(base) * jitter)
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	if d < 0 {
		d = 0
	}
	return d
}
