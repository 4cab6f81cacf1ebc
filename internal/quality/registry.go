package quality

import (
	"fmt"
	"math"
	"strings"
	"sync"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
)

// WeightSumTolerance is the band around 1.0 the enabled weights must sum to.
const WeightSumTolerance = 1e-3

// Entry is one registered dimension with the configuration that grades it.
type Entry struct {
	Dimension Dimension
	Stage     Stage
	Weight    float64
	Threshold float64
	Enabled   bool
}

// Registry maps dimensions to stages plus their weight and pass threshold.
// It is populated once at process start, sealed with Close, and read
// concurrently by every run afterwards. Registration after Close fails fast
// with ErrRegistryClosed.
type Registry struct {
	mu      sync.RWMutex
	closed  bool
	entries []Entry
	index   map[Dimension]int
}

func NewRegistry() *Registry {
	return &Registry{index: make(map[Dimension]int)}
}

// Register adds an enabled dimension. Weight must be >= 0 and threshold in
// [0,100]; the registry does not judge whether a threshold is reasonable.
func (r *Registry) Register(dim Dimension, stage Stage, weight, threshold float64) error {
	return r.register(dim, stage, weight, threshold, true)
}

// RegisterDisabled keeps a dimension configured but excluded from runs and
// from the weight-sum check.
func (r *Registry) RegisterDisabled(dim Dimension, stage Stage, weight, threshold float64) error {
	return r.register(dim, stage, weight, threshold, false)
}

func (r *Registry) register(dim Dimension, stage Stage, weight, threshold float64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("register %q: %w", dim, qerrors.ErrRegistryClosed)
	}
	if strings.TrimSpace(string(dim)) == "" {
		return fmt.Errorf("register: empty dimension: %w", qerrors.ErrInvalidArgument)
	}
	if stage == nil {
		return fmt.Errorf("register %q: nil stage: %w", dim, qerrors.ErrInvalidArgument)
	}
	if _, dup := r.index[dim]; dup {
		return fmt.Errorf("register %q: duplicate dimension: %w", dim, qerrors.ErrInvalidArgument)
	}
	if weight < 0 {
		return fmt.Errorf("register %q: negative weight %v: %w", dim, weight, qerrors.ErrInvalidArgument)
	}
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("register %q: threshold %v outside [0,100]: %w", dim, threshold, qerrors.ErrInvalidArgument)
	}
	r.index[dim] = len(r.entries)
	r.entries = append(r.entries, Entry{
		Dimension: dim,
		Stage:     stage,
		Weight:    weight,
		Threshold: threshold,
		Enabled:   enabled,
	})
	return nil
}

// Close seals the registry and runs the cross-entry validation: the enabled
// weights must sum to 1.0 within WeightSumTolerance. A failed Close leaves
// the registry open so the operator sees a startup error, not a half-sealed
// instance.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return qerrors.ErrRegistryClosed
	}
	var sum float64
	var enabled int
	for _, e := range r.entries {
		if !e.Enabled {
			continue
		}
		enabled++
		sum += e.Weight
	}
	if enabled == 0 {
		return fmt.Errorf("registry close: no enabled dimensions: %w", qerrors.ErrInvalidArgument)
	}
	if math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("registry close: enabled weights sum to %.4f, want 1.0±%.3f: %w",
			sum, WeightSumTolerance, qerrors.ErrInvalidArgument)
	}
	r.closed = true
	return nil
}

func (r *Registry) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Resolve returns the enabled entries in declaration order. It only works on
// a sealed registry; resolving an open one is a programming error surfaced
// as ErrRegistryOpen.
func (r *Registry) Resolve() ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.closed {
		return nil, qerrors.ErrRegistryOpen
	}
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every entry, enabled or not, in declaration order. Used by the
// config read API.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}
