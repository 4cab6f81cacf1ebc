package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
)

const configPathEnv = "QUILLBOARD_PIPELINE_CONFIG"

// Config is the root of the pipeline configuration file.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// PipelineConfig drives the registry, scorer, and orchestrator. Weight and
// threshold misconfiguration is fatal at startup, never per request.
type PipelineConfig struct {
	GlobalThreshold float64           `yaml:"global_threshold"`
	CriticalBar     float64           `yaml:"critical_bar"`
	StageTimeoutMS  int               `yaml:"stage_timeout_ms"`
	RunDeadlineMS   int               `yaml:"run_deadline_ms"`
	MaxInFlight     int               `yaml:"max_in_flight"`
	Retry           RetryConfig       `yaml:"retry"`
	Dimensions      []DimensionConfig `yaml:"dimensions"`
}

type RetryConfig struct {
	MaxAttempts  int     `yaml:"max_attempts"`
	MinBackoffMS int     `yaml:"min_backoff_ms"`
	MaxBackoffMS int     `yaml:"max_backoff_ms"`
	JitterFrac   float64 `yaml:"jitter_frac"`
}

type DimensionConfig struct {
	Name      string  `yaml:"name"`
	Weight    float64 `yaml:"weight"`
	Threshold float64 `yaml:"threshold"`
	Enabled   *bool   `yaml:"enabled"` // nil = enabled
}

func (d DimensionConfig) IsEnabled() bool {
	return d.Enabled == nil || *d.Enabled
}

func (p PipelineConfig) StageTimeout() time.Duration {
	return time.Duration(p.StageTimeoutMS) * time.Millisecond
}

func (p PipelineConfig) RunDeadline() time.Duration {
	return time.Duration(p.RunDeadlineMS) * time.Millisecond
}

// Default is the configuration used when no file is present: all six
// built-in analyzers enabled, weights summing to 1.0.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			GlobalThreshold: 85,
			CriticalBar:     80,
			StageTimeoutMS:  3000,
			RunDeadlineMS:   15000,
			MaxInFlight:     16,
			Retry: RetryConfig{
				MaxAttempts:  2,
				MinBackoffMS: 100,
				MaxBackoffMS: 2000,
				JitterFrac:   0.2,
			},
			Dimensions: []DimensionConfig{
				{Name: "seo", Weight: 0.20, Threshold: 85},
				{Name: "nlp", Weight: 0.15, Threshold: 80},
				{Name: "authority", Weight: 0.15, Threshold: 75},
				{Name: "eeat", Weight: 0.15, Threshold: 75},
				{Name: "humanization", Weight: 0.20, Threshold: 80},
				{Name: "userValue", Weight: 0.15, Threshold: 75},
			},
		},
	}
}

// Load reads the config file at path, falling back to the
// QUILLBOARD_PIPELINE_CONFIG env var and then to Default when neither names
// an existing file.
func Load(path string, log *logger.Logger) (*Config, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnv))
	}
	if path == "" {
		if log != nil {
			log.Info("no pipeline config file, using defaults")
		}
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config %q: %w", path, err)
	}
	cfg := Default()
	cfg.Pipeline.Dimensions = nil // file declares its own dimension set
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log != nil {
		log.Info("pipeline config loaded", "path", path, "dimensions", len(cfg.Pipeline.Dimensions))
	}
	return cfg, nil
}

// Validate covers the per-field basics; the weight-sum invariant lives in
// the registry where it belongs, so programmatic registration is checked the
// same way as file-driven registration.
func (c *Config) Validate() error {
	p := c.Pipeline
	if p.GlobalThreshold < 0 || p.GlobalThreshold > 100 {
		return fmt.Errorf("global_threshold %v outside [0,100]: %w", p.GlobalThreshold, qerrors.ErrInvalidArgument)
	}
	if p.CriticalBar < 0 || p.CriticalBar > 100 {
		return fmt.Errorf("critical_bar %v outside [0,100]: %w", p.CriticalBar, qerrors.ErrInvalidArgument)
	}
	if p.StageTimeoutMS <= 0 || p.RunDeadlineMS <= 0 {
		return fmt.Errorf("stage_timeout_ms and run_deadline_ms must be positive: %w", qerrors.ErrInvalidArgument)
	}
	if len(p.Dimensions) == 0 {
		return fmt.Errorf("pipeline config declares no dimensions: %w", qerrors.ErrInvalidArgument)
	}
	seen := make(map[string]bool, len(p.Dimensions))
	for _, d := range p.Dimensions {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return fmt.Errorf("dimension with empty name: %w", qerrors.ErrInvalidArgument)
		}
		if seen[name] {
			return fmt.Errorf("duplicate dimension %q: %w", name, qerrors.ErrInvalidArgument)
		}
		seen[name] = true
		if d.Weight < 0 {
			return fmt.Errorf("dimension %q has negative weight: %w", name, qerrors.ErrInvalidArgument)
		}
		if d.Threshold < 0 || d.Threshold > 100 {
			return fmt.Errorf("dimension %q threshold %v outside [0,100]: %w", name, d.Threshold, qerrors.ErrInvalidArgument)
		}
	}
	return nil
}
