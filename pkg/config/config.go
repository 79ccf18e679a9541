package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all tunables for the pipeline engine and the relationship
// analyzer. Values come from engine.yaml when present, with environment
// variable overrides; without a file the env/default path is used alone.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Executor ExecutorConfig `yaml:"executor"`
}

// AnalysisConfig holds relationship discovery thresholds.
type AnalysisConfig struct {
	// SampleValueLimit caps sample values retained per column profile.
	SampleValueLimit int `yaml:"sample_value_limit" env:"ANALYSIS_SAMPLE_VALUE_LIMIT" env-default:"5"`

	// FKDistinctRatio is the distinct-ratio ceiling below which a *_id
	// column is flagged as a foreign key.
	FKDistinctRatio float64 `yaml:"fk_distinct_ratio" env:"ANALYSIS_FK_DISTINCT_RATIO" env-default:"0.9"`

	// PotentialThreshold is the confidence floor for retaining a
	// candidate at all.
	PotentialThreshold float64 `yaml:"potential_threshold" env:"ANALYSIS_POTENTIAL_THRESHOLD" env-default:"0.3"`

	// SuggestThreshold is the confidence floor for surfacing a candidate
	// as an active suggested relationship.
	SuggestThreshold float64 `yaml:"suggest_threshold" env:"ANALYSIS_SUGGEST_THRESHOLD" env-default:"0.6"`

	// AutoActivateThreshold is the confidence floor for auto-activating
	// a candidate in a join plan.
	AutoActivateThreshold float64 `yaml:"auto_activate_threshold" env:"ANALYSIS_AUTO_ACTIVATE_THRESHOLD" env-default:"0.8"`

	// ProfileConcurrency bounds parallel dataset profiling.
	ProfileConcurrency int `yaml:"profile_concurrency" env:"ANALYSIS_PROFILE_CONCURRENCY" env-default:"4"`
}

// ExecutorConfig holds pipeline execution settings.
type ExecutorConfig struct {
	// DefaultNodeTimeoutMs bounds each node execution. Per-node config
	// overrides it; 0 disables the deadline.
	DefaultNodeTimeoutMs int `yaml:"default_node_timeout_ms" env:"EXECUTOR_DEFAULT_NODE_TIMEOUT_MS" env-default:"30000"`
}

// Load reads configuration from the given YAML path with environment
// variable overrides. A missing file is not an error; defaults and
// environment variables apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			return cfg, cfg.validate()
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.validate()
}

// Default returns the built-in configuration without touching the
// filesystem or environment.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			SampleValueLimit:      5,
			FKDistinctRatio:       0.9,
			PotentialThreshold:    0.3,
			SuggestThreshold:      0.6,
			AutoActivateThreshold: 0.8,
			ProfileConcurrency:    4,
		},
		Executor: ExecutorConfig{
			DefaultNodeTimeoutMs: 30000,
		},
	}
}

// validate rejects threshold orderings the scorer cannot honor.
func (c *Config) validate() error {
	a := c.Analysis
	if a.SampleValueLimit < 0 {
		return fmt.Errorf("sample_value_limit must be >= 0, got %d", a.SampleValueLimit)
	}
	if a.PotentialThreshold > a.SuggestThreshold || a.SuggestThreshold > a.AutoActivateThreshold {
		return fmt.Errorf("thresholds must be ordered potential <= suggest <= auto_activate")
	}
	if a.ProfileConcurrency < 1 {
		return fmt.Errorf("profile_concurrency must be >= 1, got %d", a.ProfileConcurrency)
	}
	return nil
}
