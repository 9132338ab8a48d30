// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"fmt"
	"math"
)

// Default fusion parameters.
const (
	DefaultContentWeight       = 0.6
	DefaultCollaborativeWeight = 0.4
	DefaultMinScore            = 0.10
	DefaultFuzzyCutoff         = 0.6
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// ContentWeight multiplies content scores during fusion.
	ContentWeight float64 `json:"content_weight"`

	// CollaborativeWeight multiplies collaborative scores during fusion.
	CollaborativeWeight float64 `json:"collaborative_weight"`

	// MinScore is the exclusive lower bound on fused scores.
	MinScore float64 `json:"min_score"`

	// FuzzyCutoff is the minimum SequenceMatcher ratio for a fuzzy title match.
	FuzzyCutoff float64 `json:"fuzzy_cutoff"`

	// DefaultTopN is used when a request does not specify a limit.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps requested limits.
	MaxTopN int `json:"max_top_n"`

	// CandidateMultiplier scales topN into the content candidate count.
	CandidateMultiplier int `json:"candidate_multiplier"`

	// Workers bounds the collaborative build parallelism. Zero uses all CPUs.
	Workers int `json:"workers"`
}

// DefaultConfig returns the standard fusion configuration.
func DefaultConfig() *Config {
	return &Config{
		ContentWeight:       DefaultContentWeight,
		CollaborativeWeight: DefaultCollaborativeWeight,
		MinScore:            DefaultMinScore,
		FuzzyCutoff:         DefaultFuzzyCutoff,
		DefaultTopN:         10,
		MaxTopN:             100,
		CandidateMultiplier: 2,
		Workers:             0,
	}
}

// weightSumTolerance absorbs float error in sums such as 0.7+0.3.
const weightSumTolerance = 1e-9

// Validate checks configuration bounds. The weights sum to at most 1 so a
// fused score stays in [0, 1].
func (c *Config) Validate() error {
	if !inUnit(c.ContentWeight) {
		return fmt.Errorf("content_weight must be in [0, 1], got %f", c.ContentWeight)
	}
	if !inUnit(c.CollaborativeWeight) {
		return fmt.Errorf("collaborative_weight must be in [0, 1], got %f", c.CollaborativeWeight)
	}
	if c.ContentWeight+c.CollaborativeWeight == 0 {
		return fmt.Errorf("content_weight and collaborative_weight cannot both be zero")
	}
	if c.ContentWeight+c.CollaborativeWeight > 1+weightSumTolerance {
		return fmt.Errorf("content_weight + collaborative_weight must not exceed 1, got %f",
			c.ContentWeight+c.CollaborativeWeight)
	}
	if !inUnit(c.MinScore) {
		return fmt.Errorf("min_score must be in [0, 1], got %f", c.MinScore)
	}
	if c.FuzzyCutoff <= 0 || c.FuzzyCutoff > 1 || math.IsNaN(c.FuzzyCutoff) {
		return fmt.Errorf("fuzzy_cutoff must be in (0, 1], got %f", c.FuzzyCutoff)
	}
	if c.DefaultTopN < 1 {
		return fmt.Errorf("default_top_n must be positive, got %d", c.DefaultTopN)
	}
	if c.MaxTopN < c.DefaultTopN {
		return fmt.Errorf("max_top_n must be >= default_top_n, got %d < %d", c.MaxTopN, c.DefaultTopN)
	}
	if c.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be positive, got %d", c.CandidateMultiplier)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

// ClampTopN maps a requested limit onto [1, MaxTopN]; n <= 0 means default.
func (c *Config) ClampTopN(n int) int {
	switch {
	case n <= 0:
		return c.DefaultTopN
	case n > c.MaxTopN:
		return c.MaxTopN
	default:
		return n
	}
}

func inUnit(x float64) bool {
	return x >= 0 && x <= 1
}
