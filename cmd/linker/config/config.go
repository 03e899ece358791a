// Package config assembles runtime configuration for the linker CLI from
// a named matching profile plus flag-level overrides.
package config

import (
	"fmt"

	"payment-linking-engine/internal/matcher"
	"payment-linking-engine/pkg/logger"
)

// MatchingOverrides carries flag-level overrides applied on top of a
// profile. Negative values leave the profile setting untouched.
type MatchingOverrides struct {
	RelevanceFloor         float64
	AutoLinkConfidence     float64
	ReviewConfidence       float64
	ManualConfidence       float64
	AmountTolerancePercent float64
	TemporalWindowDays     int
	TopMatches             int
}

// CreateMatchingConfig builds a matching configuration from a named profile
// and applies any overrides. The combined result is validated so an override
// cannot produce an inconsistent threshold ordering.
func CreateMatchingConfig(profile string, overrides MatchingOverrides) (*matcher.MatchingConfig, error) {
	var cfg *matcher.MatchingConfig
	switch profile {
	case "", "default":
		cfg = matcher.DefaultConfig()
	case "strict":
		cfg = matcher.StrictConfig()
	case "relaxed":
		cfg = matcher.RelaxedConfig()
	default:
		return nil, fmt.Errorf("unknown matching profile %q (expected default, strict, or relaxed)", profile)
	}

	if overrides.RelevanceFloor >= 0 {
		cfg.RelevanceFloor = overrides.RelevanceFloor
	}
	if overrides.AutoLinkConfidence >= 0 {
		cfg.AutoLinkConfidence = overrides.AutoLinkConfidence
	}
	if overrides.ReviewConfidence >= 0 {
		cfg.ReviewConfidence = overrides.ReviewConfidence
	}
	if overrides.ManualConfidence >= 0 {
		cfg.ManualConfidence = overrides.ManualConfidence
	}
	if overrides.AmountTolerancePercent >= 0 {
		cfg.AmountTolerancePercent = overrides.AmountTolerancePercent
	}
	if overrides.TemporalWindowDays >= 0 {
		cfg.TemporalWindowDays = overrides.TemporalWindowDays
	}
	if overrides.TopMatches > 0 {
		cfg.TopMatches = overrides.TopMatches
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CreateLoggerConfig builds a logger configuration from CLI flags
func CreateLoggerConfig(level, format, file string) (*logger.Config, error) {
	cfg := logger.DefaultConfig()
	if level != "" {
		cfg.Level = logger.Level(level)
	}
	if format != "" {
		cfg.Format = logger.Format(format)
	}
	cfg.File = file

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
