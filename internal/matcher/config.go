package matcher

import (
	"fmt"
	"math"
)

// DimensionWeights control how much each similarity dimension contributes to
// the overall score. Weights must sum to 1.0.
type DimensionWeights struct {
	ContractNumber  float64 `json:"contract_number" yaml:"contract_number"`
	AgreementNumber float64 `json:"agreement_number" yaml:"agreement_number"`
	CustomerName    float64 `json:"customer_name" yaml:"customer_name"`
	Amount          float64 `json:"amount" yaml:"amount"`
	Temporal        float64 `json:"temporal" yaml:"temporal"`
	Contextual      float64 `json:"contextual" yaml:"contextual"`
}

// Sum returns the total of all dimension weights
func (w DimensionWeights) Sum() float64 {
	return w.ContractNumber + w.AgreementNumber + w.CustomerName + w.Amount + w.Temporal + w.Contextual
}

// MatchingConfig contains all tunable parameters of the linking engine
type MatchingConfig struct {
	// Weights for combining the six similarity dimensions into the overall score
	Weights DimensionWeights `json:"weights" yaml:"weights"`

	// RelevanceFloor excludes candidates scoring below this overall value
	// from the ranked list entirely
	RelevanceFloor float64 `json:"relevance_floor" yaml:"relevance_floor"`

	// TopMatches caps how many ranked candidates each payment reports
	TopMatches int `json:"top_matches" yaml:"top_matches"`

	// Decision thresholds, applied in order. AutoLink additionally requires
	// low risk; Review requires risk below high.
	AutoLinkConfidence float64 `json:"auto_link_confidence" yaml:"auto_link_confidence"`
	ReviewConfidence   float64 `json:"review_confidence" yaml:"review_confidence"`
	ManualConfidence   float64 `json:"manual_confidence" yaml:"manual_confidence"`

	// AmountTolerancePercent is the band around the contract reference amount
	// within which an extracted amount still scores
	AmountTolerancePercent float64 `json:"amount_tolerance_percent" yaml:"amount_tolerance_percent"`

	// TemporalWindowDays is the maximum distance between an extracted date
	// and the contract start date that still scores
	TemporalWindowDays int `json:"temporal_window_days" yaml:"temporal_window_days"`
}

// DefaultConfig returns a MatchingConfig with production defaults
func DefaultConfig() *MatchingConfig {
	return &MatchingConfig{
		Weights: DimensionWeights{
			ContractNumber:  0.25,
			AgreementNumber: 0.25,
			CustomerName:    0.20,
			Amount:          0.15,
			Temporal:        0.10,
			Contextual:      0.05,
		},
		RelevanceFloor:         20,
		TopMatches:             5,
		AutoLinkConfidence:     90,
		ReviewConfidence:       75,
		ManualConfidence:       50,
		AmountTolerancePercent: 10,
		TemporalWindowDays:     365,
	}
}

// StrictConfig returns a configuration tuned for high-precision matching
// where false auto-links are costly
func StrictConfig() *MatchingConfig {
	config := DefaultConfig()
	config.RelevanceFloor = 30
	config.AutoLinkConfidence = 95
	config.ReviewConfidence = 85
	config.ManualConfidence = 65
	config.AmountTolerancePercent = 5
	config.TemporalWindowDays = 180
	return config
}

// RelaxedConfig returns a configuration tuned for recall, useful when
// descriptions are known to be noisy and everything gets reviewed anyway
func RelaxedConfig() *MatchingConfig {
	config := DefaultConfig()
	config.RelevanceFloor = 10
	config.AutoLinkConfidence = 85
	config.ReviewConfidence = 65
	config.ManualConfidence = 40
	config.AmountTolerancePercent = 15
	config.TemporalWindowDays = 540
	return config
}

// Validate checks the configuration for internal consistency
func (c *MatchingConfig) Validate() error {
	if math.Abs(c.Weights.Sum()-1.0) > 1e-9 {
		return fmt.Errorf("dimension weights must sum to 1.0, got %.6f", c.Weights.Sum())
	}

	weights := map[string]float64{
		"contract_number":  c.Weights.ContractNumber,
		"agreement_number": c.Weights.AgreementNumber,
		"customer_name":    c.Weights.CustomerName,
		"amount":           c.Weights.Amount,
		"temporal":         c.Weights.Temporal,
		"contextual":       c.Weights.Contextual,
	}
	for name, w := range weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("weight %s must be between 0 and 1, got %.4f", name, w)
		}
	}

	thresholds := map[string]float64{
		"auto_link_confidence": c.AutoLinkConfidence,
		"review_confidence":    c.ReviewConfidence,
		"manual_confidence":    c.ManualConfidence,
		"relevance_floor":      c.RelevanceFloor,
	}
	for name, v := range thresholds {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s must be between 0 and 100, got %.2f", name, v)
		}
	}

	if c.AutoLinkConfidence < c.ReviewConfidence {
		return fmt.Errorf("auto_link_confidence (%.2f) cannot be below review_confidence (%.2f)",
			c.AutoLinkConfidence, c.ReviewConfidence)
	}
	if c.ReviewConfidence < c.ManualConfidence {
		return fmt.Errorf("review_confidence (%.2f) cannot be below manual_confidence (%.2f)",
			c.ReviewConfidence, c.ManualConfidence)
	}

	if c.TopMatches <= 0 {
		return fmt.Errorf("top_matches must be positive, got %d", c.TopMatches)
	}
	if c.AmountTolerancePercent <= 0 || c.AmountTolerancePercent > 100 {
		return fmt.Errorf("amount_tolerance_percent must be in (0, 100], got %.2f", c.AmountTolerancePercent)
	}
	if c.TemporalWindowDays <= 0 {
		return fmt.Errorf("temporal_window_days must be positive, got %d", c.TemporalWindowDays)
	}

	return nil
}

// Clone creates a deep copy of the configuration
func (c *MatchingConfig) Clone() *MatchingConfig {
	clone := *c
	return &clone
}
